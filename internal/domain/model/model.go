// Package model contains domain models passed between layers.
package model

import "time"

// Regiment is one practice session. Its pieces are created with it and never
// change afterwards.
type Regiment struct {
	ID          int64
	PracticedAt time.Time
}

// Piece is a named exercise belonging to exactly one regiment.
type Piece struct {
	ID         int64
	RegimentID int64
	Name       string
}

// LogEntry is one admitted tempo sample for a piece.
type LogEntry struct {
	ID       int64
	PieceID  int64
	BPM      int
	LoggedAt time.Time
}

// Sample is the read shape for a piece's most recent log entry, consumed by
// the admission policy.
type Sample struct {
	BPM int
	At  time.Time
}

// Row is one flat row of the hierarchy query. The regiment columns are
// always present; piece and log columns are nil where the outer join
// produced no match (a regiment without pieces, a piece without entries).
type Row struct {
	RegimentID  int64
	PracticedAt time.Time

	PieceID   *int64
	PieceName *string

	LogID    *int64
	BPM      *int
	LoggedAt *time.Time
}
