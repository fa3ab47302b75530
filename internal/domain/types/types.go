// Package types contains common types used across the application
package types

import "time"

// LogEntry is one tempo sample in the history payload.
type LogEntry struct {
	ID       int64     `json:"id"`
	BPM      int       `json:"bpm"`
	LoggedAt time.Time `json:"logged_at"`
}

// Piece is a named exercise with its accumulated tempo history.
type Piece struct {
	ID      int64      `json:"id"`
	Name    string     `json:"name"`
	Entries []LogEntry `json:"entries"`
}

// Regiment is one practice session with its pieces, as served by the
// history endpoint.
type Regiment struct {
	ID          int64     `json:"id"`
	PracticedAt time.Time `json:"practiced_at"`
	Pieces      []Piece   `json:"pieces"`
}

// Tempo is one live tempo reading forwarded to the UI feed.
type Tempo struct {
	BPM int       `json:"bpm"`
	At  time.Time `json:"at"`
}
