// Package repository defines the session store interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/okian/woodshed/internal/domain/model"
)

// Counts summarizes stored row totals for stats and metrics.
type Counts struct {
	Regiments  int
	Pieces     int
	LogEntries int
}

// Store provides durable access to regiments, pieces and log entries.
// Implementations surface structured errors and never retry internally;
// callers decide whether to retry or report upstream.
type Store interface {
	// CreateRegiment inserts a regiment and one piece per name in a single
	// transaction. Nothing is visible on failure.
	CreateRegiment(ctx context.Context, practicedAt time.Time, pieceNames []string) (int64, error)

	// LatestLogEntry returns the most recent entry for the piece, or nil
	// when the piece has no history.
	LatestLogEntry(ctx context.Context, pieceID int64) (*model.Sample, error)

	// AppendLogEntry inserts one log entry. Fails with ErrPersistence when
	// the piece does not exist.
	AppendLogEntry(ctx context.Context, pieceID int64, bpm int, loggedAt time.Time) (int64, error)

	// FetchAllHierarchy returns the flat outer-joined hierarchy rows,
	// ordered by regiment timestamp descending with stable piece and log
	// grouping within each regiment.
	FetchAllHierarchy(ctx context.Context) ([]model.Row, error)

	// Counts reports stored row totals.
	Counts(ctx context.Context) (Counts, error)

	// Close releases the underlying database handle.
	Close() error
}
