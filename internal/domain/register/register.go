// Package register holds the process-wide active-piece cell.
package register

import (
	"context"
	"sync"
)

// Register is the single-slot holder for the piece currently being
// practiced. It is constructed once and threaded explicitly into every
// component that needs it; there is deliberately no package-level instance.
// The cell is not persisted and is lost on restart.
type Register interface {
	// SetActive unconditionally overwrites the cell. The piece id is not
	// validated against the store.
	SetActive(ctx context.Context, pieceID int64)

	// Active returns the current piece id and whether one is set.
	Active(ctx context.Context) (int64, bool)
}

// inMemoryRegister implements Register with a mutex-guarded slot.
type inMemoryRegister struct {
	mu      sync.Mutex
	pieceID int64
	set     bool
}

// New creates an empty Register.
func New() Register {
	return &inMemoryRegister{}
}

func (r *inMemoryRegister) SetActive(_ context.Context, pieceID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pieceID = pieceID
	r.set = true
}

func (r *inMemoryRegister) Active(_ context.Context) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pieceID, r.set
}
