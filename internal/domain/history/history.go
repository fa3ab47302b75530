// Package history rebuilds the regiment hierarchy from flat query rows.
package history

import (
	"time"

	"github.com/okian/woodshed/internal/domain/model"
	"github.com/okian/woodshed/internal/domain/types"
)

// Build folds the outer-joined rows into the regiment -> piece -> log entry
// tree. Regiment output order follows first appearance, which the store's
// query makes newest-first. A regiment with no pieces and a piece with no
// entries come back with empty slices, not nil.
func Build(rows []model.Row) []types.Regiment {
	index := make(map[int64]int, len(rows))
	regiments := make([]types.Regiment, 0, len(rows))

	for _, row := range rows {
		i, ok := index[row.RegimentID]
		if !ok {
			i = len(regiments)
			index[row.RegimentID] = i
			regiments = append(regiments, types.Regiment{
				ID:          row.RegimentID,
				PracticedAt: row.PracticedAt,
				Pieces:      []types.Piece{},
			})
		}

		// A row without a piece id contributes only the regiment shell.
		if row.PieceID == nil {
			continue
		}
		piece := findOrCreatePiece(&regiments[i], *row.PieceID, stringOrEmpty(row.PieceName))

		if row.LogID == nil {
			continue
		}
		piece.Entries = append(piece.Entries, types.LogEntry{
			ID:       *row.LogID,
			BPM:      intOrZero(row.BPM),
			LoggedAt: timeOrZero(row.LoggedAt),
		})
	}

	return regiments
}

// findOrCreatePiece scans the regiment's pieces for id. Piece counts per
// regiment are small, so a linear scan beats a second index.
func findOrCreatePiece(reg *types.Regiment, id int64, name string) *types.Piece {
	for i := range reg.Pieces {
		if reg.Pieces[i].ID == id {
			return &reg.Pieces[i]
		}
	}
	reg.Pieces = append(reg.Pieces, types.Piece{
		ID:      id,
		Name:    name,
		Entries: []types.LogEntry{},
	})
	return &reg.Pieces[len(reg.Pieces)-1]
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
