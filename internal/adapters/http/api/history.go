// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/okian/woodshed/internal/domain/types"
)

// HistoryHandler handles practice history requests.
type HistoryHandler struct {
	deps Dependencies
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps Dependencies) *HistoryHandler {
	return &HistoryHandler{deps: deps}
}

type historyResponse struct {
	Regiments []types.Regiment `json:"regiments"`
}

// HandleGetHistory handles GET /history requests.
func (h *HistoryHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_history"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	regiments, err := h.deps.PracticeHistory(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "persistence", WrapKind(op, ErrPersistence, err))
		return
	}
	if regiments == nil {
		regiments = []types.Regiment{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Regiments: regiments})
}
