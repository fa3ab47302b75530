// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ActivePieceHandler handles the active-piece register endpoints.
type ActivePieceHandler struct {
	deps Dependencies
}

// NewActivePieceHandler creates a new active-piece handler.
func NewActivePieceHandler(deps Dependencies) *ActivePieceHandler {
	return &ActivePieceHandler{deps: deps}
}

// activePieceRequest mirrors the PUT /active-piece body.
type activePieceRequest struct {
	PieceID int64 `json:"piece_id"`
}

// activePieceResponse carries a null piece_id when nothing is active.
type activePieceResponse struct {
	PieceID *int64 `json:"piece_id"`
}

// HandleActivePiece handles PUT and GET /active-piece requests.
func (h *ActivePieceHandler) HandleActivePiece(w http.ResponseWriter, r *http.Request) {
	const op = "api.active_piece"
	switch r.Method {
	case http.MethodPut:
		var req activePieceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if req.PieceID <= 0 {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("piece_id must be positive")))
			return
		}
		h.deps.MarkActivePiece(r.Context(), req.PieceID)
		writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})

	case http.MethodGet:
		resp := activePieceResponse{}
		if id, ok := h.deps.ActivePiece(r.Context()); ok {
			resp.PieceID = &id
		}
		writeJSON(w, http.StatusOK, resp)

	default:
		http.NotFound(w, r)
	}
}
