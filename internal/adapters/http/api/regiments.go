// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// RegimentsHandler handles regiment creation requests.
type RegimentsHandler struct {
	deps Dependencies
}

// NewRegimentsHandler creates a new regiments handler.
func NewRegimentsHandler(deps Dependencies) *RegimentsHandler {
	return &RegimentsHandler{deps: deps}
}

// createRegimentRequest mirrors the POST /regiments body.
type createRegimentRequest struct {
	PieceNames []string `json:"piece_names"`
}

func (r createRegimentRequest) validate() error {
	if len(r.PieceNames) == 0 {
		return errors.New("missing piece_names")
	}
	for _, name := range r.PieceNames {
		if strings.TrimSpace(name) == "" {
			return errors.New("piece names must not be blank")
		}
	}
	return nil
}

type createRegimentResponse struct {
	RegimentID int64 `json:"regiment_id"`
}

// HandleRegiments handles POST /regiments requests.
func (h *RegimentsHandler) HandleRegiments(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_regiment"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req createRegimentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	id, err := h.deps.CreateFullRegiment(r.Context(), req.PieceNames)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "persistence", WrapKind(op, ErrPersistence, err))
		return
	}
	writeJSON(w, http.StatusCreated, createRegimentResponse{RegimentID: id})
}
