// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/woodshed/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// CreateFullRegiment persists a regiment with the given piece names.
	CreateFullRegiment(ctx context.Context, pieceNames []string) (int64, error)

	// MarkActivePiece points telemetry logging at the given piece.
	MarkActivePiece(ctx context.Context, pieceID int64)

	// ActivePiece returns the currently active piece, if any.
	ActivePiece(ctx context.Context) (int64, bool)

	// PracticeHistory returns the full regiment tree, newest first.
	PracticeHistory(ctx context.Context) ([]types.Regiment, error)

	// SubscribeTempo attaches to the live tempo feed.
	SubscribeTempo() (<-chan types.Tempo, func())
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	regimentsHandler *RegimentsHandler
	activeHandler    *ActivePieceHandler
	historyHandler   *HistoryHandler
	liveHandler      *LiveHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		regimentsHandler: NewRegimentsHandler(deps),
		activeHandler:    NewActivePieceHandler(deps),
		historyHandler:   NewHistoryHandler(deps),
		liveHandler:      NewLiveHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/regiments", MetricsMiddleware(s.regimentsHandler.HandleRegiments, "regiments"))
	mux.HandleFunc("/active-piece", MetricsMiddleware(s.activeHandler.HandleActivePiece, "active-piece"))
	mux.HandleFunc("/history", MetricsMiddleware(s.historyHandler.HandleGetHistory, "history"))
	// Long-lived stream; latency metrics would only measure connection
	// lifetime, so it skips the middleware.
	mux.HandleFunc("/tempo/live", s.liveHandler.HandleLive)
}

type statusResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
