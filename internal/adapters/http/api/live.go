// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okian/woodshed/pkg/logger"
	"github.com/okian/woodshed/pkg/metrics"
)

// LiveHandler streams tempo readings over server-sent events.
type LiveHandler struct {
	deps Dependencies
}

// NewLiveHandler creates a new live tempo handler.
func NewLiveHandler(deps Dependencies) *LiveHandler {
	return &LiveHandler{deps: deps}
}

// HandleLive handles GET /tempo/live requests. The connection stays open
// until the client disconnects or the feed is closed.
func (h *LiveHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	const op = "api.tempo_live"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		metrics.RecordErrorByComponent("api", "streaming_unsupported")
		writeError(w, http.StatusInternalServerError, "streaming", NewKind(op, ErrStreaming))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	feed, cancel := h.deps.SubscribeTempo()
	defer cancel()

	log := logger.Get().Named("api")
	for {
		select {
		case <-r.Context().Done():
			return
		case tempo, open := <-feed:
			if !open {
				return
			}
			payload, err := json.Marshal(tempo)
			if err != nil {
				log.Warn(r.Context(), "failed to encode tempo event", logger.Error(err))
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
