// Package notify fans live tempo readings out to UI subscribers.
package notify

import (
	"context"
	"sync"

	"github.com/okian/woodshed/internal/domain/types"
	"github.com/okian/woodshed/pkg/metrics"
)

// Default hub configuration constants.
const (
	defaultBufferSize = 16
)

// Hub broadcasts every parsed tempo reading to all current subscribers.
// Publishing never blocks: a subscriber that cannot keep up misses readings
// rather than stalling the telemetry loop.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan types.Tempo]struct{}
	buffer int
	closed bool
}

// NewHub creates a Hub with configuration options.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		subs:   make(map[chan types.Tempo]struct{}),
		buffer: defaultBufferSize,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Publish delivers the reading to every subscriber with channel space.
func (h *Hub) Publish(_ context.Context, t types.Tempo) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	for ch := range h.subs {
		select {
		case ch <- t:
		default:
		}
	}
	metrics.RecordTempoForwarded()
}

// Subscribe registers a new feed consumer. The returned cancel func must be
// called when the consumer goes away; the channel closes on cancel or when
// the hub shuts down.
func (h *Hub) Subscribe() (<-chan types.Tempo, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan types.Tempo, h.buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	metrics.UpdateLiveSubscribers(len(h.subs))

	return ch, func() { h.unsubscribe(ch) }
}

func (h *Hub) unsubscribe(ch chan types.Tempo) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[ch]; !ok {
		return
	}
	delete(h.subs, ch)
	close(ch)
	metrics.UpdateLiveSubscribers(len(h.subs))
}

// Close drops all subscribers and closes their channels.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		close(ch)
	}
	h.subs = make(map[chan types.Tempo]struct{})
	metrics.UpdateLiveSubscribers(0)
}
