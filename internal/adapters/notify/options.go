// Package notify fans live tempo readings out to UI subscribers.
package notify

// Option applies a configuration option to the Hub.
type Option func(*Hub)

// WithBufferSize sets the channel buffer for each subscriber.
func WithBufferSize(size int) Option {
	return func(h *Hub) {
		if size > 0 {
			h.buffer = size
		}
	}
}
