// Package listener runs the telemetry loop that turns tempo messages into
// sparse per-piece practice history.
package listener

import (
	"time"

	"github.com/okian/woodshed/pkg/logger"
)

// Option applies a configuration option to the Listener.
type Option func(*Listener)

// WithTopic sets the subscribed tempo topic.
func WithTopic(topic string) Option {
	return func(l *Listener) {
		if topic != "" {
			l.topic = topic
		}
	}
}

// WithLogger sets a custom logger for the listener.
func WithLogger(logger logger.Logger) Option {
	return func(l *Listener) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Listener) {
		if now != nil {
			l.now = now
		}
	}
}
