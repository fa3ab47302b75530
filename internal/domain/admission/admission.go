// Package admission decides whether a tempo sample is worth persisting.
package admission

import (
	"context"
	"time"

	"github.com/okian/woodshed/internal/domain/model"
)

// defaultWindow bounds storage growth during a steady tempo to one sample
// per window.
const defaultWindow = 5 * time.Minute

// Policy decides whether an incoming tempo sample should be appended to a
// piece's log given the most recent stored sample.
type Policy interface {
	// Decide returns true when the sample must be persisted: the piece has
	// no history yet, the tempo changed, or the previous sample is older
	// than the admission window.
	Decide(ctx context.Context, bpm int, now time.Time, prev *model.Sample) bool
}

// changeOrWindowPolicy implements Policy with the change-or-window rule.
// There is no hysteresis beyond the window: a single-sample blip is logged
// immediately and permanently.
type changeOrWindowPolicy struct {
	window time.Duration
}

// New creates a Policy with configuration options.
func New(opts ...Option) Policy {
	p := &changeOrWindowPolicy{
		window: defaultWindow,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *changeOrWindowPolicy) Decide(_ context.Context, bpm int, now time.Time, prev *model.Sample) bool {
	if prev == nil {
		return true
	}
	if bpm != prev.BPM {
		return true
	}
	return now.Sub(prev.At) > p.window
}
