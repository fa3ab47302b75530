// Package admission decides whether a tempo sample is worth persisting.
package admission

import "time"

// Option applies a configuration option to the policy.
type Option func(*changeOrWindowPolicy)

// WithWindow sets how long an unchanged tempo may go unlogged before a
// fresh sample is persisted anyway.
func WithWindow(window time.Duration) Option {
	return func(p *changeOrWindowPolicy) {
		if window > 0 {
			p.window = window
		}
	}
}
