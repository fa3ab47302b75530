// Package listener runs the telemetry loop that turns tempo messages into
// sparse per-piece practice history.
package listener

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/okian/woodshed/internal/adapters/mq/broker"
	"github.com/okian/woodshed/internal/domain/model"
	"github.com/okian/woodshed/internal/domain/types"
	"github.com/okian/woodshed/pkg/logger"
	"github.com/okian/woodshed/pkg/metrics"
)

// Default listener configuration constants.
const (
	defaultTopic = "practice/tempo"
	maxBPM       = 1000 // upper bound on a plausible tempo reading
)

// Store is the slice of the session store the listener needs.
type Store interface {
	LatestLogEntry(ctx context.Context, pieceID int64) (*model.Sample, error)
	AppendLogEntry(ctx context.Context, pieceID int64, bpm int, loggedAt time.Time) (int64, error)
}

// Register reads the currently active piece.
type Register interface {
	Active(ctx context.Context) (int64, bool)
}

// Policy decides whether a sample is persisted.
type Policy interface {
	Decide(ctx context.Context, bpm int, now time.Time, prev *model.Sample) bool
}

// Notifier receives every successfully parsed reading for the UI feed.
type Notifier interface {
	Publish(ctx context.Context, t types.Tempo)
}

// Listener subscribes to the tempo topic and processes messages one at a
// time in delivery order. Per-message failures are logged and dropped; only
// a failed subscription or a closed connection ends the component.
type Listener struct {
	sub      broker.Subscriber
	store    Store
	register Register
	policy   Policy
	notifier Notifier

	topic string
	now   func() time.Time
	done  chan struct{}

	logger logger.Logger
}

// New creates a Listener with configuration options.
func New(sub broker.Subscriber, store Store, register Register, policy Policy, notifier Notifier, opts ...Option) *Listener {
	l := &Listener{
		sub:      sub,
		store:    store,
		register: register,
		policy:   policy,
		notifier: notifier,
		topic:    defaultTopic,
		now:      time.Now,
		done:     make(chan struct{}),
		logger:   logger.Get().Named("listener"),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Run subscribes and processes messages until the subscription channel
// closes or ctx is canceled. A subscription failure is returned to the
// caller: it is an unrecoverable setup error for this component.
func (l *Listener) Run(ctx context.Context) error {
	defer close(l.done)

	msgs, err := l.sub.Subscribe(ctx, l.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", l.topic, err)
	}
	l.logger.Info(ctx, "subscribed to tempo topic", logger.String("topic", l.topic))

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				l.logger.Info(ctx, "tempo subscription ended")
				return nil
			}
			l.process(ctx, msg)
		}
	}
}

// Done is closed once the listener loop has exited.
func (l *Listener) Done() <-chan struct{} {
	return l.done
}

// process handles one message end to end.
func (l *Listener) process(ctx context.Context, msg broker.Message) {
	start := time.Now()
	defer func() {
		metrics.RecordListenerLatency(float64(time.Since(start).Milliseconds()))
	}()
	metrics.RecordTelemetryReceived()

	bpm, ok := l.parseBPM(ctx, msg.Payload)
	if !ok {
		return
	}

	now := l.now()

	// The UI feed gets every parsed reading, persisted or not.
	l.notifier.Publish(ctx, types.Tempo{BPM: bpm, At: now})

	pieceID, active := l.register.Active(ctx)
	if !active {
		metrics.RecordTelemetryIdle()
		return
	}

	prev, err := l.store.LatestLogEntry(ctx, pieceID)
	if err != nil {
		metrics.RecordErrorByComponent("listener", "latest_entry")
		l.logger.Error(ctx, "reading latest log entry failed",
			logger.Int64("pieceID", pieceID),
			logger.Error(err),
		)
		return
	}

	if !l.policy.Decide(ctx, bpm, now, prev) {
		metrics.RecordLogEntrySuppressed()
		return
	}

	if _, err := l.store.AppendLogEntry(ctx, pieceID, bpm, now); err != nil {
		metrics.RecordErrorByComponent("listener", "append_entry")
		l.logger.Error(ctx, "appending log entry failed",
			logger.Int64("pieceID", pieceID),
			logger.Int("bpm", bpm),
			logger.Error(err),
		)
		return
	}
	metrics.RecordLogEntryAdmitted()
	l.logger.Debug(ctx, "logged tempo sample",
		logger.Int64("pieceID", pieceID),
		logger.Int("bpm", bpm),
	)
}

// parseBPM decodes the payload as a decimal tempo and coerces it to the
// canonical integer BPM. Devices send either integer or floating point
// text; fractional readings round half away from zero.
func (l *Listener) parseBPM(ctx context.Context, payload []byte) (int, bool) {
	if !utf8.Valid(payload) {
		metrics.RecordTelemetryDiscarded("not_utf8")
		l.logger.Warn(ctx, "discarding non-text tempo payload", logger.Int("bytes", len(payload)))
		return 0, false
	}

	text := strings.TrimSpace(string(payload))
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		metrics.RecordTelemetryDiscarded("not_numeric")
		l.logger.Warn(ctx, "discarding unparsable tempo payload", logger.String("payload", text))
		return 0, false
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 || value > maxBPM {
		metrics.RecordTelemetryDiscarded("out_of_range")
		l.logger.Warn(ctx, "discarding out-of-range tempo", logger.Float64("value", value))
		return 0, false
	}

	return int(math.Round(value)), true
}
