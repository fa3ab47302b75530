// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/woodshed/internal/adapters/mq/broker"
	"github.com/okian/woodshed/internal/adapters/mq/listener"
	"github.com/okian/woodshed/internal/adapters/notify"
	"github.com/okian/woodshed/internal/adapters/repository"
	"github.com/okian/woodshed/internal/domain/admission"
	"github.com/okian/woodshed/internal/domain/history"
	"github.com/okian/woodshed/internal/domain/register"
	"github.com/okian/woodshed/internal/domain/types"
	"github.com/okian/woodshed/pkg/logger"
	"github.com/okian/woodshed/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultDBPath    = "practice.db"
	defaultBrokerURL = "tcp://localhost:1883"
	defaultTopic     = "practice/tempo"
	defaultWindow    = 5 * time.Minute
	defaultHubBuffer = 16

	stopTimeout = 5 * time.Second
)

// ErrNotStarted reports a store-backed call made before Start opened the
// session store.
var ErrNotStarted = errors.New("service not started")

// Service implements the API dependencies for the practice tracker.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	sub      broker.Subscriber
	register register.Register
	policy   admission.Policy
	hub      *notify.Hub
	listener *listener.Listener

	// Configuration
	dbPath    string
	brokerURL string
	clientID  string
	topic     string
	window    time.Duration
	hubBuffer int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDBPath sets the SQLite database file path.
func WithDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dbPath = path
		}
	}
}

// WithBrokerURL sets the MQTT broker address.
func WithBrokerURL(url string) Option {
	return func(s *Service) {
		if url != "" {
			s.brokerURL = url
		}
	}
}

// WithClientID sets the MQTT client identifier.
func WithClientID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.clientID = id
		}
	}
}

// WithTopic sets the tempo telemetry topic.
func WithTopic(topic string) Option {
	return func(s *Service) {
		if topic != "" {
			s.topic = topic
		}
	}
}

// WithAdmissionWindow sets the interval after which an unchanged tempo is
// logged again.
func WithAdmissionWindow(window time.Duration) Option {
	return func(s *Service) {
		if window > 0 {
			s.window = window
		}
	}
}

// WithHubBuffer sets the per-subscriber live feed buffer size.
func WithHubBuffer(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.hubBuffer = size
		}
	}
}

// WithStore injects a pre-built session store, bypassing SQLite setup.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSubscriber injects a pre-built broker subscriber, bypassing the
// MQTT connection.
func WithSubscriber(sub broker.Subscriber) Option {
	return func(s *Service) {
		if sub != nil {
			s.sub = sub
		}
	}
}

// New constructs a new Service with default configuration. The register,
// admission policy and live feed hub exist from construction, so active-piece
// and live-feed calls work before Start; store-backed calls return
// ErrNotStarted until Start has opened the session store.
func New(opts ...Option) *Service {
	s := &Service{
		dbPath:    defaultDBPath,
		brokerURL: defaultBrokerURL,
		topic:     defaultTopic,
		window:    defaultWindow,
		hubBuffer: defaultHubBuffer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.register = register.New()
	s.policy = admission.New(admission.WithWindow(s.window))
	s.hub = notify.NewHub(notify.WithBufferSize(s.hubBuffer))

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting practice tracker service...")

	if s.store == nil {
		store, err := repository.NewSQLiteStore(s.dbPath)
		if err != nil {
			return fmt.Errorf("open session store: %w", err)
		}
		s.store = store
		s.logger.Info(ctx, "using sqlite store", logger.String("path", s.dbPath))
	}

	if s.sub == nil {
		brokerOpts := []broker.Option{broker.WithBrokerURL(s.brokerURL)}
		if s.clientID != "" {
			brokerOpts = append(brokerOpts, broker.WithClientID(s.clientID))
		}
		sub, err := broker.NewMQTTClient(brokerOpts...)
		if err != nil {
			return fmt.Errorf("connect to broker: %w", err)
		}
		s.sub = sub
		s.logger.Info(ctx, "connected to broker", logger.String("url", s.brokerURL))
	}

	s.listener = listener.New(s.sub, s.store, s.register, s.policy, s.hub,
		listener.WithTopic(s.topic),
		listener.WithLogger(s.logger.Named("listener")),
	)
	go func() {
		if err := s.listener.Run(ctx); err != nil {
			s.logger.Error(ctx, "telemetry listener failed", logger.Error(err))
		}
	}()

	s.started = true
	s.logger.Info(ctx, "practice tracker service started",
		logger.String("topic", s.topic),
		logger.String("admissionWindow", s.window.String()),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping practice tracker service...")

	// Closing the subscriber ends the listener's message channel, which
	// lets the loop drain in-flight work before exiting.
	if s.sub != nil {
		s.sub.Close()
	}
	if s.listener != nil {
		select {
		case <-s.listener.Done():
		case <-time.After(stopTimeout):
			s.logger.Warn(ctx, "telemetry listener did not stop in time")
		}
	}

	s.hub.Close()

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(ctx, "closing session store failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "practice tracker service stopped")
}

// CreateFullRegiment persists a regiment practiced now with one piece per
// name. All pieces land or none do.
func (s *Service) CreateFullRegiment(ctx context.Context, pieceNames []string) (int64, error) {
	store := s.sessionStore()
	if store == nil {
		return 0, fmt.Errorf("create regiment: %w", ErrNotStarted)
	}

	id, err := store.CreateRegiment(ctx, time.Now(), pieceNames)
	if err != nil {
		return 0, err
	}

	s.logger.Info(ctx, "created regiment",
		logger.Int64("regimentID", id),
		logger.Int("pieces", len(pieceNames)),
	)
	return id, nil
}

// MarkActivePiece points telemetry logging at the given piece.
func (s *Service) MarkActivePiece(ctx context.Context, pieceID int64) {
	s.register.SetActive(ctx, pieceID)
	metrics.UpdateActivePiece(true)

	s.logger.Info(ctx, "marked active piece", logger.Int64("pieceID", pieceID))
}

// ActivePiece returns the currently active piece, if any.
func (s *Service) ActivePiece(ctx context.Context) (int64, bool) {
	return s.register.Active(ctx)
}

// PracticeHistory returns the full regiment tree, newest regiment first.
func (s *Service) PracticeHistory(ctx context.Context) ([]types.Regiment, error) {
	store := s.sessionStore()
	if store == nil {
		return nil, fmt.Errorf("load practice history: %w", ErrNotStarted)
	}

	rows, err := store.FetchAllHierarchy(ctx)
	if err != nil {
		return nil, err
	}
	return history.Build(rows), nil
}

// sessionStore reads the store under the lock; it is nil until Start.
func (s *Service) sessionStore() repository.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// SubscribeTempo attaches to the live tempo feed.
func (s *Service) SubscribeTempo() (<-chan types.Tempo, func()) {
	return s.hub.Subscribe()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":         s.started,
		"topic":           s.topic,
		"admissionWindow": s.window.String(),
	}

	if id, ok := s.register.Active(ctx); ok {
		stats["activePieceID"] = id
		metrics.UpdateActivePiece(true)
	} else {
		metrics.UpdateActivePiece(false)
	}

	if s.store != nil {
		counts, err := s.store.Counts(ctx)
		if err != nil {
			s.logger.Warn(ctx, "reading store counts failed", logger.Error(err))
			return stats
		}

		stats["regiments"] = counts.Regiments
		stats["pieces"] = counts.Pieces
		stats["logEntries"] = counts.LogEntries

		// Update metrics
		metrics.UpdateRegimentsTotal(counts.Regiments)
		metrics.UpdatePiecesTotal(counts.Pieces)
		metrics.UpdateLogEntriesTotal(counts.LogEntries)
	}

	return stats
}
