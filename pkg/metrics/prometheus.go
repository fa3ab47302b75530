// Package metrics provides Prometheus metrics for the woodshed practice
// tracker.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the woodshed service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	metricPrefix     string
	registry         prometheus.Registerer

	// Telemetry pipeline metrics
	telemetryReceived  prometheus.Counter
	telemetryDiscarded *prometheus.CounterVec
	telemetryIdle      prometheus.Counter
	tempoForwarded     prometheus.Counter
	listenerLatency    prometheus.Histogram

	// Admission outcome metrics
	logEntriesAdmitted   prometheus.Counter
	logEntriesSuppressed prometheus.Counter

	// Repository metrics
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram
	repositoryErrors        prometheus.Counter

	// Stored totals and state gauges
	regimentsTotal  prometheus.Gauge
	piecesTotal     prometheus.Gauge
	logEntriesTotal prometheus.Gauge
	activePiece     prometheus.Gauge
	liveSubscribers prometheus.Gauge

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error tracking
	errorsByComponent *prometheus.CounterVec

	// System performance metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "woodshed",
		subsystem:        "practice",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// GetRegistry returns the registry backing the global manager, for serving
// via promhttp.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

func (m *Manager) name(base string) string {
	if m.metricPrefix == "" {
		return base
	}
	return m.metricPrefix + "_" + base
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.telemetryReceived = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.name("telemetry_received_total"),
		Help:      "Tempo messages delivered by the subscription.",
	})
	m.telemetryDiscarded = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.name("telemetry_discarded_total"),
		Help:      "Tempo messages dropped before processing, by reason.",
	}, []string{"reason"})
	m.telemetryIdle = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.name("telemetry_idle_total"),
		Help:      "Tempo messages received while no piece was active.",
	})
	m.tempoForwarded = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.name("tempo_forwarded_total"),
		Help:      "Parsed tempo readings forwarded to the live feed.",
	})
	m.listenerLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.name("listener_processing_duration_ms"),
		Help:      "Per-message telemetry processing latency in milliseconds.",
		Buckets:   m.histogramBuckets,
	})

	m.logEntriesAdmitted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.name("log_entries_admitted_total"),
		Help:      "Tempo samples persisted by the admission policy.",
	})
	m.logEntriesSuppressed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.name("log_entries_suppressed_total"),
		Help:      "Tempo samples coalesced away by the admission policy.",
	})

	m.repositoryUpdateLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.name("repository_update_duration_ms"),
		Help:      "Write latency of the session store in milliseconds.",
		Buckets:   m.histogramBuckets,
	})
	m.repositoryQueryLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.name("repository_query_duration_ms"),
		Help:      "Read latency of the session store in milliseconds.",
		Buckets:   m.histogramBuckets,
	})
	m.repositoryErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.name("repository_errors_total"),
		Help:      "Session store operations that returned an error.",
	})

	m.regimentsTotal = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.name("regiments_total"),
		Help:      "Stored practice regiments.",
	})
	m.piecesTotal = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.name("pieces_total"),
		Help:      "Stored practice pieces.",
	})
	m.logEntriesTotal = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.name("log_entries_total"),
		Help:      "Stored tempo log entries.",
	})
	m.activePiece = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.name("active_piece"),
		Help:      "1 when a piece is marked active, 0 otherwise.",
	})
	m.liveSubscribers = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.name("live_subscribers"),
		Help:      "Connected live tempo feed subscribers.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.name("http_requests_total"),
		Help:      "HTTP requests by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.name("http_request_duration_ms"),
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.errorsByComponent = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.name("errors_total"),
		Help:      "Errors by component and reason.",
	}, []string{"component", "reason"})

	m.systemMemoryUsage = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.name("system_memory_bytes"),
		Help:      "Allocated heap bytes.",
	})
	m.systemGoroutineCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.name("system_goroutines"),
		Help:      "Current goroutine count.",
	})
	m.systemGCPauseTime = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      m.name("system_gc_pause_ms"),
		Help:      "Average GC pause time in milliseconds.",
		Buckets:   m.histogramBuckets,
	})
}

// Package-level helpers recording against the global manager.

func RecordTelemetryReceived() {
	if globalManager.enabled {
		globalManager.telemetryReceived.Inc()
	}
}

func RecordTelemetryDiscarded(reason string) {
	if globalManager.enabled {
		globalManager.telemetryDiscarded.WithLabelValues(reason).Inc()
	}
}

func RecordTelemetryIdle() {
	if globalManager.enabled {
		globalManager.telemetryIdle.Inc()
	}
}

func RecordTempoForwarded() {
	if globalManager.enabled {
		globalManager.tempoForwarded.Inc()
	}
}

func RecordListenerLatency(ms float64) {
	if globalManager.enabled {
		globalManager.listenerLatency.Observe(ms)
	}
}

func RecordLogEntryAdmitted() {
	if globalManager.enabled {
		globalManager.logEntriesAdmitted.Inc()
	}
}

func RecordLogEntrySuppressed() {
	if globalManager.enabled {
		globalManager.logEntriesSuppressed.Inc()
	}
}

func RecordRepositoryUpdateLatency(ms float64) {
	if globalManager.enabled {
		globalManager.repositoryUpdateLatency.Observe(ms)
	}
}

func RecordRepositoryQueryLatency(ms float64) {
	if globalManager.enabled {
		globalManager.repositoryQueryLatency.Observe(ms)
	}
}

func RecordRepositoryError() {
	if globalManager.enabled {
		globalManager.repositoryErrors.Inc()
	}
}

func UpdateRegimentsTotal(n int) {
	if globalManager.enabled {
		globalManager.regimentsTotal.Set(float64(n))
	}
}

func UpdatePiecesTotal(n int) {
	if globalManager.enabled {
		globalManager.piecesTotal.Set(float64(n))
	}
}

func UpdateLogEntriesTotal(n int) {
	if globalManager.enabled {
		globalManager.logEntriesTotal.Set(float64(n))
	}
}

func UpdateActivePiece(set bool) {
	if !globalManager.enabled {
		return
	}
	if set {
		globalManager.activePiece.Set(1)
	} else {
		globalManager.activePiece.Set(0)
	}
}

func UpdateLiveSubscribers(n int) {
	if globalManager.enabled {
		globalManager.liveSubscribers.Set(float64(n))
	}
}

func RecordHTTPRequest(endpoint, method, status string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
	}
}

func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
	}
}

func RecordErrorByComponent(component, reason string) {
	if globalManager.enabled {
		globalManager.errorsByComponent.WithLabelValues(component, reason).Inc()
	}
}

func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

func UpdateSystemGoroutineCount(n int) {
	if globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(n))
	}
}

func RecordSystemGCPauseTime(ms float64) {
	if globalManager.enabled {
		globalManager.systemGCPauseTime.Observe(ms)
	}
}
