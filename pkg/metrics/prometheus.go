// Package metrics provides Prometheus metrics for the BGX dashboard service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultNamespace       = "bgx"
	defaultSubsystem       = "dashboard"
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the dashboard.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Leaderboard metrics
	leaderboardProjections *prometheus.CounterVec
	rowsSkipped            *prometheus.CounterVec
	sourceCacheHits        prometheus.Counter
	sourceCacheMisses      prometheus.Counter
	sourceLoadLatency      prometheus.Histogram

	// Visit tracking metrics
	visitsTracked      *prometheus.CounterVec
	visitsDuplicate    prometheus.Counter
	visitsDropped      prometheus.Counter
	storeAppendLatency prometheus.Histogram
	storeErrors        *prometheus.CounterVec
	analyticsRuns      prometheus.Counter
	analyticsEvents    prometheus.Gauge

	// Queue and worker metrics
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	workerCount   prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        defaultNamespace,
		subsystem:        defaultSubsystem,
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for all metric definitions
	auto := promauto.With(m.registry)

	m.leaderboardProjections = auto.NewCounterVec(
		m.counterOpts("leaderboard_projections_total", "Leaderboard views projected, by category and outcome"),
		[]string{"category", "outcome"},
	)
	m.rowsSkipped = auto.NewCounterVec(
		m.counterOpts("result_rows_skipped_total", "Malformed result rows skipped while building a category"),
		[]string{"category"},
	)
	m.sourceCacheHits = auto.NewCounter(m.counterOpts("source_cache_hits_total", "Category row loads served from cache"))
	m.sourceCacheMisses = auto.NewCounter(m.counterOpts("source_cache_misses_total", "Category row loads that read the CSV file"))
	m.sourceLoadLatency = auto.NewHistogram(m.histogramOpts("source_load_latency_milliseconds", "CSV category load latency in milliseconds"))

	m.visitsTracked = auto.NewCounterVec(
		m.counterOpts("visits_tracked_total", "Page views accepted for recording, by page and device"),
		[]string{"page", "device"},
	)
	m.visitsDuplicate = auto.NewCounter(m.counterOpts("visits_duplicate_total", "Page views rejected as duplicates of a known visit id"))
	m.visitsDropped = auto.NewCounter(m.counterOpts("visits_dropped_total", "Page views dropped because the append queue was full"))
	m.storeAppendLatency = auto.NewHistogram(m.histogramOpts("visit_store_append_latency_milliseconds", "Visit store append latency in milliseconds"))
	m.storeErrors = auto.NewCounterVec(
		m.counterOpts("visit_store_errors_total", "Visit store failures by operation"),
		[]string{"operation"},
	)
	m.analyticsRuns = auto.NewCounter(m.counterOpts("analytics_aggregations_total", "Visit analytics aggregations computed"))
	m.analyticsEvents = auto.NewGauge(m.gaugeOpts("analytics_events", "Visit events in the latest aggregated snapshot"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Current size of the visit append queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Capacity of the visit append queue"))
	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Number of visit append workers"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status code"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpErrors = auto.NewCounterVec(
		m.counterOpts("http_errors_total", "HTTP error responses by endpoint and error type"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Number of goroutines"))
}

// RecordLeaderboardProjection counts a projected leaderboard; outcome is "ok" or "empty".
func RecordLeaderboardProjection(category, outcome string) {
	if globalManager.enabled {
		globalManager.leaderboardProjections.WithLabelValues(category, outcome).Inc()
	}
}

// RecordRowsSkipped adds skipped malformed rows for a category.
func RecordRowsSkipped(category string, n int) {
	if globalManager.enabled && n > 0 {
		globalManager.rowsSkipped.WithLabelValues(category).Add(float64(n))
	}
}

// RecordSourceCacheHit counts a category load served from cache.
func RecordSourceCacheHit() {
	if globalManager.enabled {
		globalManager.sourceCacheHits.Inc()
	}
}

// RecordSourceCacheMiss counts a category load that touched disk.
func RecordSourceCacheMiss() {
	if globalManager.enabled {
		globalManager.sourceCacheMisses.Inc()
	}
}

// RecordSourceLoadLatency observes a CSV load duration.
func RecordSourceLoadLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.sourceLoadLatency.Observe(latencyMs)
	}
}

// RecordVisitTracked counts an accepted page view.
func RecordVisitTracked(page, device string) {
	if globalManager.enabled {
		globalManager.visitsTracked.WithLabelValues(page, device).Inc()
	}
}

// RecordVisitDuplicate counts a deduplicated page view.
func RecordVisitDuplicate() {
	if globalManager.enabled {
		globalManager.visitsDuplicate.Inc()
	}
}

// RecordVisitDropped counts a page view lost to backpressure.
func RecordVisitDropped() {
	if globalManager.enabled {
		globalManager.visitsDropped.Inc()
	}
}

// RecordStoreAppendLatency observes a visit store append duration.
func RecordStoreAppendLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.storeAppendLatency.Observe(latencyMs)
	}
}

// RecordStoreError counts a visit store failure for the given operation.
func RecordStoreError(operation string) {
	if globalManager.enabled {
		globalManager.storeErrors.WithLabelValues(operation).Inc()
	}
}

// RecordAnalytics counts an aggregation over a snapshot of n events.
func RecordAnalytics(n int) {
	if globalManager.enabled {
		globalManager.analyticsRuns.Inc()
		globalManager.analyticsEvents.Set(float64(n))
	}
}

// UpdateQueueSize sets the current visit queue length.
func UpdateQueueSize(size int) {
	if globalManager.enabled {
		globalManager.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the visit queue capacity.
func UpdateQueueCapacity(capacity int) {
	if globalManager.enabled {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

// UpdateWorkerCount sets the number of append workers.
func UpdateWorkerCount(count int) {
	if globalManager.enabled {
		globalManager.workerCount.Set(float64(count))
	}
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration observes an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// RecordHTTPError counts an HTTP error response.
func RecordHTTPError(endpoint, method, errorType string) {
	if globalManager.enabled {
		globalManager.httpErrors.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// UpdateSystemMemoryUsage sets the allocated heap bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	if globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// GetRegistry returns the custom registry used for metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RefreshInterval reports how often periodic gauges should be refreshed.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}
