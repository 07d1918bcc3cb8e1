// Package metrics provides Prometheus metrics for the parley scoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the parley service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Report metrics
	reportsBuilt       prometheus.Counter
	reportBuildLatency prometheus.Histogram
	reportErrors       *prometheus.CounterVec
	teamOutcomes       *prometheus.CounterVec
	leaderboardsBuilt  prometheus.Counter

	// Score range metrics
	rangeCacheHits    prometheus.Counter
	rangeCacheMisses  prometheus.Counter
	rangeCacheSize    prometheus.Gauge
	rangeComputations prometheus.Counter
	rangeErrors       prometheus.Counter
	rangeAssignments  prometheus.Histogram

	// Store metrics
	storeFetchLatency *prometheus.HistogramVec
	storeFetchErrors  *prometheus.CounterVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "parley",
		subsystem:        "scoring",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.customLabels)

	m.reportsBuilt = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("reports_built_total"),
		Help: "Total number of round reports derived",
	})
	m.reportBuildLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name:    m.name("report_build_latency_milliseconds"),
		Help:    "Time to fetch and score one round report in milliseconds",
		Buckets: m.histogramBuckets,
	})
	m.reportErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("report_errors_total"),
		Help: "Report requests that failed, by reason",
	}, []string{"reason"})
	m.teamOutcomes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("team_outcomes_total"),
		Help: "Per-team placements produced, by placement class",
	}, []string{"class"})
	m.leaderboardsBuilt = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("leaderboards_built_total"),
		Help: "Total number of event leaderboards derived",
	})

	m.rangeCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("range_cache_hits_total"),
		Help: "Score range lookups served from cache",
	})
	m.rangeCacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("range_cache_misses_total"),
		Help: "Score range lookups that required computation",
	})
	m.rangeCacheSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("range_cache_size"),
		Help: "Number of cases with a cached score range",
	})
	m.rangeComputations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("range_computations_total"),
		Help: "Exhaustive score range searches performed",
	})
	m.rangeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("range_errors_total"),
		Help: "Score range searches that surfaced a case configuration error",
	})
	m.rangeAssignments = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name:    m.name("range_assignments"),
		Help:    "Parameter assignments evaluated per score range search",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	m.storeFetchLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name:    m.name("store_fetch_latency_milliseconds"),
		Help:    "Document store read latency in milliseconds, by operation",
		Buckets: m.histogramBuckets,
	}, []string{"operation"})
	m.storeFetchErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("store_fetch_errors_total"),
		Help: "Document store reads that failed, by operation",
	}, []string{"operation"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("http_requests_total"),
		Help: "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name:    m.name("http_request_duration_milliseconds"),
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("errors_by_component_total"),
		Help: "Errors by component and error type",
	}, []string{"component", "error_type"})
	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: constLabels,
		Name: m.name("errors_by_endpoint_total"),
		Help: "Errors by endpoint, method and error type",
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system", ConstLabels: constLabels,
		Name: m.name("memory_usage_bytes"),
		Help: "Heap bytes allocated and still in use",
	})
	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system", ConstLabels: constLabels,
		Name: m.name("goroutines"),
		Help: "Number of running goroutines",
	})
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "system", ConstLabels: constLabels,
		Name:    m.name("gc_pause_milliseconds"),
		Help:    "Average GC pause time in milliseconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})
}

// RecordReportBuilt records a derived report and its build latency.
func RecordReportBuilt(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.reportsBuilt.Inc()
	globalManager.reportBuildLatency.Observe(latencyMs)
}

// RecordReportError records a failed report request.
func RecordReportError(reason string) {
	globalManager.reportErrors.WithLabelValues(reason).Inc()
}

// RecordTeamOutcome records one team placement by class.
func RecordTeamOutcome(class string) {
	globalManager.teamOutcomes.WithLabelValues(class).Inc()
}

// RecordLeaderboardBuilt records a derived event leaderboard.
func RecordLeaderboardBuilt() {
	globalManager.leaderboardsBuilt.Inc()
}

// RecordRangeCacheHit records a score range served from cache.
func RecordRangeCacheHit() {
	globalManager.rangeCacheHits.Inc()
}

// RecordRangeCacheMiss records a score range cache miss.
func RecordRangeCacheMiss() {
	globalManager.rangeCacheMisses.Inc()
}

// UpdateRangeCacheSize sets the number of cached score ranges.
func UpdateRangeCacheSize(size int) {
	globalManager.rangeCacheSize.Set(float64(size))
}

// RecordRangeComputation records one exhaustive search and its domain size.
func RecordRangeComputation(assignments int) {
	globalManager.rangeComputations.Inc()
	globalManager.rangeAssignments.Observe(float64(assignments))
}

// RecordRangeError records a case configuration error surfaced by the range search.
func RecordRangeError() {
	globalManager.rangeErrors.Inc()
}

// RecordStoreFetch records the latency of a document store read.
func RecordStoreFetch(operation string, latencyMs float64, err error) {
	globalManager.storeFetchLatency.WithLabelValues(operation).Observe(latencyMs)
	if err != nil {
		globalManager.storeFetchErrors.WithLabelValues(operation).Inc()
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records errors by component and type.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records errors by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the allocated heap size.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(n int) {
	globalManager.systemGoroutineCount.Set(float64(n))
}

// RecordSystemGCPauseTime records the average GC pause.
func RecordSystemGCPauseTime(ms float64) {
	globalManager.systemGCPauseTime.Observe(ms)
}

// GetRegistry returns the custom registry holding every parley metric.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
