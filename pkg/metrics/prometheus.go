// Package metrics provides Prometheus metrics for the scout similarity service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Search outcome label values.
const (
	OutcomeOK         = "ok"
	OutcomeNotFound   = "not_found"
	OutcomeEmptyPool  = "empty_pool"
	OutcomeValidation = "validation"
	OutcomeError      = "error"
)

// Manager manages all Prometheus metrics for the scout service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Search
	searches          *prometheus.CounterVec
	searchLatency     prometheus.Histogram
	searchPoolSize    prometheus.Histogram
	searchResultCount prometheus.Histogram

	// Dataset
	datasetRows          prometheus.Gauge
	datasetRowsRejected  prometheus.Gauge
	datasetLeagues       prometheus.Gauge
	datasetReloads       *prometheus.CounterVec
	datasetReloadLatency prometheus.Histogram
	datasetLastLoadUnix  prometheus.Gauge

	// Reload queue and worker
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueErrors prometheus.Counter
	reloadsDeduped     prometheus.Counter
	workerErrors       prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
	errorRateByType     *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager registered on the configured registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "scout",
		subsystem:        "similarity",
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

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels, Buckets: buckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of collectors
	auto := promauto.With(m.registry)
	sizeBuckets := prometheus.ExponentialBuckets(1, 4, 10)

	m.searches = auto.NewCounterVec(m.counterOpts("searches_total",
		"Total similarity searches by outcome"), []string{"outcome"})
	m.searchLatency = auto.NewHistogram(m.histogramOpts("search_latency_milliseconds",
		"Similarity search latency in milliseconds", m.histogramBuckets))
	m.searchPoolSize = auto.NewHistogram(m.histogramOpts("search_pool_size",
		"Candidate pool size after filtering", sizeBuckets))
	m.searchResultCount = auto.NewHistogram(m.histogramOpts("search_result_count",
		"Number of matches returned per search", prometheus.LinearBuckets(0, 5, 11)))

	m.datasetRows = auto.NewGauge(m.gaugeOpts("dataset_rows",
		"Players in the active snapshot"))
	m.datasetRowsRejected = auto.NewGauge(m.gaugeOpts("dataset_rows_rejected",
		"Rows rejected for missing or non-finite values in the last load"))
	m.datasetLeagues = auto.NewGauge(m.gaugeOpts("dataset_leagues",
		"Distinct leagues in the active snapshot"))
	m.datasetReloads = auto.NewCounterVec(m.counterOpts("dataset_reloads_total",
		"Dataset loads by result"), []string{"result"})
	m.datasetReloadLatency = auto.NewHistogram(m.histogramOpts("dataset_reload_duration_milliseconds",
		"Time to load a dataset and build its snapshot", m.histogramBuckets))
	m.datasetLastLoadUnix = auto.NewGauge(m.gaugeOpts("dataset_last_load_unix",
		"Unix timestamp of the last successful snapshot swap"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("reload_queue_size",
		"Pending reload requests"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("reload_queue_capacity",
		"Reload queue capacity"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("reload_queue_enqueue_errors_total",
		"Reload requests rejected by the queue"))
	m.reloadsDeduped = auto.NewCounter(m.counterOpts("reload_requests_deduplicated_total",
		"Reload requests dropped as duplicates"))
	m.workerErrors = auto.NewCounter(m.counterOpts("reload_worker_errors_total",
		"Reload worker failures"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total",
		"Total number of errors by endpoint"), []string{"endpoint", "method", "error_type"})
	m.errorRateByType = auto.NewCounterVec(m.counterOpts("errors_by_type_total",
		"Total number of errors by type"), []string{"error_type", "severity"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes",
		"System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count",
		"Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_time_milliseconds",
		"GC pause time in milliseconds", []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordSearch counts a search by outcome and observes its latency.
func RecordSearch(outcome string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.searches.WithLabelValues(outcome).Inc()
	globalManager.searchLatency.Observe(latencyMs)
}

// RecordSearchPool observes the candidate pool size and the returned match count.
func RecordSearchPool(poolSize, results int) {
	globalManager.searchPoolSize.Observe(float64(poolSize))
	globalManager.searchResultCount.Observe(float64(results))
}

// UpdateDataset publishes the shape of the active snapshot.
func UpdateDataset(rows, rejected, leagues int) {
	globalManager.datasetRows.Set(float64(rows))
	globalManager.datasetRowsRejected.Set(float64(rejected))
	globalManager.datasetLeagues.Set(float64(leagues))
}

// RecordDatasetLoad records a dataset load attempt.
func RecordDatasetLoad(ok bool, latencyMs float64) {
	result := "success"
	if !ok {
		result = "failure"
	}
	globalManager.datasetReloads.WithLabelValues(result).Inc()
	globalManager.datasetReloadLatency.Observe(latencyMs)
	if ok {
		globalManager.datasetLastLoadUnix.Set(float64(time.Now().Unix()))
	}
}

// UpdateQueueSize sets the pending reload request count.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the reload queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueueError counts a rejected reload request.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordReloadDeduplicated counts a dropped duplicate reload request.
func RecordReloadDeduplicated() {
	globalManager.reloadsDeduped.Inc()
}

// RecordWorkerError counts a failed reload.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
