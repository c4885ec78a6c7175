// Package metrics provides Prometheus metrics for the mitigation planner.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Engine
	availabilityChecks *prometheus.CounterVec
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	cacheInvalidations prometheus.Counter
	cacheEntries       prometheus.Gauge
	skippedAssignments *prometheus.CounterVec

	// Optimistic coordination
	pendingMarkers     prometheus.Gauge
	optimisticOutcomes *prometheus.CounterVec

	// Remote snapshots
	snapshots             *prometheus.CounterVec
	snapshotQueueSize     prometheus.Gauge
	snapshotQueueCapacity prometheus.Gauge
	snapshotApplyLatency  prometheus.Histogram

	// Assignment store
	storeMutations   *prometheus.CounterVec
	storeAssignments prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "mitiplan",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
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
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.availabilityChecks = auto.NewCounterVec(
		m.counterOpts("availability_checks_total", "Availability evaluations by outcome reason"),
		[]string{"reason"},
	)
	m.cacheHits = auto.NewCounter(m.counterOpts("cache_hits_total", "Availability queries served from cache"))
	m.cacheMisses = auto.NewCounter(m.counterOpts("cache_misses_total", "Availability queries computed"))
	m.cacheInvalidations = auto.NewCounter(m.counterOpts("cache_invalidations_total", "Full cache drops caused by state updates"))
	m.cacheEntries = auto.NewGauge(m.gaugeOpts("cache_entries", "Cached availability results"))
	m.skippedAssignments = auto.NewCounterVec(
		m.counterOpts("skipped_assignments_total", "Assignments ignored because they reference unknown data"),
		[]string{"problem"},
	)

	m.pendingMarkers = auto.NewGauge(m.gaugeOpts("pending_markers", "Unconfirmed optimistic assignments"))
	m.optimisticOutcomes = auto.NewCounterVec(
		m.counterOpts("optimistic_outcomes_total", "Add-mitigation attempts by outcome"),
		[]string{"outcome"},
	)

	m.snapshots = auto.NewCounterVec(
		m.counterOpts("snapshots_total", "Inbound snapshots by reconcile outcome"),
		[]string{"outcome"},
	)
	m.snapshotQueueSize = auto.NewGauge(m.gaugeOpts("snapshot_queue_size", "Inbound snapshots waiting to be applied"))
	m.snapshotQueueCapacity = auto.NewGauge(m.gaugeOpts("snapshot_queue_capacity", "Inbound snapshot queue capacity"))
	m.snapshotApplyLatency = auto.NewHistogram(
		m.histogramOpts("snapshot_apply_latency_milliseconds", "Time to reconcile and apply one inbound snapshot"),
	)

	m.storeMutations = auto.NewCounterVec(
		m.counterOpts("store_mutations_total", "Assignment store writes by operation"),
		[]string{"op"},
	)
	m.storeAssignments = auto.NewGauge(m.gaugeOpts("store_assignments", "Assignments held by the store"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewGauge(m.gaugeOpts("system_gc_pause_milliseconds", "Average GC pause in milliseconds"))
}

// RecordAvailabilityCheck counts one computed availability result.
// An empty reason is recorded as "available".
func RecordAvailabilityCheck(reason string) {
	if reason == "" {
		reason = "available"
	}
	globalManager.availabilityChecks.WithLabelValues(reason).Inc()
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// RecordCacheInvalidation increments the invalidation counter and zeroes the entry gauge.
func RecordCacheInvalidation() {
	globalManager.cacheInvalidations.Inc()
	globalManager.cacheEntries.Set(0)
}

// UpdateCacheEntries sets the cached result gauge.
func UpdateCacheEntries(n int) {
	globalManager.cacheEntries.Set(float64(n))
}

// RecordSkippedAssignment counts an assignment ignored for problem.
func RecordSkippedAssignment(problem string) {
	globalManager.skippedAssignments.WithLabelValues(problem).Inc()
}

// UpdatePendingMarkers sets the pending marker gauge.
func UpdatePendingMarkers(n int) {
	globalManager.pendingMarkers.Set(float64(n))
}

// RecordOptimisticOutcome counts one add-mitigation attempt.
func RecordOptimisticOutcome(outcome string) {
	globalManager.optimisticOutcomes.WithLabelValues(outcome).Inc()
}

// RecordSnapshot counts one inbound snapshot.
func RecordSnapshot(outcome string) {
	globalManager.snapshots.WithLabelValues(outcome).Inc()
}

// UpdateSnapshotQueueSize sets the queued snapshot gauge.
func UpdateSnapshotQueueSize(n int) {
	globalManager.snapshotQueueSize.Set(float64(n))
}

// UpdateSnapshotQueueCapacity sets the queue capacity gauge.
func UpdateSnapshotQueueCapacity(n int) {
	globalManager.snapshotQueueCapacity.Set(float64(n))
}

// RecordSnapshotApplyLatency records the apply latency in milliseconds.
func RecordSnapshotApplyLatency(latencyMs float64) {
	globalManager.snapshotApplyLatency.Observe(latencyMs)
}

// RecordStoreMutation counts one store write.
func RecordStoreMutation(op string) {
	globalManager.storeMutations.WithLabelValues(op).Inc()
}

// UpdateStoreAssignments sets the stored assignment gauge.
func UpdateStoreAssignments(n int) {
	globalManager.storeAssignments.Set(float64(n))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime sets the average GC pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Set(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
