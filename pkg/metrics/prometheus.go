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
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Analysis
	sessionsAnalyzed  *prometheus.CounterVec
	sessionsDuplicate prometheus.Counter
	framesProcessed   prometheus.Counter
	framesRejected    prometheus.Counter
	candidates        prometheus.Counter
	strokes           *prometheus.CounterVec
	rallies           prometheus.Counter
	analysisLatency   prometheus.Histogram

	// Queue
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueued          prometheus.Counter
	queueDequeued          prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Worker
	workerCount             prometheus.Gauge
	workerActive            prometheus.Gauge
	workerJobsPerSecond     prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Repository
	repositoryRecords       prometheus.Gauge
	repositoryByStatus      *prometheus.GaugeVec
	repositoryEvictions     prometheus.Counter
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "volley",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	})
}

func (m *Manager) initializeMetrics() {
	m.sessionsAnalyzed = m.counterVec("sessions_analyzed_total",
		"Sessions analysed, by outcome (completed, degenerate, failed)", "outcome")
	m.sessionsDuplicate = m.counter("sessions_duplicate_total",
		"Submissions rejected because the session id was already seen")
	m.framesProcessed = m.counter("frames_processed_total",
		"Pose frames that produced a usable feature vector")
	m.framesRejected = m.counter("frames_rejected_total",
		"Pose frames rejected for missing body or insufficient landmarks")
	m.candidates = m.counter("candidates_total",
		"Candidate events emitted by the segmenter after overlap resolution")
	m.strokes = m.counterVec("strokes_total",
		"Classified strokes by final stroke type", "stroke")
	m.rallies = m.counter("rallies_total",
		"Rallies built by the aggregator")
	m.analysisLatency = m.histogram("analysis_latency_milliseconds",
		"End-to-end session analysis latency in milliseconds")

	m.queueSize = m.gauge("queue_size", "Current number of queued jobs")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue size divided by capacity")
	m.queueEnqueued = m.counter("queue_enqueue_total", "Total number of jobs enqueued")
	m.queueDequeued = m.counter("queue_dequeue_total", "Total number of jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of rejected enqueues")
	m.queueProcessingLatency = m.histogram("queue_processing_latency_milliseconds",
		"Enqueue call latency in milliseconds")

	m.workerCount = m.gauge("worker_count", "Configured number of workers")
	m.workerActive = m.gauge("worker_active_count", "Workers currently analysing a session")
	m.workerJobsPerSecond = m.gauge("worker_jobs_per_second", "Average jobs completed per second")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds",
		"Job processing latency in milliseconds")
	m.workerErrors = m.counter("worker_errors_total", "Total number of failed jobs")

	m.repositoryRecords = m.gauge("repository_records_total", "Session records held in the repository")
	m.repositoryByStatus = m.gaugeVec("repository_records_by_status",
		"Session records by lifecycle status", "status")
	m.repositoryEvictions = m.counter("repository_evictions_total",
		"Finished session records evicted to honour the record cap")
	m.repositoryUpdateLatency = m.histogram("repository_update_latency_milliseconds",
		"Repository write latency in milliseconds")
	m.repositoryQueryLatency = m.histogram("repository_query_latency_milliseconds",
		"Repository read latency in milliseconds")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = m.counterVec("errors_by_component_total",
		"Total number of errors by component", "component", "error_type")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Total number of errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordSessionAnalyzed counts one analysed session under outcome.
func RecordSessionAnalyzed(outcome string) {
	globalManager.sessionsAnalyzed.WithLabelValues(outcome).Inc()
}

// RecordSessionDuplicate counts one rejected duplicate submission.
func RecordSessionDuplicate() {
	globalManager.sessionsDuplicate.Inc()
}

// RecordFrames adds processed and rejected frame counts.
func RecordFrames(processed, rejected int) {
	globalManager.framesProcessed.Add(float64(processed))
	globalManager.framesRejected.Add(float64(rejected))
}

// RecordCandidates adds n candidate events.
func RecordCandidates(n int) {
	globalManager.candidates.Add(float64(n))
}

// RecordStroke counts one classified stroke.
func RecordStroke(stroke string) {
	globalManager.strokes.WithLabelValues(stroke).Inc()
}

// RecordRallies adds n rallies.
func RecordRallies(n int) {
	globalManager.rallies.Add(float64(n))
}

// RecordAnalysisLatency records analysis latency in milliseconds.
func RecordAnalysisLatency(latencyMs float64) {
	globalManager.analysisLatency.Observe(latencyMs)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the rejected enqueue counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records enqueue latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActive.Set(float64(count))
}

// UpdateWorkerJobsPerSecond sets the job throughput.
func UpdateWorkerJobsPerSecond(rate float64) {
	globalManager.workerJobsPerSecond.Set(rate)
}

// RecordWorkerProcessingLatency records job latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the failed job counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// UpdateRepositoryRecordsTotal sets the number of stored records.
func UpdateRepositoryRecordsTotal(count int) {
	globalManager.repositoryRecords.Set(float64(count))
}

// UpdateRepositoryRecordsByStatus sets the number of records in status.
func UpdateRepositoryRecordsByStatus(status string, count int) {
	globalManager.repositoryByStatus.WithLabelValues(status).Set(float64(count))
}

// RecordRepositoryEviction counts one evicted record.
func RecordRepositoryEviction() {
	globalManager.repositoryEvictions.Inc()
}

// RecordRepositoryUpdateLatency records repository write latency.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records repository read latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
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
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets heap memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the registry holding the service metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
