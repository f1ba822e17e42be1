// Package metrics provides Prometheus metrics for the shopfloor training service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the training service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	scoreBuckets     []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Training Metrics - What the simulator is actually used for
	responsesScored      prometheus.Counter
	submissionsDuplicate prometheus.Counter
	feedbackLatency      prometheus.Histogram
	overallScore         prometheus.Histogram
	replyBranches        *prometheus.CounterVec
	providerErrors       prometheus.Counter
	scenariosStarted     *prometheus.CounterVec
	scenariosCompleted   *prometheus.CounterVec
	transitionErrors     *prometheus.CounterVec

	// Identity Metrics
	logins         *prometheus.CounterVec
	activeSessions prometheus.Gauge

	// Catalog and Repository Metrics
	catalogScenarios        prometheus.Gauge
	progressRecords         prometheus.Gauge
	repositoryUpdateLatency prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// System Performance Metrics
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
		namespace:        "shopfloor",
		subsystem:        "training",
		histogramBuckets: prometheus.DefBuckets,
		scoreBuckets:     prometheus.LinearBuckets(10, 10, 10),
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.responsesScored = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "responses_scored_total",
		Help:        "Total number of employee responses that received feedback",
		ConstLabels: m.constLabels,
	})

	m.submissionsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "submissions_duplicate_total",
		Help:        "Total number of rejected duplicate submissions for an already scored step",
		ConstLabels: m.constLabels,
	})

	m.feedbackLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "feedback_latency_milliseconds",
		Help:        "Time spent waiting for the reply and feedback provider in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.overallScore = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "overall_score",
		Help:        "Distribution of overall feedback scores",
		Buckets:     m.scoreBuckets,
		ConstLabels: m.constLabels,
	})

	m.replyBranches = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "customer_reply_branch_total",
			Help:        "Simulated customer replies by decision branch",
			ConstLabels: m.constLabels,
		},
		[]string{"branch"},
	)

	m.providerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "provider_errors_total",
		Help:        "Total number of failed or timed out provider calls",
		ConstLabels: m.constLabels,
	})

	m.scenariosStarted = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "scenarios_started_total",
			Help:        "Scenario attempts started by scenario",
			ConstLabels: m.constLabels,
		},
		[]string{"scenario_id"},
	)

	m.scenariosCompleted = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "scenarios_completed_total",
			Help:        "Scenario attempts completed by scenario",
			ConstLabels: m.constLabels,
		},
		[]string{"scenario_id"},
	)

	m.transitionErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "transition_errors_total",
			Help:        "Rejected state machine transitions by operation",
			ConstLabels: m.constLabels,
		},
		[]string{"operation"},
	)

	m.logins = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "logins_total",
			Help:        "Login attempts by result",
			ConstLabels: m.constLabels,
		},
		[]string{"result"},
	)

	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "active_sessions",
		Help:        "Number of employees currently logged in",
		ConstLabels: m.constLabels,
	})

	m.catalogScenarios = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "catalog_scenarios",
		Help:        "Number of scenarios in the catalog",
		ConstLabels: m.constLabels,
	})

	m.progressRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "progress_records",
		Help:        "Number of progress records held by the repository",
		ConstLabels: m.constLabels,
	})

	m.repositoryUpdateLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "repository_update_latency_milliseconds",
		Help:        "Repository write latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: m.constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_request_duration_milliseconds",
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: m.constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_by_endpoint_total",
			Help:        "Total number of errors by endpoint",
			ConstLabels: m.constLabels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_memory_usage_bytes",
		Help:        "System memory usage in bytes",
		ConstLabels: m.constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_goroutine_count",
		Help:        "Number of goroutines",
		ConstLabels: m.constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: m.constLabels,
	})
}

// RecordResponseScored counts a scored response and observes its overall score.
func RecordResponseScored(overall int) {
	globalManager.responsesScored.Inc()
	globalManager.overallScore.Observe(float64(overall))
}

// RecordDuplicateSubmission increments the duplicate submissions counter.
func RecordDuplicateSubmission() {
	globalManager.submissionsDuplicate.Inc()
}

// RecordFeedbackLatency records provider latency in milliseconds.
func RecordFeedbackLatency(latencyMs float64) {
	globalManager.feedbackLatency.Observe(latencyMs)
}

// RecordReplyBranch counts a simulated customer reply.
func RecordReplyBranch(branch string) {
	globalManager.replyBranches.WithLabelValues(branch).Inc()
}

// RecordProviderError increments the provider errors counter.
func RecordProviderError() {
	globalManager.providerErrors.Inc()
}

// RecordScenarioStarted counts a started attempt.
func RecordScenarioStarted(scenarioID string) {
	globalManager.scenariosStarted.WithLabelValues(scenarioID).Inc()
}

// RecordScenarioCompleted counts a completed attempt.
func RecordScenarioCompleted(scenarioID string) {
	globalManager.scenariosCompleted.WithLabelValues(scenarioID).Inc()
}

// RecordTransitionError counts a rejected transition.
func RecordTransitionError(operation string) {
	globalManager.transitionErrors.WithLabelValues(operation).Inc()
}

// RecordLogin counts a login attempt with its result (success, unknown, rejected).
func RecordLogin(result string) {
	globalManager.logins.WithLabelValues(result).Inc()
}

// UpdateActiveSessions sets the number of logged in employees.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// UpdateCatalogScenarios sets the catalog size.
func UpdateCatalogScenarios(count int) {
	globalManager.catalogScenarios.Set(float64(count))
}

// UpdateProgressRecords sets the number of stored progress records.
func UpdateProgressRecords(count int) {
	globalManager.progressRecords.Set(float64(count))
}

// RecordRepositoryUpdateLatency records repository write latency.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
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
