// Package metrics provides Prometheus metrics for the party risk engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Batch pipeline
	batches         *prometheus.CounterVec
	batchDuration   prometheus.Histogram
	partiesScored   prometheus.Counter
	partiesSkipped  *prometheus.CounterVec
	rowsRejected    *prometheus.CounterVec
	tiers           *prometheus.CounterVec
	clampedScores   prometheus.Counter
	degradedScores  prometheus.Counter
	workerActive    prometheus.Gauge
	workerPoolSize  prometheus.Gauge
	predictRequests *prometheus.CounterVec

	// Models
	modelInvocations *prometheus.CounterVec
	modelLatency     *prometheus.HistogramVec
	modelsLoaded     *prometheus.GaugeVec

	// Runtime
	memoryBytes prometheus.Gauge
	goroutines  prometheus.Gauge
	gcPause     prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "partyrisk",
		subsystem:        "engine",
		histogramBuckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		enabled:          true,
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

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.batches = auto.NewCounterVec(
		m.counterOpts("batches_total", "Batches processed by outcome"),
		[]string{"outcome"},
	)
	m.batchDuration = auto.NewHistogram(
		m.histogramOpts("batch_duration_milliseconds", "End-to-end batch duration in milliseconds"),
	)
	m.partiesScored = auto.NewCounter(
		m.counterOpts("parties_scored_total", "Parties that produced a risk result"),
	)
	m.partiesSkipped = auto.NewCounterVec(
		m.counterOpts("parties_skipped_total", "Parties skipped by error kind"),
		[]string{"kind"},
	)
	m.rowsRejected = auto.NewCounterVec(
		m.counterOpts("rows_rejected_total", "Input rows rejected by error kind"),
		[]string{"kind"},
	)
	m.tiers = auto.NewCounterVec(
		m.counterOpts("risk_tier_total", "Risk results by tier"),
		[]string{"tier"},
	)
	m.clampedScores = auto.NewCounter(
		m.counterOpts("composite_clamped_total", "Composite scores clamped into [0,100]"),
	)
	m.degradedScores = auto.NewCounter(
		m.counterOpts("composite_degraded_total", "Composite scores computed with a fallback policy"),
	)
	m.workerActive = auto.NewGauge(
		m.gaugeOpts("worker_active", "Workers currently scoring parties"),
	)
	m.workerPoolSize = auto.NewGauge(
		m.gaugeOpts("worker_pool_size", "Configured scoring worker limit"),
	)
	m.predictRequests = auto.NewCounterVec(
		m.counterOpts("predict_requests_total", "Single predictions by model set and outcome"),
		[]string{"model_set", "outcome"},
	)

	m.modelInvocations = auto.NewCounterVec(
		m.counterOpts("model_invocations_total", "Model invocations by model and outcome"),
		[]string{"model", "outcome"},
	)
	m.modelLatency = auto.NewHistogramVec(
		m.histogramOpts("model_latency_milliseconds", "Model invocation latency in milliseconds"),
		[]string{"model"},
	)
	m.modelsLoaded = auto.NewGaugeVec(
		m.gaugeOpts("models_loaded", "Registered models by availability state"),
		[]string{"state"},
	)

	m.memoryBytes = auto.NewGauge(
		m.gaugeOpts("memory_alloc_bytes", "Heap bytes allocated"),
	)
	m.goroutines = auto.NewGauge(
		m.gaugeOpts("goroutines", "Live goroutines"),
	)
	m.gcPause = auto.NewGauge(
		m.gaugeOpts("gc_pause_avg_milliseconds", "Average GC pause in milliseconds"),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)
}

// RecordBatch counts a finished batch and its duration.
func (m *Manager) RecordBatch(outcome string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.batches.WithLabelValues(outcome).Inc()
	m.batchDuration.Observe(durationMs)
}

// RecordPartyScored counts a party result and its tier.
func (m *Manager) RecordPartyScored(tier string, clamped, degraded bool) {
	if !m.enabled {
		return
	}
	m.partiesScored.Inc()
	m.tiers.WithLabelValues(tier).Inc()
	if clamped {
		m.clampedScores.Inc()
	}
	if degraded {
		m.degradedScores.Inc()
	}
}

// RecordPartySkipped counts a skipped party.
func (m *Manager) RecordPartySkipped(kind string) {
	if m.enabled {
		m.partiesSkipped.WithLabelValues(kind).Inc()
	}
}

// RecordRowRejected counts a rejected input row.
func (m *Manager) RecordRowRejected(kind string) {
	if m.enabled {
		m.rowsRejected.WithLabelValues(kind).Inc()
	}
}

// RecordModelInvocation counts a model call and its latency.
func (m *Manager) RecordModelInvocation(model, outcome string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.modelInvocations.WithLabelValues(model, outcome).Inc()
	m.modelLatency.WithLabelValues(model).Observe(latencyMs)
}

// UpdateModelsLoaded sets the registry availability gauges.
func (m *Manager) UpdateModelsLoaded(available, unavailable int) {
	if !m.enabled {
		return
	}
	m.modelsLoaded.WithLabelValues("available").Set(float64(available))
	m.modelsLoaded.WithLabelValues("unavailable").Set(float64(unavailable))
}

// RecordPredict counts a single prediction request.
func (m *Manager) RecordPredict(modelSet, outcome string) {
	if m.enabled {
		m.predictRequests.WithLabelValues(modelSet, outcome).Inc()
	}
}

// AddWorkerActive moves the active worker gauge by delta.
func (m *Manager) AddWorkerActive(delta int) {
	if m.enabled {
		m.workerActive.Add(float64(delta))
	}
}

// UpdateWorkerPoolSize sets the configured worker limit.
func (m *Manager) UpdateWorkerPoolSize(size int) {
	if m.enabled {
		m.workerPoolSize.Set(float64(size))
	}
}

// UpdateRuntime sets the process runtime gauges.
func (m *Manager) UpdateRuntime(allocBytes uint64, goroutines int, avgGCPauseMs float64) {
	if !m.enabled {
		return
	}
	m.memoryBytes.Set(float64(allocBytes))
	m.goroutines.Set(float64(goroutines))
	m.gcPause.Set(avgGCPauseMs)
}

// RecordHTTPRequest counts an HTTP request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// Package-level helpers bound to the global manager.

// RecordBatch counts a finished batch.
func RecordBatch(outcome string, durationMs float64) { globalManager.RecordBatch(outcome, durationMs) }

// RecordPartyScored counts a scored party.
func RecordPartyScored(tier string, clamped, degraded bool) {
	globalManager.RecordPartyScored(tier, clamped, degraded)
}

// RecordPartySkipped counts a skipped party.
func RecordPartySkipped(kind string) { globalManager.RecordPartySkipped(kind) }

// RecordRowRejected counts a rejected row.
func RecordRowRejected(kind string) { globalManager.RecordRowRejected(kind) }

// RecordModelInvocation counts a model call.
func RecordModelInvocation(model, outcome string, latencyMs float64) {
	globalManager.RecordModelInvocation(model, outcome, latencyMs)
}

// UpdateModelsLoaded sets the registry availability gauges.
func UpdateModelsLoaded(available, unavailable int) {
	globalManager.UpdateModelsLoaded(available, unavailable)
}

// RecordPredict counts a single prediction request.
func RecordPredict(modelSet, outcome string) { globalManager.RecordPredict(modelSet, outcome) }

// AddWorkerActive moves the active worker gauge.
func AddWorkerActive(delta int) { globalManager.AddWorkerActive(delta) }

// UpdateWorkerPoolSize sets the configured worker limit.
func UpdateWorkerPoolSize(size int) { globalManager.UpdateWorkerPoolSize(size) }

// UpdateRuntime sets the process runtime gauges.
func UpdateRuntime(allocBytes uint64, goroutines int, avgGCPauseMs float64) {
	globalManager.UpdateRuntime(allocBytes, goroutines, avgGCPauseMs)
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
