// Package metrics provides Prometheus metrics for the draftedge valuation engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the engine.
type Manager struct {
	namespace string
	subsystem string
	registry  prometheus.Registerer

	// Run lifecycle
	runsTotal   prometheus.Counter
	runFailures *prometheus.CounterVec
	runDuration prometheus.Histogram

	// Calibration
	calibrationIterations prometheus.Gauge
	calibrationFactor     prometheus.Gauge

	// Pool quality
	playersValued   prometheus.Gauge
	playersExcluded prometheus.Gauge

	// Invariant outcomes
	invariantFailures prometheus.Gauge

	// Recorder
	snapshotsRecorded prometheus.Counter
	recorderErrors    prometheus.Counter
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace overrides the metric namespace.
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// WithRegistry sets a custom Prometheus registerer.
func WithRegistry(r prometheus.Registerer) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "draftedge",
		subsystem: "valuation",
		registry:  prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.runsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_total",
		Help:      "Total number of valuation runs started",
	})

	m.runFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_failures_total",
		Help:      "Total number of failed valuation runs by failure kind",
	}, []string{"kind"})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_seconds",
		Help:      "Histogram of full valuation run duration in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})

	m.calibrationIterations = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "calibration_iterations",
		Help:      "Bisection iterations used by the last calibration solve",
	})

	m.calibrationFactor = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "calibration_factor",
		Help:      "Scalar calibration factor solved by the last run",
	})

	m.playersValued = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "players_valued",
		Help:      "Number of players valued by the last run",
	})

	m.playersExcluded = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "players_excluded",
		Help:      "Number of players excluded from the last run (unknown position)",
	})

	m.invariantFailures = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "invariant_failures",
		Help:      "Number of failed invariants in the last run's report",
	})

	m.snapshotsRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshots_recorded_total",
		Help:      "Total number of valuation snapshots persisted",
	})

	m.recorderErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recorder_errors_total",
		Help:      "Total number of snapshot recorder failures",
	})
}

// RecordRunStarted increments the run counter.
func RecordRunStarted() {
	globalManager.runsTotal.Inc()
}

// RecordRunFailure increments the failure counter for a failure kind
// (e.g. "invalid_config", "calibration_diverged").
func RecordRunFailure(kind string) {
	globalManager.runFailures.WithLabelValues(kind).Inc()
}

// RecordRunDuration records the duration of a full run in seconds.
func RecordRunDuration(seconds float64) {
	globalManager.runDuration.Observe(seconds)
}

// UpdateCalibration sets the iteration count and factor of the last solve.
func UpdateCalibration(iterations int, factor float64) {
	globalManager.calibrationIterations.Set(float64(iterations))
	globalManager.calibrationFactor.Set(factor)
}

// UpdatePoolCounts sets valued/excluded player counts for the last run.
func UpdatePoolCounts(valued, excluded int) {
	globalManager.playersValued.Set(float64(valued))
	globalManager.playersExcluded.Set(float64(excluded))
}

// UpdateInvariantFailures sets the failed invariant count of the last report.
func UpdateInvariantFailures(count int) {
	globalManager.invariantFailures.Set(float64(count))
}

// RecordSnapshotRecorded increments the persisted snapshot counter.
func RecordSnapshotRecorded() {
	globalManager.snapshotsRecorded.Inc()
}

// RecordRecorderError increments the recorder failure counter.
func RecordRecorderError() {
	globalManager.recorderErrors.Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
