package telemetry

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/weft/pkg/engine"
	"github.com/vango-dev/weft/pkg/vdom"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "weft").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render and commit durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "weft",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is an engine.Observer that exports render activity as
// Prometheus metrics. One Metrics may be shared by many engines.
type Metrics struct {
	rendersTotal   *prometheus.CounterVec
	unitsTotal     *prometheus.CounterVec
	yieldsTotal    prometheus.Counter
	commitsTotal   prometheus.Counter
	commitOps      *prometheus.CounterVec
	renderDuration prometheus.Histogram
	commitDuration prometheus.Histogram
	abortsTotal    *prometheus.CounterVec
	effectFailures *prometheus.CounterVec
	patchesSent    prometheus.Counter
	activeSessions prometheus.Gauge
}

// NewMetrics registers the collectors and returns the observer.
//
// Metrics collected:
//   - weft_renders_total: render cycles started, by reason
//   - weft_units_total: work units processed, by node kind
//   - weft_yields_total: times the work loop yielded to the scheduler
//   - weft_commits_total: successful commits
//   - weft_commit_ops_total: committed node changes, by op
//   - weft_render_duration_seconds: first unit to end of commit
//   - weft_commit_duration_seconds: commit phase only
//   - weft_aborts_total: aborted render cycles, by error type
//   - weft_effect_failures_total: panicking effects, by phase
//   - weft_patches_sent_total: patches written to remote clients
//   - weft_active_sessions: open remote sessions
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counterOpts := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}
	}
	histogramOpts := func(name, help string) prometheus.HistogramOpts {
		return prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}
	}

	return &Metrics{
		rendersTotal: factory.NewCounterVec(
			counterOpts("renders_total", "Render cycles started"), []string{"reason"}),
		unitsTotal: factory.NewCounterVec(
			counterOpts("units_total", "Work units processed"), []string{"kind"}),
		yieldsTotal: factory.NewCounter(
			counterOpts("yields_total", "Times the work loop yielded to the scheduler")),
		commitsTotal: factory.NewCounter(
			counterOpts("commits_total", "Successful commits")),
		commitOps: factory.NewCounterVec(
			counterOpts("commit_ops_total", "Committed node changes"), []string{"op"}),
		renderDuration: factory.NewHistogram(
			histogramOpts("render_duration_seconds", "Render cycle duration in seconds")),
		commitDuration: factory.NewHistogram(
			histogramOpts("commit_duration_seconds", "Commit phase duration in seconds")),
		abortsTotal: factory.NewCounterVec(
			counterOpts("aborts_total", "Aborted render cycles"), []string{"error_type"}),
		effectFailures: factory.NewCounterVec(
			counterOpts("effect_failures_total", "Effects or cleanups that panicked"), []string{"phase"}),
		patchesSent: factory.NewCounter(
			counterOpts("patches_sent_total", "Patches written to remote clients")),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Open remote sessions",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// RenderStarted implements engine.Observer.
func (m *Metrics) RenderStarted(reason engine.Reason) {
	m.rendersTotal.WithLabelValues(reason.String()).Inc()
}

// UnitProcessed implements engine.Observer.
func (m *Metrics) UnitProcessed(kind vdom.Kind, _ time.Duration) {
	m.unitsTotal.WithLabelValues(kind.String()).Inc()
}

// Yielded implements engine.Observer.
func (m *Metrics) Yielded(int) {
	m.yieldsTotal.Inc()
}

// Committed implements engine.Observer.
func (m *Metrics) Committed(s engine.CommitStats) {
	m.commitsTotal.Inc()
	m.commitOps.WithLabelValues("insert").Add(float64(s.Inserts))
	m.commitOps.WithLabelValues("update").Add(float64(s.Updates))
	m.commitOps.WithLabelValues("delete").Add(float64(s.Deletes))
	m.commitOps.WithLabelValues("move").Add(float64(s.Moves))
	m.renderDuration.Observe(s.Render.Seconds())
	m.commitDuration.Observe(s.Commit.Seconds())
}

// Aborted implements engine.Observer.
func (m *Metrics) Aborted(err error) {
	m.abortsTotal.WithLabelValues(categorizeError(err)).Inc()
}

// EffectFailed implements engine.Observer.
func (m *Metrics) EffectFailed(err *engine.EffectError) {
	phase := "effect"
	if err.Cleanup {
		phase = "cleanup"
	}
	m.effectFailures.WithLabelValues(phase).Inc()
}

// RecordPatches adds n to the patches sent counter.
func (m *Metrics) RecordPatches(n int) {
	m.patchesSent.Add(float64(n))
}

// SessionOpened increments the active session gauge.
func (m *Metrics) SessionOpened() {
	m.activeSessions.Inc()
}

// SessionClosed decrements the active session gauge.
func (m *Metrics) SessionClosed() {
	m.activeSessions.Dec()
}

// categorizeError maps an abort cause to a low-cardinality label.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, engine.ErrSlotMismatch):
		return "slot_mismatch"
	case errors.Is(err, engine.ErrHostAdapter):
		return "host"
	case errors.Is(err, engine.ErrComponentPanic):
		return "panic"
	case errors.Is(err, engine.ErrRenderLoop):
		return "render_loop"
	default:
		return "internal"
	}
}
