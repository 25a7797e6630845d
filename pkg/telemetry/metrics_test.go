package telemetry

import (
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/weft/pkg/engine"
	"github.com/vango-dev/weft/pkg/host"
	"github.com/vango-dev/weft/pkg/vdom"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	return m.GetGauge().GetValue()
}

func metricHistogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m dto.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func list(s vdom.Scope, p vdom.Props) *vdom.VNode {
	n := p["n"].(int)
	items := make([]any, n)
	for i := range items {
		items[i] = vdom.Li(i)
	}
	return vdom.Ul(items...)
}

func TestMetricsObserveEngine(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg))

	mem := host.NewMemory()
	root := mem.NewContainer("div")
	eng := engine.New(mem, engine.WithObserver(m))

	if err := eng.Render(vdom.CreateElement(list, vdom.Props{"n": 3}), root); err != nil {
		t.Fatal(err)
	}
	if err := eng.Flush(); err != nil {
		t.Fatal(err)
	}
	if err := eng.Render(vdom.CreateElement(list, vdom.Props{"n": 1}), root); err != nil {
		t.Fatal(err)
	}
	if err := eng.Flush(); err != nil {
		t.Fatal(err)
	}

	if got := metricCounterValue(t, m.rendersTotal.WithLabelValues("render")); got != 2 {
		t.Errorf("renders_total(render) = %v, want 2", got)
	}
	if got := metricCounterValue(t, m.commitsTotal); got != 2 {
		t.Errorf("commits_total = %v, want 2", got)
	}
	if got := metricCounterValue(t, m.commitOps.WithLabelValues("delete")); got != 2 {
		t.Errorf("commit_ops_total(delete) = %v, want 2", got)
	}
	if got := metricCounterValue(t, m.unitsTotal.WithLabelValues("Component")); got != 2 {
		t.Errorf("units_total(Component) = %v, want 2", got)
	}
	if got := metricHistogramCount(t, m.renderDuration); got != 2 {
		t.Errorf("render_duration_seconds count = %d, want 2", got)
	}
}

func TestMetricsCategorizeAborts(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: CreateNode: %w", engine.ErrHostAdapter, errors.New("x")), "host"},
		{engine.ErrRenderLoop, "render_loop"},
		{fmt.Errorf("%w: in App", engine.ErrComponentPanic), "panic"},
		{&engine.SlotError{Component: "App"}, "slot_mismatch"},
		{errors.New("other"), "internal"},
	}
	for _, tt := range tests {
		if got := categorizeError(tt.err); got != tt.want {
			t.Errorf("categorizeError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestMetricsSessionsAndPatches(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()), WithNamespace("test"))

	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	m.RecordPatches(7)
	m.EffectFailed(&engine.EffectError{Component: "App", Cleanup: true})

	if got := metricGaugeValue(t, m.activeSessions); got != 1 {
		t.Errorf("active_sessions = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.patchesSent); got != 7 {
		t.Errorf("patches_sent_total = %v, want 7", got)
	}
	if got := metricCounterValue(t, m.effectFailures.WithLabelValues("cleanup")); got != 1 {
		t.Errorf("effect_failures_total(cleanup) = %v, want 1", got)
	}
}

func TestMetricsRegisterOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithConstLabels(prometheus.Labels{"app": "demo"}))
	m.Yielded(3)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var found bool
	for _, f := range families {
		if f.GetName() == "weft_yields_total" {
			found = true
			if l := f.GetMetric()[0].GetLabel(); len(l) != 1 || l[0].GetValue() != "demo" {
				t.Errorf("labels = %v, want app=demo", l)
			}
		}
	}
	if !found {
		t.Error("weft_yields_total not registered")
	}
}
