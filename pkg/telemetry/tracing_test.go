package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/weft/pkg/engine"
	"github.com/vango-dev/weft/pkg/host"
	"github.com/vango-dev/weft/pkg/vdom"
)

type recordedSpan struct {
	noop.Span
	name   string
	attrs  map[attribute.Key]attribute.Value
	events []string
	status codes.Code
	errs   []error
	ended  bool
}

func (s *recordedSpan) SetAttributes(kv ...attribute.KeyValue) {
	for _, a := range kv {
		s.attrs[a.Key] = a.Value
	}
}

func (s *recordedSpan) AddEvent(name string, _ ...trace.EventOption) {
	s.events = append(s.events, name)
}

func (s *recordedSpan) SetStatus(code codes.Code, _ string) { s.status = code }

func (s *recordedSpan) RecordError(err error, _ ...trace.EventOption) {
	s.errs = append(s.errs, err)
}

func (s *recordedSpan) End(...trace.SpanEndOption) { s.ended = true }

type recordingTracer struct {
	noop.Tracer
	spans []*recordedSpan
}

func (r *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	s := &recordedSpan{name: name, attrs: make(map[attribute.Key]attribute.Value)}
	s.SetAttributes(cfg.Attributes()...)
	r.spans = append(r.spans, s)
	return trace.ContextWithSpan(ctx, s), s
}

type recordingProvider struct {
	noop.TracerProvider
	tracer *recordingTracer
}

func (p *recordingProvider) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return p.tracer
}

func newRecordingTracer(opts ...TracerOption) (*Tracer, *recordingTracer) {
	rt := &recordingTracer{}
	opts = append(opts, WithTracerProvider(&recordingProvider{tracer: rt}))
	return NewTracer(context.Background(), opts...), rt
}

func TestTracerSpansCommittedRender(t *testing.T) {
	tr, rt := newRecordingTracer(WithAttributes(attribute.String("app", "demo")))

	mem := host.NewMemory()
	eng := engine.New(mem, engine.WithObserver(tr))
	if err := eng.Render(vdom.Div(vdom.P("a"), vdom.P("b")), mem.NewContainer("root")); err != nil {
		t.Fatal(err)
	}
	if err := eng.Flush(); err != nil {
		t.Fatal(err)
	}

	if len(rt.spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(rt.spans))
	}
	s := rt.spans[0]
	if s.name != "weft.render" {
		t.Errorf("span name = %q, want weft.render", s.name)
	}
	if !s.ended || s.status != codes.Ok {
		t.Errorf("span ended=%v status=%v, want ended Ok", s.ended, s.status)
	}
	if got := s.attrs["weft.inserts"].AsInt64(); got != 5 {
		t.Errorf("weft.inserts = %d, want 5", got)
	}
	if got := s.attrs["app"].AsString(); got != "demo" {
		t.Errorf("app = %q, want demo", got)
	}
	if tr.Active() {
		t.Error("span still active after commit")
	}
}

func TestTracerRecordsAbort(t *testing.T) {
	tr, rt := newRecordingTracer()

	boom := errors.New("boom")
	mem := host.NewMemory()
	mem.FailOn = func(op host.Op, _ *host.Element) error {
		if op == host.OpAppendChild {
			return boom
		}
		return nil
	}
	eng := engine.New(mem, engine.WithObserver(tr))
	if err := eng.Render(vdom.Div("x"), mem.NewContainer("root")); err != nil {
		t.Fatal(err)
	}
	if err := eng.Flush(); !errors.Is(err, boom) {
		t.Fatalf("Flush error = %v, want boom", err)
	}

	if len(rt.spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(rt.spans))
	}
	s := rt.spans[0]
	if s.status != codes.Error || len(s.errs) != 1 || !s.ended {
		t.Errorf("span status=%v errs=%v ended=%v", s.status, s.errs, s.ended)
	}
}

func TestTracerRestartKeepsSpan(t *testing.T) {
	tr, rt := newRecordingTracer()

	tr.RenderStarted(engine.ReasonUpdate)
	tr.RenderStarted(engine.ReasonRestart)
	tr.Yielded(1)
	tr.Committed(engine.CommitStats{})

	if len(rt.spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(rt.spans))
	}
	s := rt.spans[0]
	if len(s.events) != 1 || s.events[0] != "restart" {
		t.Errorf("events = %v, want [restart]", s.events)
	}
	if got := s.attrs["weft.yields"].AsInt64(); got != 1 {
		t.Errorf("weft.yields = %d, want 1", got)
	}
}

func TestTracerEffectFailureGetsOwnSpan(t *testing.T) {
	tr, rt := newRecordingTracer()
	tr.EffectFailed(&engine.EffectError{Component: "App", Panic: "x"})

	if len(rt.spans) != 1 || rt.spans[0].name != "weft.effect" {
		t.Fatalf("spans = %v", rt.spans)
	}
	if rt.spans[0].status != codes.Error {
		t.Errorf("status = %v, want Error", rt.spans[0].status)
	}
}

func TestTracerWithNoopProvider(t *testing.T) {
	tr := NewTracer(context.Background(), WithTracerProvider(noop.NewTracerProvider()))
	tr.RenderStarted(engine.ReasonRender)
	if !tr.Active() {
		t.Fatal("expected active span")
	}
	tr.Aborted(errors.New("x"))
	if tr.Active() {
		t.Error("span still active after abort")
	}
}
