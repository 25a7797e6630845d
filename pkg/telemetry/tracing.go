package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/weft/pkg/engine"
)

// Default tracer name for weft engines.
const defaultTracerName = "weft"

// TracerConfig configures the tracing observer.
type TracerConfig struct {
	// TracerName is the name of the tracer (default: "weft").
	TracerName string

	// Provider supplies the tracer. Default: the global provider.
	Provider trace.TracerProvider

	// Attributes are added to every render span.
	Attributes []attribute.KeyValue
}

// TracerOption configures the tracing observer.
type TracerOption func(*TracerConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracerOption {
	return func(c *TracerConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the provider the tracer is taken from.
func WithTracerProvider(tp trace.TracerProvider) TracerOption {
	return func(c *TracerConfig) {
		c.Provider = tp
	}
}

// WithAttributes adds constant attributes to every span.
func WithAttributes(attrs ...attribute.KeyValue) TracerOption {
	return func(c *TracerConfig) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

// Tracer is an engine.Observer that wraps each render cycle in a span.
// A Tracer follows one engine; it is not safe to share between engines.
type Tracer struct {
	engine.BaseObserver

	tracer trace.Tracer
	attrs  []attribute.KeyValue
	parent context.Context

	span   trace.Span
	yields int
}

// NewTracer creates a tracing observer. Spans are children of the span in
// ctx, if any.
func NewTracer(ctx context.Context, opts ...TracerOption) *Tracer {
	config := TracerConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	tp := config.Provider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &Tracer{
		tracer: tp.Tracer(config.TracerName),
		attrs:  config.Attributes,
		parent: ctx,
	}
}

// Active reports whether a render span is open.
func (t *Tracer) Active() bool {
	return t.span != nil
}

// RenderStarted implements engine.Observer. A cycle that restarts before
// committing keeps its span.
func (t *Tracer) RenderStarted(reason engine.Reason) {
	if t.span != nil {
		t.span.AddEvent("restart", trace.WithAttributes(
			attribute.String("weft.reason", reason.String())))
		return
	}
	attrs := append([]attribute.KeyValue{attribute.String("weft.reason", reason.String())}, t.attrs...)
	_, t.span = t.tracer.Start(t.parent, fmt.Sprintf("weft.%s", reason),
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(time.Now()),
	)
	t.yields = 0
}

// Yielded implements engine.Observer.
func (t *Tracer) Yielded(int) {
	t.yields++
}

// Committed implements engine.Observer.
func (t *Tracer) Committed(s engine.CommitStats) {
	if t.span == nil {
		return
	}
	t.span.SetAttributes(
		attribute.Int("weft.inserts", s.Inserts),
		attribute.Int("weft.updates", s.Updates),
		attribute.Int("weft.deletes", s.Deletes),
		attribute.Int("weft.moves", s.Moves),
		attribute.Int("weft.host_ops", s.HostOps),
		attribute.Int("weft.units", s.Units),
		attribute.Int("weft.slices", s.Slices),
		attribute.Int("weft.yields", t.yields),
	)
	t.span.SetStatus(codes.Ok, "")
	t.end()
}

// Aborted implements engine.Observer.
func (t *Tracer) Aborted(err error) {
	if t.span == nil {
		return
	}
	t.span.RecordError(err)
	t.span.SetStatus(codes.Error, err.Error())
	t.end()
}

// EffectFailed implements engine.Observer. Effects run after the render
// span ends, so the failure gets a span of its own.
func (t *Tracer) EffectFailed(err *engine.EffectError) {
	_, span := t.tracer.Start(t.parent, "weft.effect",
		trace.WithAttributes(
			attribute.String("weft.component", err.Component),
			attribute.Bool("weft.cleanup", err.Cleanup),
		))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}

func (t *Tracer) end() {
	t.span.End()
	t.span = nil
}
