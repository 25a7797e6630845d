// Package telemetry provides engine observers that export render activity
// to Prometheus and OpenTelemetry.
//
//	metrics := telemetry.NewMetrics(telemetry.WithRegistry(reg))
//	eng := engine.New(adapter,
//		engine.WithObserver(metrics),
//		engine.WithObserver(telemetry.NewTracer(ctx)),
//	)
//
// Metrics is safe to share between engines. A Tracer keeps the span of the
// cycle in flight and belongs to a single engine.
package telemetry
