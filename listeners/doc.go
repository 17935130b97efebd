// Package listeners provides lifecycle listeners for mvc applications:
// Prometheus metrics and OpenTelemetry tracing.
//
// Each listener set is applied as a single option:
//
//	metrics := listeners.NewMetrics(listeners.WithNamespace("shop"))
//	tracing := listeners.NewTracing(listeners.WithTracerName("shop"))
//
//	app := mvc.New(
//	    metrics.Option(),
//	    tracing.Option(),
//	    mvc.WithMount("/metrics", metrics.Handler()),
//	)
package listeners
