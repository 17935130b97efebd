package listeners

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/mvc/internal"
)

// TracingConfig configures the OpenTelemetry listeners.
type TracingConfig struct {
	// Provider supplies the tracer. Default: otel.GetTracerProvider()
	Provider trace.TracerProvider

	// TracerName is the instrumentation name (default: "github.com/dmitrymomot/mvc").
	TracerName string

	// Attributes returns extra span attributes, evaluated at shutdown.
	Attributes func(internal.Context) []attribute.KeyValue
}

// TracingOption configures the OpenTelemetry listeners.
type TracingOption func(*TracingConfig)

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(provider trace.TracerProvider) TracingOption {
	return func(c *TracingConfig) {
		c.Provider = provider
	}
}

// WithTracerName sets the instrumentation name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithSpanAttributes adds attributes computed per request.
func WithSpanAttributes(fn func(internal.Context) []attribute.KeyValue) TracingOption {
	return func(c *TracingConfig) {
		c.Attributes = fn
	}
}

// Tracing wraps every lifecycle in a server span. Each fired event is
// recorded as a span event; the span is renamed after routing and ended
// at shutdown with the final status.
type Tracing struct {
	tracer trace.Tracer
	attrs  func(internal.Context) []attribute.KeyValue
}

type spanKey struct{}

// NewTracing creates the tracing listeners.
func NewTracing(opts ...TracingOption) *Tracing {
	cfg := TracingConfig{
		TracerName: "github.com/dmitrymomot/mvc",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Provider == nil {
		cfg.Provider = otel.GetTracerProvider()
	}
	return &Tracing{
		tracer: cfg.Provider.Tracer(cfg.TracerName),
		attrs:  cfg.Attributes,
	}
}

// Option subscribes the tracing listeners.
func (t *Tracing) Option() internal.Option {
	return func(a *internal.App) {
		internal.WithListener(internal.EventInitialized, t.start)(a)
		for _, e := range internal.Events() {
			internal.WithListener(e, t.record(e))(a)
		}
		internal.WithListener(internal.EventAfterRoute, t.rename)(a)
		internal.WithListener(internal.EventBeginShutdown, t.end)(a)
	}
}

// SpanFromContext returns the lifecycle span of the request,
// or a non-recording span when tracing is not enabled.
func SpanFromContext(c internal.Context) trace.Span {
	if span, ok := c.Get(spanKey{}).(trace.Span); ok {
		return span
	}
	return trace.SpanFromContext(c)
}

// ContextWithSpan returns a context carrying the lifecycle span, for
// starting child spans from controllers.
func ContextWithSpan(c internal.Context) context.Context {
	return trace.ContextWithSpan(c, SpanFromContext(c))
}

func (t *Tracing) start(c internal.Context) error {
	if _, ok := c.Get(spanKey{}).(trace.Span); ok {
		return nil
	}
	req := c.Request()
	_, span := t.tracer.Start(c, req.Method()+" "+req.Path(),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.method", req.Method()),
			attribute.String("http.target", req.URI()),
			attribute.String("client.address", req.RemoteIP()),
			attribute.String("mvc.locale", req.Locale()),
		),
	)
	c.Set(spanKey{}, span)
	return nil
}

func (t *Tracing) record(e internal.Event) internal.Listener {
	return func(c internal.Context) error {
		if span, ok := c.Get(spanKey{}).(trace.Span); ok {
			span.AddEvent(e.String())
		}
		return nil
	}
}

func (t *Tracing) rename(c internal.Context) error {
	span, ok := c.Get(spanKey{}).(trace.Span)
	if !ok {
		return nil
	}
	res := c.Response()
	if res.StatusCode() == 200 {
		span.SetName(c.Request().Method() + " " + res.Module() + "/" + res.Controller() + "/" + res.Action())
	}
	return nil
}

func (t *Tracing) end(c internal.Context) error {
	span, ok := c.Get(spanKey{}).(trace.Span)
	if !ok {
		return nil
	}
	res := c.Response()
	status := res.StatusCode()

	span.SetAttributes(
		attribute.Int("http.status_code", status),
		attribute.String("mvc.module", res.Module()),
		attribute.String("mvc.controller", res.Controller()),
		attribute.String("mvc.action", res.Action()),
		attribute.String("mvc.view_type", res.ViewType()),
		attribute.Int("mvc.reroutes", c.Router().Reroutes()),
	)
	if t.attrs != nil {
		span.SetAttributes(t.attrs(c)...)
	}
	if status >= 500 {
		span.SetStatus(codes.Error, "status "+strconv.Itoa(status))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
	return nil
}
