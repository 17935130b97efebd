package listeners

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/mvc/internal"
)

// MetricsConfig configures the Prometheus listeners.
type MetricsConfig struct {
	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Namespace is the metrics namespace (default: "mvc").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64
}

// MetricsOption configures the Prometheus listeners.
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

// Metrics records per-request lifecycle metrics:
//
//	<ns>_requests_total{status,view_type,controller}
//	<ns>_request_duration_seconds{status,view_type,controller}
//	<ns>_error_handling_total{status}
//	<ns>_reroutes{controller}
type Metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	errorHandling *prometheus.CounterVec
	reroutes      *prometheus.HistogramVec
	gatherer      prometheus.Gatherer
}

type startKey struct{}

// NewMetrics registers the metrics with the configured registry.
// Panics if they are already registered there.
func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := MetricsConfig{
		Namespace: "mvc",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := promauto.With(cfg.Registry)
	m := &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "requests_total",
			Help:        "Total number of requests run through the lifecycle",
			ConstLabels: cfg.ConstLabels,
		}, []string{"status", "view_type", "controller"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "request_duration_seconds",
			Help:        "Lifecycle duration from initialization to shutdown in seconds",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}, []string{"status", "view_type", "controller"}),

		errorHandling: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "error_handling_total",
			Help:        "Total number of requests that entered error handling",
			ConstLabels: cfg.ConstLabels,
		}, []string{"status"}),

		reroutes: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "reroutes",
			Help:        "Routing passes per request",
			ConstLabels: cfg.ConstLabels,
			Buckets:     prometheus.LinearBuckets(1, 1, internal.MaxReroutes+1),
		}, []string{"controller"}),

		gatherer: prometheus.DefaultGatherer,
	}
	if g, ok := cfg.Registry.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// Option subscribes the metric listeners.
func (m *Metrics) Option() internal.Option {
	return func(a *internal.App) {
		internal.WithListener(internal.EventInitialized, m.start)(a)
		internal.WithListener(internal.EventBeforeErrorHandling, m.errorPhase)(a)
		internal.WithListener(internal.EventBeginShutdown, m.observe)(a)
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) start(c internal.Context) error {
	c.Set(startKey{}, time.Now())
	return nil
}

func (m *Metrics) errorPhase(c internal.Context) error {
	m.errorHandling.WithLabelValues(strconv.Itoa(c.Response().StatusCode())).Inc()
	return nil
}

func (m *Metrics) observe(c internal.Context) error {
	res := c.Response()
	controller := res.Module() + "/" + res.Controller()
	labels := []string{strconv.Itoa(res.StatusCode()), res.ViewType(), controller}

	m.requests.WithLabelValues(labels...).Inc()
	if started, ok := c.Get(startKey{}).(time.Time); ok {
		m.duration.WithLabelValues(labels...).Observe(time.Since(started).Seconds())
	}
	m.reroutes.WithLabelValues(controller).Observe(float64(c.Router().Reroutes()))
	return nil
}
