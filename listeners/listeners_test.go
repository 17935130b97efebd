package listeners

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/dmitrymomot/mvc/internal"
)

type posts struct {
	c internal.Context
}

func (p *posts) Index(internal.Vars) error {
	p.c.Response().SetData(map[string]any{"posts": 3})
	return nil
}

func (p *posts) Gone(internal.Vars) error { return internal.ErrNotFound("gone") }

type errorPage struct{}

func (errorPage) Handle(internal.Vars) error { return nil }

func newApp(opts ...internal.Option) *internal.App {
	routes := []internal.RouteDefinition{
		{
			Name:     "default",
			Pattern:  "/[:controller:[/:action:]]",
			Defaults: map[string]string{"module": "index", "controller": "index", "action": "index"},
		},
		{
			Name:     "error",
			Pattern:  "/error/:action:",
			Defaults: map[string]string{"module": "error", "controller": "error"},
		},
	}
	controllers := []internal.Definition{
		internal.Controller("index", "posts", func(c internal.Context) (*posts, error) { return &posts{c: c}, nil }).
			Action("index", (*posts).Index).
			Action("gone", (*posts).Gone),
		internal.Controller("error", "error", func(internal.Context) (errorPage, error) { return errorPage{}, nil }).
			Action("error404", errorPage.Handle),
	}
	base := []internal.Option{
		internal.WithRoutes(routes...),
		internal.WithControllers(controllers...),
	}
	return internal.New(append(base, opts...)...)
}

func get(t *testing.T, app *internal.App, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	app.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("shop"), WithConstLabels(prometheus.Labels{"app": "test"}))
	app := newApp(m.Option())

	require.Equal(t, http.StatusOK, get(t, app, "/posts.json").Code)
	require.Equal(t, http.StatusOK, get(t, app, "/posts.json").Code)
	require.Equal(t, http.StatusNotFound, get(t, app, "/posts/gone.json").Code)

	t.Run("requests", func(t *testing.T) {
		t.Parallel()
		require.InDelta(t, 2, testutil.ToFloat64(m.requests.WithLabelValues("200", "json", "index/posts")), 0)
		require.InDelta(t, 1, testutil.ToFloat64(m.requests.WithLabelValues("404", "json", "error/error")), 0)
	})

	t.Run("error handling", func(t *testing.T) {
		t.Parallel()
		require.InDelta(t, 1, testutil.ToFloat64(m.errorHandling.WithLabelValues("404")), 0)
	})

	t.Run("duration and reroutes", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, 2, testutil.CollectAndCount(m.duration))
		require.Equal(t, 2, testutil.CollectAndCount(m.reroutes))
	})

	t.Run("handler exposes the registry", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), `shop_requests_total{app="test",controller="index/posts",status="200",view_type="json"} 2`)
		require.Contains(t, w.Body.String(), "shop_request_duration_seconds_bucket")
	})
}

func TestMetricsDuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	NewMetrics(WithRegistry(reg))
	require.Panics(t, func() { NewMetrics(WithRegistry(reg)) })
	require.NotPanics(t, func() { NewMetrics(WithRegistry(reg), WithSubsystem("admin")) })
}

type recordedSpan struct {
	noop.Span

	mu     sync.Mutex
	name   string
	kind   trace.SpanKind
	events []string
	attrs  map[attribute.Key]attribute.Value
	status codes.Code
	ended  bool
}

func (s *recordedSpan) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *recordedSpan) AddEvent(name string, _ ...trace.EventOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, name)
}

func (s *recordedSpan) SetAttributes(kv ...attribute.KeyValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range kv {
		s.attrs[a.Key] = a.Value
	}
}

func (s *recordedSpan) SetStatus(code codes.Code, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = code
}

func (s *recordedSpan) End(...trace.SpanEndOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = true
}

type recordingTracer struct {
	embedded.Tracer

	mu    sync.Mutex
	spans []*recordedSpan
}

func (r *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	span := &recordedSpan{name: name, kind: cfg.SpanKind(), attrs: make(map[attribute.Key]attribute.Value)}
	span.SetAttributes(cfg.Attributes()...)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.spans = append(r.spans, span)
	return trace.ContextWithSpan(ctx, span), span
}

func (r *recordingTracer) last(t *testing.T) *recordedSpan {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.spans)
	return r.spans[len(r.spans)-1]
}

type recordingProvider struct {
	embedded.TracerProvider
	tracer *recordingTracer
}

func (p recordingProvider) Tracer(string, ...trace.TracerOption) trace.Tracer { return p.tracer }

func TestTracing(t *testing.T) {
	t.Parallel()

	t.Run("successful request", func(t *testing.T) {
		t.Parallel()
		tracer := &recordingTracer{}
		tr := NewTracing(
			WithTracerProvider(recordingProvider{tracer: tracer}),
			WithSpanAttributes(func(c internal.Context) []attribute.KeyValue {
				return []attribute.KeyValue{attribute.String("tenant", "acme")}
			}),
		)
		app := newApp(tr.Option())

		require.Equal(t, http.StatusOK, get(t, app, "/posts.json?page=2").Code)

		span := tracer.last(t)
		require.True(t, span.ended)
		require.Equal(t, trace.SpanKindServer, span.kind)
		require.Equal(t, "GET index/posts/index", span.name)
		require.Equal(t, codes.Ok, span.status)
		require.Equal(t, []string{
			"initialized",
			"beforeroute",
			"afterroute",
			"beforeload",
			"afterload",
			"beforerender",
			"afterrender",
			"beginshutdown",
		}, span.events)
		require.Equal(t, "/posts.json?page=2", span.attrs["http.target"].AsString())
		require.Equal(t, int64(200), span.attrs["http.status_code"].AsInt64())
		require.Equal(t, "json", span.attrs["mvc.view_type"].AsString())
		require.Equal(t, "acme", span.attrs["tenant"].AsString())
	})

	t.Run("error phase", func(t *testing.T) {
		t.Parallel()
		tracer := &recordingTracer{}
		app := newApp(NewTracing(WithTracerProvider(recordingProvider{tracer: tracer})).Option())

		require.Equal(t, http.StatusNotFound, get(t, app, "/posts/gone.json").Code)

		span := tracer.last(t)
		require.True(t, span.ended)
		require.Equal(t, codes.Ok, span.status)
		require.Contains(t, span.events, "beforeerrorhandling")
		require.Equal(t, "error", span.attrs["mvc.controller"].AsString())
		require.Equal(t, int64(2), span.attrs["mvc.reroutes"].AsInt64())
	})

	t.Run("span available to controllers", func(t *testing.T) {
		t.Parallel()
		tracer := &recordingTracer{}
		var seen trace.Span
		app := newApp(
			NewTracing(WithTracerProvider(recordingProvider{tracer: tracer})).Option(),
			internal.WithListener(internal.EventBeforeRender, func(c internal.Context) error {
				seen = trace.SpanFromContext(ContextWithSpan(c))
				return nil
			}),
		)

		get(t, app, "/posts.json")
		require.Same(t, tracer.last(t), seen)
	})
}

func TestSpanFromContextWithoutTracing(t *testing.T) {
	t.Parallel()

	var span trace.Span
	app := newApp(internal.WithListener(internal.EventBeforeRender, func(c internal.Context) error {
		span = SpanFromContext(c)
		return nil
	}))

	get(t, app, "/posts.json")
	require.NotNil(t, span)
	require.False(t, span.IsRecording())
}
