package internal

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/mvc/pkg/config"
	"github.com/dmitrymomot/mvc/pkg/logger"
	"github.com/dmitrymomot/mvc/pkg/render"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// Keys of the "view" config category that configure rendering.
// Every other key becomes a response value.
var reservedViewKeys = []string{
	"renderers",
	"default_view_type",
	"default_layout_path",
	"default_layout_file",
}

// App holds everything shared by requests: configuration, the route table,
// controllers, renderers, listeners and services.
// App is immutable after creation - all configuration is done via New().
// Each request gets its own Cycle.
type App struct {
	router       chi.Router
	config       *config.Store
	logger       *slog.Logger
	routes       *RouteTable
	loader       *Loader
	renderers    *RendererRegistry
	events       *EventBus
	services     map[string]any
	viewValues   *config.Map
	htmlOptions  []render.HTMLOption
	views        fs.FS
	base         string
	layoutPath   string
	layoutFile   string
	viewType     string
	routeDefs    []RouteDefinition
	controllers  []Definition
	rendererRegs []rendererReg
	middlewares  []func(http.Handler) http.Handler
	staticRoutes []mountRoute
	mounts       []mountRoute
	locale       Extractor
}

// mountRoute is a handler served by chi ahead of the lifecycle.
type mountRoute struct {
	handler http.Handler
	pattern string
}

type rendererReg struct {
	factory   RendererFactory
	name      string
	viewTypes []string
}

// New creates a new application with the given options.
// The App is immutable after creation.
//
// Example:
//
//	app := mvc.New(
//	    mvc.WithConfigFS(configFiles),
//	    mvc.WithControllers(blog.Controllers()...),
//	    mvc.WithListener(mvc.EventBeforeRender, addMenu),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:   chi.NewRouter(),
		config:   config.New(),
		logger:   logger.NewNope(), // Default: noop logger (before options)
		events:   &EventBus{},
		services: make(map[string]any),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.base == "" {
		a.base = a.config.Category("framework").String("base")
	}

	defs := a.routeDefs
	if len(defs) == 0 {
		defs = RoutesFromConfig(a.config.Category("routes"))
	}
	a.routes = NewRouteTable(defs, a.logger)
	a.loader = NewLoader(NewRegistry(a.controllers...))

	a.setupRenderers()
	a.setupRoutes()
	return a
}

func (a *App) setupRenderers() {
	html := render.NewHTML(a.views, a.htmlOptions...)
	a.renderers = NewRendererRegistry(func() (render.Renderer, error) { return html, nil })
	for _, rr := range a.rendererRegs {
		a.renderers.Register(rr.name, rr.factory, rr.viewTypes...)
	}

	view := a.config.Category("view")
	a.renderers.Configure(view)
	if a.viewType != "" {
		a.renderers.SetDefaultViewType(a.viewType)
	}
	if a.layoutPath == "" {
		a.layoutPath = view.String("default_layout_path")
	}
	if a.layoutFile == "" {
		a.layoutFile = view.String("default_layout_file")
	}
	for _, k := range reservedViewKeys {
		view.Delete(k)
	}
	a.viewValues = view
}

// setupRoutes configures the chi router with middleware, mounts and the
// lifecycle catch-all.
func (a *App) setupRoutes() {
	for _, mw := range a.middlewares {
		a.router.Use(mw)
	}
	for _, sr := range a.staticRoutes {
		a.router.Mount(sr.pattern, sr.handler)
	}
	for _, m := range a.mounts {
		a.router.Mount(m.pattern, m.handler)
	}
	a.router.Handle("/*", a)
}

// Handler returns the HTTP handler of the App: middleware, static files and
// mounts first, then the request lifecycle for everything else.
func (a *App) Handler() http.Handler {
	return a.router
}

// Config returns the application configuration.
func (a *App) Config() *config.Store { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Routes returns the route table.
func (a *App) Routes() *RouteTable { return a.routes }

// Renderers returns the renderer registry.
func (a *App) Renderers() *RendererRegistry { return a.renderers }

// ServeHTTP runs the request lifecycle for one HTTP request.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			a.fail(r.Context(), w, &PanicError{Value: rec})
		}
	}()

	req, err := NewRequest(r, a.base)
	if err != nil {
		a.fail(r.Context(), w, err)
		return
	}

	c := newCycle(r.Context(), a, req)
	c.Run()
	if err := c.Output().Commit(w); err != nil {
		a.logger.DebugContext(r.Context(), "response write failed", slog.Any("error", err))
	}
}

// RunCLI runs the request lifecycle for a command-line request and writes
// the rendered body to w. The first argument, if any, is a query string.
// Returns the final status code.
func (a *App) RunCLI(ctx context.Context, w io.Writer, uri string, args []string) int {
	c := newCycle(ctx, a, NewCLIRequest(uri, args, a.base))
	c.Run()
	if err := c.Output().CommitBody(w); err != nil {
		a.logger.ErrorContext(ctx, "output write failed", slog.Any("error", err))
	}
	return c.Response().StatusCode()
}

// fail reports an uncaught top-level failure with a generic 500.
func (a *App) fail(ctx context.Context, w http.ResponseWriter, err error) {
	logger.Critical(ctx, a.logger, "uncaught request failure", slog.Any("error", err))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = io.WriteString(w, FallbackMessage)
}

// Run starts an HTTP server for the App and blocks until shutdown.
//
// Example:
//
//	app := mvc.New(mvc.WithConfigFS(files))
//	err := app.Run(":8080", mvc.Logger(slog))
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	if cfg.logger == nil {
		cfg.logger = a.logger
	}

	return runServer(runtimeConfig{
		handler:         a.router,
		address:         addr,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    cfg.startupHooks,
		shutdownHooks:   cfg.shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}
