package mvc

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/mvc/internal"
	"github.com/dmitrymomot/mvc/pkg/config"
	"github.com/dmitrymomot/mvc/pkg/logger"
	"github.com/dmitrymomot/mvc/pkg/render"
)

// Type aliases - public API
type (
	// App holds everything shared by requests and serves them.
	App = internal.App

	// Context is the per-request handle passed to listeners and controllers.
	Context = internal.Context

	// Request is the parsed request.
	Request = internal.Request

	// Response is the response being built.
	Response = internal.Response

	// Router matches request paths and builds URLs.
	Router = internal.Router

	// RouteDefinition is a named URL pattern.
	RouteDefinition = internal.RouteDefinition

	// Definition describes a registered controller.
	Definition = internal.Definition

	// ControllerDef registers a controller type with its actions.
	ControllerDef[T any] = internal.ControllerDef[T]

	// Vars are the variables passed to an action.
	Vars = internal.Vars

	// Event names a lifecycle phase boundary.
	Event = internal.Event

	// Listener handles a lifecycle event.
	Listener = internal.Listener

	// RendererFactory creates a renderer on demand.
	RendererFactory = internal.RendererFactory

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// ExtractorSource extracts a value from the request context.
	ExtractorSource = internal.ExtractorSource

	// HTTPError is an error that carries a status code for the response.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// PanicError wraps a recovered panic.
	PanicError = internal.PanicError

	// ContextExtractor extracts a slog attribute from context.
	// Used with WithLogger to add request-scoped values to logs.
	ContextExtractor = logger.ContextExtractor
)

// Lifecycle events in firing order.
const (
	EventInitialized         = internal.EventInitialized
	EventBeforeRoute         = internal.EventBeforeRoute
	EventAfterRoute          = internal.EventAfterRoute
	EventBeforeLoad          = internal.EventBeforeLoad
	EventAfterLoad           = internal.EventAfterLoad
	EventBeforeErrorHandling = internal.EventBeforeErrorHandling
	EventAfterErrorHandling  = internal.EventAfterErrorHandling
	EventBeforeRender        = internal.EventBeforeRender
	EventAfterRender         = internal.EventAfterRender
	EventBeginShutdown       = internal.EventBeginShutdown
)

// Built-in renderer names and special view types.
const (
	RendererHTML = internal.RendererHTML
	RendererJSON = internal.RendererJSON
	RendererCSV  = internal.RendererCSV
	RendererXML  = internal.RendererXML
	RendererText = internal.RendererText

	ViewTypeAny = internal.ViewTypeAny
	ViewTypeCLI = internal.ViewTypeCLI

	// FallbackMessage is written when error handling itself fails.
	FallbackMessage = internal.FallbackMessage
)

// Errors
var (
	ErrNoRouteMatch     = internal.ErrNoRouteMatch
	ErrTooManyReroutes  = internal.ErrTooManyReroutes
	ErrInvalidRoute     = internal.ErrInvalidRoute
	ErrUnknownRoute     = internal.ErrUnknownRoute
	ErrNoRenderer       = internal.ErrNoRenderer
	ErrRendererInit     = internal.ErrRendererInit
	ErrServiceNotFound  = internal.ErrServiceNotFound
	ErrActionAbsent     = internal.ErrActionAbsent
	ErrMalformedRequest = internal.ErrMalformedRequest
)

// Constructors

// New creates a new application with the given options.
// The App is immutable after creation.
//
// Example:
//
//	app := mvc.New(
//	    mvc.WithConfigFS(configFiles),
//	    mvc.WithViews(views),
//	    mvc.WithControllers(
//	        mvc.Controller("blog", "posts", newPosts).
//	            Action("index", (*Posts).Index),
//	    ),
//	)
//
//	err := app.Run(":8080", mvc.Logger(slog))
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// Controller starts a controller definition. newFn builds the controller
// for each dispatched request.
func Controller[T any](module, controller string, newFn func(Context) (T, error)) *ControllerDef[T] {
	return internal.Controller(module, controller, newFn)
}

// App options

// WithConfig replaces the configuration store.
func WithConfig(store *config.Store) Option {
	return internal.WithConfig(store)
}

// WithConfigFS loads every .yaml, .yml and .json file of fsys into the
// configuration. Panics if a file cannot be parsed.
func WithConfigFS(fsys fs.FS) Option {
	return internal.WithConfigFS(fsys)
}

// WithConfigPath loads configuration files or directories from disk.
func WithConfigPath(paths ...string) Option {
	return internal.WithConfigPath(paths...)
}

// WithBase sets the path prefix the application is served under.
func WithBase(base string) Option {
	return internal.WithBase(base)
}

// WithRoutes sets the route table, overriding the "routes" config category.
func WithRoutes(defs ...RouteDefinition) Option {
	return internal.WithRoutes(defs...)
}

// WithControllers registers controller definitions.
func WithControllers(defs ...Definition) Option {
	return internal.WithControllers(defs...)
}

// WithListener subscribes a listener to a lifecycle event.
//
// Example:
//
//	mvc.WithListener(mvc.EventBeforeRender, func(c mvc.Context) error {
//	    c.Response().Set("menu", buildMenu(c))
//	    return nil
//	})
func WithListener(event Event, l Listener) Option {
	return internal.WithListener(event, l)
}

// WithRenderer registers a renderer under name and maps view types to it.
func WithRenderer(name string, factory RendererFactory, viewTypes ...string) Option {
	return internal.WithRenderer(name, factory, viewTypes...)
}

// WithDefaultViewType sets the view type used when no renderer matches.
func WithDefaultViewType(viewType string) Option {
	return internal.WithDefaultViewType(viewType)
}

// WithViews sets the file system HTML views and layouts are read from.
func WithViews(fsys fs.FS, opts ...render.HTMLOption) Option {
	return internal.WithViews(fsys, opts...)
}

// WithLayout sets the default layout directory and file.
func WithLayout(path, file string) Option {
	return internal.WithLayout(path, file)
}

// WithLocale sets the sources the locale is negotiated from when the URL
// has no locale prefix.
func WithLocale(sources ...ExtractorSource) Option {
	return internal.WithLocale(sources...)
}

// WithService registers a named service available through Context.Service.
func WithService(name string, service any) Option {
	return internal.WithService(name, service)
}

// WithMiddleware adds global HTTP middleware.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return internal.WithMiddleware(mw...)
}

// WithMount serves handler under pattern instead of the request lifecycle.
func WithMount(pattern string, handler http.Handler) Option {
	return internal.WithMount(pattern, handler)
}

// WithStaticFiles mounts a static file handler at the given pattern.
// Directory listings are disabled.
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithLogger configures a JSON logger for the given component.
//
// Example:
//
//	mvc.WithLogger("blog", middlewares.RequestIDExtractor())
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a custom slog.Logger.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// Run options

// Logger sets the server logger. Defaults to the App logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the timeout for graceful shutdown.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function to run after the port is bound and
// before serving requests. If any hook fails, the server stops.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function to run during shutdown.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets a custom base context for signal handling.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Locale sources

// FromQuery reads a query parameter.
func FromQuery(name string) ExtractorSource { return internal.FromQuery(name) }

// FromBody reads a scalar body field.
func FromBody(name string) ExtractorSource { return internal.FromBody(name) }

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource { return internal.FromHeader(name) }

// FromConfig reads a scalar config value.
func FromConfig(category, key string) ExtractorSource { return internal.FromConfig(category, key) }

// FromAcceptLanguage negotiates Accept-Language against the supported locales.
func FromAcceptLanguage(supported ...string) ExtractorSource {
	return internal.FromAcceptLanguage(supported...)
}

// Helpers

// ContextValue retrieves a typed request-scoped value.
// Returns the zero value of T if the key is not found or has another type.
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// ServiceAs retrieves a registered service with the given type.
//
// Example:
//
//	repo, err := mvc.ServiceAs[*PostRepo](c, "posts")
func ServiceAs[T any](c Context, name string) (T, error) {
	return internal.ServiceAs[T](c, name)
}

// Var retrieves a typed action variable.
func Var[T ~string | ~int | ~int64 | ~float64 | ~bool](vars Vars, name string) T {
	return internal.Var[T](vars, name)
}

// VarDefault retrieves a typed action variable with a default value.
func VarDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](vars Vars, name string, defaultValue T) T {
	return internal.VarDefault(vars, name, defaultValue)
}

// HTTP errors

// NewHTTPError creates an HTTPError with the given status code.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

// WithErrorCode sets an application error code.
func WithErrorCode(code string) HTTPErrorOption { return internal.WithErrorCode(code) }

// WithError wraps an underlying error.
func WithError(err error) HTTPErrorOption { return internal.WithError(err) }

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnauthorized(message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

func ErrUnprocessable(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnprocessable(message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

// AsHTTPError returns the HTTPError in err's chain, or nil.
func AsHTTPError(err error) *HTTPError { return internal.AsHTTPError(err) }
