package internal

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/mvc/pkg/config"
)

// Context is the per-request handle passed to listeners, controller
// constructors and capability checks. It implements context.Context by
// delegating to the request context.
type Context interface {
	context.Context

	// Request returns the parsed request.
	Request() *Request

	// Response returns the response being built.
	Response() *Response

	// Router returns the router bound to this request.
	Router() *Router

	// Config returns the application configuration.
	Config() *config.Store

	// Service returns a registered service by name.
	// Returns ErrServiceNotFound if none is registered.
	Service(name string) (any, error)

	// URL builds a link to a named route. See Router.URL.
	URL(name string, vars map[string]any) (string, error)

	// StaticURL prefixes an asset path with the base and optionally the locale.
	StaticURL(path string, withLocale bool) string

	// Set stores a request-scoped value.
	Set(key any, value any)

	// Get returns a request-scoped value, or nil.
	Get(key any) any

	// Logger returns the request logger.
	Logger() *slog.Logger

	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogNotice(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)
	LogCritical(msg string, attrs ...any)
}
