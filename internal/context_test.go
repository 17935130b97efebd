package internal_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/dmitrymomot/mvc/internal"
	"github.com/dmitrymomot/mvc/pkg/config"
	"github.com/dmitrymomot/mvc/pkg/logger"
)

// stubContext is a Context for unit tests of components that run inside
// a cycle. Log output is kept in logs.
type stubContext struct {
	context.Context
	req    *internal.Request
	res    *internal.Response
	router *internal.Router
	values map[any]any
	log    *slog.Logger
	logs   *bytes.Buffer
}

var _ internal.Context = (*stubContext)(nil)

// newStubContext builds a context for an HTTP GET of uri, routed by defs.
func newStubContext(t *testing.T, uri string, defs ...internal.RouteDefinition) *stubContext {
	t.Helper()

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, slog.LevelDebug)
	req := httpRequest(t, uri)
	res := internal.NewResponse()
	return &stubContext{
		Context: context.Background(),
		req:     req,
		res:     res,
		router:  internal.NewRouter(internal.NewRouteTable(defs, log), req, res, log, ""),
		values:  make(map[any]any),
		log:     log,
		logs:    &buf,
	}
}

func (c *stubContext) Request() *internal.Request   { return c.req }
func (c *stubContext) Response() *internal.Response { return c.res }
func (c *stubContext) Router() *internal.Router     { return c.router }
func (c *stubContext) Config() *config.Store        { return config.New() }
func (c *stubContext) Logger() *slog.Logger         { return c.log }

func (c *stubContext) Service(name string) (any, error) {
	return nil, internal.ErrServiceNotFound
}

func (c *stubContext) URL(name string, vars map[string]any) (string, error) {
	return c.router.URL(name, vars)
}

func (c *stubContext) StaticURL(path string, withLocale bool) string {
	return c.router.StaticURL(path, withLocale)
}

func (c *stubContext) Set(key any, value any) { c.values[key] = value }
func (c *stubContext) Get(key any) any        { return c.values[key] }

func (c *stubContext) LogDebug(msg string, attrs ...any) { c.log.DebugContext(c, msg, attrs...) }
func (c *stubContext) LogInfo(msg string, attrs ...any)  { c.log.InfoContext(c, msg, attrs...) }
func (c *stubContext) LogNotice(msg string, attrs ...any) {
	logger.Notice(c, c.log, msg, attrs...)
}
func (c *stubContext) LogWarn(msg string, attrs ...any)  { c.log.WarnContext(c, msg, attrs...) }
func (c *stubContext) LogError(msg string, attrs ...any) { c.log.ErrorContext(c, msg, attrs...) }
func (c *stubContext) LogCritical(msg string, attrs ...any) {
	logger.Critical(c, c.log, msg, attrs...)
}
