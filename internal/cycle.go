package internal

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/dmitrymomot/mvc/pkg/config"
	"github.com/dmitrymomot/mvc/pkg/logger"
)

// FallbackMessage is written when error handling itself fails.
const FallbackMessage = "Error 500 - An unexpected error has occurred."

// Cycle drives one request through the lifecycle. It owns the request,
// response and router for that request and implements Context.
type Cycle struct {
	context.Context
	app    *App
	req    *Request
	res    *Response
	router *Router
	out    *ResponseWriter
	values map[any]any
}

var _ Context = (*Cycle)(nil)

func newCycle(ctx context.Context, app *App, req *Request) *Cycle {
	res := NewResponse()
	if app.layoutPath != "" {
		res.SetLayoutPath(app.layoutPath)
	}
	if app.layoutFile != "" {
		res.SetLayoutFile(app.layoutFile)
	}
	for _, k := range app.viewValues.Keys() {
		v, _ := app.viewValues.Get(k)
		res.Set(k, v)
	}

	return &Cycle{
		Context: ctx,
		app:     app,
		req:     req,
		res:     res,
		router:  NewRouter(app.routes, req, res, app.logger, app.base),
		out:     NewResponseWriter(),
		values:  make(map[any]any),
	}
}

func (c *Cycle) Request() *Request     { return c.req }
func (c *Cycle) Response() *Response   { return c.res }
func (c *Cycle) Router() *Router       { return c.router }
func (c *Cycle) Config() *config.Store { return c.app.config }
func (c *Cycle) Logger() *slog.Logger  { return c.app.logger }

func (c *Cycle) Service(name string) (any, error) {
	s, ok := c.app.services[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, name)
	}
	return s, nil
}

func (c *Cycle) URL(name string, vars map[string]any) (string, error) {
	return c.router.URL(name, vars)
}

func (c *Cycle) StaticURL(path string, withLocale bool) string {
	return c.router.StaticURL(path, withLocale)
}

func (c *Cycle) Set(key any, value any) { c.values[key] = value }

func (c *Cycle) Get(key any) any { return c.values[key] }

func (c *Cycle) LogDebug(msg string, attrs ...any) {
	c.app.logger.DebugContext(c, msg, attrs...)
}

func (c *Cycle) LogInfo(msg string, attrs ...any) {
	c.app.logger.InfoContext(c, msg, attrs...)
}

func (c *Cycle) LogNotice(msg string, attrs ...any) {
	logger.Notice(c, c.app.logger, msg, attrs...)
}

func (c *Cycle) LogWarn(msg string, attrs ...any) {
	c.app.logger.WarnContext(c, msg, attrs...)
}

func (c *Cycle) LogError(msg string, attrs ...any) {
	c.app.logger.ErrorContext(c, msg, attrs...)
}

func (c *Cycle) LogCritical(msg string, attrs ...any) {
	logger.Critical(c, c.app.logger, msg, attrs...)
}

// Output returns the buffered output of the cycle.
func (c *Cycle) Output() *ResponseWriter { return c.out }

// Run drives the phase sequence:
//
//	initialized, beforeroute, route, afterroute,
//	beforeload, load (status 200 only), afterload
//	beforeerrorhandling, error route,
//	aftererrorhandling                   (status other than 200)
//	beforerender, render, afterrender, beginshutdown
//
// A failure in routing, loading or their listeners sets status 500 and
// moves on to error handling. A failure in error handling writes the plain
// fallback message and skips rendering. A render failure also falls back to
// plain text; afterrender and beginshutdown fire in every case.
func (c *Cycle) Run() {
	if err := c.guard(c.dispatch); err != nil {
		c.LogError("request dispatch failed", slog.Any("error", err))
		if c.res.StatusCode() == http.StatusOK {
			c.res.SetStatusCode(http.StatusInternalServerError)
		}
	}

	rendered := true
	if c.res.StatusCode() != http.StatusOK {
		if err := c.guard(c.handleError); err != nil {
			c.LogError("error handling failed", slog.Any("error", err))
			c.writeFallback()
			rendered = false
		}
	}

	if rendered {
		c.render()
	}

	if err := c.guard(func() error { return c.app.events.Fire(c, EventBeginShutdown) }); err != nil {
		c.LogError("shutdown listener failed", slog.Any("error", err))
	}
}

func (c *Cycle) dispatch() error {
	c.negotiateLocale()
	if err := c.app.events.Fire(c, EventInitialized); err != nil {
		return err
	}
	if err := c.app.events.Fire(c, EventBeforeRoute); err != nil {
		return err
	}
	// Routing outcomes are recorded on the response status.
	_ = c.router.Route(c, "")
	if err := c.app.events.Fire(c, EventAfterRoute); err != nil {
		return err
	}

	if err := c.app.events.Fire(c, EventBeforeLoad); err != nil {
		return err
	}
	// A failed route leaves nothing to load; resolving the reset MCA would
	// overwrite the routing status.
	if c.res.StatusCode() == http.StatusOK {
		if err := c.app.loader.Load(c, true); err != nil {
			return err
		}
	}
	return c.app.events.Fire(c, EventAfterLoad)
}

func (c *Cycle) negotiateLocale() {
	if c.req.Locale() != "" || c.app.locale.Len() == 0 {
		return
	}
	v, ok := c.app.locale.Extract(c)
	if !ok || !localePattern.MatchString(v) {
		return
	}
	c.req.SetLocale(v)
	c.LogDebug("locale negotiated", slog.String("locale", v))
}

func (c *Cycle) handleError() error {
	if err := c.app.events.Fire(c, EventBeforeErrorHandling); err != nil {
		return err
	}
	if err := c.app.loader.LoadError(c); err != nil {
		return err
	}
	return c.app.events.Fire(c, EventAfterErrorHandling)
}

func (c *Cycle) render() {
	err := c.guard(func() error {
		if err := c.app.events.Fire(c, EventBeforeRender); err != nil {
			return err
		}
		r, err := c.app.renderers.Select(c.res.ViewType())
		if err != nil {
			return err
		}
		return r.Render(c, c.out, c.res)
	})
	if err != nil {
		c.LogError("render failed",
			slog.String("view_type", c.res.ViewType()),
			slog.Any("error", err),
		)
		c.writeFallback()
	}

	if err := c.guard(func() error { return c.app.events.Fire(c, EventAfterRender) }); err != nil {
		c.LogError("render listener failed", slog.Any("error", err))
	}
}

// writeFallback replaces the output with the plain 500 message and raises
// the response status to match it.
func (c *Cycle) writeFallback() {
	if c.res.StatusCode() < http.StatusInternalServerError {
		c.res.SetStatusCode(http.StatusInternalServerError)
	}
	c.out.Reset()
	c.out.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.out.WriteHeader(http.StatusInternalServerError)
	_, _ = c.out.Write([]byte(FallbackMessage))
}

// guard runs fn and converts a panic into *PanicError.
func (c *Cycle) guard(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &PanicError{Value: rec, Stack: debug.Stack()}
		}
	}()
	return fn()
}
