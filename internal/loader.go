package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// Loader dispatches the routed module, controller and action to a
// registered controller.
type Loader struct {
	registry *Registry
}

// NewLoader creates a loader over the registry.
func NewLoader(registry *Registry) *Loader {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Loader{registry: registry}
}

// Load resolves and invokes the action the response is routed to.
//
// Resolution failures are recorded as status codes: 404 when the controller
// does not exist, 403 when its capability check refuses the request and 500
// when neither the action nor an index action exists. A missing action with
// an index action falls back to index.
//
// The action runs when the status is 200 or checkStatus is false. An
// *HTTPError returned by the action sets the status and adds its message.
// Any other error or panic sets status 500 and is returned.
func (l *Loader) Load(c Context, checkStatus bool) error {
	_, err := l.load(c, checkStatus)
	return err
}

// load reports whether the controller was resolved.
func (l *Loader) load(c Context, checkStatus bool) (bool, error) {
	res := c.Response()
	def, ok := l.resolve(c)
	if !ok {
		return false, nil
	}

	if checkStatus && res.StatusCode() != http.StatusOK {
		return true, nil
	}

	vars := l.variables(c)
	res.SetRequestVariables(vars)

	err := def.Invoke(c, res.Action(), vars)
	if err == nil {
		return true, nil
	}

	if httpErr := AsHTTPError(err); httpErr != nil {
		c.LogInfo("action returned http error",
			slog.String("controller", def.Identifier()),
			slog.String("action", res.Action()),
			slog.Int("status", httpErr.StatusCode()),
		)
		res.SetStatusCode(httpErr.StatusCode())
		if httpErr.Message != "" {
			res.AddMessage(httpErr.Message)
		}
		return true, nil
	}

	attrs := []any{
		slog.String("controller", def.Identifier()),
		slog.String("action", res.Action()),
		slog.Any("error", err),
	}
	if pe, ok := AsPanicError(err); ok {
		attrs = append(attrs, slog.String("stack", string(pe.Stack)))
	}
	c.LogError("action failed", attrs...)
	res.SetStatusCode(http.StatusInternalServerError)
	return true, fmt.Errorf("%s::%s: %w", def.Identifier(), res.Action(), err)
}

func (l *Loader) resolve(c Context) (Definition, bool) {
	res := c.Response()
	def, ok := l.registry.Lookup(res.Module(), res.Controller())
	if !ok {
		c.LogWarn("controller does not exist",
			slog.String("module", res.Module()),
			slog.String("controller", res.Controller()),
		)
		res.SetStatusCode(http.StatusNotFound)
		return nil, false
	}

	if !def.CanView(c) {
		c.LogError("controller refused the request", slog.String("controller", def.Identifier()))
		res.SetStatusCode(http.StatusForbidden)
		return nil, false
	}

	switch {
	case def.HasAction(res.Action()):
	case def.HasAction(IndexAction):
		c.LogNotice("action does not exist, using index",
			slog.String("controller", def.Identifier()),
			slog.String("action", res.Action()),
		)
		res.SetAction(IndexAction)
	default:
		c.LogError("controller has no usable action",
			slog.String("controller", def.Identifier()),
			slog.String("action", res.Action()),
		)
		res.SetStatusCode(http.StatusInternalServerError)
		return nil, false
	}
	return def, true
}

// variables merges query values, body values and route variables.
func (l *Loader) variables(c Context) Vars {
	req := c.Request()
	vars := make(Vars)
	for k, v := range req.Query() {
		if len(v) > 0 {
			vars[k] = v[0]
		}
	}
	for k, v := range req.Body() {
		vars[k] = v
	}
	for k, v := range c.Response().Variables() {
		vars[k] = v
	}
	return vars
}

// LoadError dispatches the error route /error/error<status> when the
// status is not 200. The request extension is kept so the same renderer is
// selected. When the error route cannot be routed or resolved, the status
// and messages are restored and the response is rendered as it was; a
// reroute limit hit leaves status 508 in place.
func (l *Loader) LoadError(c Context) error {
	res := c.Response()
	code := res.StatusCode()
	if code == http.StatusOK {
		return nil
	}

	path := fmt.Sprintf("/error/error%d", code)
	if ext := c.Request().Extension(); ext != "" && !strings.ContainsAny(ext, " /?#") {
		path += "." + ext
	}

	messages := len(res.Messages())
	restore := func() {
		res.SetStatusCode(code)
		res.truncateMessages(messages)
	}

	if err := c.Router().Route(c, path); err != nil {
		if errors.Is(err, ErrTooManyReroutes) {
			return nil
		}
		c.LogDebug("error route not dispatched", slog.String("path", path), slog.Any("error", err))
		restore()
		return nil
	}

	resolved, err := l.load(c, false)
	if !resolved {
		restore()
	}
	return err
}
