package internal

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/dmitrymomot/mvc/pkg/logger"
)

const (
	// MaxReroutes bounds routing passes per request.
	MaxReroutes = 10

	// ViewTypeCLI is the view type of command-line requests.
	ViewTypeCLI = "cli"
)

var (
	optionalGroupPattern = regexp.MustCompile(`\[([^\[\]]*)\]`)
	trailingIndexPattern = regexp.MustCompile(`(/index){1,3}$`)
)

// Router resolves the request path to a module, controller and action and
// writes the result onto the response. One Router serves one request.
type Router struct {
	table    *RouteTable
	req      *Request
	res      *Response
	logger   *slog.Logger
	base     string
	reroutes int
}

// NewRouter binds a route table to a request and its response.
func NewRouter(table *RouteTable, req *Request, res *Response, log *slog.Logger, base string) *Router {
	if log == nil {
		log = logger.NewNope()
	}
	return &Router{
		table:  table,
		req:    req,
		res:    res,
		logger: log,
		base:   strings.Trim(base, "/"),
	}
}

// Reroutes returns the number of routing passes so far.
func (r *Router) Reroutes() int { return r.reroutes }

// Route matches the request path against the route table.
// A non-empty path replaces the request URI first.
//
// The outcome is recorded on the response: 404 with a message when nothing
// matches, 508 once the pass count exceeds MaxReroutes. The returned error
// describes that outcome; callers decide based on the status code.
func (r *Router) Route(ctx context.Context, path string) error {
	if path != "" {
		r.req.SetURI(path)
	}

	r.reroutes++
	if r.reroutes > MaxReroutes {
		logger.Critical(ctx, r.logger, "request rerouted too many times",
			slog.String("uri", r.req.URI()),
			slog.Int("reroutes", r.reroutes),
		)
		r.res.SetStatusCode(508)
		return fmt.Errorf("%w: %s", ErrTooManyReroutes, r.req.URI())
	}

	r.res.ResetMCAValues()

	name, vars, ok := r.table.Match(r.req.Path())
	if !ok {
		msg := "The requested URL " + r.req.URI() + " could not be found."
		r.logger.WarnContext(ctx, msg, slog.String("path", r.req.Path()))
		r.res.SetStatusCode(404)
		r.res.AddMessage(msg)
		return fmt.Errorf("%w: %s", ErrNoRouteMatch, r.req.Path())
	}
	r.logger.DebugContext(ctx, "route matched", slog.String("route", name), slog.String("path", r.req.Path()))

	if v := vars["module"]; v != "" {
		r.res.SetModule(v)
	}
	if v := vars["controller"]; v != "" {
		r.res.SetController(v)
	}
	if v := vars["action"]; v != "" {
		r.res.SetAction(v)
	}
	delete(vars, "module")
	delete(vars, "controller")
	delete(vars, "action")

	routeVars := make(map[string]any, len(vars))
	for k, v := range vars {
		routeVars[k] = v
	}
	r.res.SetVariables(routeVars)
	r.res.SetFilename(r.req.Filename())
	r.res.SetViewType(r.viewType())
	return nil
}

func (r *Router) viewType() string {
	if r.req.IsCLI() {
		return ViewTypeCLI
	}
	ext := r.req.Extension()
	if strings.Contains(ext, " ") {
		return ""
	}
	return ext
}

// URL builds a link to the named route.
//
// vars fill the route placeholders on top of the route defaults. Optional
// groups whose placeholders stay unfilled are dropped. Variables that are not
// placeholders go to the query string, except module, controller and action.
// Trailing /index segments are trimmed, then the locale and base are prefixed.
func (r *Router) URL(name string, vars map[string]any) (string, error) {
	def, ok := r.table.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownRoute, name)
	}

	values := make(map[string]string, len(def.Defaults)+len(vars))
	for k, v := range def.Defaults {
		values[k] = v
	}
	for k, v := range vars {
		values[k] = fmt.Sprint(v)
	}

	used := make(map[string]bool)
	fill := func(s string) (string, bool) {
		complete := true
		out := placeholderPattern.ReplaceAllStringFunc(s, func(token string) string {
			key := token[1 : len(token)-1]
			v, ok := values[key]
			if !ok || v == "" {
				complete = false
				return token
			}
			used[key] = true
			return url.PathEscape(v)
		})
		return out, complete
	}

	link := def.Pattern
	for optionalGroupPattern.MatchString(link) {
		link = optionalGroupPattern.ReplaceAllStringFunc(link, func(group string) string {
			filled, complete := fill(group[1 : len(group)-1])
			if !complete {
				return ""
			}
			return filled
		})
	}
	link, complete := fill(link)
	if !complete {
		return "", fmt.Errorf("%w: route %q is missing variables for %s", ErrInvalidRoute, name, link)
	}

	link = trailingIndexPattern.ReplaceAllString(link, "")
	if link != "/" {
		link = strings.TrimRight(link, "/")
	}

	query := url.Values{}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if used[k] || k == "module" || k == "controller" || k == "action" {
			continue
		}
		query.Add(k, values[k])
	}

	link = r.prefix(link, true)
	if len(query) > 0 {
		link += "?" + query.Encode()
	}
	return link, nil
}

// StaticURL prefixes an asset path with the base and, when withLocale is set
// and the request has one, the locale.
func (r *Router) StaticURL(path string, withLocale bool) string {
	return r.prefix(path, withLocale)
}

func (r *Router) prefix(path string, withLocale bool) string {
	parts := make([]string, 0, 3)
	if r.base != "" {
		parts = append(parts, r.base)
	}
	if withLocale && r.req.Locale() != "" {
		parts = append(parts, r.req.Locale())
	}
	if p := strings.Trim(path, "/"); p != "" {
		parts = append(parts, p)
	}
	return "/" + strings.Join(parts, "/")
}
