package internal

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/dmitrymomot/mvc/pkg/config"
	"github.com/dmitrymomot/mvc/pkg/logger"
)

// DefaultRouteName names the catch-all route. It is always matched last.
const DefaultRouteName = "default"

// defaultFragment is used for placeholders without a constraint.
const defaultFragment = `[^/]+`

var placeholderPattern = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*):`)

// RouteDefinition is a named URL pattern.
//
// Pattern syntax: literal text, optional groups in square brackets and
// :name: placeholders. Constraints map placeholder names to regular
// expression fragments; Defaults supply values for names a match leaves empty.
//
// Optional groups are translated by plain substitution, so nested or
// adjacent groups combined with constraints that contain brackets are not
// supported.
type RouteDefinition struct {
	Constraints map[string]string
	Defaults    map[string]string
	Name        string
	Pattern     string
}

// RoutesFromConfig reads route definitions from the "routes" config category.
// Each entry holds a "route" pattern and optional "constraints" and "defaults" maps.
// Declaration order is kept, except that the default route is moved last.
func RoutesFromConfig(routes *config.Map) []RouteDefinition {
	defs := make([]RouteDefinition, 0, routes.Len())
	for _, name := range routes.Keys() {
		entry := routes.Map(name)
		defs = append(defs, RouteDefinition{
			Name:        name,
			Pattern:     entry.String("route"),
			Constraints: entry.StringMap("constraints"),
			Defaults:    entry.StringMap("defaults"),
		})
	}
	return orderRoutes(defs)
}

// orderRoutes moves the default route to the end, keeping the rest in order.
func orderRoutes(defs []RouteDefinition) []RouteDefinition {
	out := make([]RouteDefinition, 0, len(defs))
	var fallback *RouteDefinition
	for i := range defs {
		if defs[i].Name == DefaultRouteName {
			fallback = &defs[i]
			continue
		}
		out = append(out, defs[i])
	}
	if fallback != nil {
		out = append(out, *fallback)
	}
	return out
}

// Compile translates the pattern into an anchored, case-insensitive expression.
func (d RouteDefinition) Compile() (*regexp.Regexp, error) {
	if err := checkBrackets(d.Pattern); err != nil {
		return nil, fmt.Errorf("%w: route %q: %v", ErrInvalidRoute, d.Name, err)
	}

	expr := strings.NewReplacer("[", "(", "]", ")?").Replace(d.Pattern)
	expr = placeholderPattern.ReplaceAllStringFunc(expr, func(token string) string {
		name := token[1 : len(token)-1]
		fragment, ok := d.Constraints[name]
		if !ok || fragment == "" {
			fragment = defaultFragment
		}
		return "(?P<" + name + ">" + fragment + ")"
	})

	re, err := regexp.Compile("(?i)^" + expr + "$")
	if err != nil {
		return nil, fmt.Errorf("%w: route %q: %v", ErrInvalidRoute, d.Name, err)
	}
	return re, nil
}

func checkBrackets(pattern string) error {
	depth := 0
	for i, r := range pattern {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return fmt.Errorf("unexpected ']' at offset %d", i)
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("%d unclosed '['", depth)
	}
	return nil
}

type compiledRoute struct {
	re  *regexp.Regexp
	def RouteDefinition
}

// RouteTable holds route definitions and compiles them on first use.
// It is safe for concurrent use and is shared by all requests of an App.
type RouteTable struct {
	logger   *slog.Logger
	byName   map[string]RouteDefinition
	defs     []RouteDefinition
	compiled []compiledRoute
	once     sync.Once
}

// NewRouteTable creates a table. The default route is moved last.
func NewRouteTable(defs []RouteDefinition, log *slog.Logger) *RouteTable {
	ordered := orderRoutes(defs)
	byName := make(map[string]RouteDefinition, len(ordered))
	for _, d := range ordered {
		byName[d.Name] = d
	}
	if log == nil {
		log = logger.NewNope()
	}
	return &RouteTable{
		logger: log,
		byName: byName,
		defs:   ordered,
	}
}

// Definitions returns the definitions in match order.
func (t *RouteTable) Definitions() []RouteDefinition {
	out := make([]RouteDefinition, len(t.defs))
	copy(out, t.defs)
	return out
}

// Lookup returns the definition with the given name.
func (t *RouteTable) Lookup(name string) (RouteDefinition, bool) {
	d, ok := t.byName[name]
	return d, ok
}

// Match returns the first route matching path and the resolved variables:
// the route defaults overridden by non-empty named captures.
func (t *RouteTable) Match(path string) (string, map[string]string, bool) {
	t.once.Do(t.compile)

	for _, cr := range t.compiled {
		m := cr.re.FindStringSubmatch(path)
		if m == nil {
			continue
		}
		vars := make(map[string]string, len(cr.def.Defaults)+len(m))
		for k, v := range cr.def.Defaults {
			vars[k] = v
		}
		for i, name := range cr.re.SubexpNames() {
			if name == "" || m[i] == "" {
				continue
			}
			vars[name] = m[i]
		}
		return cr.def.Name, vars, true
	}
	return "", nil, false
}

func (t *RouteTable) compile() {
	t.compiled = make([]compiledRoute, 0, len(t.defs))
	for _, d := range t.defs {
		re, err := d.Compile()
		if err != nil {
			t.logger.Error("route skipped", slog.String("route", d.Name), slog.Any("error", err))
			continue
		}
		t.compiled = append(t.compiled, compiledRoute{re: re, def: d})
	}
}
