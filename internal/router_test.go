package internal_test

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mvc/internal"
	"github.com/dmitrymomot/mvc/pkg/config"
	"github.com/dmitrymomot/mvc/pkg/logger"
)

func defaultRoute() internal.RouteDefinition {
	return internal.RouteDefinition{
		Name:        "default",
		Pattern:     "/[:controller:]",
		Constraints: map[string]string{"controller": "[a-z]+"},
		Defaults:    map[string]string{"module": "index", "controller": "index", "action": "index"},
	}
}

func route(t *testing.T, defs []internal.RouteDefinition, uri string) (*internal.Router, *internal.Response, error) {
	t.Helper()
	req := internal.NewCLIRequest(uri, nil, "")
	res := internal.NewResponse()
	router := internal.NewRouter(internal.NewRouteTable(defs, nil), req, res, nil, "")
	err := router.Route(context.Background(), "")
	return router, res, err
}

func TestRouterScenarios(t *testing.T) {
	t.Parallel()

	t.Run("default route resolves controller", func(t *testing.T) {
		t.Parallel()
		_, res, err := route(t, []internal.RouteDefinition{defaultRoute()}, "/about")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, res.StatusCode())
		require.Equal(t, "index", res.Module())
		require.Equal(t, "about", res.Controller())
		require.Equal(t, "index", res.Action())
	})

	t.Run("constraint failure is a 404", func(t *testing.T) {
		t.Parallel()
		_, res, err := route(t, []internal.RouteDefinition{defaultRoute()}, "/About1")
		require.ErrorIs(t, err, internal.ErrNoRouteMatch)
		require.Equal(t, http.StatusNotFound, res.StatusCode())
		require.Equal(t, []string{"The requested URL /About1 could not be found."}, res.Messages())
	})

	t.Run("root path uses defaults", func(t *testing.T) {
		t.Parallel()
		_, res, err := route(t, []internal.RouteDefinition{defaultRoute()}, "/")
		require.NoError(t, err)
		require.Equal(t, "index", res.Controller())
	})
}

func TestRouterOrdering(t *testing.T) {
	t.Parallel()

	catchAll := internal.RouteDefinition{
		Name:        "default",
		Pattern:     "/:controller:",
		Constraints: map[string]string{"controller": "[a-z]+"},
		Defaults:    map[string]string{"module": "site"},
	}
	blog := internal.RouteDefinition{
		Name:     "blog",
		Pattern:  "/blog",
		Defaults: map[string]string{"module": "blog", "controller": "post", "action": "list"},
	}

	// default declared first still loses to a later specific route.
	_, res, err := route(t, []internal.RouteDefinition{catchAll, blog}, "/blog")
	require.NoError(t, err)
	require.Equal(t, "blog", res.Module())
	require.Equal(t, "post", res.Controller())
	require.Equal(t, "list", res.Action())

	// first declared match wins among the rest, no specificity ranking.
	wide := internal.RouteDefinition{Name: "wide", Pattern: "/:page:", Defaults: map[string]string{"controller": "page"}}
	_, res, err = route(t, []internal.RouteDefinition{wide, blog}, "/blog")
	require.NoError(t, err)
	require.Equal(t, "page", res.Controller())
	require.Equal(t, map[string]any{"page": "blog"}, res.Variables())

	table := internal.NewRouteTable([]internal.RouteDefinition{catchAll, blog, wide}, nil)
	names := []string{}
	for _, d := range table.Definitions() {
		names = append(names, d.Name)
	}
	require.Equal(t, []string{"blog", "wide", "default"}, names)
}

func TestRouterVariables(t *testing.T) {
	t.Parallel()

	def := internal.RouteDefinition{
		Name:        "post",
		Pattern:     "/posts/:id:[/:format:]",
		Constraints: map[string]string{"id": "[0-9]+", "format": "(full|short)"},
		Defaults:    map[string]string{"module": "blog", "controller": "post", "action": "show", "format": "full", "id": "0"},
	}

	t.Run("captures override defaults", func(t *testing.T) {
		t.Parallel()
		res := internal.NewResponse()
		router := internal.NewRouter(internal.NewRouteTable([]internal.RouteDefinition{def}, nil), httpRequest(t, "/posts/42/short.json"), res, nil, "")
		require.NoError(t, router.Route(context.Background(), ""))
		require.Equal(t, map[string]any{"id": "42", "format": "short"}, res.Variables())
		require.Equal(t, "json", res.ViewType())
		require.Equal(t, "show", res.Action())
	})

	t.Run("empty optional capture keeps default", func(t *testing.T) {
		t.Parallel()
		_, res, err := route(t, []internal.RouteDefinition{def}, "/POSTS/7")
		require.NoError(t, err)
		require.Equal(t, map[string]any{"id": "7", "format": "full"}, res.Variables())
	})
}

func TestRouterViewType(t *testing.T) {
	t.Parallel()

	defs := []internal.RouteDefinition{defaultRoute()}

	r := httpRequest(t, "/about.csv")
	res := internal.NewResponse()
	router := internal.NewRouter(internal.NewRouteTable(defs, nil), r, res, nil, "")
	require.NoError(t, router.Route(context.Background(), ""))
	require.Equal(t, "csv", res.ViewType())

	_, res, err := route(t, defs, "/about.json")
	require.NoError(t, err)
	require.Equal(t, internal.ViewTypeCLI, res.ViewType())

	r = httpRequest(t, "/about.x%20y")
	res = internal.NewResponse()
	router = internal.NewRouter(internal.NewRouteTable(defs, nil), r, res, nil, "")
	require.NoError(t, router.Route(context.Background(), ""))
	require.Empty(t, res.ViewType())
}

func httpRequest(t *testing.T, uri string) *internal.Request {
	t.Helper()
	return newRequest(t, http.MethodGet, uri, "", "")
}

func TestRouterReroutes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, logger.LevelNotice)

	req := internal.NewCLIRequest("/about", nil, "")
	res := internal.NewResponse()
	router := internal.NewRouter(internal.NewRouteTable([]internal.RouteDefinition{defaultRoute()}, nil), req, res, log, "")

	for i := 1; i <= internal.MaxReroutes; i++ {
		require.NoError(t, router.Route(context.Background(), "/about"))
		require.Equal(t, i, router.Reroutes())
		require.Equal(t, http.StatusOK, res.StatusCode())
	}

	err := router.Route(context.Background(), "/about")
	require.ErrorIs(t, err, internal.ErrTooManyReroutes)
	require.Equal(t, 11, router.Reroutes())
	require.Equal(t, 508, res.StatusCode())
	require.Contains(t, buf.String(), `"level":"CRITICAL"`)
}

func TestRouterResetsBetweenPasses(t *testing.T) {
	t.Parallel()

	req := internal.NewCLIRequest("/about", nil, "")
	res := internal.NewResponse()
	router := internal.NewRouter(internal.NewRouteTable([]internal.RouteDefinition{defaultRoute()}, nil), req, res, nil, "")

	require.NoError(t, router.Route(context.Background(), ""))
	res.SetAction("edit")
	res.SetViewFile("custom")

	require.NoError(t, router.Route(context.Background(), "/contact"))
	require.Equal(t, "contact", res.Controller())
	require.Equal(t, "index", res.Action())
	require.Equal(t, "index", res.ViewFile())
	require.Equal(t, "/contact", req.URI())
}

func TestRouteCompile(t *testing.T) {
	t.Parallel()

	re, err := defaultRoute().Compile()
	require.NoError(t, err)
	require.True(t, re.MatchString("/ABOUT"))
	require.False(t, re.MatchString("/about/more"))

	for _, pattern := range []string{"/[a", "/a]", "/[x]]"} {
		_, err := internal.RouteDefinition{Name: "bad", Pattern: pattern}.Compile()
		require.ErrorIs(t, err, internal.ErrInvalidRoute, pattern)
	}

	// invalid routes are skipped, the rest still match
	_, res, err := route(t, []internal.RouteDefinition{{Name: "bad", Pattern: "/[about"}, defaultRoute()}, "/about")
	require.NoError(t, err)
	require.Equal(t, "about", res.Controller())
}

func TestRoutesFromConfig(t *testing.T) {
	t.Parallel()

	m, err := config.Decode([]byte(`
default:
  route: "/[:controller:]"
  constraints:
    controller: "[a-z]+"
  defaults:
    module: index
shop:
  route: "/shop/:item:"
blog:
  route: "/blog"
`))
	require.NoError(t, err)

	defs := internal.RoutesFromConfig(m)
	require.Len(t, defs, 3)
	require.Equal(t, "shop", defs[0].Name)
	require.Equal(t, "blog", defs[1].Name)
	require.Equal(t, "default", defs[2].Name)
	require.Equal(t, map[string]string{"controller": "[a-z]+"}, defs[2].Constraints)
	require.Equal(t, map[string]string{"module": "index"}, defs[2].Defaults)
	require.Empty(t, defs[0].Constraints)
}

func TestRouterURL(t *testing.T) {
	t.Parallel()

	defs := []internal.RouteDefinition{
		defaultRoute(),
		{
			Name:     "post",
			Pattern:  "/blog/:slug:[/:page:]",
			Defaults: map[string]string{"module": "blog", "controller": "post", "action": "show"},
		},
		{
			Name:     "home",
			Pattern:  "/:module:/:controller:/:action:",
			Defaults: map[string]string{"module": "index", "controller": "index", "action": "index"},
		},
	}

	newRouter := func(uri, base string) *internal.Router {
		req := internal.NewCLIRequest(uri, nil, base)
		return internal.NewRouter(internal.NewRouteTable(defs, nil), req, internal.NewResponse(), nil, base)
	}

	r := newRouter("/", "")

	u, err := r.URL("post", map[string]any{"slug": "hello world", "page": 2, "ref": "x"})
	require.NoError(t, err)
	require.Equal(t, "/blog/hello%20world/2?ref=x", u)

	u, err = r.URL("post", map[string]any{"slug": "hello"})
	require.NoError(t, err)
	require.Equal(t, "/blog/hello", u)

	u, err = r.URL("home", nil)
	require.NoError(t, err)
	require.Equal(t, "/", u)

	u, err = r.URL("home", map[string]any{"module": "shop"})
	require.NoError(t, err)
	require.Equal(t, "/shop", u)

	u, err = r.URL("default", map[string]any{"controller": "about", "b": 2, "a": 1})
	require.NoError(t, err)
	require.Equal(t, "/about?a=1&b=2", u)

	_, err = r.URL("missing", nil)
	require.ErrorIs(t, err, internal.ErrUnknownRoute)

	_, err = r.URL("post", nil)
	require.ErrorIs(t, err, internal.ErrInvalidRoute)

	localized := newRouter("/app/de/about", "app")
	u, err = localized.URL("post", map[string]any{"slug": "x"})
	require.NoError(t, err)
	require.Equal(t, "/app/de/blog/x", u)
	require.Equal(t, "/app/css/site.css", localized.StaticURL("/css/site.css", false))
	require.Equal(t, "/app/de/css/site.css", localized.StaticURL("css/site.css", true))
}
