package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mvc/pkg/config"
)

const routesYAML = `
routes:
  default:
    route: "/[:controller:]"
    constraints:
      controller: "[a-z]+"
  blog:
    route: "/blog/:slug:"
    constraints:
      slug: "[a-z0-9-]+"
    defaults:
      module: blog
      controller: post
      action: view
  about:
    route: "/about"
framework:
  base: app
`

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("preserves declaration order", func(t *testing.T) {
		t.Parallel()
		m, err := config.Decode([]byte(routesYAML))
		require.NoError(t, err)
		require.Equal(t, []string{"routes", "framework"}, m.Keys())
		require.Equal(t, []string{"default", "blog", "about"}, m.Map("routes").Keys())
	})

	t.Run("nested values", func(t *testing.T) {
		t.Parallel()
		m, err := config.Decode([]byte(routesYAML))
		require.NoError(t, err)
		blog := m.Map("routes").Map("blog")
		require.Equal(t, "/blog/:slug:", blog.String("route"))
		require.Equal(t, map[string]string{"module": "blog", "controller": "post", "action": "view"}, blog.StringMap("defaults"))
		require.Equal(t, "app", m.Map("framework").String("base"))
	})

	t.Run("json input", func(t *testing.T) {
		t.Parallel()
		m, err := config.Decode([]byte(`{"view": {"default_view_type": "html", "renderers": {"json": {"extensions": ["json", "api"]}}}}`))
		require.NoError(t, err)
		view := m.Map("view")
		require.Equal(t, "html", view.String("default_view_type"))
		require.Equal(t, []string{"json", "api"}, view.Map("renderers").Map("json").Strings("extensions"))
	})

	t.Run("empty document", func(t *testing.T) {
		t.Parallel()
		m, err := config.Decode(nil)
		require.NoError(t, err)
		require.Equal(t, 0, m.Len())
	})

	t.Run("non-mapping root", func(t *testing.T) {
		t.Parallel()
		_, err := config.Decode([]byte("- a\n- b\n"))
		require.ErrorIs(t, err, config.ErrInvalidFile)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()
		_, err := config.Decode([]byte("routes: [unclosed"))
		require.ErrorIs(t, err, config.ErrInvalidFile)
	})
}

func TestMapScalars(t *testing.T) {
	t.Parallel()

	m := config.MapOf("n", 42, "f", 1.5, "b", true, "s", "x", "nil", nil, "list", []any{"a", 1})
	require.Equal(t, "42", m.String("n"))
	require.Equal(t, "1.5", m.String("f"))
	require.Equal(t, "true", m.String("b"))
	require.Equal(t, "x", m.String("s"))
	require.Empty(t, m.String("nil"))
	require.Empty(t, m.String("list"))
	require.Equal(t, []string{"a", "1"}, m.Strings("list"))
	require.Equal(t, []string{"x"}, m.Strings("s"))
	require.Empty(t, m.String("missing"))
	require.Equal(t, 0, m.Map("missing").Len())
}

func TestMapMerge(t *testing.T) {
	t.Parallel()

	base := config.MapOf(
		"routes", config.MapOf(
			"default", config.MapOf("route", "/", "defaults", config.MapOf("module", "index")),
			"blog", config.MapOf("route", "/blog"),
		),
		"list", []any{"a", "b"},
	)
	over := config.MapOf(
		"routes", config.MapOf(
			"default", config.MapOf("defaults", config.MapOf("controller", "home")),
			"shop", config.MapOf("route", "/shop"),
		),
		"list", []any{"c"},
	)

	base.Merge(over)

	routes := base.Map("routes")
	require.Equal(t, []string{"default", "blog", "shop"}, routes.Keys())
	require.Equal(t, "/", routes.Map("default").String("route"))
	require.Equal(t, map[string]string{"module": "index", "controller": "home"}, routes.Map("default").StringMap("defaults"))
	require.Equal(t, []string{"c"}, base.Strings("list"))

	// Merged nested maps are copies, not shared with the source.
	over.Map("routes").Map("shop").Set("route", "/changed")
	require.Equal(t, "/shop", routes.Map("shop").String("route"))
}

func TestMapDelete(t *testing.T) {
	t.Parallel()

	m := config.MapOf("a", 1, "b", 2, "c", 3)
	m.Delete("b")
	m.Delete("missing")
	require.Equal(t, []string{"a", "c"}, m.Keys())
	require.False(t, m.Has("b"))
}

func TestStore(t *testing.T) {
	t.Parallel()

	t.Run("missing category is empty", func(t *testing.T) {
		t.Parallel()
		s := config.New()
		require.NotNil(t, s.Category("routes"))
		require.Equal(t, 0, s.Category("routes").Len())
	})

	t.Run("later sources override earlier ones", func(t *testing.T) {
		t.Parallel()
		s := config.New()
		require.NoError(t, s.LoadBytes([]byte(routesYAML)))
		require.NoError(t, s.LoadBytes([]byte("framework:\n  base: other\n")))
		require.Equal(t, "other", s.Category("framework").String("base"))
		require.Equal(t, 3, s.Category("routes").Len())
	})

	t.Run("category is a copy", func(t *testing.T) {
		t.Parallel()
		s := config.New()
		s.Set("framework", "base", "app")
		s.Category("framework").Set("base", "mutated")
		require.Equal(t, "app", s.Category("framework").String("base"))
	})

	t.Run("load fs", func(t *testing.T) {
		t.Parallel()
		fsys := fstest.MapFS{
			"10-routes.yaml": &fstest.MapFile{Data: []byte(routesYAML)},
			"20-view.json":   &fstest.MapFile{Data: []byte(`{"view": {"default_view_type": "json"}}`)},
			"README.md":      &fstest.MapFile{Data: []byte("ignored")},
		}
		s := config.New()
		require.NoError(t, s.LoadFS(fsys))
		require.Equal(t, []string{"routes", "framework", "view"}, s.Categories())
		require.Equal(t, "json", s.Category("view").String("default_view_type"))
	})

	t.Run("file parsed once", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		file := filepath.Join(dir, "app.yaml")
		require.NoError(t, os.WriteFile(file, []byte("framework:\n  base: first\n"), 0o600))

		s := config.New()
		require.NoError(t, s.LoadFile(file))
		s.Set("framework", "base", "changed")
		require.NoError(t, s.LoadFile(file))
		require.Equal(t, "changed", s.Category("framework").String("base"))
	})

	t.Run("load directory", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yml"), []byte("view:\n  default_view_type: html\n"), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("view:\n  default_view_type: json\n"), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o600))

		s := config.New()
		require.NoError(t, s.LoadPath(dir))
		require.Equal(t, "json", s.Category("view").String("default_view_type"))
	})

	t.Run("unsupported extension", func(t *testing.T) {
		t.Parallel()
		s := config.New()
		require.ErrorIs(t, s.LoadFile("config.toml"), config.ErrUnsupportedFormat)
	})
}

func TestMapPlain(t *testing.T) {
	t.Parallel()

	m := config.MapOf("a", config.MapOf("b", 1), "list", []any{config.MapOf("c", "d")})
	require.Equal(t, map[string]any{
		"a":    map[string]any{"b": 1},
		"list": []any{map[string]any{"c": "d"}},
	}, m.Plain())

	var empty *config.Map
	require.Empty(t, empty.Plain())
}
