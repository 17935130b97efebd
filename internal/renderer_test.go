package internal_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mvc/internal"
	"github.com/dmitrymomot/mvc/pkg/config"
	"github.com/dmitrymomot/mvc/pkg/render"
)

func namedRenderer(name string) internal.RendererFactory {
	return func() (render.Renderer, error) {
		return render.RendererFunc(func(_ context.Context, w http.ResponseWriter, _ render.Response) error {
			_, err := w.Write([]byte(name))
			return err
		}), nil
	}
}

func TestRendererRegistryLookup(t *testing.T) {
	t.Parallel()

	t.Run("built-in view types", func(t *testing.T) {
		t.Parallel()
		reg := internal.NewRendererRegistry(namedRenderer("html"))
		for vt, want := range map[string]string{
			"html": internal.RendererHTML,
			"htm":  internal.RendererHTML,
			"JSON": internal.RendererJSON,
			"csv":  internal.RendererCSV,
			"xml":  internal.RendererXML,
			"txt":  internal.RendererText,
			"cli":  internal.RendererText,
		} {
			name, ok := reg.Lookup(vt)
			require.True(t, ok, vt)
			require.Equal(t, want, name, vt)
		}
	})

	t.Run("unknown view type uses the default", func(t *testing.T) {
		t.Parallel()
		reg := internal.NewRendererRegistry(namedRenderer("html"))
		name, ok := reg.Lookup("pdf")
		require.True(t, ok)
		require.Equal(t, internal.RendererHTML, name)

		reg.SetDefaultViewType("json")
		name, _ = reg.Lookup("")
		require.Equal(t, internal.RendererJSON, name)
	})

	t.Run("wildcard wins over the default", func(t *testing.T) {
		t.Parallel()
		reg := internal.NewRendererRegistry(namedRenderer("html"))
		reg.Register("any", namedRenderer("any"), internal.ViewTypeAny)
		name, _ := reg.Lookup("pdf")
		require.Equal(t, "any", name)
		name, _ = reg.Lookup("json")
		require.Equal(t, internal.RendererJSON, name)
	})

	t.Run("no renderer", func(t *testing.T) {
		t.Parallel()
		reg := internal.NewRendererRegistry(namedRenderer("html"))
		reg.SetDefaultViewType("pdf")
		_, err := reg.Select("doc")
		require.ErrorIs(t, err, internal.ErrNoRenderer)
	})
}

func TestRendererRegistryConfigure(t *testing.T) {
	t.Parallel()

	view := config.MapOf(
		"renderers", config.MapOf(
			"json", config.MapOf("extensions", []any{"api", "js"}),
			"missing", config.MapOf("extensions", []any{"nope"}),
		),
		"default_view_type", "txt",
	)

	reg := internal.NewRendererRegistry(namedRenderer("html"))
	reg.Configure(view)

	name, _ := reg.Lookup("api")
	require.Equal(t, internal.RendererJSON, name)
	name, _ = reg.Lookup("js")
	require.Equal(t, internal.RendererJSON, name)
	name, _ = reg.Lookup("nope")
	require.Equal(t, internal.RendererText, name)
	require.Contains(t, reg.ViewTypes(), "api")
	require.NotContains(t, reg.ViewTypes(), "nope")
}

func TestRendererRegistrySelect(t *testing.T) {
	t.Parallel()

	t.Run("creates the renderer", func(t *testing.T) {
		t.Parallel()
		reg := internal.NewRendererRegistry(namedRenderer("html"))
		r, err := reg.Select("html")
		require.NoError(t, err)

		w := internal.NewResponseWriter()
		require.NoError(t, r.Render(context.Background(), w, internal.NewResponse()))
		require.Equal(t, int64(4), w.Size())
	})

	t.Run("factory failure", func(t *testing.T) {
		t.Parallel()
		reg := internal.NewRendererRegistry(namedRenderer("html"))
		reg.Register("pdf", func() (render.Renderer, error) { return nil, errors.New("no fonts") }, "pdf")

		_, err := reg.Select("pdf")
		require.ErrorIs(t, err, internal.ErrRendererInit)
		require.Contains(t, err.Error(), "no fonts")
	})
}
