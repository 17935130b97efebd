package internal_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mvc/internal"
	"github.com/dmitrymomot/mvc/pkg/config"
)

// requestVia runs req through a fresh App and calls fn from a
// beforeroute listener.
func requestVia(t *testing.T, req *http.Request, opts []internal.Option, fn func(c internal.Context)) *httptest.ResponseRecorder {
	t.Helper()

	called := false
	opts = append(opts, internal.WithListener(internal.EventBeforeRoute, func(c internal.Context) error {
		called = true
		fn(c)
		return nil
	}))
	app := internal.New(opts...)

	w := httptest.NewRecorder()
	app.Handler().ServeHTTP(w, req)
	require.True(t, called, "listener was not called")
	return w
}

func TestExtractor(t *testing.T) {
	t.Parallel()

	t.Run("empty sources returns false", func(t *testing.T) {
		t.Parallel()

		ext := internal.NewExtractor()
		require.Zero(t, ext.Len())
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		requestVia(t, req, nil, func(c internal.Context) {
			v, ok := ext.Extract(c)
			require.False(t, ok)
			require.Empty(t, v)
		})
	})

	t.Run("first source wins", func(t *testing.T) {
		t.Parallel()

		ext := internal.NewExtractor(
			internal.FromHeader("X-First"),
			internal.FromHeader("X-Second"),
		)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-First", "first-val")
		req.Header.Set("X-Second", "second-val")

		requestVia(t, req, nil, func(c internal.Context) {
			v, ok := ext.Extract(c)
			require.True(t, ok)
			require.Equal(t, "first-val", v)
		})
	})

	t.Run("falls through to second source when first misses", func(t *testing.T) {
		t.Parallel()

		ext := internal.NewExtractor(
			internal.FromHeader("X-Missing"),
			internal.FromQuery("lang"),
		)

		req := httptest.NewRequest(http.MethodGet, "/?lang=de", nil)
		requestVia(t, req, nil, func(c internal.Context) {
			v, ok := ext.Extract(c)
			require.True(t, ok)
			require.Equal(t, "de", v)
		})
	})
}

func TestExtractorSources(t *testing.T) {
	t.Parallel()

	t.Run("body field", func(t *testing.T) {
		t.Parallel()

		form := url.Values{"lang": {"fr"}}
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		requestVia(t, req, nil, func(c internal.Context) {
			v, ok := internal.FromBody("lang")(c)
			require.True(t, ok)
			require.Equal(t, "fr", v)

			_, ok = internal.FromBody("missing")(c)
			require.False(t, ok)
		})
	})

	t.Run("config key", func(t *testing.T) {
		t.Parallel()

		store := config.New()
		store.Set("framework", "locale", "pl")
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		requestVia(t, req, []internal.Option{internal.WithConfig(store)}, func(c internal.Context) {
			v, ok := internal.FromConfig("framework", "locale")(c)
			require.True(t, ok)
			require.Equal(t, "pl", v)
		})
	})
}

func TestFromAcceptLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		header    string
		supported []string
		want      string
		ok        bool
	}{
		{name: "exact match", header: "de", supported: []string{"en", "de"}, want: "de", ok: true},
		{name: "quality order", header: "fr;q=0.5,de;q=0.9", supported: []string{"en", "fr", "de"}, want: "de", ok: true},
		{name: "regional variant", header: "en-GB,en;q=0.8", supported: []string{"de", "en"}, want: "en", ok: true},
		{name: "missing header", header: "", supported: []string{"en"}, ok: false},
		{name: "no supported locales", header: "en", supported: nil, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := internal.FromAcceptLanguage(tt.supported...)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Accept-Language", tt.header)
			}

			requestVia(t, req, nil, func(c internal.Context) {
				v, ok := src(c)
				require.Equal(t, tt.ok, ok)
				if tt.ok {
					require.Equal(t, tt.want, v)
				}
			})
		})
	}
}

func TestWithLocale(t *testing.T) {
	t.Parallel()

	opts := []internal.Option{
		internal.WithLocale(
			internal.FromQuery("lang"),
			internal.FromAcceptLanguage("en", "de"),
		),
	}

	t.Run("negotiated when the path has none", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/blog", nil)
		req.Header.Set("Accept-Language", "de-AT,de;q=0.9")
		requestVia(t, req, opts, func(c internal.Context) {
			require.Equal(t, "de", c.Request().Locale())
		})
	})

	t.Run("path locale wins", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/en/blog?lang=de", nil)
		requestVia(t, req, opts, func(c internal.Context) {
			require.Equal(t, "en", c.Request().Locale())
		})
	})

	t.Run("invalid value ignored", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/blog?lang=not+a+locale", nil)
		requestVia(t, req, opts, func(c internal.Context) {
			require.Empty(t, c.Request().Locale())
		})
	})
}
