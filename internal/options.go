package internal

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/mvc/pkg/config"
	"github.com/dmitrymomot/mvc/pkg/logger"
	"github.com/dmitrymomot/mvc/pkg/render"
)

// Option configures the application.
type Option func(*App)

// WithConfig replaces the configuration store.
func WithConfig(store *config.Store) Option {
	return func(a *App) {
		if store != nil {
			a.config = store
		}
	}
}

// WithConfigFS loads every .yaml, .yml and .json file of fsys into the
// configuration, in lexical order. Later files override earlier ones.
// Panics if a file cannot be parsed.
//
// Example:
//
//	//go:embed config
//	var configFiles embed.FS
//
//	mvc.New(
//	    mvc.WithConfigFS(configFiles),
//	)
func WithConfigFS(fsys fs.FS) Option {
	return func(a *App) {
		if err := a.config.LoadFS(fsys); err != nil {
			panic(fmt.Sprintf("config: %v", err))
		}
	}
}

// WithConfigPath loads configuration files or directories from disk.
// Each file is parsed once. Panics if a file cannot be parsed.
func WithConfigPath(paths ...string) Option {
	return func(a *App) {
		for _, p := range paths {
			if err := a.config.LoadPath(p); err != nil {
				panic(fmt.Sprintf("config: %v", err))
			}
		}
	}
}

// WithBase sets the path prefix the application is served under.
// Overrides the "framework.base" config value.
func WithBase(base string) Option {
	return func(a *App) {
		a.base = strings.Trim(base, "/")
	}
}

// WithRoutes sets the route table. Without it, routes are read from the
// "routes" config category.
func WithRoutes(defs ...RouteDefinition) Option {
	return func(a *App) {
		a.routeDefs = append(a.routeDefs, defs...)
	}
}

// WithControllers registers controller definitions.
func WithControllers(defs ...Definition) Option {
	return func(a *App) {
		a.controllers = append(a.controllers, defs...)
	}
}

// WithListener subscribes a listener to a lifecycle event.
// Listeners run in the order they are registered.
func WithListener(event Event, l Listener) Option {
	return func(a *App) {
		a.events.On(event, l)
	}
}

// WithRenderer registers a renderer under name and maps view types to it.
// A built-in renderer with the same name is replaced.
func WithRenderer(name string, factory RendererFactory, viewTypes ...string) Option {
	return func(a *App) {
		a.rendererRegs = append(a.rendererRegs, rendererReg{
			factory:   factory,
			name:      name,
			viewTypes: viewTypes,
		})
	}
}

// WithDefaultViewType sets the view type used when no renderer matches.
// Overrides the "view.default_view_type" config value. Defaults to "html".
func WithDefaultViewType(viewType string) Option {
	return func(a *App) {
		a.viewType = viewType
	}
}

// WithViews sets the file system HTML views and layouts are read from.
//
// Example:
//
//	//go:embed views
//	var views embed.FS
//
//	mvc.New(
//	    mvc.WithViews(views,
//	        render.WithComponent("shop/cart", "list", cartList),
//	    ),
//	)
func WithViews(fsys fs.FS, opts ...render.HTMLOption) Option {
	return func(a *App) {
		a.views = fsys
		a.htmlOptions = append(a.htmlOptions, opts...)
	}
}

// WithLayout sets the default layout directory and file.
// Overrides the "view.default_layout_path" and "view.default_layout_file" config values.
func WithLayout(path, file string) Option {
	return func(a *App) {
		a.layoutPath = path
		a.layoutFile = file
	}
}

// WithLocale sets the sources the request locale is negotiated from when
// the URL carries no locale prefix. Values that are not a locale are ignored.
//
// Example:
//
//	mvc.New(
//	    mvc.WithLocale(
//	        mvc.FromQuery("lang"),
//	        mvc.FromAcceptLanguage("en", "de", "pl"),
//	    ),
//	)
func WithLocale(sources ...ExtractorSource) Option {
	return func(a *App) {
		a.locale = NewExtractor(sources...)
	}
}

// WithService registers a named service available through Context.Service.
func WithService(name string, service any) Option {
	return func(a *App) {
		a.services[name] = service
	}
}

// WithMiddleware adds global HTTP middleware.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithMount serves handler under pattern instead of the request lifecycle.
func WithMount(pattern string, handler http.Handler) Option {
	return func(a *App) {
		if handler != nil {
			a.mounts = append(a.mounts, mountRoute{handler: handler, pattern: pattern})
		}
	}
}

// WithStaticFiles mounts a static file handler at the given pattern.
// Directory listings are disabled. Files are served with default cache headers.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	mvc.New(
//	    mvc.WithStaticFiles("/static/", assets, "public"),
//	)
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return func(a *App) {
		subFS, err := fs.Sub(fsys, subDir)
		if err != nil {
			panic(err)
		}

		fileServer := http.StripPrefix(strings.TrimSuffix(pattern, "/"), http.FileServerFS(subFS))

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Block directory listings
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}

			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("X-Content-Type-Options", "nosniff")

			fileServer.ServeHTTP(w, r)
		})

		a.staticRoutes = append(a.staticRoutes, mountRoute{handler: handler, pattern: pattern})
	}
}

// WithLogger configures a JSON logger for the given component.
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(extractors...).With("component", component)
	}
}

// WithCustomLogger sets a custom slog.Logger.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}
