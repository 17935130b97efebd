// Package mvc is a small MVC web framework built around a fixed request
// lifecycle.
//
// An [App] is built once with [New] and is immutable afterwards. Every
// request, from HTTP or the command line, runs through the same phases:
// routing, controller dispatch, error handling and rendering, with
// listeners able to hook into each boundary.
//
// # Quick Start
//
//	//go:embed config views
//	var files embed.FS
//
//	app := mvc.New(
//	    mvc.WithConfigFS(files),
//	    mvc.WithViews(files),
//	    mvc.WithLogger("blog"),
//	    mvc.WithControllers(
//	        mvc.Controller("index", "index", newHome).
//	            Action("index", (*Home).Index),
//	    ),
//	)
//
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Configuration
//
// Configuration is grouped into categories, one top-level key each.
// The framework reads three of them:
//
//	framework:
//	  base: shop            # path prefix stripped from every request
//
//	routes:
//	  default:
//	    route: "/[:controller:[/:action:]]"
//	    defaults: { module: index, controller: index, action: index }
//
//	view:
//	  default_view_type: html
//	  default_layout_path: layouts
//	  default_layout_file: main
//	  renderers:
//	    json:
//	      extensions: [api]
//	  site_name: Shop       # every other key becomes a response value
//
// # Controllers
//
// A controller is built per request by its constructor. Actions receive the
// request variables: query values, then body values, then route variables.
// An action returning an [HTTPError] sets the status and triggers the error
// controller ("error" module, "error" controller, action "error<status>").
//
//	func (h *Home) Index(vars mvc.Vars) error {
//	    h.c.Response().SetData(map[string]any{"page": mvc.VarDefault(vars, "page", 1)})
//	    return nil
//	}
//
// # Rendering
//
// The extension of the requested file selects the renderer: ".json", ".csv",
// ".xml" and ".txt" have built-in renderers, everything else falls back to
// the default view type, HTML unless configured otherwise. Command-line
// requests render as plain text.
//
// # Command Line
//
// [App.RunCLI] dispatches a URI without an HTTP server:
//
//	status := app.RunCLI(ctx, os.Stdout, "/reports/daily", os.Args[2:])
package mvc
