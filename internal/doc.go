// Package internal provides the core types and implementation of the mvc framework.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/mvc" instead, which re-exports the public API.
//
// # Core Types
//
//   - App: holds configuration, routes, controllers, renderers and listeners
//     shared by every request, and serves HTTP and command-line requests
//   - Cycle: drives one request through the lifecycle and implements Context
//   - Request: the parsed request with base, locale and extension stripped
//   - Router: matches the request path against the route table and builds URLs
//   - Response: status, module/controller/action, values, data and messages
//   - Loader: resolves and invokes the controller action named by the response
//   - RendererRegistry: maps view types to renderers
//   - EventBus: ordered lifecycle listeners
//
// # Lifecycle
//
// Every request fires the same events in order:
//
//	initialized
//	beforeroute, afterroute
//	beforeload, afterload
//	beforeerrorhandling, aftererrorhandling (status other than 200)
//	beforerender, afterrender
//	beginshutdown
//
// Output is buffered and written to the client once the cycle completes,
// so a failing renderer can still be replaced by a plain-text error.
//
// # Controllers
//
// Controllers are plain types built per request by a constructor and
// registered with their actions:
//
//	type Posts struct {
//	    c    mvc.Context
//	    repo *Repo
//	}
//
//	func newPosts(c mvc.Context) (*Posts, error) {
//	    repo, err := mvc.ServiceAs[*Repo](c, "posts")
//	    return &Posts{c: c, repo: repo}, err
//	}
//
//	func (p *Posts) Show(vars mvc.Vars) error {
//	    post, err := p.repo.Get(p.c, mvc.VarDefault(vars, "id", 0))
//	    if err != nil {
//	        return mvc.ErrNotFound("post not found")
//	    }
//	    p.c.Response().SetData(post)
//	    return nil
//	}
//
//	mvc.Controller("blog", "posts", newPosts).
//	    Action("show", (*Posts).Show)
//
// # Routes
//
// Route patterns use ":name:" placeholders and "[...]" optional groups:
//
//	routes:
//	  blog:
//	    route: "/blog[/:controller:[/:action:[/:id:]]]"
//	    defaults: { module: blog }
//	    constraints: { id: "[0-9]+" }
package internal
