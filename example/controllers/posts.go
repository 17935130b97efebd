// Package controllers holds the controllers of the example blog.
package controllers

import (
	"net/http"

	"github.com/dmitrymomot/mvc"
)

// StoreService is the service name the post store is registered under.
const StoreService = "posts"

// Posts serves the index/posts controller.
type Posts struct {
	c     mvc.Context
	store *Store
}

// NewPosts resolves the store from the registered services.
func NewPosts(c mvc.Context) (*Posts, error) {
	store, err := mvc.ServiceAs[*Store](c, StoreService)
	if err != nil {
		return nil, err
	}
	return &Posts{c: c, store: store}, nil
}

// Definition registers the controller and its actions.
func Definition() *mvc.ControllerDef[*Posts] {
	return mvc.Controller("index", "posts", NewPosts).
		Action("index", (*Posts).Index).
		Action("show", (*Posts).Show).
		Action("create", (*Posts).Create).
		Action("about", (*Posts).About)
}

func (p *Posts) Index(mvc.Vars) error {
	p.c.Response().SetData(p.store.List())
	return nil
}

func (p *Posts) Show(vars mvc.Vars) error {
	post, ok := p.store.Get(mvc.Var[int](vars, "id"))
	if !ok {
		return mvc.ErrNotFound("Post not found.")
	}
	p.c.Response().SetData(post)
	p.c.Response().Set("title", post.Title)
	return nil
}

// Create adds a post from the title and body request variables.
// Only POST and command-line requests may create posts.
func (p *Posts) Create(vars mvc.Vars) error {
	req := p.c.Request()
	if req.Method() != http.MethodPost && !req.IsCLI() {
		return mvc.NewHTTPError(http.StatusMethodNotAllowed, "Posts are created with POST.")
	}

	title := vars.String("title")
	if title == "" {
		return mvc.ErrUnprocessable("A title is required.", mvc.WithErrorCode("title_required"))
	}

	post := p.store.Add(title, vars.String("body"))
	p.c.LogInfo("post created", "id", post.ID)

	p.c.Response().SetData(post)
	p.c.Response().SetViewFile("show")
	return nil
}

// About renders the markdown page.
func (p *Posts) About(mvc.Vars) error { return nil }
