package internal

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/dmitrymomot/mvc/pkg/config"
	"github.com/dmitrymomot/mvc/pkg/render"
)

// Built-in renderer names.
const (
	RendererHTML = "html"
	RendererJSON = "json"
	RendererCSV  = "csv"
	RendererXML  = "xml"
	RendererText = "text"

	// ViewTypeAny maps every view type without an explicit entry.
	ViewTypeAny = "*"
)

// RendererFactory creates a renderer on demand.
type RendererFactory func() (render.Renderer, error)

// RendererRegistry maps view types to renderers.
// It is read-only after the App is built.
type RendererRegistry struct {
	factories       map[string]RendererFactory
	viewTypes       map[string]string
	defaultViewType string
}

// NewRendererRegistry creates a registry with the built-in renderers.
// The HTML renderer is created by htmlFactory.
func NewRendererRegistry(htmlFactory RendererFactory) *RendererRegistry {
	r := &RendererRegistry{
		factories:       make(map[string]RendererFactory),
		viewTypes:       make(map[string]string),
		defaultViewType: RendererHTML,
	}
	r.Register(RendererHTML, htmlFactory, "html", "htm")
	r.Register(RendererJSON, static(render.JSON{}), "json")
	r.Register(RendererCSV, static(render.CSV{}), "csv")
	r.Register(RendererXML, static(render.XML{}), "xml")
	r.Register(RendererText, static(render.Text{}), "txt", ViewTypeCLI)
	return r
}

func static(r render.Renderer) RendererFactory {
	return func() (render.Renderer, error) { return r, nil }
}

// Register adds or replaces a renderer and maps view types to it.
func (r *RendererRegistry) Register(name string, factory RendererFactory, viewTypes ...string) {
	if factory == nil {
		return
	}
	r.factories[name] = factory
	for _, vt := range viewTypes {
		r.viewTypes[strings.ToLower(vt)] = name
	}
}

// SetDefaultViewType sets the view type used when no mapping matches.
func (r *RendererRegistry) SetDefaultViewType(viewType string) {
	r.defaultViewType = strings.ToLower(viewType)
}

// Configure applies a "view" config category: renderers.<name>.extensions
// remaps view types onto registered renderers and default_view_type
// replaces the fallback.
func (r *RendererRegistry) Configure(view *config.Map) {
	renderers := view.Map("renderers")
	for _, name := range renderers.Keys() {
		if _, ok := r.factories[name]; !ok {
			continue
		}
		for _, ext := range renderers.Map(name).Strings("extensions") {
			r.viewTypes[strings.ToLower(ext)] = name
		}
	}
	if vt := view.String("default_view_type"); vt != "" {
		r.SetDefaultViewType(vt)
	}
}

// ViewTypes returns the mapped view types, sorted.
func (r *RendererRegistry) ViewTypes() []string {
	return slices.Sorted(maps.Keys(r.viewTypes))
}

// Lookup returns the renderer name for a view type: the exact entry, then
// the wildcard entry, then the default view type's entry.
func (r *RendererRegistry) Lookup(viewType string) (string, bool) {
	for _, vt := range []string{strings.ToLower(viewType), ViewTypeAny, r.defaultViewType} {
		if name, ok := r.viewTypes[vt]; ok {
			return name, true
		}
	}
	return "", false
}

// Select creates the renderer for a view type.
func (r *RendererRegistry) Select(viewType string) (render.Renderer, error) {
	name, ok := r.Lookup(viewType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoRenderer, viewType)
	}
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoRenderer, name)
	}
	rd, err := factory()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRendererInit, name, err)
	}
	if rd == nil {
		return nil, fmt.Errorf("%w: %s returned nil", ErrRendererInit, name)
	}
	return rd, nil
}
