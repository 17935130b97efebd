package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// ComponentFunc builds a templ component for a response.
// Layout components render the view through templ.GetChildren.
type ComponentFunc func(res Response) templ.Component

// ViewData is the data passed to html/template views and layouts.
type ViewData struct {
	Status     int
	Module     string
	Controller string
	Action     string
	Values     map[string]any
	Data       any
	Messages   []string
	Variables  map[string]any
	Content    template.HTML // rendered view, set for layouts only
}

// HTML renders views inside layouts.
//
// A view is looked up as a registered component first, then as
// <viewPath>/<viewFile>.html (html/template) and <viewPath>/<viewFile>.md
// (markdown, sanitized) in the file system. A missing view is an error.
// A layout is looked up the same way under <layoutPath>/<layoutFile>;
// without one the view is written alone.
type HTML struct {
	fsys       fs.FS
	md         goldmark.Markdown
	policy     *bluemonday.Policy
	funcs      template.FuncMap
	components map[string]ComponentFunc
	layouts    map[string]ComponentFunc

	cache map[string]*template.Template
	mu    sync.RWMutex
}

// HTMLOption configures the HTML renderer.
type HTMLOption func(*HTML)

// WithComponent registers a component for the view at viewPath/viewFile.
func WithComponent(viewPath, viewFile string, fn ComponentFunc) HTMLOption {
	return func(h *HTML) {
		h.components[viewKey(viewPath, viewFile)] = fn
	}
}

// WithLayoutComponent registers a component for the layout at layoutPath/layoutFile.
func WithLayoutComponent(layoutPath, layoutFile string, fn ComponentFunc) HTMLOption {
	return func(h *HTML) {
		h.layouts[viewKey(layoutPath, layoutFile)] = fn
	}
}

// WithMarkdown replaces the markdown processor.
func WithMarkdown(md goldmark.Markdown) HTMLOption {
	return func(h *HTML) {
		h.md = md
	}
}

// WithSanitizer replaces the policy applied to rendered markdown.
func WithSanitizer(policy *bluemonday.Policy) HTMLOption {
	return func(h *HTML) {
		h.policy = policy
	}
}

// WithFuncs adds template functions available to html/template views and layouts.
func WithFuncs(funcs template.FuncMap) HTMLOption {
	return func(h *HTML) {
		for name, fn := range funcs {
			h.funcs[name] = fn
		}
	}
}

// NewHTML creates an HTML renderer reading templates from fsys.
// fsys may be nil when only components are used.
func NewHTML(fsys fs.FS, opts ...HTMLOption) *HTML {
	h := &HTML{
		fsys:       fsys,
		md:         goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy:     bluemonday.UGCPolicy(),
		funcs:      template.FuncMap{},
		components: make(map[string]ComponentFunc),
		layouts:    make(map[string]ComponentFunc),
		cache:      make(map[string]*template.Template),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Render implements Renderer.
func (h *HTML) Render(ctx context.Context, w http.ResponseWriter, res Response) error {
	view, err := h.view(res)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := h.layout(res, view).Render(ctx, &buf); err != nil {
		return fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	writeHead(w, res, "text/html; charset=utf-8")
	_, err = w.Write(buf.Bytes())
	return err
}

func (h *HTML) view(res Response) (templ.Component, error) {
	key := viewKey(res.ViewPath(), res.ViewFile())
	if fn, ok := h.components[key]; ok {
		return fn(res), nil
	}

	if tmpl, err := h.parse(key + ".html"); err == nil {
		return templateComponent(tmpl, newViewData(res, "")), nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	src, err := h.readFile(key + ".md")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrViewNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := h.md.Convert(src, &out); err != nil {
		return nil, fmt.Errorf("%w: failed to convert markdown: %v", ErrRenderFailed, err)
	}
	return templ.Raw(h.policy.Sanitize(out.String())), nil
}

func (h *HTML) layout(res Response, view templ.Component) templ.Component {
	if res.LayoutFile() == "" {
		return view
	}
	key := viewKey(res.LayoutPath(), res.LayoutFile())
	if fn, ok := h.layouts[key]; ok {
		layout := fn(res)
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			return layout.Render(templ.WithChildren(ctx, view), w)
		})
	}

	tmpl, err := h.parse(key + ".html")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return view
		}
		return templ.ComponentFunc(func(context.Context, io.Writer) error { return err })
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var content bytes.Buffer
		if err := view.Render(ctx, &content); err != nil {
			return err
		}
		return tmpl.Execute(w, newViewData(res, template.HTML(content.String())))
	})
}

// parse returns a cached template or parses and caches it.
func (h *HTML) parse(name string) (*template.Template, error) {
	h.mu.RLock()
	if cached, ok := h.cache[name]; ok {
		h.mu.RUnlock()
		return cached, nil
	}
	h.mu.RUnlock()

	content, err := h.readFile(name)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New(path.Base(name)).Funcs(h.funcs).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if cached, ok := h.cache[name]; ok {
		return cached, nil
	}
	h.cache[name] = tmpl
	return tmpl, nil
}

func (h *HTML) readFile(name string) ([]byte, error) {
	if h.fsys == nil {
		return nil, fs.ErrNotExist
	}
	return fs.ReadFile(h.fsys, name)
}

func templateComponent(tmpl *template.Template, data ViewData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return tmpl.Execute(w, data)
	})
}

func newViewData(res Response, content template.HTML) ViewData {
	return ViewData{
		Status:     statusOf(res),
		Module:     res.Module(),
		Controller: res.Controller(),
		Action:     res.Action(),
		Values:     res.Values(),
		Data:       res.Data(),
		Messages:   res.Messages(),
		Variables:  res.Variables(),
		Content:    content,
	}
}

func viewKey(dir, file string) string {
	return strings.TrimPrefix(path.Join(dir, file), "/")
}
