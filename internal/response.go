package internal

import (
	"maps"
	"path"
	"slices"

	"github.com/dmitrymomot/mvc/pkg/config"
)

const (
	// DefaultMCA is the module, controller and action used when a route leaves them unset.
	DefaultMCA = "index"

	// DefaultLayoutFile is the layout rendered around views unless overridden.
	DefaultLayoutFile = "_default"
)

// Response accumulates the outcome of a request: routing target, status,
// template values, the data payload and user-facing messages.
// It is consumed once by a renderer.
type Response struct {
	values       *config.Map
	data         any
	routeVars    map[string]any
	requestVars  map[string]any
	module       string
	controller   string
	action       string
	viewType     string
	layoutPath   string
	layoutFile   string
	viewPath     string
	viewFile     string
	downloadName string
	filename     string
	messages     []string
	status       int
	download     bool
}

// NewResponse creates a response with status 200 and index/index/index routing.
func NewResponse() *Response {
	return &Response{
		values:      config.NewMap(),
		routeVars:   make(map[string]any),
		requestVars: make(map[string]any),
		module:      DefaultMCA,
		controller:  DefaultMCA,
		action:      DefaultMCA,
		layoutFile:  DefaultLayoutFile,
		status:      200,
	}
}

func (r *Response) StatusCode() int { return r.status }

func (r *Response) SetStatusCode(code int) { r.status = code }

func (r *Response) Module() string     { return r.module }
func (r *Response) Controller() string { return r.controller }
func (r *Response) Action() string     { return r.action }

func (r *Response) SetModule(module string)         { r.module = module }
func (r *Response) SetController(controller string) { r.controller = controller }
func (r *Response) SetAction(action string)         { r.action = action }

// ResetMCAValues restores index/index/index routing, clears the view type
// and drops any explicitly set view file.
func (r *Response) ResetMCAValues() {
	r.module = DefaultMCA
	r.controller = DefaultMCA
	r.action = DefaultMCA
	r.viewType = ""
	r.viewFile = ""
}

// ViewType returns the negotiated output format key.
func (r *Response) ViewType() string { return r.viewType }

func (r *Response) SetViewType(viewType string) { r.viewType = viewType }

// Set stores a named template value. Keys keep their first insertion order.
func (r *Response) Set(key string, value any) { r.values.Set(key, value) }

// Value returns a named value, or nil.
func (r *Response) Value(key string) any {
	v, _ := r.values.Get(key)
	return config.PlainValue(v)
}

// Values returns a copy of all named values.
func (r *Response) Values() map[string]any { return r.values.Plain() }

// ValueKeys returns the value names in insertion order.
func (r *Response) ValueKeys() []string { return r.values.Keys() }

// Data returns the data payload.
func (r *Response) Data() any { return r.data }

// SetData replaces the data payload.
func (r *Response) SetData(data any) { r.data = data }

// AddMessage appends a user-facing message.
func (r *Response) AddMessage(msg string) { r.messages = append(r.messages, msg) }

func (r *Response) truncateMessages(n int) {
	if n < len(r.messages) {
		r.messages = r.messages[:n]
	}
}

// Messages returns the messages in the order they were added.
func (r *Response) Messages() []string { return slices.Clone(r.messages) }

// Variables returns the route variables of the last successful match.
func (r *Response) Variables() map[string]any { return maps.Clone(r.routeVars) }

// SetVariables replaces the route variables.
func (r *Response) SetVariables(vars map[string]any) {
	r.routeVars = make(map[string]any, len(vars))
	maps.Copy(r.routeVars, vars)
}

// RequestVariables returns the variables passed to the dispatched action.
func (r *Response) RequestVariables() map[string]any { return maps.Clone(r.requestVars) }

// SetRequestVariables replaces the variables passed to the dispatched action.
func (r *Response) SetRequestVariables(vars map[string]any) {
	r.requestVars = make(map[string]any, len(vars))
	maps.Copy(r.requestVars, vars)
}

func (r *Response) LayoutPath() string { return r.layoutPath }

func (r *Response) SetLayoutPath(p string) { r.layoutPath = p }

// LayoutFile returns the layout name. An empty name renders views without a layout.
func (r *Response) LayoutFile() string { return r.layoutFile }

func (r *Response) SetLayoutFile(name string) { r.layoutFile = name }

// ViewPath returns the explicit view directory, or <module>/<controller>.
func (r *Response) ViewPath() string {
	if r.viewPath != "" {
		return r.viewPath
	}
	return path.Join(r.module, r.controller)
}

func (r *Response) SetViewPath(p string) { r.viewPath = p }

// ViewFile returns the explicit view name, or the action.
func (r *Response) ViewFile() string {
	if r.viewFile != "" {
		return r.viewFile
	}
	return r.action
}

func (r *Response) SetViewFile(name string) { r.viewFile = name }

// IsDownload reports whether the output should be sent as an attachment.
func (r *Response) IsDownload() bool { return r.download }

// SetDownload flags the output as an attachment. An empty name falls back
// to the request filename.
func (r *Response) SetDownload(download bool, name string) {
	r.download = download
	r.downloadName = name
}

// DownloadFilename returns the attachment name without extension.
func (r *Response) DownloadFilename() string {
	if r.downloadName != "" {
		return r.downloadName
	}
	return r.filename
}

// SetFilename records the request filename used for download naming.
func (r *Response) SetFilename(name string) { r.filename = name }
