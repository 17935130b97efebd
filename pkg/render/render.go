package render

import (
	"context"
	"fmt"
	"net/http"
)

// Response is the read-only view of a response that renderers consume.
type Response interface {
	StatusCode() int
	Module() string
	Controller() string
	Action() string
	ViewType() string
	Value(key string) any
	Values() map[string]any
	ValueKeys() []string
	Data() any
	Messages() []string
	Variables() map[string]any
	LayoutPath() string
	LayoutFile() string
	ViewPath() string
	ViewFile() string
	IsDownload() bool
	DownloadFilename() string
}

// Renderer writes a response.
type Renderer interface {
	Render(ctx context.Context, w http.ResponseWriter, res Response) error
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, w http.ResponseWriter, res Response) error

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, w http.ResponseWriter, res Response) error {
	return f(ctx, w, res)
}

// Success returns the envelope success marker for a status code.
func Success(code int) string {
	if code == http.StatusOK {
		return "OK"
	}
	return fmt.Sprintf("Failure - %d", code)
}

// writeHead sets the content type and writes the status code.
func writeHead(w http.ResponseWriter, res Response, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(statusOf(res))
}

// writeDownloadHead sets no-cache and attachment headers, then writes the status code.
func writeDownloadHead(w http.ResponseWriter, res Response, contentType, ext string) {
	h := w.Header()
	h.Set("Cache-Control", "no-cache, must-revalidate")
	h.Set("Expires", "Mon, 26 Jul 1997 05:00:00 GMT")
	if res.IsDownload() {
		name := res.DownloadFilename()
		if name == "" {
			name = "download"
		}
		if ext != "" {
			name += "." + ext
		}
		h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	}
	writeHead(w, res, contentType)
}

func statusOf(res Response) int {
	if code := res.StatusCode(); code > 0 {
		return code
	}
	return http.StatusOK
}
