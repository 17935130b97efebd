package internal

import (
	"bytes"
	"io"
	"net/http"
)

// ResponseWriter buffers a rendered response so a failed render can be
// discarded and replaced by a plain-text fallback. Nothing reaches the
// client until Commit.
type ResponseWriter struct {
	header http.Header
	body   bytes.Buffer
	status int
	wrote  bool
}

// NewResponseWriter creates an empty buffer.
func NewResponseWriter() *ResponseWriter {
	return &ResponseWriter{
		header: make(http.Header),
		status: http.StatusOK,
	}
}

// Header returns the buffered header map.
func (w *ResponseWriter) Header() http.Header {
	return w.header
}

// WriteHeader records the status code. Only the first call counts.
func (w *ResponseWriter) WriteHeader(code int) {
	if w.wrote {
		return
	}
	w.wrote = true
	w.status = code
}

// Write appends to the buffered body.
func (w *ResponseWriter) Write(b []byte) (int, error) {
	w.wrote = true
	return w.body.Write(b)
}

// Status returns the HTTP status code of the response.
func (w *ResponseWriter) Status() int {
	return w.status
}

// Size returns the number of buffered body bytes.
func (w *ResponseWriter) Size() int64 {
	return int64(w.body.Len())
}

// Written returns true if anything was written.
func (w *ResponseWriter) Written() bool {
	return w.wrote
}

// Reset discards everything written so far.
func (w *ResponseWriter) Reset() {
	clear(w.header)
	w.body.Reset()
	w.status = http.StatusOK
	w.wrote = false
}

// Commit copies headers, status and body to dst.
func (w *ResponseWriter) Commit(dst http.ResponseWriter) error {
	h := dst.Header()
	for k, v := range w.header {
		h[k] = v
	}
	dst.WriteHeader(w.status)
	_, err := dst.Write(w.body.Bytes())
	return err
}

// CommitBody copies only the body to dst. Used for command-line output.
func (w *ResponseWriter) CommitBody(dst io.Writer) error {
	_, err := dst.Write(w.body.Bytes())
	return err
}
