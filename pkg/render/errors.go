package render

import "errors"

var (
	ErrViewNotFound = errors.New("render: view not found")
	ErrRenderFailed = errors.New("render: failed to render view")

	// ErrUnsupportedData is returned when the data payload has a shape the renderer cannot write.
	ErrUnsupportedData = errors.New("render: unsupported data payload")
)
