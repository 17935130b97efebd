package render

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sort"
)

// Text dumps the response as plain text. It is the renderer for command-line dispatch.
type Text struct{}

// Render implements Renderer.
func (Text) Render(_ context.Context, w http.ResponseWriter, res Response) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Status: %d %s\n", statusOf(res), http.StatusText(statusOf(res)))

	if vars := res.Variables(); len(vars) > 0 {
		keys := make([]string, 0, len(vars))
		for k := range vars {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteString("Variables:\n")
		for _, k := range keys {
			fmt.Fprintf(&buf, "  %s: %v\n", k, vars[k])
		}
	}

	if messages := res.Messages(); len(messages) > 0 {
		buf.WriteString("Messages:\n")
		for _, m := range messages {
			fmt.Fprintf(&buf, "  - %s\n", m)
		}
	}

	switch d := res.Data().(type) {
	case nil:
	case string:
		buf.WriteString(d)
		if len(d) > 0 && d[len(d)-1] != '\n' {
			buf.WriteByte('\n')
		}
	default:
		fmt.Fprintf(&buf, "%+v\n", d)
	}

	writeHead(w, res, "text/plain; charset=utf-8")
	_, err := w.Write(buf.Bytes())
	return err
}
