package render

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
)

// CSV renders the data payload as comma separated rows.
// Accepted payloads: [][]string, [][]any, []map[string]any (columns from the
// "headers" value) and nil. A []string "headers" value is written first.
type CSV struct{}

// Render implements Renderer.
func (CSV) Render(_ context.Context, w http.ResponseWriter, res Response) error {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	headers := toStrings(res.Value("headers"))
	if len(headers) > 0 {
		if err := cw.Write(headers); err != nil {
			return err
		}
	}

	rows, err := csvRows(res.Data(), headers)
	if err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}

	writeDownloadHead(w, res, "text/csv; charset=utf-8", "csv")
	_, err = w.Write(buf.Bytes())
	return err
}

func csvRows(data any, headers []string) ([][]string, error) {
	switch d := data.(type) {
	case nil:
		return nil, nil
	case [][]string:
		return d, nil
	case [][]any:
		rows := make([][]string, 0, len(d))
		for _, row := range d {
			rows = append(rows, toStrings(row))
		}
		return rows, nil
	case []map[string]any:
		if len(headers) == 0 {
			return nil, fmt.Errorf("%w: map rows need a headers value", ErrUnsupportedData)
		}
		rows := make([][]string, 0, len(d))
		for _, rec := range d {
			row := make([]string, len(headers))
			for i, h := range headers {
				if v, ok := rec[h]; ok && v != nil {
					row[i] = fmt.Sprint(v)
				}
			}
			rows = append(rows, row)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("%w: csv cannot write %T", ErrUnsupportedData, data)
	}
}

func toStrings(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, len(t))
		for i, item := range t {
			if item != nil {
				out[i] = fmt.Sprint(item)
			}
		}
		return out
	default:
		return nil
	}
}
