package render

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"reflect"
	"sort"
)

// XML renders the data payload as an element tree.
// The root element name comes from the "rootElement" value, defaulting to "root".
// Lists under a key repeat that key's element; top-level list items become <item>.
type XML struct{}

// Render implements Renderer.
func (XML) Render(_ context.Context, w http.ResponseWriter, res Response) error {
	root, _ := res.Value("rootElement").(string)
	if root == "" {
		root = "root"
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	start := xml.StartElement{Name: xml.Name{Local: root}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if err := encodeXMLValue(enc, "item", res.Data()); err != nil {
		return err
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}

	writeDownloadHead(w, res, "application/xml; charset=utf-8", "xml")
	_, err := w.Write(buf.Bytes())
	return err
}

// encodeXMLValue writes the children of the current element.
// listName names the elements emitted for list items.
func encodeXMLValue(enc *xml.Encoder, listName string, v any) error {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return enc.EncodeToken(xml.CharData(t))
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := encodeXMLField(enc, k, t[k]); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for _, item := range t {
			if err := encodeXMLElement(enc, listName, item); err != nil {
				return err
			}
		}
		return nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Struct, reflect.Pointer:
		return enc.Encode(v)
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return enc.EncodeToken(xml.CharData(rv.Bytes()))
		}
		for i := range rv.Len() {
			if err := encodeXMLElement(enc, listName, rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("%w: xml cannot write %T", ErrUnsupportedData, v)
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return encodeXMLValue(enc, listName, m)
	default:
		return enc.EncodeToken(xml.CharData(fmt.Sprint(v)))
	}
}

// encodeXMLField writes a keyed value; lists repeat the key element per item.
func encodeXMLField(enc *xml.Encoder, key string, v any) error {
	if v != nil {
		rv := reflect.ValueOf(v)
		if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
			for i := range rv.Len() {
				if err := encodeXMLElement(enc, key, rv.Index(i).Interface()); err != nil {
					return err
				}
			}
			return nil
		}
	}
	return encodeXMLElement(enc, key, v)
}

func encodeXMLElement(enc *xml.Encoder, name string, v any) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if err := encodeXMLValue(enc, "item", v); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}
