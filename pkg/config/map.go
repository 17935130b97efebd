package config

import (
	"fmt"
	"slices"
	"strconv"
)

// Map is an ordered string-keyed map.
// The zero value is an empty map ready to use.
type Map struct {
	values map[string]any
	keys   []string
}

// NewMap creates an empty Map.
func NewMap() *Map {
	return &Map{values: make(map[string]any)}
}

// MapOf builds a Map from alternating key/value pairs.
// Panics if pairs has odd length or a key is not a string.
func MapOf(pairs ...any) *Map {
	if len(pairs)%2 != 0 {
		panic("config: MapOf requires key/value pairs")
	}
	m := NewMap()
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("config: MapOf key %v is not a string", pairs[i]))
		}
		m.Set(key, pairs[i+1])
	}
	return m
}

// Len returns the number of keys.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in declaration order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.values[key]
	return ok
}

// Get returns the raw value for key.
func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Set stores value under key. A new key is appended to the key order,
// an existing key keeps its position.
func (m *Map) Set(key string, value any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Delete removes key.
func (m *Map) Delete(key string) {
	if m == nil {
		return
	}
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })
}

// String returns the value for key formatted as a string.
// Returns an empty string if the key is missing or the value is a map or list.
func (m *Map) String(key string) string {
	v, ok := m.Get(key)
	if !ok {
		return ""
	}
	return scalarString(v)
}

// Map returns the nested map stored under key, or an empty map.
func (m *Map) Map(key string) *Map {
	v, ok := m.Get(key)
	if !ok {
		return NewMap()
	}
	if nested, ok := v.(*Map); ok {
		return nested
	}
	return NewMap()
}

// Strings returns the list stored under key as strings.
// A scalar value yields a single-element list.
func (m *Map) Strings(key string) []string {
	v, ok := m.Get(key)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, scalarString(item))
		}
		return out
	case []string:
		return slices.Clone(t)
	case *Map:
		return nil
	default:
		return []string{scalarString(t)}
	}
}

// StringMap flattens the nested map under key into string values.
// Nested maps and lists are skipped.
func (m *Map) StringMap(key string) map[string]string {
	nested := m.Map(key)
	out := make(map[string]string, nested.Len())
	for _, k := range nested.keys {
		switch nested.values[k].(type) {
		case *Map, []any:
			continue
		}
		out[k] = nested.String(k)
	}
	return out
}

// Clone returns a deep copy of the map.
func (m *Map) Clone() *Map {
	out := NewMap()
	if m == nil {
		return out
	}
	for _, k := range m.keys {
		out.Set(k, cloneValue(m.values[k]))
	}
	return out
}

// Merge deep-merges src into m. Nested maps merge key by key;
// any other value in src replaces the value in m.
func (m *Map) Merge(src *Map) {
	if src == nil {
		return
	}
	for _, k := range src.keys {
		sv := src.values[k]
		if srcMap, ok := sv.(*Map); ok {
			if dstMap, ok := m.values[k].(*Map); ok {
				dstMap.Merge(srcMap)
				continue
			}
			m.Set(k, srcMap.Clone())
			continue
		}
		m.Set(k, cloneValue(sv))
	}
}

// Plain converts the map into nested map[string]any values.
func (m *Map) Plain() map[string]any {
	out := make(map[string]any, m.Len())
	if m == nil {
		return out
	}
	for _, k := range m.keys {
		out[k] = PlainValue(m.values[k])
	}
	return out
}

// PlainValue converts nested Maps inside v into map[string]any.
func PlainValue(v any) any {
	switch t := v.(type) {
	case *Map:
		return t.Plain()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = PlainValue(item)
		}
		return out
	default:
		return v
	}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Map:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case *Map, []any:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
