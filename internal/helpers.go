package internal

import (
	"fmt"
	"strconv"
)

// Vars are the variables passed to an action: query values, body values
// and route variables, the latter taking precedence.
type Vars map[string]any

// String returns the value for key formatted as a string.
func (v Vars) String(key string) string {
	raw, ok := v[key]
	if !ok || raw == nil {
		return ""
	}
	if s, ok := raw.(string); ok {
		return s
	}
	return fmt.Sprint(raw)
}

// ContextValue retrieves a typed request-scoped value.
// Returns the zero value if the key is missing or has another type.
func ContextValue[T any](c Context, key any) T {
	if v, ok := c.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}

// ServiceAs retrieves a registered service with the given type.
func ServiceAs[T any](c Context, name string) (T, error) {
	var zero T
	v, err := c.Service(name)
	if err != nil {
		return zero, err
	}
	s, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s has type %T", ErrServiceNotFound, name, v)
	}
	return s, nil
}

// Var retrieves a typed action variable.
// Returns the zero value if the variable is missing or cannot be converted.
func Var[T ~string | ~int | ~int64 | ~float64 | ~bool](vars Vars, name string) T {
	v, _ := convertVar[T](vars[name])
	return v
}

// VarDefault retrieves a typed action variable with a default value.
func VarDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](vars Vars, name string, defaultValue T) T {
	if vars.String(name) == "" {
		return defaultValue
	}
	v, ok := convertVar[T](vars[name])
	if !ok {
		return defaultValue
	}
	return v
}

// convertVar converts a variable to T. Values already of type T are
// returned as is; anything else is formatted and parsed.
func convertVar[T ~string | ~int | ~int64 | ~float64 | ~bool](raw any) (T, bool) {
	var zero T
	if raw == nil {
		return zero, false
	}
	if v, ok := raw.(T); ok {
		return v, true
	}
	s := Vars{"v": raw}.String("v")

	switch any(zero).(type) {
	case string:
		return any(s).(T), true
	case int:
		v, err := strconv.Atoi(s)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case int64:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case float64:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case bool:
		v, err := strconv.ParseBool(s)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	}
	return zero, false
}
