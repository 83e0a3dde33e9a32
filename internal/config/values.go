package config

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// values reads typed settings out of a nested map, keeping the first error.
type values struct {
	data map[string]any
	err  error
}

func newValues(data map[string]any) *values {
	return &values{data: data}
}

func (v *values) get(path string) (any, bool) {
	if v.err != nil {
		return nil, false
	}
	return getByPath(v.data, path)
}

func (v *values) mismatch(path, expected string, val any) {
	v.err = &TypeError{Path: path, Expected: expected, Actual: fmt.Sprintf("%T", val)}
}

func (v *values) str(path string, dst *string) {
	val, ok := v.get(path)
	if !ok {
		return
	}
	switch s := val.(type) {
	case string:
		*dst = s
	case int, int64, float64, bool:
		*dst = fmt.Sprint(s)
	default:
		v.mismatch(path, "string", val)
	}
}

func (v *values) boolean(path string, dst *bool) {
	val, ok := v.get(path)
	if !ok {
		return
	}
	switch b := val.(type) {
	case bool:
		*dst = b
	case int64:
		if b != 0 && b != 1 {
			v.mismatch(path, "bool", val)
			return
		}
		*dst = b == 1
	default:
		v.mismatch(path, "bool", val)
	}
}

func (v *values) integer(path string, dst *int) {
	val, ok := v.get(path)
	if !ok {
		return
	}
	switch n := val.(type) {
	case int:
		*dst = n
	case int64:
		*dst = int(n)
	case uint64:
		if n > math.MaxInt32 {
			v.mismatch(path, "int", val)
			return
		}
		*dst = int(n)
	case float64:
		if n != math.Trunc(n) {
			v.mismatch(path, "int", val)
			return
		}
		*dst = int(n)
	default:
		v.mismatch(path, "int", val)
	}
}

func (v *values) duration(path string, dst *time.Duration) {
	val, ok := v.get(path)
	if !ok {
		return
	}
	switch d := val.(type) {
	case time.Duration:
		*dst = d
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil {
			v.mismatch(path, "duration", val)
			return
		}
		*dst = parsed
	default:
		v.mismatch(path, "duration", val)
	}
}

// getByPath returns the value at a dot-separated path in a nested map.
func getByPath(data map[string]any, path string) (any, bool) {
	if data == nil {
		return nil, false
	}

	current := any(data)
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		val, exists := m[part]
		if !exists {
			return nil, false
		}
		current = val
	}
	return current, true
}
