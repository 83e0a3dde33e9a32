package loader

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFormat indicates a config file extension no loader handles.
var ErrUnknownFormat = errors.New("unknown config file format")

// ParseError reports a config file that could not be decoded. Line and
// Column are zero when the decoder gave no position.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse error in ")
	b.WriteString(e.Path)
	switch {
	case e.Line > 0 && e.Column > 0:
		fmt.Fprintf(&b, " at line %d, column %d", e.Line, e.Column)
	case e.Line > 0:
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// DeepMerge layers src over dst and returns dst. Nested maps are merged
// key by key; any other src value replaces what dst held.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for key, over := range src {
		overMap, ok := over.(map[string]any)
		if !ok {
			dst[key] = over
			continue
		}
		if under, ok := dst[key].(map[string]any); ok {
			dst[key] = DeepMerge(under, overMap)
		} else {
			dst[key] = over
		}
	}
	return dst
}

// Flatten maps the dotted path of every leaf in data to its value.
func Flatten(data map[string]any) map[string]any {
	out := make(map[string]any)
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for key, val := range m {
			if prefix != "" {
				key = prefix + "." + key
			}
			if inner, ok := val.(map[string]any); ok {
				walk(key, inner)
			} else {
				out[key] = val
			}
		}
	}
	walk("", data)
	return out
}
