package loader

import (
	"errors"

	"github.com/pelletier/go-toml/v2"
)

// TOMLLoader reads a TOML config file such as:
//
//	[validate]
//	strict_time = true
//
//	[watch]
//	debounce = "500ms"
type TOMLLoader struct {
	fileSource
}

// NewTOMLLoader creates a TOML loader reading path from the OS file system.
func NewTOMLLoader(path string) *TOMLLoader {
	return NewTOMLLoaderWithFS(DefaultFS(), path)
}

// NewTOMLLoaderWithFS creates a TOML loader reading from fsys.
func NewTOMLLoaderWithFS(fsys FileSystem, path string) *TOMLLoader {
	return &TOMLLoader{fileSource{fs: fsys, path: path, decode: decodeTOML}}
}

// decodeTOML reports syntax errors with the line and column go-toml found.
func decodeTOML(source string, data []byte) (map[string]any, error) {
	var m map[string]any
	err := toml.Unmarshal(data, &m)
	if err == nil {
		return m, nil
	}
	pe := &ParseError{Path: source, Message: err.Error(), Err: err}
	var de *toml.DecodeError
	if errors.As(err, &de) {
		pe.Line, pe.Column = de.Position()
	}
	return nil, pe
}
