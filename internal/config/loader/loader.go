// Package loader reads editrace configuration sources into nested maps.
//
// File loaders (TOML, YAML) and the environment loader all produce the same
// map[string]any shape keyed by section and setting name, so layers can be
// merged with DeepMerge before being decoded into a config.Config.
package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Loader produces one configuration layer. A source that does not exist
// yields nil, nil.
type Loader interface {
	Load() (map[string]any, error)
}

// FileLoader is a Loader backed by a file that can also be pointed at
// another path or a reader.
type FileLoader interface {
	Loader
	LoadFrom(path string) (map[string]any, error)
	LoadFromReader(r io.Reader) (map[string]any, error)
}

// FileSystem is the subset of file access the loaders need, so tests can
// substitute an in-memory tree.
type FileSystem interface {
	fs.FS
	ReadFile(path string) ([]byte, error)
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem on the real file system.
type OSFS struct{}

func (OSFS) Open(name string) (fs.File, error)     { return os.Open(name) }
func (OSFS) ReadFile(path string) ([]byte, error)  { return os.ReadFile(path) }
func (OSFS) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

// DefaultFS returns the OS file system.
func DefaultFS() FileSystem {
	return OSFS{}
}

// ForPath picks a file loader by the extension of path.
func ForPath(fsys FileSystem, path string) (FileLoader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return NewTOMLLoaderWithFS(fsys, path), nil
	case ".yaml", ".yml":
		return NewYAMLLoaderWithFS(fsys, path), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// fileSource is the reading half shared by the file loaders; decode is the
// format-specific half.
type fileSource struct {
	fs     FileSystem
	path   string
	decode func(source string, data []byte) (map[string]any, error)
}

// Load reads the configured path.
func (s fileSource) Load() (map[string]any, error) {
	return s.LoadFrom(s.path)
}

// LoadFrom reads path instead of the configured one.
func (s fileSource) LoadFrom(path string) (map[string]any, error) {
	data, err := s.fs.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return s.decode(path, data)
}

// LoadFromReader decodes everything r yields.
func (s fileSource) LoadFromReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return s.decode("<reader>", data)
}
