package loader

import "gopkg.in/yaml.v3"

// YAMLLoader reads a YAML config file with the same sections as the TOML
// form.
type YAMLLoader struct {
	fileSource
}

// NewYAMLLoader creates a YAML loader reading path from the OS file system.
func NewYAMLLoader(path string) *YAMLLoader {
	return NewYAMLLoaderWithFS(DefaultFS(), path)
}

// NewYAMLLoaderWithFS creates a YAML loader reading from fsys.
func NewYAMLLoaderWithFS(fsys FileSystem, path string) *YAMLLoader {
	return &YAMLLoader{fileSource{fs: fsys, path: path, decode: decodeYAML}}
}

// decodeYAML treats an empty document as an empty config.
func decodeYAML(source string, data []byte) (map[string]any, error) {
	m := make(map[string]any)
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &ParseError{Path: source, Message: err.Error(), Err: err}
	}
	return m, nil
}
