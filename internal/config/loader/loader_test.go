package loader

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) Open(name string) (fs.File, error) {
	return nil, fs.ErrNotExist
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Now() }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

func TestTOMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/editrace.toml", `
[validate]
strict_time = true
progress_every = 500

[stats]
sample_cap = 8
`)

	config, err := NewTOMLLoaderWithFS(memfs, "/editrace.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	validate, ok := config["validate"].(map[string]any)
	if !ok {
		t.Fatal("expected validate to be a map")
	}
	if validate["strict_time"] != true {
		t.Errorf("strict_time = %v, want true", validate["strict_time"])
	}
	if validate["progress_every"] != int64(500) {
		t.Errorf("progress_every = %v (%T), want 500", validate["progress_every"], validate["progress_every"])
	}
}

func TestTOMLLoader_LoadNonExistent(t *testing.T) {
	config, err := NewTOMLLoaderWithFS(NewMemFS(), "/missing.toml").Load()
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if config != nil {
		t.Errorf("expected nil config, got %v", config)
	}
}

func TestTOMLLoader_LoadInvalid(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.toml", "[validate\nstrict_time = ")

	_, err := NewTOMLLoaderWithFS(memfs, "/bad.toml").Load()
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if pe.Path != "/bad.toml" {
		t.Errorf("Path = %q, want /bad.toml", pe.Path)
	}
	if pe.Line == 0 {
		t.Error("expected a line number")
	}
}

func TestYAMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/editrace.yaml", `
log:
  level: debug
batch:
  workers: 3
watch:
  debounce: 250ms
`)

	config, err := NewYAMLLoaderWithFS(memfs, "/editrace.yaml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	flat := Flatten(config)
	if flat["log.level"] != "debug" {
		t.Errorf("log.level = %v, want debug", flat["log.level"])
	}
	if flat["batch.workers"] != 3 {
		t.Errorf("batch.workers = %v (%T), want 3", flat["batch.workers"], flat["batch.workers"])
	}
	if flat["watch.debounce"] != "250ms" {
		t.Errorf("watch.debounce = %v, want 250ms", flat["watch.debounce"])
	}
}

func TestYAMLLoader_LoadFromReader(t *testing.T) {
	config, err := NewYAMLLoader("").LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}
	if config == nil || len(config) != 0 {
		t.Errorf("expected empty map, got %v", config)
	}

	_, err = NewYAMLLoader("").LoadFromReader(strings.NewReader("log: [unclosed"))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a.toml", "*loader.TOMLLoader"},
		{"a.yaml", "*loader.YAMLLoader"},
		{"A.YML", "*loader.YAMLLoader"},
	}
	for _, tt := range tests {
		l, err := ForPath(NewMemFS(), tt.path)
		if err != nil {
			t.Fatalf("ForPath(%q): %v", tt.path, err)
		}
		var got string
		switch l.(type) {
		case *TOMLLoader:
			got = "*loader.TOMLLoader"
		case *YAMLLoader:
			got = "*loader.YAMLLoader"
		}
		if got != tt.want {
			t.Errorf("ForPath(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}

	if _, err := ForPath(NewMemFS(), "a.ini"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"validate": map[string]any{"strict_time": false, "context_window": int64(20)},
		"log":      map[string]any{"level": "info"},
	}
	src := map[string]any{
		"validate": map[string]any{"strict_time": true},
		"batch":    map[string]any{"workers": int64(2)},
	}

	flat := Flatten(DeepMerge(dst, src))
	want := map[string]any{
		"validate.strict_time":    true,
		"validate.context_window": int64(20),
		"log.level":               "info",
		"batch.workers":           int64(2),
	}
	if len(flat) != len(want) {
		t.Fatalf("got %d keys, want %d: %v", len(flat), len(want), flat)
	}
	for k, v := range want {
		if flat[k] != v {
			t.Errorf("%s = %v, want %v", k, flat[k], v)
		}
	}
}

func TestDeepMerge_Nil(t *testing.T) {
	if got := DeepMerge(nil, map[string]any{"a": 1}); got["a"] != 1 {
		t.Errorf("DeepMerge(nil, src) = %v", got)
	}
	dst := map[string]any{"a": 1}
	if got := DeepMerge(dst, nil); got["a"] != 1 {
		t.Errorf("DeepMerge(dst, nil) = %v", got)
	}
}
