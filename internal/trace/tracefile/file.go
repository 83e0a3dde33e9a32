// Package tracefile reads and rewrites trace files on disk.
//
// A trace file is a JSON object with startContent, endContent and txns,
// optionally gzip-compressed. Two schemas exist: the legacy one records a
// time on each transaction and patches as [pos, del, ins] triples; the
// current one records patches as [pos, del, ins, time]. Both decode to the
// same trace.Trace.
package tracefile

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var gzipMagic = []byte{0x1f, 0x8b}

// IsGzip reports whether data starts with the gzip magic number.
func IsGzip(data []byte) bool {
	return bytes.HasPrefix(data, gzipMagic)
}

// readFile returns the uncompressed contents of path and whether it was
// gzip-compressed.
func readFile(path string) ([]byte, bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	if !IsGzip(raw) {
		return raw, false, nil
	}
	data, err := gunzip(raw)
	if err != nil {
		return nil, true, fmt.Errorf("%s: %w", path, err)
	}
	return data, true, nil
}

func gunzip(raw []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	defer gr.Close()

	data, err := io.ReadAll(gr)
	if err != nil {
		return nil, fmt.Errorf("gzip read: %w", err)
	}
	return data, nil
}

// writeFile replaces path with data, compressing it when compress is set.
// The content goes to a temporary file in the same directory first so a
// failed write never leaves a truncated trace behind.
func writeFile(path string, data []byte, compress bool) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	var w io.Writer = tmp
	var gw *gzip.Writer
	if compress {
		gw = gzip.NewWriter(tmp)
		w = gw
	}
	if _, err := w.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if gw != nil {
		if err := gw.Close(); err != nil {
			tmp.Close()
			return fmt.Errorf("gzip close: %w", err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// IsTraceFile reports whether name looks like a trace file: a .json or
// .json.gz file that is not hidden. Temporary files written by Convert and
// Sanitize start with a dot and are excluded.
func IsTraceFile(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.HasSuffix(base, ".json") || strings.HasSuffix(base, ".json.gz")
}
