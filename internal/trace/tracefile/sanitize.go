package tracefile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// DefaultPlaceholder replaces non-ASCII characters when sanitizing.
const DefaultPlaceholder = '_'

// ErrBadPlaceholder indicates a placeholder that is not a single valid
// code point.
var ErrBadPlaceholder = errors.New("placeholder must be a valid code point")

// SanitizedPath returns where Sanitize writes by default: an ascii_only
// directory beside src, holding <name>.json.gz where name is the file name up
// to its first dot.
func SanitizedPath(src string) string {
	name := filepath.Base(src)
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return filepath.Join(filepath.Dir(src), "ascii_only", name+".json.gz")
}

// Sanitize writes a copy of the trace at src to dst with every non-ASCII
// character replaced by placeholder. An empty dst means SanitizedPath(src).
// The output is gzip-compressed when dst ends in ".gz". It returns the path
// written.
func Sanitize(src, dst string, placeholder rune) (string, error) {
	data, _, err := readFile(src)
	if err != nil {
		return "", err
	}
	out, err := SanitizeBytes(data, placeholder)
	if err != nil {
		return "", fmt.Errorf("%s: %w", src, err)
	}
	if dst == "" {
		dst = SanitizedPath(src)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	if err := writeFile(dst, out, strings.HasSuffix(dst, ".gz")); err != nil {
		return "", err
	}
	return dst, nil
}

// SanitizeBytes replaces non-ASCII characters in the start content, end
// content and every inserted text. Each code point maps to exactly one code
// point, so positions and delete counts stay valid. Other fields, including
// timestamps, are kept.
func SanitizeBytes(data []byte, placeholder rune) ([]byte, error) {
	if !utf8.ValidRune(placeholder) {
		return nil, ErrBadPlaceholder
	}
	if !gjson.ValidBytes(data) {
		return nil, rootError("invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, rootError("top level value is not an object")
	}

	t := asciiOnly(placeholder)
	out := data
	for _, field := range []string{"startContent", "endContent"} {
		v := root.Get(field)
		if v.Type != gjson.String {
			return nil, rootError(field + " is missing or not a string")
		}
		if isASCII(v.Str) {
			continue
		}
		s, err := mapString(t, v.Str)
		if err != nil {
			return nil, err
		}
		if out, err = sjson.SetBytes(out, field, s); err != nil {
			return nil, fmt.Errorf("rewrite %s: %w", field, err)
		}
	}

	txns := root.Get("txns")
	if !txns.IsArray() {
		return nil, rootError("txns is not an array")
	}
	raw, changed, err := sanitizeTxns(t, txns)
	if err != nil {
		return nil, err
	}
	if !changed {
		return out, nil
	}
	if out, err = sjson.SetRawBytes(out, "txns", raw); err != nil {
		return nil, fmt.Errorf("rewrite txns: %w", err)
	}
	return out, nil
}

func sanitizeTxns(t transform.Transformer, txns gjson.Result) ([]byte, bool, error) {
	var buf bytes.Buffer
	buf.Grow(len(txns.Raw))
	buf.WriteByte('[')

	changed := false
	i := 0
	var err error
	txns.ForEach(func(_, txn gjson.Result) bool {
		if i > 0 {
			buf.WriteByte(',')
		}
		patches := txn.Get("patches")
		if !patches.IsArray() {
			err = txnError(i, "patches is missing or not an array")
			return false
		}

		out := txn.Raw
		j := 0
		patches.ForEach(func(_, p gjson.Result) bool {
			ins := p.Get("2")
			if ins.Type != gjson.String {
				err = patchError(i, j, "inserted text is not a string")
				return false
			}
			if !isASCII(ins.Str) {
				var s string
				if s, err = mapString(t, ins.Str); err != nil {
					return false
				}
				if out, err = sjson.Set(out, fmt.Sprintf("patches.%d.2", j), s); err != nil {
					return false
				}
				changed = true
			}
			j++
			return true
		})
		if err != nil {
			return false
		}
		buf.WriteString(out)
		i++
		return true
	})
	if err != nil {
		return nil, false, err
	}
	buf.WriteByte(']')
	return buf.Bytes(), changed, nil
}

// asciiOnly maps every code point above U+007F to placeholder. Invalid UTF-8
// decodes to U+FFFD first and is replaced as well.
func asciiOnly(placeholder rune) transform.Transformer {
	return runes.Map(func(r rune) rune {
		if r <= unicode.MaxASCII {
			return r
		}
		return placeholder
	})
}

func mapString(t transform.Transformer, s string) (string, error) {
	out, _, err := transform.String(t, s)
	if err != nil {
		return "", fmt.Errorf("sanitize text: %w", err)
	}
	return out, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
