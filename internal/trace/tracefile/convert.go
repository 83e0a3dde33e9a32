package tracefile

import (
	"bytes"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Convert rewrites the trace file at path from the legacy schema to the
// current one, in place, keeping its compression. It reports whether the
// file changed; a file already in the current schema is not touched.
func Convert(path string) (bool, error) {
	data, compressed, err := readFile(path)
	if err != nil {
		return false, err
	}
	out, changed, err := ConvertBytes(data)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	if !changed {
		return false, nil
	}
	if err := writeFile(path, out, compressed); err != nil {
		return false, err
	}
	return true, nil
}

// ConvertBytes moves each transaction's time onto its patches as a fourth
// tuple element and drops the transaction's time field. Patches that already
// carry a timestamp keep it. Everything else in the document is preserved.
// When nothing needs converting, data is returned unchanged with changed
// false.
func ConvertBytes(data []byte) (out []byte, changed bool, err error) {
	if !gjson.ValidBytes(data) {
		return nil, false, rootError("invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, false, rootError("top level value is not an object")
	}
	txns := root.Get("txns")
	if !txns.IsArray() {
		return nil, false, rootError("txns is not an array")
	}

	var buf bytes.Buffer
	buf.Grow(len(txns.Raw) + len(txns.Raw)/4)
	buf.WriteByte('[')
	i := 0
	txns.ForEach(func(_, t gjson.Result) bool {
		if i > 0 {
			buf.WriteByte(',')
		}
		var raw string
		var c bool
		raw, c, err = convertTxn(i, t)
		if err != nil {
			return false
		}
		buf.WriteString(raw)
		changed = changed || c
		i++
		return true
	})
	if err != nil {
		return nil, false, err
	}
	if !changed {
		return data, false, nil
	}
	buf.WriteByte(']')

	out, err = sjson.SetRawBytes(data, "txns", buf.Bytes())
	if err != nil {
		return nil, false, fmt.Errorf("rewrite txns: %w", err)
	}
	return out, true, nil
}

// convertTxn returns the current-schema JSON of one transaction and whether
// it differs from the input.
func convertTxn(i int, t gjson.Result) (string, bool, error) {
	if !t.IsObject() {
		return "", false, txnError(i, "transaction is not an object")
	}
	tm := t.Get("time")
	hasTime := tm.Exists() && tm.Type != gjson.Null

	patches := t.Get("patches")
	if !patches.IsArray() {
		return "", false, txnError(i, "patches is missing or not an array")
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	j := 0
	extended := false
	var err error
	patches.ForEach(func(_, p gjson.Result) bool {
		if !p.IsArray() {
			err = patchError(i, j, "patch is not an array")
			return false
		}
		elems := p.Array()
		inherits := len(elems) == 3 || (len(elems) == 4 && elems[3].Type == gjson.Null)
		switch {
		case len(elems) == 4 && !inherits:
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(p.Raw)
		case inherits && hasTime:
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('[')
			for _, e := range elems[:3] {
				buf.WriteString(e.Raw)
				buf.WriteByte(',')
			}
			buf.WriteString(tm.Raw)
			buf.WriteByte(']')
			extended = true
		case inherits:
			e := patchError(i, j, "no patch timestamp and no transaction time")
			e.Err = ErrMissingTimestamp
			err = e
			return false
		default:
			err = patchError(i, j, fmt.Sprintf("patch has %d elements, want 3 or 4", len(elems)))
			return false
		}
		j++
		return true
	})
	if err != nil {
		return "", false, err
	}
	buf.WriteByte(']')

	if !tm.Exists() {
		return t.Raw, false, nil
	}

	out := t.Raw
	if extended {
		if out, err = sjson.SetRaw(out, "patches", buf.String()); err != nil {
			return "", false, fmt.Errorf("txn %d: %w", i, err)
		}
	}
	if out, err = sjson.Delete(out, "time"); err != nil {
		return "", false, fmt.Errorf("txn %d: %w", i, err)
	}
	return out, true, nil
}
