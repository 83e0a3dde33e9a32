package tracefile

import (
	"fmt"
	"math"

	"github.com/tidwall/gjson"

	"github.com/dshills/editrace/internal/trace"
)

// maxOffset bounds positions and delete counts to values a JSON number holds
// exactly.
const maxOffset = 1 << 53

// Load reads and decodes the trace file at path.
func Load(path string) (*trace.Trace, error) {
	data, _, err := readFile(path)
	if err != nil {
		return nil, err
	}
	tr, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tr, nil
}

// Decode parses a trace from JSON, decompressing it first if it is gzipped.
// Every patch's timestamp source is resolved here: a fourth tuple element
// wins, otherwise the transaction's time is inherited.
func Decode(data []byte) (*trace.Trace, error) {
	if IsGzip(data) {
		var err error
		if data, err = gunzip(data); err != nil {
			return nil, err
		}
	}
	if !gjson.ValidBytes(data) {
		return nil, rootError("invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, rootError("top level value is not an object")
	}

	tr := &trace.Trace{}
	var err error
	if tr.StartContent, err = stringField(root, "startContent"); err != nil {
		return nil, err
	}
	if tr.EndContent, err = stringField(root, "endContent"); err != nil {
		return nil, err
	}

	txns := root.Get("txns")
	if !txns.IsArray() {
		return nil, rootError("txns is not an array")
	}

	tr.Txns = make([]trace.Txn, 0, arrayLen(txns))
	txns.ForEach(func(_, v gjson.Result) bool {
		var txn trace.Txn
		txn, err = decodeTxn(len(tr.Txns), v)
		if err != nil {
			return false
		}
		tr.Txns = append(tr.Txns, txn)
		return true
	})
	if err != nil {
		return nil, err
	}
	return tr, nil
}

func stringField(root gjson.Result, name string) (string, error) {
	v := root.Get(name)
	if v.Type != gjson.String {
		return "", rootError(name + " is missing or not a string")
	}
	return v.Str, nil
}

func decodeTxn(i int, v gjson.Result) (trace.Txn, error) {
	if !v.IsObject() {
		return trace.Txn{}, txnError(i, "transaction is not an object")
	}

	var txnTime *trace.Timestamp
	if t := v.Get("time"); t.Exists() && t.Type != gjson.Null {
		ts, ok := timestamp(t, trace.TimeFromTxn)
		if !ok {
			return trace.Txn{}, txnError(i, "time is not a string or number")
		}
		txnTime = &ts
	}

	patches := v.Get("patches")
	if !patches.IsArray() {
		return trace.Txn{}, txnError(i, "patches is missing or not an array")
	}

	txn := trace.Txn{Patches: make([]trace.Patch, 0, arrayLen(patches))}
	var err error
	patches.ForEach(func(_, pv gjson.Result) bool {
		var p trace.Patch
		p, err = decodePatch(i, len(txn.Patches), pv, txnTime)
		if err != nil {
			return false
		}
		txn.Patches = append(txn.Patches, p)
		return true
	})
	if err != nil {
		return trace.Txn{}, err
	}
	if len(txn.Patches) == 0 {
		e := txnError(i, "transaction has no patches")
		e.Err = trace.ErrEmptyTxn
		return trace.Txn{}, e
	}
	return txn, nil
}

func decodePatch(i, j int, v gjson.Result, txnTime *trace.Timestamp) (trace.Patch, error) {
	if !v.IsArray() {
		return trace.Patch{}, patchError(i, j, "patch is not an array")
	}
	var elems [5]gjson.Result
	n := 0
	v.ForEach(func(_, e gjson.Result) bool {
		if n < len(elems) {
			elems[n] = e
		}
		n++
		return n <= len(elems)
	})
	if n != 3 && n != 4 {
		return trace.Patch{}, patchError(i, j, fmt.Sprintf("patch has %d elements, want 3 or 4", n))
	}

	pos, err := offset(i, j, "position", elems[0])
	if err != nil {
		return trace.Patch{}, err
	}
	del, err := offset(i, j, "delete count", elems[1])
	if err != nil {
		return trace.Patch{}, err
	}
	if elems[2].Type != gjson.String {
		return trace.Patch{}, patchError(i, j, "inserted text is not a string")
	}

	p := trace.Patch{Pos: pos, Del: del, Ins: elems[2].Str}
	switch {
	case n == 4 && elems[3].Type != gjson.Null:
		ts, ok := timestamp(elems[3], trace.TimeFromPatch)
		if !ok {
			return trace.Patch{}, patchError(i, j, "timestamp is not a string or number")
		}
		p.Time = ts
	case txnTime != nil:
		p.Time = *txnTime
	default:
		e := patchError(i, j, "no patch timestamp and no transaction time")
		e.Err = ErrMissingTimestamp
		return trace.Patch{}, e
	}
	return p, nil
}

func offset(i, j int, what string, v gjson.Result) (int, error) {
	if v.Type != gjson.Number {
		return 0, patchError(i, j, what+" is not a number")
	}
	n := v.Num
	if n != math.Trunc(n) || n > maxOffset {
		return 0, patchError(i, j, fmt.Sprintf("%s %s is not an integer offset", what, v.Raw))
	}
	if n < 0 {
		e := patchError(i, j, fmt.Sprintf("%s %s is negative", what, v.Raw))
		e.Err = trace.ErrNegativeValue
		return 0, e
	}
	return int(n), nil
}

func timestamp(v gjson.Result, src trace.TimeSource) (trace.Timestamp, bool) {
	switch v.Type {
	case gjson.String:
		return trace.Timestamp{Raw: v.Str, Source: src}, true
	case gjson.Number:
		return trace.Timestamp{Raw: v.Raw, Numeric: true, Source: src}, true
	default:
		return trace.Timestamp{}, false
	}
}

// arrayLen counts the elements of a JSON array without materializing them.
func arrayLen(v gjson.Result) int {
	n := 0
	v.ForEach(func(_, _ gjson.Result) bool {
		n++
		return true
	})
	return n
}
