// Package trace defines the in-memory model of a recorded editing session.
//
// A Trace is built once by a loader, is never mutated afterwards, and is read
// by both the replay engine and the statistics aggregator. Positions and
// lengths are always code point counts.
package trace

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Errors returned by structural checks.
var (
	// ErrEmptyTxn indicates a transaction with no patches.
	ErrEmptyTxn = errors.New("transaction has no patches")

	// ErrNegativeValue indicates a negative position or delete count.
	ErrNegativeValue = errors.New("negative position or delete count")
)

// Trace is a complete recorded editing session.
type Trace struct {
	// StartContent is the document before any transaction.
	StartContent string

	// EndContent is the expected document after every transaction.
	// It is only ever compared against, never edited.
	EndContent string

	// Txns are the transactions in application order.
	Txns []Txn
}

// Txn is one atomic batch of patches recorded together.
type Txn struct {
	Patches []Patch
}

// Patch is a single edit: delete Del code points at Pos, then insert Ins there.
type Patch struct {
	Pos  int
	Del  int
	Ins  string
	Time Timestamp
}

// InsLen returns the number of code points inserted.
func (p Patch) InsLen() int {
	return utf8.RuneCountInString(p.Ins)
}

// IsInsert reports whether the patch only inserts text.
func (p Patch) IsInsert() bool {
	return p.Del == 0 && p.Ins != ""
}

// IsDelete reports whether the patch only deletes text.
func (p Patch) IsDelete() bool {
	return p.Del > 0 && p.Ins == ""
}

// IsReplace reports whether the patch deletes and inserts at once.
func (p Patch) IsReplace() bool {
	return p.Del > 0 && p.Ins != ""
}

// Location identifies a patch within a trace. Patch is -1 when the location
// refers to a whole transaction.
type Location struct {
	Txn   int
	Patch int
}

// String returns a human readable location.
func (l Location) String() string {
	if l.Patch < 0 {
		return fmt.Sprintf("txn %d", l.Txn)
	}
	return fmt.Sprintf("txn %d patch %d", l.Txn, l.Patch)
}

// StructureError reports a structural problem found by Check.
type StructureError struct {
	Loc Location
	Err error
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Loc, e.Err)
}

func (e *StructureError) Unwrap() error {
	return e.Err
}

// Check verifies the structural invariants that do not need replay:
// every transaction has patches and no position or delete count is negative.
func (t *Trace) Check() error {
	for i, txn := range t.Txns {
		if len(txn.Patches) == 0 {
			return &StructureError{Loc: Location{Txn: i, Patch: -1}, Err: ErrEmptyTxn}
		}
		for j, p := range txn.Patches {
			if p.Pos < 0 || p.Del < 0 {
				return &StructureError{Loc: Location{Txn: i, Patch: j}, Err: ErrNegativeValue}
			}
		}
	}
	return nil
}
