package tracefile

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed indicates a file that does not have the shape of a trace.
	ErrMalformed = errors.New("malformed trace file")

	// ErrMissingTimestamp indicates a patch with no timestamp of its own and
	// no transaction time to inherit.
	ErrMissingTimestamp = errors.New("missing timestamp")
)

// DecodeError locates a structural problem in a trace file. Txn and Patch
// are -1 when the problem is not inside a transaction or patch.
type DecodeError struct {
	Txn   int
	Patch int
	Msg   string
	Err   error
}

func (e *DecodeError) Error() string {
	switch {
	case e.Txn < 0:
		return fmt.Sprintf("decode: %s", e.Msg)
	case e.Patch < 0:
		return fmt.Sprintf("decode txn %d: %s", e.Txn, e.Msg)
	default:
		return fmt.Sprintf("decode txn %d patch %d: %s", e.Txn, e.Patch, e.Msg)
	}
}

// Is reports ErrMalformed for every decode error.
func (e *DecodeError) Is(target error) bool {
	return target == ErrMalformed
}

// Unwrap returns the underlying cause, if any.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

func rootError(msg string) *DecodeError {
	return &DecodeError{Txn: -1, Patch: -1, Msg: msg}
}

func txnError(txn int, msg string) *DecodeError {
	return &DecodeError{Txn: txn, Patch: -1, Msg: msg}
}

func patchError(txn, patch int, msg string) *DecodeError {
	return &DecodeError{Txn: txn, Patch: patch, Msg: msg}
}
