package engine

import (
	"errors"
	"fmt"

	"github.com/dshills/editrace/internal/trace"
)

// Errors returned by engine operations.
var (
	// ErrMalformedTrace indicates a structural violation of the trace: an
	// empty transaction or a patch that does not fit the document.
	ErrMalformedTrace = errors.New("malformed trace")
)

// MalformedTraceError locates a structural violation.
type MalformedTraceError struct {
	Loc trace.Location
	Err error
}

func (e *MalformedTraceError) Error() string {
	return fmt.Sprintf("%v at %s: %v", ErrMalformedTrace, e.Loc, e.Err)
}

// Is reports ErrMalformedTrace.
func (e *MalformedTraceError) Is(target error) bool {
	return target == ErrMalformedTrace
}

// Unwrap returns the underlying cause.
func (e *MalformedTraceError) Unwrap() error {
	return e.Err
}
