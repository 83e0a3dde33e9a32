package validate

import (
	"errors"
	"fmt"
	"time"

	"github.com/dshills/editrace/internal/trace"
)

// Errors returned by validation. Out-of-bounds and empty transactions are
// reported with engine.ErrMalformedTrace.
var (
	// ErrInvalidTimestamp indicates a timestamp that does not parse.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrTimeOrder indicates a timestamp earlier than the one before it.
	ErrTimeOrder = errors.New("timestamps out of order")

	// ErrContentMismatch indicates the replayed document differs from the
	// trace's expected end content.
	ErrContentMismatch = errors.New("content mismatch")
)

// InvalidTimestampError names the patch whose timestamp failed to parse.
type InvalidTimestampError struct {
	Loc    trace.Location
	Raw    string
	Source trace.TimeSource
	Err    error
}

func (e *InvalidTimestampError) Error() string {
	return fmt.Sprintf("%v at %s (from %s): %q", ErrInvalidTimestamp, e.Loc, e.Source, e.Raw)
}

// Is reports ErrInvalidTimestamp.
func (e *InvalidTimestampError) Is(target error) bool {
	return target == ErrInvalidTimestamp
}

// Unwrap returns the parse error.
func (e *InvalidTimestampError) Unwrap() error {
	return e.Err
}

// TimeOrderError reports a timestamp going backwards.
type TimeOrderError struct {
	Loc     trace.Location
	PrevLoc trace.Location
	Prev    time.Time
	Cur     time.Time
}

func (e *TimeOrderError) Error() string {
	return fmt.Sprintf("%v at %s: %s is before %s at %s",
		ErrTimeOrder, e.Loc, e.Cur.Format(time.RFC3339Nano), e.Prev.Format(time.RFC3339Nano), e.PrevLoc)
}

// Unwrap returns ErrTimeOrder.
func (e *TimeOrderError) Unwrap() error {
	return ErrTimeOrder
}

// ContentMismatchError describes the first difference between the replayed
// document and the expected end content. Expected and Actual are excerpts
// around Pos; ExcerptStart is the code point offset they begin at.
type ContentMismatchError struct {
	Pos          int
	ExpectedLen  int
	ActualLen    int
	ExcerptStart int
	Expected     string
	Actual       string
}

func (e *ContentMismatchError) Error() string {
	return fmt.Sprintf("%v at code point %d (expected length %d, got %d): expected %q, got %q",
		ErrContentMismatch, e.Pos, e.ExpectedLen, e.ActualLen, e.Expected, e.Actual)
}

// Unwrap returns ErrContentMismatch.
func (e *ContentMismatchError) Unwrap() error {
	return ErrContentMismatch
}
