package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrUsage indicates a command was invoked with bad arguments.
	ErrUsage = errors.New("usage")

	// ErrUnknownCommand indicates the command name is not recognised.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrUnknownFormat indicates an output format other than text, json
	// or yaml.
	ErrUnknownFormat = errors.New("unknown output format")

	// ErrFilesFailed indicates at least one file failed. The per-file
	// errors have already been reported.
	ErrFilesFailed = errors.New("one or more files failed")
)

// OperationError represents an error that occurred during a file operation.
type OperationError struct {
	Op     string // Operation name (e.g., "convert", "strip", "replay")
	Target string // File the operation was applied to
	Err    error  // Underlying error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{Op: op, Target: target, Err: err}
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Op
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Target)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// usageError wraps ErrUsage with the correct invocation.
func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}
