package gate

import "errors"

// Errors for gate scripts.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNoGateFunc is returned when a script does not define gate().
	ErrNoGateFunc = errors.New("script does not define a gate function")

	// ErrExecutionTimeout is returned when a script runs past its deadline.
	ErrExecutionTimeout = errors.New("lua execution timeout")
)
