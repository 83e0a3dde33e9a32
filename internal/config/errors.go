package config

import (
	"errors"
	"fmt"
)

var (
	// ErrTypeMismatch marks a setting whose value has the wrong type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrValidationFailed marks a setting that is unknown or out of range.
	ErrValidationFailed = errors.New("validation failed")

	// ErrFileNotFound is returned when an explicitly named config file is
	// missing. Without a file, defaults and the environment are used.
	ErrFileNotFound = errors.New("config file not found")
)

// ValidationCode says why a setting was rejected.
type ValidationCode string

const (
	ErrCodeUnknownSetting ValidationCode = "unknown_setting"
	ErrCodeOutOfRange     ValidationCode = "out_of_range"
	ErrCodeInvalidEnum    ValidationCode = "invalid_enum"
)

// ValidationError reports a rejected setting. It matches
// ErrValidationFailed.
type ValidationError struct {
	Path    string
	Message string
	Value   any
	Code    ValidationCode
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s: got %v", e.Path, e.Message, e.Value)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidationFailed }

// TypeError reports a setting that could not be decoded into its Go type.
// It matches ErrTypeMismatch.
type TypeError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: want %s, got %s", e.Path, e.Expected, e.Actual)
}

func (e *TypeError) Is(target error) bool { return target == ErrTypeMismatch }
