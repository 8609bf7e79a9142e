package domain

import (
	"errors"
	"fmt"
)

// Server-caused degraded states. Both are established at startup and hold for
// the process lifetime; they are never a per-request condition.
var (
	// ErrModelUnavailable means the model artifact failed to load or is
	// absent. Every request short-circuits on it before any parsing.
	ErrModelUnavailable = errors.New("model not loaded")

	// ErrSchemaUnavailable means schema encoding was selected but no training
	// column manifest was loaded.
	ErrSchemaUnavailable = errors.New("training schema not loaded")
)

// MissingFieldError reports a required request field that was absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field: %s", e.Field)
}

// TypeConversionError reports a field that was present but could not be
// coerced to its expected numeric type.
type TypeConversionError struct {
	Field string
	Value any
}

func (e *TypeConversionError) Error() string {
	return fmt.Sprintf("field %s: cannot convert %v to a number", e.Field, e.Value)
}

// PredictionError wraps a failure raised by the model collaborator during
// scoring. The collaborator's message is surfaced to the caller verbatim.
type PredictionError struct {
	Err error
}

func (e *PredictionError) Error() string { return e.Err.Error() }

func (e *PredictionError) Unwrap() error { return e.Err }

// IsClientFault reports whether err is caused by the request rather than the
// service, which maps to a 400 at the transport boundary.
func IsClientFault(err error) bool {
	var missing *MissingFieldError
	var conv *TypeConversionError
	return errors.As(err, &missing) || errors.As(err, &conv)
}
