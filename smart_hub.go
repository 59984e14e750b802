package smart_hub

import (
	"errors"
	"fmt"
)

// Domain errors shared by the service and HTTP layers.
var (
	// ErrNotReady means a read needs data that has not been written yet
	// (no sensor samples, no preferences).
	ErrNotReady = errors.New("not ready")

	// ErrDependencyUnavailable wraps failures of external collaborators
	// such as the sunrise/sunset API.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// ValidationError reports a bad input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError builds a field-level validation error.
func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

type notReadyError struct {
	reason string
}

func (e *notReadyError) Error() string { return e.reason }
func (e *notReadyError) Unwrap() error { return ErrNotReady }

// NotReady returns an error matching ErrNotReady whose message is reason.
func NotReady(reason string) error {
	return &notReadyError{reason: reason}
}
