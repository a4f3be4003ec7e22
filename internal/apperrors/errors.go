// Package apperrors defines the error kinds the HTTP layer and the pipeline
// distinguish between: malformed input, resource conflicts and failures of
// external processes (build script, container runtime, reverse proxy).
package apperrors

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input. It is always surfaced to the
// caller before any external process runs and is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError reports a resource that is already taken after automatic
// disambiguation was exhausted.
type ConflictError struct {
	Resource string
	Message  string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NewConflict creates a ConflictError
func NewConflict(resource, message string) *ConflictError {
	return &ConflictError{Resource: resource, Message: message}
}

// ExternalProcessError reports a failed or timed-out external command,
// keeping the captured output for diagnostics.
type ExternalProcessError struct {
	Op     string
	Output string
	Err    error
}

func (e *ExternalProcessError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s: %v: %s", e.Op, e.Err, e.Output)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExternalProcessError) Unwrap() error {
	return e.Err
}

// NewExternalProcess creates an ExternalProcessError
func NewExternalProcess(op string, output string, err error) *ExternalProcessError {
	return &ExternalProcessError{Op: op, Output: output, Err: err}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is a ConflictError
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsExternalProcess reports whether err is an ExternalProcessError
func IsExternalProcess(err error) bool {
	var ee *ExternalProcessError
	return errors.As(err, &ee)
}
