// Package compose builds and validates the compose overlay documents the
// compiler emits for each service stack. This is part of the Functional
// Core - all functions are pure with no I/O.
package compose

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// Input validation errors
	ErrEmptyInput = errors.New("compose document is empty")

	// YAML parsing errors
	ErrInvalidYAML = errors.New("invalid YAML syntax")

	// Structure errors
	ErrNoServices     = errors.New("compose document must define at least one service")
	ErrServiceMissing = errors.New("named service not present in compose document")
	ErrServiceNoImage = errors.New("service must have image or build")
)

// OverlayError wraps errors with context about where overlay construction
// or validation failed.
type OverlayError struct {
	Field   string // e.g. "services.whoami.environment"
	Message string
	Err     error
}

func (e *OverlayError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *OverlayError) Unwrap() error {
	return e.Err
}

// NewOverlayError creates a new OverlayError.
func NewOverlayError(field, message string, err error) *OverlayError {
	return &OverlayError{Field: field, Message: message, Err: err}
}
