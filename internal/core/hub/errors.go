// Package hub contains the core configuration domain types and validation
// logic. This is part of the Functional Core - all functions are pure with
// no I/O.
package hub

import (
	"errors"
	"fmt"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// Domain validation errors
	ErrDomainRequired   = errors.New("parent_dns_domain is required")
	ErrDomainInvalid    = errors.New("not a valid DNS name")
	ErrDomainTooLong    = errors.New("DNS name must be under 254 characters")
	ErrSubdomainInvalid = errors.New("not a valid DNS label")

	// Certificate resolver errors
	ErrResolverRequired = errors.New("default_cert_resolver is required")
	ErrResolverInvalid  = errors.New("certificate resolver must be a lowercase identifier")

	// Credential errors
	ErrHtpasswdFormat = errors.New("htpasswd entry must be of the form user:bcrypt-hash")
	ErrHtpasswdScheme = errors.New("htpasswd hash must use an accepted bcrypt prefix ($2a$, $2b$ or $2y$)")

	// Email errors
	ErrEmailInvalid = errors.New("not a valid email address")

	// Service descriptor errors
	ErrPortInvalid = errors.New("backend port must be between 1 and 65535")

	// Config document errors
	ErrUnknownKey = errors.New("unknown configuration key")
)

// ValidationError reports a malformed or missing configuration field.
// It wraps the underlying cause so callers can test with errors.Is.
type ValidationError struct {
	Field string // dotted config key, e.g. "hub.parent_dns_domain"
	Value string // offending value, empty if the field was missing
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s: %v (got %q)", e.Field, e.Err, e.Value)
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for a field.
func NewValidationError(field, value string, err error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Err: err}
}
