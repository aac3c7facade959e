// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for the service boundaries. Handlers map these to HTTP
// statuses; anything else is an internal store failure surfaced as an
// opaque 500.
var (
	// ErrDuplicateEntry is returned when an insert violates the
	// (name, dob, contact) uniqueness invariant. The existing row is
	// never overwritten.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrInvalidCredentials is returned on login failure. The message is
	// uniform for unknown usernames and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned when a session token is missing,
	// malformed, expired, or carries a bad signature.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrNotFound is reserved for lookups that miss. No public route
	// currently surfaces it.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports a missing or invalid submission field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// AsValidationError unwraps err into a *ValidationError if possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}
