// Package common defines shared constants and sentinel errors used across
// client and server layers of gophauth. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound     = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Validation errors (malformed input shape).
	ErrValidation = errors.New("validation error")

	// Credential errors. Login deliberately does not say which field was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Any access token problem collapses into this one at the API boundary.
	ErrUnauthenticated = errors.New("could not validate credentials")

	// Reset handshake errors.
	ErrResetTokenNotFound = errors.New("reset token not found")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)
