// Package common defines the error taxonomy and shared constants used across
// the server and client layers of textify. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")

	// Service-level errors.
	ErrorValidation   = errors.New("validation error")
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
)

// Auth errors. All of them unwrap to ErrorUnauthorized so the transport can
// answer them uniformly while logs keep the specific cause.
var (
	ErrMissingToken       = Detail(ErrorUnauthorized, "missing token")
	ErrInvalidToken       = Detail(ErrorUnauthorized, "invalid token")
	ErrMissingSubject     = Detail(ErrorUnauthorized, "token has no subject")
	ErrUserNotFound       = Detail(ErrorUnauthorized, "user not found")
	ErrInactiveUser       = Detail(ErrorUnauthorized, "user is inactive")
	ErrInvalidCredentials = Detail(ErrorUnauthorized, "incorrect username or password")
)

// Conflict and not-found errors surfaced to API callers.
var (
	ErrUsernameTaken    = Detail(ErrorConflict, "Username already registered")
	ErrEmailTaken       = Detail(ErrorConflict, "Email already registered")
	ErrDocumentNotFound = Detail(ErrorNotFound, "Document not found")
	ErrProfileNotFound  = Detail(ErrorNotFound, "User not found")
)

// DetailedError pairs a client-safe message with the taxonomy error it
// belongs to.
type DetailedError struct {
	Kind    error
	Message string
}

func (e *DetailedError) Error() string { return e.Message }

func (e *DetailedError) Unwrap() error { return e.Kind }

// Detail returns an error whose text is msg and which matches kind via
// errors.Is.
func Detail(kind error, msg string) error {
	return &DetailedError{Kind: kind, Message: msg}
}

// Validation is a shorthand for Detail(ErrorValidation, msg).
func Validation(msg string) error {
	return Detail(ErrorValidation, msg)
}
