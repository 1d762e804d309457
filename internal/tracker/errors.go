package tracker

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an update targets a record that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNetwork marks a remote call that never got an answer: the server was
	// unreachable or the call timed out.
	ErrNetwork = errors.New("network error - please check your connection")

	// ErrUnauthorized marks an HTTP 401 from the remote API.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials is returned by login when the remote rejects the credentials.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrSessionExpired is returned after a real token was rejected and the
	// session has been cleared. The caller should treat the user as logged out.
	ErrSessionExpired = errors.New("session expired - please log in again")
)

// ValidationError reports a missing or malformed input field. Nothing is
// written when a ValidationError is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
