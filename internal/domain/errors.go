package domain

import "errors"

var (
	ErrNotFound        = errors.New("resource not found")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid input")
	ErrConflict        = errors.New("resource conflict")

	// ErrUpstreamAuth covers provider exchange and reconciliation failures.
	// Callers surface it as a generic authentication failure; the underlying
	// cause is logged, never returned to the client.
	ErrUpstreamAuth = errors.New("upstream authentication failed")
)

// ValidationError represents a field-level validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
