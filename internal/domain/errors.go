package domain

import "errors"

var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")

	// ErrExternalAuth means GitHub rejected the authorization code or the
	// access token. ErrProviderUnavailable means GitHub could not be reached
	// at all. Handlers map them to different HTTP statuses.
	ErrExternalAuth        = errors.New("external authentication failed")
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)

// ValidationError represents a field-level validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
