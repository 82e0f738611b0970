package services

import "errors"

var (
	// ErrInvalidCredentials is returned by Login for an unknown user or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated means no bearer token was presented.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrInvalidToken means the token is malformed, forged or expired.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// ValidationError reports caller input that cannot be accepted.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// IsValidationError reports whether err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
