package authsession

import (
	"errors"

	"github.com/travelease-dev/travelease/internal/apiclient"
)

const (
	msgLoginFailed    = "Failed to login"
	msgRegisterFailed = "Failed to register"
	msgSaveFailed     = "Failed to save session"
)

// AuthError is a rejected login or registration. Message is safe to show the
// user inline; Err keeps the underlying transport or status error.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// normalizeAuthError maps a request client failure into an AuthError,
// preferring the server-supplied message
func normalizeAuthError(err error, fallback string) *AuthError {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr
	}

	var statusErr *apiclient.HTTPStatusError
	if errors.As(err, &statusErr) {
		if msg := statusErr.Message(); msg != "" {
			return &AuthError{Message: msg, Err: err}
		}
	}
	return &AuthError{Message: fallback, Err: err}
}
