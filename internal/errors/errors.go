package errors

import (
	"errors"
	"fmt"
)

// Common error types for the dashboard proxy
var (
	// Authentication errors
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrAuthExchange    = errors.New("authorization code exchange failed")
	ErrStateMismatch   = errors.New("oauth state mismatch")
	ErrIdentity        = errors.New("id token verification failed")
	ErrCredentials     = errors.New("credentials rejected")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrInvalidCookie   = errors.New("invalid session cookie")

	// Report errors
	ErrUnknownReport = errors.New("unknown report")
	ErrGateway       = errors.New("analytics gateway error")
	ErrShape         = errors.New("unexpected report shape")

	// General errors
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join is errors.Join re-exported so callers need only this package.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
