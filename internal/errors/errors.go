package errors

import (
	"errors"
	"fmt"
)

// Common error types for the employee console
var (
	// Session errors. These are branch conditions of the session monitor and
	// all resolve to the same forced logout.
	ErrTokenAbsent    = errors.New("token absent")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenExpired   = errors.New("token expired")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")

	// Form errors
	ErrValidation = errors.New("validation failed")

	// Storage errors
	ErrStoreUnavailable = errors.New("session store unavailable")
	ErrDecryptionFailed = errors.New("session file decryption failed")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
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

// Join returns an error that wraps the given errors, nil when all are nil
func Join(errs ...error) error {
	return errors.Join(errs...)
}
