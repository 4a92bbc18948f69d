package errors

import (
	"errors"
	"fmt"
)

// Common error types for the BrainBin gateway
var (
	// Session errors
	ErrNoSession           = errors.New("no active session")
	ErrSessionExpired      = errors.New("session expired")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrNoRefreshToken      = errors.New("no refresh token available")
	ErrRefreshFailed       = errors.New("token refresh failed")
	ErrConfirmationPending = errors.New("email confirmation pending")

	// Upload errors
	ErrTaskNotFound    = errors.New("task not found")
	ErrTaskNotTerminal = errors.New("task is still active")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// RemoteError is a non-2xx response from the backend, carrying the
// human-readable message extracted from the response body.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// NetworkError is a transport-level failure (DNS, connection refused).
// The backend was never reached.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("cannot connect to server: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// TimeoutError is a client-side deadline exceeded on a request. Kept
// distinct from RemoteError so callers can surface it separately.
type TimeoutError struct {
	Operation string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out", e.Operation)
}

// ValidationError is a local pre-network rejection (bad input shape,
// file too large, unsupported type). It never reaches the network.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

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

// IsRemote reports whether err is a backend-reported error.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsTimeout reports whether err is a client-side timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// IsValidation reports whether err is a local validation rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
