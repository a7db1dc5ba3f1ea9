package providers

import (
	"errors"
	"fmt"
)

// TransientError is a retryable transport fault: timeout, connection reset,
// rate limit, or server error. The client's retry policy absorbs these up to
// its attempt budget.
type TransientError struct {
	StatusCode int // 0 for network-level faults
	Body       string
	Err        error
}

func (e *TransientError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transient completion error (status %d): %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("transient completion error: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// AuthError means the service rejected our credentials (401/403). Never
// retried; fatal to the run.
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (status %d): %s", e.StatusCode, e.Body)
}

// MalformedResponseError means the transport succeeded but the payload could
// not be decoded into the expected completion envelope. Not retried by the
// client itself; callers decide.
type MalformedResponseError struct {
	Reason string
	Body   string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed completion response: %s", e.Reason)
}

// IsTransient reports whether err is retryable at the transport layer.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsAuth reports whether err is a credential failure.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsMalformed reports whether err is an undecodable completion payload.
func IsMalformed(err error) bool {
	var me *MalformedResponseError
	return errors.As(err, &me)
}
