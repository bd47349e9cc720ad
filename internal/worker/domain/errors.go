package domain

import "errors"

var (
	// ErrInvalidPayload is returned when a trigger message is malformed or names an unknown pass
	ErrInvalidPayload = errors.New("invalid pass trigger payload")

	// ErrPassInProgress is returned when a pass of the same kind is already running in this process
	ErrPassInProgress = errors.New("pass already in progress")

	// ErrRedeliveryFailed is returned when a redelivered trigger fails again
	ErrRedeliveryFailed = errors.New("pass failed on redelivery")
)

// RetryableError wraps transient errors that should trigger a requeue
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable error: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError creates a new retryable error
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}
