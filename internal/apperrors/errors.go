// Package apperrors provides structured lifecycle errors with classification.
package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for classification via errors.Is().
var (
	ErrTransport   = errors.New("transport error")
	ErrSubmission  = errors.New("submission rejected")
	ErrStatusFetch = errors.New("status fetch failed")
	ErrDownload    = errors.New("download failed")
	ErrJobFailed   = errors.New("job failed")
	ErrTimeout     = errors.New("lifecycle timed out")
)

// Error provides a structured error with context.
type Error struct {
	Sentinel   error  // Wrapped sentinel for errors.Is() classification
	Message    string // Human-readable message
	Op         string // Operation that failed (e.g., "client.submit")
	StatusCode int    // HTTP status from the service, 0 if not applicable
	Body       string // Response body snippet for non-success statuses
	Cause      error  // Underlying error
}

// Error returns the human-readable error message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the sentinel error for errors.Is() classification.
func (e *Error) Unwrap() error {
	return e.Sentinel
}

// Transport creates a transport-level error wrapping an underlying cause.
func Transport(op string, cause error) error {
	return &Error{
		Sentinel: ErrTransport,
		Message:  fmt.Sprintf("%s: %v", op, cause),
		Op:       op,
		Cause:    cause,
	}
}

// JobFailed creates an error for a job the service reports as failed.
func JobFailed(jobID, message string) error {
	if message == "" {
		message = "unknown error"
	}
	return &Error{
		Sentinel: ErrJobFailed,
		Message:  fmt.Sprintf("job %s failed: %s", jobID, message),
	}
}

// Timeout creates an error for a job still pending after the attempt bound.
func Timeout(jobID string, attempts int) error {
	return &Error{
		Sentinel: ErrTimeout,
		Message:  fmt.Sprintf("job %s not finished after %d status checks", jobID, attempts),
	}
}
