package apperrors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorTimeout  = 2   // Indicates the aggregation deadline expired.
	ExitErrorWorker   = 3   // Indicates a worker call failed under a strict policy.
	ExitErrorConfig   = 4   // Indicates a configuration or batch shape error.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// Sentinel errors identifying the three failure classes of an aggregation.
// The concrete error types below match them through errors.Is.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrWorkerFailure   = errors.New("worker failure")
	ErrTimeout         = errors.New("timeout")
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// InvalidArgumentError reports a dispatch batch whose workers and inputs do
// not pair up. It is detected before any call is issued.
type InvalidArgumentError struct {
	// Workers is the number of workers supplied.
	Workers int
	// Inputs is the number of inputs supplied.
	Inputs int
}

// Error returns a formatted message describing the shape mismatch.
func (e InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument: %d workers but %d inputs", e.Workers, e.Inputs)
}

// Is reports whether target is ErrInvalidArgument.
func (e InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

// WorkerError encapsulates the failure of a single worker call while
// preserving the original cause and the slot it occupied in the batch.
type WorkerError struct {
	// Index is the position of the failed call in the input batch.
	Index int
	// WorkerID is the identity of the worker that failed.
	WorkerID string
	// Cause is the underlying error returned by the worker.
	Cause error
}

// Error returns a formatted message naming the worker and its cause.
func (e WorkerError) Error() string {
	return fmt.Sprintf("worker %q (slot %d) failed: %v", e.WorkerID, e.Index, e.Cause)
}

// Unwrap returns the original wrapped error, allowing for error chain
// inspection (e.g., using errors.Is or errors.As).
func (e WorkerError) Unwrap() error { return e.Cause }

// Is reports whether target is ErrWorkerFailure.
func (e WorkerError) Is(target error) bool { return target == ErrWorkerFailure }

// TimeoutError represents an aggregation whose deadline expired while calls
// were still pending. It captures the operation name, the limit that was
// exceeded and how many calls had settled by then.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was considered timed out.
	// Zero when the deadline came from the caller's context.
	Limit time.Duration
	// Settled is the number of calls that had settled when the deadline hit.
	Settled int
	// Total is the number of calls dispatched.
	Total int
}

// Error returns a formatted message describing the timeout.
func (e TimeoutError) Error() string {
	if e.Limit > 0 {
		return fmt.Sprintf("operation %q timed out after %s (%d/%d settled)", e.Operation, e.Limit, e.Settled, e.Total)
	}
	return fmt.Sprintf("operation %q timed out (%d/%d settled)", e.Operation, e.Settled, e.Total)
}

// Is reports whether target is ErrTimeout or context.DeadlineExceeded.
func (e TimeoutError) Is(target error) bool {
	return target == ErrTimeout || target == context.DeadlineExceeded
}

// ValidationError represents an input validation failure. It identifies which
// field failed validation and provides a human-readable explanation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCode maps an aggregation error to the process exit status.
func ExitCode(err error) int {
	var cfgErr ConfigError
	var valErr ValidationError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrInvalidArgument), errors.As(err, &cfgErr), errors.As(err, &valErr):
		return ExitErrorConfig
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.Is(err, ErrWorkerFailure):
		return ExitErrorWorker
	default:
		return ExitErrorGeneric
	}
}
