// Package apperrors provides tests for application error types.
package apperrors

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestConfigError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		err         error
		expected    string
		checkTypeAs bool
	}{
		{
			name:     "Error returns message",
			err:      ConfigError{Message: "invalid flag value"},
			expected: "invalid flag value",
		},
		{
			name:     "NewConfigError creates formatted error",
			err:      NewConfigError("unknown policy %q for flag %s", "eager", "--policy"),
			expected: `unknown policy "eager" for flag --policy`,
		},
		{
			name:        "ConfigError type assertion",
			err:         NewConfigError("test error"),
			expected:    "test error",
			checkTypeAs: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.err.Error() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, tt.err.Error())
			}
			if tt.checkTypeAs {
				var configErr ConfigError
				if !errors.As(tt.err, &configErr) {
					t.Error("expected error to be ConfigError type")
				}
			}
		})
	}
}

func TestInvalidArgumentError(t *testing.T) {
	t.Parallel()
	err := InvalidArgumentError{Workers: 3, Inputs: 2}

	if got, want := err.Error(), "invalid argument: 3 workers but 2 inputs"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if !errors.Is(err, ErrInvalidArgument) {
		t.Error("errors.Is should match ErrInvalidArgument")
	}
	if errors.Is(err, ErrWorkerFailure) {
		t.Error("InvalidArgumentError must not match ErrWorkerFailure")
	}

	wrapped := WrapError(err, "run fail-fast")
	var argErr InvalidArgumentError
	if !errors.As(wrapped, &argErr) {
		t.Fatal("errors.As should find InvalidArgumentError through WrapError")
	}
	if argErr.Workers != 3 || argErr.Inputs != 2 {
		t.Errorf("unexpected fields: %+v", argErr)
	}
}

func TestWorkerError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		cause       error
		expectedMsg string
		checkIs     error
	}{
		{
			name:        "Error names worker and slot",
			cause:       errors.New("service failed"),
			expectedMsg: `worker "B" (slot 1) failed: service failed`,
			checkIs:     ErrWorkerFailure,
		},
		{
			name:        "errors.Is reaches the cause",
			cause:       context.Canceled,
			expectedMsg: `worker "B" (slot 1) failed: context canceled`,
			checkIs:     context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := WorkerError{Index: 1, WorkerID: "B", Cause: tt.cause}

			if err.Error() != tt.expectedMsg {
				t.Errorf("expected %q, got %q", tt.expectedMsg, err.Error())
			}
			if err.Unwrap() != tt.cause {
				t.Error("Unwrap should return the original cause")
			}
			if !errors.Is(err, tt.checkIs) {
				t.Errorf("errors.Is should find %v in the chain", tt.checkIs)
			}
		})
	}
}

func TestTimeoutError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      TimeoutError
		expected string
	}{
		{
			name:     "Error with limit",
			err:      TimeoutError{Operation: "fail-fast", Limit: 50 * time.Millisecond, Settled: 1, Total: 3},
			expected: `operation "fail-fast" timed out after 50ms (1/3 settled)`,
		},
		{
			name:     "Error without limit",
			err:      TimeoutError{Operation: "process", Settled: 0, Total: 2},
			expected: `operation "process" timed out (0/2 settled)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var err error = tt.err
			if err.Error() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, err.Error())
			}
			if !errors.Is(err, ErrTimeout) {
				t.Error("errors.Is should match ErrTimeout")
			}
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Error("errors.Is should match context.DeadlineExceeded")
			}
			if !IsContextError(err) {
				t.Error("TimeoutError should count as a context error")
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()
	err := ValidationError{Field: "workers", Message: "must not be empty"}
	if got, want := err.Error(), `validation error for "workers": must not be empty`; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestWrapError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		original    error
		format      string
		args        []any
		expectedMsg string
		expectNil   bool
		checkIs     error
	}{
		{
			name:        "wraps error with context",
			original:    errors.New("file not found"),
			format:      "failed to load batch",
			expectedMsg: "failed to load batch: file not found",
		},
		{
			name:        "preserves error chain",
			original:    context.DeadlineExceeded,
			format:      "aggregation timed out",
			expectedMsg: "aggregation timed out: context deadline exceeded",
			checkIs:     context.DeadlineExceeded,
		},
		{
			name:      "returns nil for nil error",
			original:  nil,
			format:    "some context",
			expectNil: true,
		},
		{
			name:        "supports format arguments",
			original:    errors.New("connection reset"),
			format:      "worker %s slot %d",
			args:        []any{"A", 2},
			expectedMsg: "worker A slot 2: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			wrapped := WrapError(tt.original, tt.format, tt.args...)

			if tt.expectNil {
				if wrapped != nil {
					t.Error("WrapError(nil, ...) should return nil")
				}
				return
			}
			if wrapped == nil {
				t.Fatal("wrapped error should not be nil")
			}
			if wrapped.Error() != tt.expectedMsg {
				t.Errorf("expected %q, got %q", tt.expectedMsg, wrapped.Error())
			}
			if tt.checkIs != nil && !errors.Is(wrapped, tt.checkIs) {
				t.Errorf("wrapped error should preserve %v in the chain", tt.checkIs)
			}
		})
	}
}

func TestIsContextError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"context.Canceled", context.Canceled, true},
		{"context.DeadlineExceeded", context.DeadlineExceeded, true},
		{"wrapped context.Canceled", WrapError(context.Canceled, "operation canceled"), true},
		{"regular error", errors.New("some error"), false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsContextError(tt.err); got != tt.expected {
				t.Errorf("IsContextError(%v) = %v, expected %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, ExitSuccess},
		{"invalid argument", InvalidArgumentError{Workers: 1, Inputs: 0}, ExitErrorConfig},
		{"config", NewConfigError("bad"), ExitErrorConfig},
		{"validation", ValidationError{Field: "f", Message: "m"}, ExitErrorConfig},
		{"timeout", TimeoutError{Operation: "x"}, ExitErrorTimeout},
		{"canceled", WrapError(context.Canceled, "run"), ExitErrorCanceled},
		{"worker", fmt.Errorf("run: %w", WorkerError{WorkerID: "A", Cause: errors.New("boom")}), ExitErrorWorker},
		{"generic", errors.New("boom"), ExitErrorGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExitCode(tt.err); got != tt.expected {
				t.Errorf("ExitCode(%v) = %d, expected %d", tt.err, got, tt.expected)
			}
		})
	}
}

func TestExitCodes(t *testing.T) {
	t.Parallel()
	codes := map[string]int{
		"ExitSuccess":       ExitSuccess,
		"ExitErrorGeneric":  ExitErrorGeneric,
		"ExitErrorTimeout":  ExitErrorTimeout,
		"ExitErrorWorker":   ExitErrorWorker,
		"ExitErrorConfig":   ExitErrorConfig,
		"ExitErrorCanceled": ExitErrorCanceled,
	}

	if ExitSuccess != 0 {
		t.Errorf("ExitSuccess should be 0, got %d", ExitSuccess)
	}
	if ExitErrorCanceled != 130 {
		t.Errorf("ExitErrorCanceled should be 130 (SIGINT convention), got %d", ExitErrorCanceled)
	}

	seen := make(map[int]string)
	for name, code := range codes {
		if existing, ok := seen[code]; ok {
			t.Errorf("duplicate exit code %d: %s and %s", code, existing, name)
		}
		seen[code] = name
	}
}
