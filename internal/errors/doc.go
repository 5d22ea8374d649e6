// Package apperrors defines structured application error types for the
// fan-out orchestrator, allowing callers to distinguish a malformed batch, a
// failed worker call and an expired deadline while still carrying the
// underlying cause.
//
// Error Wrapping Guidelines:
// This package follows Go's error wrapping conventions using fmt.Errorf with %w.
// All error types implement the Unwrap() method or an Is() method so that
// errors.Is() and errors.As() work through any number of wrapping layers.
package apperrors
