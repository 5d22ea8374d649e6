// Package logging provides the structured logging interface used by the
// orchestrator and the CLI. It abstracts the underlying implementation
// (zerolog or the standard library logger) so components log the same fields
// regardless of the backend.
package logging
