package orchestration

import "time"

// Outcome is the settled result of one worker call. Exactly one of Value or
// Err is meaningful: Err is nil on success.
type Outcome struct {
	// Index is the position of the call in the input batch.
	Index int
	// WorkerID is the identity of the worker that served the call.
	WorkerID string
	// Input is the request sent to the worker.
	Input string
	// Value is the worker's answer. Empty when Err is set.
	Value string
	// Err is the failure returned by the worker, if any.
	Err error
	// Duration is the time the call took to settle.
	Duration time.Duration
}

// Succeeded reports whether the call completed without error.
func (o Outcome) Succeeded() bool { return o.Err == nil }

// SettleEvent is emitted to the progress reporter each time a call settles.
type SettleEvent struct {
	Index    int
	WorkerID string
	Duration time.Duration
	Err      error
}
