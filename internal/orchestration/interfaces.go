package orchestration

import (
	"io"
	"sync"
	"time"
)

// ProgressReporter defines the interface for displaying settlement progress.
// This interface decouples the orchestration layer from the presentation
// layer: implementations render spinners or counters while the orchestrator
// focuses on dispatching calls.
type ProgressReporter interface {
	// DisplayProgress consumes settle events until the channel is closed.
	// It is started in its own goroutine and must call wg.Done on return.
	//
	// Parameters:
	//   - wg: A WaitGroup to signal when display is complete.
	//   - events: Channel receiving one event per settled call.
	//   - total: The number of calls dispatched.
	//   - out: The writer for progress output.
	DisplayProgress(wg *sync.WaitGroup, events <-chan SettleEvent, total int, out io.Writer)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, events <-chan SettleEvent, total int, out io.Writer)

// DisplayProgress calls the underlying function.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, events <-chan SettleEvent, total int, out io.Writer) {
	f(wg, events, total, out)
}

// NullProgressReporter is a no-op implementation of ProgressReporter.
// It drains the event channel without displaying anything.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, events <-chan SettleEvent, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(events)
}

// Recorder receives instrumentation callbacks from the orchestrator.
// Policy names are passed as plain strings so that metric backends do not
// depend on this package.
type Recorder interface {
	// CallStarted is invoked right before a worker call is issued.
	CallStarted(policy string)
	// CallSettled is invoked once per call when it reaches a terminal state.
	CallSettled(policy, workerID string, d time.Duration, err error)
	// AggregateDone is invoked once per Run with the aggregate's error, if any.
	AggregateDone(policy string, d time.Duration, err error)
}

// NopRecorder is a Recorder that records nothing.
type NopRecorder struct{}

// CallStarted does nothing.
func (NopRecorder) CallStarted(string) {}

// CallSettled does nothing.
func (NopRecorder) CallSettled(string, string, time.Duration, error) {}

// AggregateDone does nothing.
func (NopRecorder) AggregateDone(string, time.Duration, error) {}

// ResultPresenter defines the interface for presenting aggregates.
// It allows different output formats without modifying the orchestration logic.
type ResultPresenter interface {
	// PresentOutcomeTable displays one row per settled call, in input order.
	PresentOutcomeTable(outcomes []Outcome, out io.Writer)

	// PresentAggregate displays the policy's aggregate value.
	PresentAggregate(agg Aggregate, out io.Writer)
}

// ErrorHandler handles aggregation errors and returns exit codes.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}
