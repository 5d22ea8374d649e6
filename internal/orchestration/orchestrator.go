package orchestration

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/fanout/internal/errors"
	"github.com/agbru/fanout/internal/logging"
	"github.com/agbru/fanout/internal/worker"
)

// settleGrace bounds how long an aborted dispatch waits for cancelled calls
// to settle before it detaches the progress reporter.
const settleGrace = 50 * time.Millisecond

// Orchestrator fans a batch out to its workers and folds the settled
// outcomes according to a Policy. It is safe for concurrent use; each Run
// owns its own outcome slice.
type Orchestrator struct {
	logger      logging.Logger
	recorder    Recorder
	reporter    ProgressReporter
	progressOut io.Writer
	timeout     time.Duration
}

// Option configures an Orchestrator during construction.
type Option func(*Orchestrator)

// WithLogger sets the logger used for dispatch and aggregate events.
func WithLogger(l logging.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRecorder sets the instrumentation sink.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithProgressReporter sets the reporter fed with settle events.
func WithProgressReporter(r ProgressReporter) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.reporter = r
		}
	}
}

// WithProgressOutput sets the writer handed to the progress reporter.
func WithProgressOutput(w io.Writer) Option {
	return func(o *Orchestrator) {
		if w != nil {
			o.progressOut = w
		}
	}
}

// WithTimeout bounds every aggregation. Zero means only the caller's context applies.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// New creates an Orchestrator. Without options it logs nothing, records
// nothing and reports no progress.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:      logging.NewNopLogger(),
		recorder:    NopRecorder{},
		reporter:    NullProgressReporter{},
		progressOut: io.Discard,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Request describes one aggregation.
type Request struct {
	Policy  Policy
	Workers []worker.Worker
	Inputs  []string
	// Fallback substitutes failed slots under FailSoft.
	Fallback string
}

// Aggregate is the folded result of a Run. Joined is set for Process,
// FailFast, FailFastShortCircuit and FailSoft; Values for CompletionOrder and
// FailPartial.
type Aggregate struct {
	RunID    string
	Policy   Policy
	Joined   string
	Values   []string
	Outcomes []Outcome
	Elapsed  time.Duration
}

// Failed returns the number of outcomes that settled with an error.
func (a Aggregate) Failed() int {
	n := 0
	for _, out := range a.Outcomes {
		if !out.Succeeded() {
			n++
		}
	}
	return n
}

// Run validates the batch, dispatches every call concurrently, waits for all
// of them to settle and folds the outcomes under req.Policy.
//
// Errors:
//   - apperrors.ValidationError for an unknown policy.
//   - apperrors.InvalidArgumentError when len(Workers) != len(Inputs); nothing is dispatched.
//   - apperrors.TimeoutError when the deadline expires before every call settled.
//   - apperrors.WorkerError when a strict policy sees a failed call.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Aggregate, error) {
	agg := Aggregate{RunID: uuid.NewString(), Policy: req.Policy}
	start := time.Now()

	p, err := ParsePolicy(req.Policy.String())
	if err != nil {
		return agg, err
	}
	req.Policy, agg.Policy = p, p
	policy := p.String()

	tasks, err := Pair(req.Workers, req.Inputs)
	if err != nil {
		o.logger.Info("batch rejected", logging.String("run_id", agg.RunID), logging.String("policy", policy), logging.Err(err))
		o.recorder.AggregateDone(policy, 0, err)
		return agg, err
	}

	o.logger.Debug("dispatching batch",
		logging.String("run_id", agg.RunID),
		logging.String("policy", policy),
		logging.Int("calls", len(tasks)))

	var arrivals *arrivalLog
	var onSettle func(Outcome)
	if req.Policy == CompletionOrder {
		arrivals = newArrivalLog(len(tasks))
		onSettle = arrivals.record
	}

	outcomes, err := o.dispatch(ctx, dispatchPlan{
		policy:       req.Policy,
		tasks:        tasks,
		onSettle:     onSettle,
		shortCircuit: req.Policy == FailFastShortCircuit,
	})
	agg.Outcomes = outcomes
	if err == nil {
		agg.Joined, agg.Values, err = fold(req.Policy, outcomes, arrivals, req.Fallback)
	}
	agg.Elapsed = time.Since(start)

	o.recorder.AggregateDone(policy, agg.Elapsed, err)
	fields := []logging.Field{
		logging.String("run_id", agg.RunID),
		logging.String("policy", policy),
		logging.Int("calls", len(tasks)),
		logging.Int("failed", agg.Failed()),
		logging.Duration("elapsed", agg.Elapsed),
	}
	if err != nil {
		// Worker failures under a strict policy are a normal result; the
		// caller presents them.
		if errors.Is(err, apperrors.ErrWorkerFailure) {
			o.logger.Info("aggregation rejected", append(fields, logging.Err(err))...)
		} else {
			o.logger.Error("aggregation failed", err, fields...)
		}
		agg.Joined, agg.Values = "", nil
		return agg, err
	}
	o.logger.Info("aggregation complete", fields...)
	return agg, nil
}

type dispatchPlan struct {
	policy       Policy
	tasks        []Task
	onSettle     func(Outcome)
	shortCircuit bool
}

// dispatch issues every task in its own goroutine and waits for all of them
// to settle. Outcomes are stored by input index. Worker failures are captured
// in the outcomes, never returned, except in short-circuit mode where the
// first failure cancels the remaining calls and is returned as a WorkerError.
func (o *Orchestrator) dispatch(ctx context.Context, plan dispatchPlan) ([]Outcome, error) {
	n := len(plan.tasks)
	outcomes := make([]Outcome, n)
	if n == 0 {
		return outcomes, nil
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	if ctx.Err() != nil {
		return nil, o.contextError(ctx, plan.policy, 0, n)
	}
	callCtx, cancelCalls := context.WithCancel(ctx)
	defer cancelCalls()

	var g *errgroup.Group
	if plan.shortCircuit {
		g, callCtx = errgroup.WithContext(callCtx)
	} else {
		g = new(errgroup.Group)
	}

	// Buffered to n: every call sends exactly one event, so a slow reporter
	// never blocks a worker goroutine.
	events := make(chan SettleEvent, n)
	feed := make(chan SettleEvent)
	stopFeed := make(chan struct{})
	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go o.reporter.DisplayProgress(&displayWg, feed, n, o.progressOut)
	go forwardEvents(events, feed, stopFeed)

	policy := plan.policy.String()
	var settled atomic.Int64
	for i, task := range plan.tasks {
		g.Go(func() error {
			o.recorder.CallStarted(policy)
			start := time.Now()
			value, err := task.Worker.Call(callCtx, task.Input)
			out := Outcome{
				Index:    i,
				WorkerID: task.Worker.ID(),
				Input:    task.Input,
				Value:    value,
				Err:      err,
				Duration: time.Since(start),
			}
			if err != nil {
				out.Value = ""
			}
			outcomes[i] = out
			o.recorder.CallSettled(policy, out.WorkerID, out.Duration, err)
			if plan.onSettle != nil {
				plan.onSettle(out)
			}
			settled.Add(1)
			events <- SettleEvent{Index: i, WorkerID: out.WorkerID, Duration: out.Duration, Err: err}
			if err != nil {
				o.logger.Debug("call failed",
					logging.String("policy", policy),
					logging.String("worker", out.WorkerID),
					logging.Int("slot", i),
					logging.Err(err))
				if plan.shortCircuit {
					return apperrors.WorkerError{Index: i, WorkerID: out.WorkerID, Cause: err}
				}
			}
			return nil
		})
	}

	var groupErr error
	done := make(chan struct{})
	go func() {
		groupErr = g.Wait()
		close(events)
		displayWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return outcomes, groupErr
	case <-ctx.Done():
		select {
		case <-done:
			return outcomes, groupErr
		default:
		}
		ctxErr := o.contextError(ctx, plan.policy, int(settled.Load()), n)
		cancelCalls()
		grace := time.NewTimer(settleGrace)
		defer grace.Stop()
		select {
		case <-done:
		case <-grace.C:
			close(stopFeed)
			displayWg.Wait()
		}
		return nil, ctxErr
	}
}

// forwardEvents relays settle events to the reporter until src is closed or
// stop is closed, then closes dst so the reporter returns.
func forwardEvents(src <-chan SettleEvent, dst chan<- SettleEvent, stop <-chan struct{}) {
	defer close(dst)
	for {
		select {
		case ev, ok := <-src:
			if !ok {
				return
			}
			select {
			case dst <- ev:
			case <-stop:
				return
			}
		case <-stop:
			return
		}
	}
}

// contextError converts the end of ctx into the aggregate's failure.
func (o *Orchestrator) contextError(ctx context.Context, policy Policy, settled, total int) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.TimeoutError{Operation: policy.String(), Limit: o.timeout, Settled: settled, Total: total}
	}
	return apperrors.WrapError(ctx.Err(), "%s aborted with %d/%d settled", policy, settled, total)
}

// arrivalLog collects successful values in the order calls settle. record is
// called concurrently from every call goroutine.
type arrivalLog struct {
	mu     sync.Mutex
	values []string
}

func newArrivalLog(capacity int) *arrivalLog {
	return &arrivalLog{values: make([]string, 0, capacity)}
}

func (a *arrivalLog) record(out Outcome) {
	if !out.Succeeded() {
		return
	}
	a.mu.Lock()
	a.values = append(a.values, out.Value)
	a.mu.Unlock()
}

func (a *arrivalLog) snapshot() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.values))
	copy(out, a.values)
	return out
}
