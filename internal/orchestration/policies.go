package orchestration

import (
	"context"
	"strings"

	apperrors "github.com/agbru/fanout/internal/errors"
	"github.com/agbru/fanout/internal/worker"
)

const (
	processSeparator = " "
	listSeparator    = ", "
)

// RunProcess requires every call to succeed and joins the values with a
// single space, in input order. The first failure in input order fails the
// aggregate.
func (o *Orchestrator) RunProcess(ctx context.Context, workers []worker.Worker, inputs []string) (string, error) {
	agg, err := o.Run(ctx, Request{Policy: Process, Workers: workers, Inputs: inputs})
	return agg.Joined, err
}

// RunCompletionOrder requires every call to succeed and returns the values in
// the order the calls settled. The order varies from run to run.
func (o *Orchestrator) RunCompletionOrder(ctx context.Context, workers []worker.Worker, inputs []string) ([]string, error) {
	agg, err := o.Run(ctx, Request{Policy: CompletionOrder, Workers: workers, Inputs: inputs})
	return agg.Values, err
}

// RunFailFast is the atomic policy: on full success the values are joined
// with ", " in input order; otherwise the aggregate fails with the first
// failure in input order. Every call still runs to completion.
func (o *Orchestrator) RunFailFast(ctx context.Context, workers []worker.Worker, inputs []string) (string, error) {
	agg, err := o.Run(ctx, Request{Policy: FailFast, Workers: workers, Inputs: inputs})
	return agg.Joined, err
}

// RunFailFastShortCircuit behaves like RunFailFast but cancels the calls
// still pending as soon as one fails. The reported failure is the first one
// observed in time.
func (o *Orchestrator) RunFailFastShortCircuit(ctx context.Context, workers []worker.Worker, inputs []string) (string, error) {
	agg, err := o.Run(ctx, Request{Policy: FailFastShortCircuit, Workers: workers, Inputs: inputs})
	return agg.Joined, err
}

// RunFailPartial is the best-effort policy: it returns the successful values
// in input order and silently drops failed slots. Worker failures never fail
// the aggregate; only a malformed batch or an expired deadline do.
func (o *Orchestrator) RunFailPartial(ctx context.Context, workers []worker.Worker, inputs []string) ([]string, error) {
	agg, err := o.Run(ctx, Request{Policy: FailPartial, Workers: workers, Inputs: inputs})
	return agg.Values, err
}

// RunFailSoft is the fallback policy: every failed slot is replaced by
// fallback and all N segments are joined with ", " in input order.
func (o *Orchestrator) RunFailSoft(ctx context.Context, workers []worker.Worker, inputs []string, fallback string) (string, error) {
	agg, err := o.Run(ctx, Request{Policy: FailSoft, Workers: workers, Inputs: inputs, Fallback: fallback})
	return agg.Joined, err
}

// fold combines settled outcomes under policy. It is a pure function of its
// arguments apart from reading the arrival log.
func fold(policy Policy, outcomes []Outcome, arrivals *arrivalLog, fallback string) (string, []string, error) {
	switch policy {
	case Process:
		if err := firstFailure(outcomes); err != nil {
			return "", nil, err
		}
		return strings.Join(values(outcomes), processSeparator), nil, nil

	case CompletionOrder:
		if err := firstFailure(outcomes); err != nil {
			return "", nil, err
		}
		if arrivals == nil {
			return "", []string{}, nil
		}
		return "", arrivals.snapshot(), nil

	case FailFast, FailFastShortCircuit:
		if err := firstFailure(outcomes); err != nil {
			return "", nil, err
		}
		return strings.Join(values(outcomes), listSeparator), nil, nil

	case FailPartial:
		kept := make([]string, 0, len(outcomes))
		for _, out := range outcomes {
			if out.Succeeded() {
				kept = append(kept, out.Value)
			}
		}
		return "", kept, nil

	case FailSoft:
		segments := make([]string, len(outcomes))
		for i, out := range outcomes {
			if out.Succeeded() {
				segments[i] = out.Value
			} else {
				segments[i] = fallback
			}
		}
		return strings.Join(segments, listSeparator), nil, nil
	}
	return "", nil, apperrors.NewConfigError("unsupported policy %q", policy)
}

// firstFailure returns the failure with the lowest input index, if any.
func firstFailure(outcomes []Outcome) error {
	for _, out := range outcomes {
		if !out.Succeeded() {
			return apperrors.WorkerError{Index: out.Index, WorkerID: out.WorkerID, Cause: out.Err}
		}
	}
	return nil
}

func values(outcomes []Outcome) []string {
	vs := make([]string, len(outcomes))
	for i, out := range outcomes {
		vs[i] = out.Value
	}
	return vs
}
