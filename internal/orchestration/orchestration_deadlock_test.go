package orchestration

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/agbru/fanout/internal/worker"
)

// mockWorker simulates various worker behaviors for deadlock testing.
type mockWorker struct {
	name     string
	behavior string // "instant", "slow", "error", "ignore_ctx"
	delay    time.Duration
}

func (m *mockWorker) ID() string { return m.name }

func (m *mockWorker) Call(ctx context.Context, input string) (string, error) {
	switch m.behavior {
	case "slow":
		for i := 0; i < 100; i++ {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			default:
			}
			time.Sleep(m.delay)
		}
	case "error":
		return "", fmt.Errorf("simulated error")
	case "ignore_ctx":
		time.Sleep(m.delay)
	}
	return m.name + ":" + input, nil
}

// slowProgressReporter drains the channel with a pause per event so that
// workers settle faster than the reporter consumes.
type slowProgressReporter struct{}

func (slowProgressReporter) DisplayProgress(wg *sync.WaitGroup, events <-chan SettleEvent, _ int, _ io.Writer) {
	defer wg.Done()
	for range events {
		time.Sleep(time.Millisecond)
	}
}

// TestOrchestrationNoDeadlock_MixedBehaviors verifies that Run completes
// without deadlocking under every policy and worker behavior combination.
func TestOrchestrationNoDeadlock_MixedBehaviors(t *testing.T) {
	testCases := []struct {
		name    string
		workers []worker.Worker
	}{
		{
			name: "all_instant",
			workers: []worker.Worker{
				&mockWorker{name: "w1", behavior: "instant"},
				&mockWorker{name: "w2", behavior: "instant"},
				&mockWorker{name: "w3", behavior: "instant"},
			},
		},
		{
			name: "mixed_instant_and_slow",
			workers: []worker.Worker{
				&mockWorker{name: "fast", behavior: "instant"},
				&mockWorker{name: "slow", behavior: "slow", delay: time.Millisecond},
			},
		},
		{
			name: "mixed_with_errors",
			workers: []worker.Worker{
				&mockWorker{name: "ok", behavior: "instant"},
				&mockWorker{name: "err", behavior: "error"},
			},
		},
		{
			name: "single_worker",
			workers: []worker.Worker{
				&mockWorker{name: "solo", behavior: "instant"},
			},
		},
	}

	wide := make([]worker.Worker, 200)
	for i := range wide {
		behavior := "instant"
		if i%7 == 0 {
			behavior = "error"
		}
		wide[i] = &mockWorker{name: fmt.Sprintf("w%03d", i), behavior: behavior}
	}
	testCases = append(testCases, struct {
		name    string
		workers []worker.Worker
	}{"wide_batch", wide})

	for _, tc := range testCases {
		for _, policy := range Policies() {
			t.Run(tc.name+"/"+policy.String(), func(t *testing.T) {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				o := New(WithProgressReporter(slowProgressReporter{}))
				req := Request{Policy: policy, Workers: tc.workers, Inputs: Broadcast(tc.workers, "msg"), Fallback: "FB"}

				done := make(chan struct{})
				go func() {
					defer close(done)
					_, _ = o.Run(ctx, req)
				}()

				select {
				case <-done:
					// Success - no deadlock
				case <-time.After(10 * time.Second):
					t.Fatal("DEADLOCK: Run did not complete within timeout")
				}
			})
		}
	}
}

// TestOrchestrationNoDeadlock_ContextCancellation verifies that cancelling
// the context during execution does not cause a deadlock.
func TestOrchestrationNoDeadlock_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	workers := []worker.Worker{
		&mockWorker{name: "slow1", behavior: "slow", delay: 100 * time.Millisecond},
		&mockWorker{name: "slow2", behavior: "slow", delay: 100 * time.Millisecond},
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = New().RunFailSoft(ctx, workers, Broadcast(workers, "msg"), "FB")
	}()

	// Cancel after a short delay
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
		// Success
	case <-time.After(5 * time.Second):
		t.Fatal("DEADLOCK after context cancellation")
	}
}

// TestOrchestrationNoDeadlock_UncooperativeWorker verifies that a worker
// ignoring cancellation cannot hold the aggregate past its deadline.
func TestOrchestrationNoDeadlock_UncooperativeWorker(t *testing.T) {
	workers := []worker.Worker{
		&mockWorker{name: "stubborn", behavior: "ignore_ctx", delay: 500 * time.Millisecond},
	}
	o := New(WithTimeout(20 * time.Millisecond))

	start := time.Now()
	_, err := o.RunFailFast(context.Background(), workers, []string{"x"})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("Run waited for the uncooperative worker: %v", elapsed)
	}
}
