//go:generate mockgen -source=worker.go -destination=mocks/mock_worker.go -package=mocks

package worker

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// DefaultMaxDelay is the upper bound of the simulated latency of a Service.
const DefaultMaxDelay = 30 * time.Millisecond

// Worker represents one backend. Call performs a single request/response
// exchange and must honour ctx cancellation while it is blocked.
// Implementations must be safe for concurrent use.
type Worker interface {
	// ID returns the opaque identity tag of the backend.
	ID() string
	// Call processes input and returns the backend's answer.
	Call(ctx context.Context, input string) (string, error)
}

// DelayFunc returns the latency to simulate for the next call.
type DelayFunc func() time.Duration

// RandomDelay returns a DelayFunc drawing uniformly from [0, max].
func RandomDelay(max time.Duration) DelayFunc {
	if max <= 0 {
		return FixedDelay(0)
	}
	return func() time.Duration {
		return rand.N(max + 1)
	}
}

// FixedDelay returns a DelayFunc that always yields d.
func FixedDelay(d time.Duration) DelayFunc {
	return func() time.Duration { return d }
}

// Service is the default Worker. It sleeps for a simulated latency and then
// answers with "<id>:<UPPERCASE INPUT>". It holds no mutable state.
type Service struct {
	id    string
	delay DelayFunc
}

// Option configures a Service during construction.
type Option func(*Service)

// WithDelay replaces the latency source of a Service.
func WithDelay(fn DelayFunc) Option {
	return func(s *Service) {
		if fn != nil {
			s.delay = fn
		}
	}
}

// NewService creates a Service identified by id with a random latency in
// [0, DefaultMaxDelay] unless overridden.
func NewService(id string, opts ...Option) *Service {
	s := &Service{id: id, delay: RandomDelay(DefaultMaxDelay)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the identity of the service.
func (s *Service) ID() string { return s.id }

// Call waits for the simulated latency, then returns the formatted answer.
// If ctx ends first the call is abandoned and ctx.Err() is returned.
func (s *Service) Call(ctx context.Context, input string) (string, error) {
	if err := sleep(ctx, s.delay()); err != nil {
		return "", err
	}
	return Format(s.id, input), nil
}

// Format builds the answer a Service with identity id gives for input.
func Format(id, input string) string {
	return id + ":" + strings.ToUpper(input)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Failing is a Worker whose calls fail immediately.
type Failing struct {
	// Name is the identity tag of the worker.
	Name string
	// Err is returned by every call. A descriptive error is built when nil.
	Err error
}

// ID returns the identity of the worker.
func (f Failing) ID() string { return f.Name }

// Call always fails.
func (f Failing) Call(_ context.Context, input string) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	return "", fmt.Errorf("service %s failed for input %q", f.Name, input)
}

// Static is a Worker that answers every call with the same value, without
// latency.
type Static struct {
	Name  string
	Value string
}

// ID returns the identity of the worker.
func (s Static) ID() string { return s.Name }

// Call returns the fixed value.
func (s Static) Call(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.Value, nil
}

// Func adapts a plain function into a Worker.
type Func struct {
	Name string
	Fn   func(ctx context.Context, input string) (string, error)
}

// ID returns the identity of the worker.
func (f Func) ID() string { return f.Name }

// Call invokes the wrapped function.
func (f Func) Call(ctx context.Context, input string) (string, error) {
	return f.Fn(ctx, input)
}

// Verify interface compliance.
var (
	_ Worker = (*Service)(nil)
	_ Worker = Failing{}
	_ Worker = Static{}
	_ Worker = Func{}
)
