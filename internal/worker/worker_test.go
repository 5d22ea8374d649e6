package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Call(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		id    string
		input string
		want  string
	}{
		{"lowercase input", "Hello", "hi", "Hello:HI"},
		{"mixed case input", "World", "Cloud", "World:CLOUD"},
		{"empty input", "A", "", "A:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewService(tt.id, WithDelay(FixedDelay(0)))
			got, err := s.Call(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.id, s.ID())
		})
	}
}

func TestService_ValueIsPureFunctionOfIdentityAndInput(t *testing.T) {
	t.Parallel()
	s := NewService("A")

	first, err := s.Call(context.Background(), "msg")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		got, err := s.Call(context.Background(), "msg")
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
}

func TestService_HonoursDelay(t *testing.T) {
	t.Parallel()
	s := NewService("SLOW", WithDelay(FixedDelay(40*time.Millisecond)))

	start := time.Now()
	_, err := s.Call(context.Background(), "x")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestService_AbandonsOnCancel(t *testing.T) {
	t.Parallel()
	s := NewService("SLOW", WithDelay(FixedDelay(time.Hour)))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := s.Call(ctx, "x")
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("call did not return after context deadline")
	}
}

func TestService_ConcurrentCalls(t *testing.T) {
	t.Parallel()
	s := NewService("A")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.Call(context.Background(), "msg")
			assert.NoError(t, err)
			assert.Equal(t, "A:MSG", got)
		}()
	}
	wg.Wait()
}

func TestRandomDelay_Bounds(t *testing.T) {
	t.Parallel()
	fn := RandomDelay(30 * time.Millisecond)
	for i := 0; i < 1000; i++ {
		d := fn()
		require.GreaterOrEqual(t, d, time.Duration(0))
		require.LessOrEqual(t, d, 30*time.Millisecond)
	}
	assert.Equal(t, time.Duration(0), RandomDelay(0)())
	assert.Equal(t, time.Duration(0), RandomDelay(-time.Second)())
}

func TestFailing_Call(t *testing.T) {
	t.Parallel()

	t.Run("descriptive default error", func(t *testing.T) {
		t.Parallel()
		f := Failing{Name: "FAIL"}
		_, err := f.Call(context.Background(), "msg2")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "FAIL")
		assert.Contains(t, err.Error(), "msg2")
	})

	t.Run("explicit error", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("Service failed")
		f := Failing{Name: "FAIL", Err: cause}
		_, err := f.Call(context.Background(), "msg2")
		assert.ErrorIs(t, err, cause)
	})
}

func TestStatic_Call(t *testing.T) {
	t.Parallel()
	s := Static{Name: "Hello", Value: "Hello"}
	got, err := s.Call(context.Background(), "ignored")
	require.NoError(t, err)
	assert.Equal(t, "Hello", got)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Call(ctx, "ignored")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFunc_Call(t *testing.T) {
	t.Parallel()
	f := Func{Name: "echo", Fn: func(_ context.Context, in string) (string, error) {
		return in + in, nil
	}}
	got, err := f.Call(context.Background(), "ab")
	require.NoError(t, err)
	assert.Equal(t, "abab", got)
	assert.Equal(t, "echo", f.ID())
}
