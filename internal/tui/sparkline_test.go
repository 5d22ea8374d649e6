package tui

import (
	"testing"
	"time"
	"unicode/utf8"
)

func TestRingBuffer_PushAndSlice(t *testing.T) {
	rb := NewRingBuffer(3)
	rb.Push(1)
	rb.Push(2)
	rb.Push(3)

	got := rb.Slice()
	want := []float64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %f, want %f", i, got[i], want[i])
		}
	}
}

func TestRingBuffer_Overflow(t *testing.T) {
	rb := NewRingBuffer(3)
	for _, v := range []float64{1, 2, 3, 4} {
		rb.Push(v)
	}

	got := rb.Slice()
	want := []float64{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %f, want %f", i, got[i], want[i])
		}
	}
	if rb.Last() != 4 {
		t.Errorf("expected Last()=4, got %f", rb.Last())
	}
}

func TestRingBuffer_EmptyAndReset(t *testing.T) {
	rb := NewRingBuffer(0)
	if rb.Last() != 0 {
		t.Error("expected 0 for empty buffer")
	}
	rb.Push(1)
	rb.Push(2)
	if rb.Len() != 1 {
		t.Errorf("capacity clamps to 1, got len %d", rb.Len())
	}
	rb.Reset()
	if rb.Len() != 0 || rb.Slice() != nil {
		t.Error("expected empty buffer after reset")
	}
}

func TestRenderSparkline(t *testing.T) {
	if RenderSparkline(nil) != "" {
		t.Error("expected empty sparkline for no values")
	}
	got := RenderSparkline([]float64{-5, 0, 50, 100, 250})
	if utf8.RuneCountInString(got) != 5 {
		t.Fatalf("expected 5 glyphs, got %q", got)
	}
	runes := []rune(got)
	if runes[0] != '▁' || runes[1] != '▁' {
		t.Errorf("expected lowest glyph for values <= 0, got %q", got)
	}
	if runes[3] != '█' || runes[4] != '█' {
		t.Errorf("expected highest glyph for values >= 100, got %q", got)
	}
}

func TestLatencyPercent(t *testing.T) {
	tests := []struct {
		d, ceiling time.Duration
		want       float64
	}{
		{15 * time.Millisecond, 30 * time.Millisecond, 50},
		{0, 30 * time.Millisecond, 0},
		{time.Second, 30 * time.Millisecond, 100},
		{time.Millisecond, 0, 100},
	}
	for _, tt := range tests {
		if got := latencyPercent(tt.d, tt.ceiling); got != tt.want {
			t.Errorf("latencyPercent(%v, %v) = %f, want %f", tt.d, tt.ceiling, got, tt.want)
		}
	}
}
