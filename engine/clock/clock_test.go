package clock

import (
	"math"
	"testing"
	"time"
)

// fakeTime returns a time source that yields the given instants in order and then repeats the last.
func fakeTime(instants ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := instants[i]
		if i < len(instants)-1 {
			i++
		}
		return t
	}
}

func TestTickReturnsDeltaSincePreviousTick(t *testing.T) {
	base := time.Unix(1000, 0)
	c := NewClock(WithTimeSource(fakeTime(
		base,
		base.Add(16*time.Millisecond),
		base.Add(48*time.Millisecond),
	)))

	if got := c.Tick(); got != 0.016 {
		t.Fatalf("first tick = %v, want 0.016", got)
	}
	if got := c.Tick(); got != 0.032 {
		t.Fatalf("second tick = %v, want 0.032", got)
	}
	if got := c.Elapsed(); math.Abs(got-0.048) > 1e-12 {
		t.Fatalf("elapsed = %v, want 0.048", got)
	}
}

func TestTickNeverNegative(t *testing.T) {
	base := time.Unix(1000, 0)
	c := NewClock(WithTimeSource(fakeTime(
		base,
		base.Add(-5*time.Second),
		base.Add(-4*time.Second),
	)))

	if got := c.Tick(); got != 0 {
		t.Fatalf("tick after backward jump = %v, want 0", got)
	}
	// measurement resumes from the adjusted instant
	if got := c.Tick(); got != 1 {
		t.Fatalf("tick after recovery = %v, want 1", got)
	}
}

func TestTickWithRealTimeSourceIsNonNegative(t *testing.T) {
	c := NewClock()
	for i := 0; i < 100; i++ {
		if dt := c.Tick(); dt < 0 {
			t.Fatalf("tick %d returned negative delta %v", i, dt)
		}
	}
}

func TestMaxDeltaClamp(t *testing.T) {
	base := time.Unix(1000, 0)
	c := NewClock(
		WithTimeSource(fakeTime(base, base.Add(3*time.Second))),
		WithMaxDelta(100*time.Millisecond),
	)

	if got := c.Tick(); got != 0.1 {
		t.Fatalf("clamped tick = %v, want 0.1", got)
	}
}

func TestReset(t *testing.T) {
	base := time.Unix(1000, 0)
	c := NewClock(WithTimeSource(fakeTime(
		base,
		base.Add(10*time.Second),
		base.Add(10*time.Second+250*time.Millisecond),
	)))

	c.Reset()
	if got := c.Tick(); got != 0.25 {
		t.Fatalf("tick after reset = %v, want 0.25", got)
	}
}
