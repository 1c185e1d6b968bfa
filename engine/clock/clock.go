// package clock measures the wall time between successive frames.
package clock

import (
	"time"
)

// Clock supplies the per-frame time delta for the render loop.
type Clock interface {
	// Tick returns the seconds elapsed since the previous Tick, or since the clock was created
	// for the first call. The result is never negative: if the time source moves backward the
	// delta is clamped to zero.
	//
	// Returns:
	//   - float64: elapsed seconds, >= 0
	Tick() float64

	// Elapsed returns the sum of every delta returned by Tick so far.
	//
	// Returns:
	//   - float64: total seconds
	Elapsed() float64

	// Reset restarts the measurement from the current instant without clearing Elapsed.
	Reset()
}

type clockImpl struct {
	now      func() time.Time
	last     time.Time
	elapsed  float64
	maxDelta float64
}

var _ Clock = &clockImpl{}

// NewClock creates a Clock that starts measuring immediately.
//
// Parameters:
//   - options: functional options to configure the clock
//
// Returns:
//   - Clock: the new clock
func NewClock(options ...ClockBuilderOption) Clock {
	c := &clockImpl{
		now: time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	c.last = c.now()
	return c
}

func (c *clockImpl) Tick() float64 {
	now := c.now()
	dt := now.Sub(c.last).Seconds()
	c.last = now

	if dt < 0 {
		dt = 0
	}
	if c.maxDelta > 0 && dt > c.maxDelta {
		dt = c.maxDelta
	}

	c.elapsed += dt
	return dt
}

func (c *clockImpl) Elapsed() float64 {
	return c.elapsed
}

func (c *clockImpl) Reset() {
	c.last = c.now()
}
