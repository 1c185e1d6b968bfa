package clock

import (
	"time"
)

// ClockBuilderOption is a functional option for configuring a Clock.
type ClockBuilderOption func(*clockImpl)

// WithTimeSource replaces time.Now as the clock's time source.
//
// Parameters:
//   - now: function returning the current instant
//
// Returns:
//   - ClockBuilderOption: option function to apply
func WithTimeSource(now func() time.Time) ClockBuilderOption {
	return func(c *clockImpl) {
		if now != nil {
			c.now = now
		}
	}
}

// WithMaxDelta caps the delta returned by Tick. Values <= 0 leave the delta uncapped (default).
//
// Parameters:
//   - max: the largest delta Tick may return
//
// Returns:
//   - ClockBuilderOption: option function to apply
func WithMaxDelta(max time.Duration) ClockBuilderOption {
	return func(c *clockImpl) {
		if max <= 0 {
			c.maxDelta = 0
			return
		}
		c.maxDelta = max.Seconds()
	}
}
