// Package monotime supplies the nanosecond time domain the timer wheel runs
// on: monotonically non-decreasing nanos counted from a fixed origin, so the
// wheel never sees negative instants and deadline arithmetic stays simple.
package monotime

import (
	"math"
	"time"

	"github.com/benbjohnson/clock"
)

// Source converts a clock into wheel time. The origin is captured at
// construction; tests pass a clock.Mock and drive it forward.
type Source struct {
	clk    clock.Clock
	origin time.Time
}

func New(clk clock.Clock) *Source {
	return &Source{clk: clk, origin: clk.Now()}
}

// NowNanos returns nanoseconds elapsed since the origin, never negative.
func (s *Source) NowNanos() int64 {
	n := s.clk.Since(s.origin).Nanoseconds()
	if n < 0 {
		return 0
	}
	return n
}

// SaturatingAdd computes nanos+d clamped to MaxInt64. Wraparound would turn
// a "never expires" deadline into an imminent one, so overflow saturates.
func SaturatingAdd(nanos int64, d time.Duration) int64 {
	if d <= 0 {
		return nanos
	}
	if nanos > math.MaxInt64-int64(d) {
		return math.MaxInt64
	}
	return nanos + int64(d)
}
