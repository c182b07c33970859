package monotime

import (
	"math"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
)

// TestSource_NowNanos_TracksMockClock counts nanos from the origin.
func TestSource_NowNanos_TracksMockClock(t *testing.T) {
	mock := clock.NewMock()
	s := New(mock)

	require.Zero(t, s.NowNanos())

	mock.Add(1500 * time.Millisecond)
	require.Equal(t, int64(1500*time.Millisecond), s.NowNanos())
}

// TestSaturatingAdd_Overflow clamps to MaxInt64 instead of wrapping.
func TestSaturatingAdd_Overflow(t *testing.T) {
	require.Equal(t, int64(math.MaxInt64), SaturatingAdd(math.MaxInt64-1, time.Hour))
	require.Equal(t, int64(math.MaxInt64), SaturatingAdd(1, time.Duration(math.MaxInt64)))
}

// TestSaturatingAdd_NonPositiveDuration leaves the instant untouched.
func TestSaturatingAdd_NonPositiveDuration(t *testing.T) {
	require.Equal(t, int64(42), SaturatingAdd(42, 0))
	require.Equal(t, int64(42), SaturatingAdd(42, -time.Second))
}

// TestSaturatingAdd_Plain adds when no clamping is needed.
func TestSaturatingAdd_Plain(t *testing.T) {
	require.Equal(t, int64(3*time.Second), SaturatingAdd(int64(time.Second), 2*time.Second))
}
