package expiry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestCreating_FixedAfterCreate keeps the original schedule on later events.
func TestCreating_FixedAfterCreate(t *testing.T) {
	p := Creating(time.Minute)

	require.Equal(t, time.Minute, p.AfterCreate("k", nil, 0))
	require.Equal(t, 30*time.Second, p.AfterUpdate("k", nil, 0, 30*time.Second))
	require.Equal(t, 30*time.Second, p.AfterRead("k", nil, 0, 30*time.Second))
}

// TestWriting_RenewsOnUpdateOnly renews on writes but not on reads.
func TestWriting_RenewsOnUpdateOnly(t *testing.T) {
	p := Writing(time.Minute)

	require.Equal(t, time.Minute, p.AfterCreate("k", nil, 0))
	require.Equal(t, time.Minute, p.AfterUpdate("k", nil, 0, time.Second))
	require.Equal(t, time.Second, p.AfterRead("k", nil, 0, time.Second))
}

// TestAccessing_SlidesOnEveryTouch renews on reads and writes alike.
func TestAccessing_SlidesOnEveryTouch(t *testing.T) {
	p := Accessing(time.Minute)

	require.Equal(t, time.Minute, p.AfterCreate("k", nil, 0))
	require.Equal(t, time.Minute, p.AfterUpdate("k", nil, 0, time.Second))
	require.Equal(t, time.Minute, p.AfterRead("k", nil, 0, time.Second))
}

// TestSanitize_NonPositiveTTLMeansUnbounded maps a zero or negative ttl to
// the unbounded lifetime instead of an imminent deadline.
func TestSanitize_NonPositiveTTLMeansUnbounded(t *testing.T) {
	require.Equal(t, Unbounded, Creating(0).AfterCreate("k", nil, 0))
	require.Equal(t, Unbounded, Accessing(-time.Second).AfterCreate("k", nil, 0))
}
