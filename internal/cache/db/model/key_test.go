package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestNewKey_Deterministic hashes the same input to the same key.
func TestNewKey_Deterministic(t *testing.T) {
	a := NewKey("user:42")
	b := NewKey("user:42")

	require.Equal(t, a, b)
	require.True(t, a.Same(b))
	require.NotZero(t, a.Sum())
}

// TestKey_Same_DistinguishesInputs separates different raw keys.
func TestKey_Same_DistinguishesInputs(t *testing.T) {
	a := NewKey("user:42")
	b := NewKey("user:43")

	require.False(t, a.Same(b))
}

// TestKey_Same_ChecksFullDigest rejects a forged sum-only match.
func TestKey_Same_ChecksFullDigest(t *testing.T) {
	a := NewKey("alpha")
	forged := Key{sum: a.sum, hi: a.hi + 1, lo: a.lo}

	require.False(t, a.Same(forged))
}
