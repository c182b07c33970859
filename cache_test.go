package embercache

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/emberline/go-ember-cache/config"
	"github.com/emberline/go-ember-cache/expiry"
)

// TestCache_Close cancels context and stops background workers.
func TestCache_Close(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Cache{
		Expiry:  &config.ExpiryCfg{Mode: config.ExpireAfterCreate, TTL: time.Minute},
		Sweeper: &config.SweeperCfg{Rate: 10},
	}
	cfg.AdjustConfig()

	logger := slog.Default()
	cache := New(ctx, cfg, logger)

	// Close should not panic
	err := cache.Close()
	require.NoError(t, err)

	// Close should be idempotent
	err = cache.Close()
	require.NoError(t, err)
}

// TestCache_SetGet stores and reads through the facade.
func TestCache_SetGet(t *testing.T) {
	cfg := &config.Cache{}
	cfg.AdjustConfig()

	cache := New(context.Background(), cfg, slog.Default())
	defer cache.Close()

	cache.Set("hello", []byte("world"))
	got, ok := cache.Get("hello")
	require.True(t, ok)
	require.Equal(t, []byte("world"), got)
}

// TestDefaultPolicy maps config modes onto the built-in policies.
func TestDefaultPolicy(t *testing.T) {
	require.Nil(t, DefaultPolicy(nil))

	now := int64(0)
	payload := []byte("p")

	p := DefaultPolicy(&config.ExpiryCfg{Mode: config.ExpireAfterCreate, TTL: time.Minute})
	require.Equal(t, time.Minute, p.AfterCreate("k", payload, now))
	require.Equal(t, time.Second, p.AfterRead("k", payload, now, time.Second))

	p = DefaultPolicy(&config.ExpiryCfg{Mode: config.ExpireAfterWrite, TTL: time.Minute})
	require.Equal(t, time.Minute, p.AfterUpdate("k", payload, now, time.Second))
	require.Equal(t, time.Second, p.AfterRead("k", payload, now, time.Second))

	p = DefaultPolicy(&config.ExpiryCfg{Mode: config.ExpireAfterAccess, TTL: time.Minute})
	require.Equal(t, time.Minute, p.AfterRead("k", payload, now, time.Second))

	// Unset mode behaves like expire-after-create.
	p = DefaultPolicy(&config.ExpiryCfg{TTL: time.Minute})
	require.Equal(t, time.Minute, p.AfterCreate("k", payload, now))
	require.Equal(t, time.Second, p.AfterUpdate("k", payload, now, time.Second))
}

// TestCache_ExpiresEndToEnd reaps a short-lived entry via the facade with
// the real clock and the background sweeper.
func TestCache_ExpiresEndToEnd(t *testing.T) {
	cfg := &config.Cache{
		Expiry:  &config.ExpiryCfg{Mode: config.ExpireAfterCreate, TTL: 50 * time.Millisecond},
		Sweeper: &config.SweeperCfg{Rate: 100},
	}
	cfg.AdjustConfig()

	cache := New(context.Background(), cfg, slog.Default())
	defer cache.Close()

	cache.Set("short", []byte("lived"))
	_, ok := cache.Get("short")
	require.True(t, ok)

	require.Eventually(t, func() bool {
		return cache.Len() == 0
	}, 2*time.Second, 10*time.Millisecond)

	_, ok = cache.Get("short")
	require.False(t, ok)
}

// TestCache_CustomPolicy drives expiration through a user-supplied policy
// and collects the evicted keys via the listener.
func TestCache_CustomPolicy(t *testing.T) {
	cfg := &config.Cache{
		Sweeper: &config.SweeperCfg{Rate: 100},
	}
	cfg.AdjustConfig()

	events := make(chan Event, 8)
	cache := NewWithPolicy(context.Background(), cfg, slog.Default(),
		expiry.Creating(50*time.Millisecond),
		func(ev Event) { events <- ev })
	defer cache.Close()

	cache.Set("doomed", []byte("payload"))

	select {
	case ev := <-events:
		require.Equal(t, []byte("payload"), ev.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("expiration event was not delivered")
	}
	require.Zero(t, cache.Len())
}
