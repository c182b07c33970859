package tests

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	embercache "github.com/emberline/go-ember-cache"
	"github.com/emberline/go-ember-cache/config"
	"github.com/emberline/go-ember-cache/tests/help"
)

func TestExpiration_AfterCreate(t *testing.T) {
	cfg := help.ShortTTLCfg(config.ExpireAfterCreate, 100*time.Millisecond)
	cache := embercache.New(context.Background(), cfg, help.Logger())
	defer cache.Close()

	for i := 0; i < 64; i++ {
		cache.Set(fmt.Sprintf("key-%d", i), []byte("payload"))
	}
	require.Equal(t, int64(64), cache.Len())

	require.Eventually(t, func() bool {
		return cache.Len() == 0
	}, 5*time.Second, 10*time.Millisecond)

	_, _, _, _, expired, _ := cache.CacheMetrics()
	require.Equal(t, int64(64), expired)

	_, reaped, _ := cache.SweeperMetrics()
	require.Positive(t, reaped)
}

func TestExpiration_AfterAccess_SlidesOnReads(t *testing.T) {
	cfg := help.ShortTTLCfg(config.ExpireAfterAccess, 300*time.Millisecond)
	cache := embercache.New(context.Background(), cfg, help.Logger())
	defer cache.Close()

	cache.Set("sliding", []byte("alive"))
	cache.Set("idle", []byte("doomed"))

	// Touch the sliding key well past the idle key's lifetime.
	deadline := time.Now().Add(700 * time.Millisecond)
	for time.Now().Before(deadline) {
		_, ok := cache.Get("sliding")
		require.True(t, ok)
		time.Sleep(50 * time.Millisecond)
	}

	_, ok := cache.Get("idle")
	require.False(t, ok)
	_, ok = cache.Get("sliding")
	require.True(t, ok)

	require.Eventually(t, func() bool {
		return cache.Len() == 0
	}, 5*time.Second, 20*time.Millisecond)
}

func TestExpiration_ListenerReceivesEvents(t *testing.T) {
	cfg := help.ShortTTLCfg(config.ExpireAfterCreate, 100*time.Millisecond)

	var delivered atomic.Int64
	cache := embercache.NewWithPolicy(context.Background(), cfg, help.Logger(),
		embercache.DefaultPolicy(cfg.Expiry),
		func(embercache.Event) { delivered.Add(1) })
	defer cache.Close()

	const n = 32
	for i := 0; i < n; i++ {
		cache.Set(fmt.Sprintf("ev-%d", i), []byte("x"))
	}

	require.Eventually(t, func() bool {
		return delivered.Load() == n
	}, 5*time.Second, 10*time.Millisecond)
}
