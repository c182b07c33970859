package tests

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jiansoft/robin"
	"github.com/stretchr/testify/require"

	embercache "github.com/emberline/go-ember-cache"
	"github.com/emberline/go-ember-cache/config"
	"github.com/emberline/go-ember-cache/tests/help"
)

func TestDataRace(t *testing.T) {
	const loop = 100_000

	cfg := help.ShortTTLCfg(config.ExpireAfterAccess, time.Second)
	cache := embercache.New(context.Background(), cfg, help.Logger())
	defer cache.Close()

	wg := sync.WaitGroup{}

	wg.Add(1)
	robin.RightNow().Do(func(loop int, c *embercache.Cache, swg *sync.WaitGroup) {
		defer swg.Done()
		for i := 0; i < loop; i++ {
			key := fmt.Sprintf("race-%v", i)
			c.Set(key, []byte("payload"))
		}
	}, loop, cache, &wg)

	wg.Add(1)
	robin.RightNow().Do(func(loop int, c *embercache.Cache, swg *sync.WaitGroup) {
		defer swg.Done()
		<-time.After(time.Millisecond * 100)
		for i := 0; i < loop; i++ {
			key := fmt.Sprintf("race-%v", i)
			_, _ = c.Get(key)
			_, _ = c.Get(key)
		}
	}, loop, cache, &wg)

	wg.Add(1)
	robin.RightNow().Do(func(loop int, c *embercache.Cache, swg *sync.WaitGroup) {
		defer swg.Done()
		<-time.After(time.Millisecond * 500)
		for i := 0; i < loop; i++ {
			key := fmt.Sprintf("race-%v", i)
			c.Del(key)
		}
	}, loop, cache, &wg)

	wg.Wait()

	hits, misses, _, _, expired, _ := cache.CacheMetrics()
	require.Equal(t, int64(2*loop), hits+misses)
	require.GreaterOrEqual(t, expired, int64(0))
	require.LessOrEqual(t, cache.Len(), int64(loop))
}
