package telemetry

import (
	"github.com/emberline/go-ember-cache/internal/cache"
	"github.com/emberline/go-ember-cache/internal/sweeper"
)

type sampler struct {
	cache   cache.Cacher
	sweeper sweeper.Sweeper
}

func newSampler(c cache.Cacher, sw sweeper.Sweeper) sampler {
	return sampler{cache: c, sweeper: sw}
}

// snapshot holds cumulative counters (monotonic).
type snapshot struct {
	hits       uint64
	misses     uint64
	loads      uint64
	loadErrors uint64

	expired uint64
	dropped uint64

	sweeps uint64
	reaped uint64
	idle   uint64
}

func (s sampler) snapshot() snapshot {
	hits, misses, loads, loadErrors, expired, dropped := s.cache.CacheMetrics()
	sweeps, reaped, idle := s.sweeper.SweeperMetrics()

	return snapshot{
		hits:       uint64(max(hits, 0)),
		misses:     uint64(max(misses, 0)),
		loads:      uint64(max(loads, 0)),
		loadErrors: uint64(max(loadErrors, 0)),

		expired: uint64(max(expired, 0)),
		dropped: uint64(max(dropped, 0)),

		sweeps: uint64(max(sweeps, 0)),
		reaped: uint64(max(reaped, 0)),
		idle:   uint64(max(idle, 0)),
	}
}

// deltaSnapshot converts cumulative snapshots to per-interval deltas.
// If counters reset (cur < prev), it treats cur as the delta.
func deltaSnapshot(prev, cur snapshot) snapshot {
	return snapshot{
		hits:       delta(prev.hits, cur.hits),
		misses:     delta(prev.misses, cur.misses),
		loads:      delta(prev.loads, cur.loads),
		loadErrors: delta(prev.loadErrors, cur.loadErrors),

		expired: delta(prev.expired, cur.expired),
		dropped: delta(prev.dropped, cur.dropped),

		sweeps: delta(prev.sweeps, cur.sweeps),
		reaped: delta(prev.reaped, cur.reaped),
		idle:   delta(prev.idle, cur.idle),
	}
}

func delta(prev, cur uint64) uint64 {
	if cur >= prev {
		return cur - prev
	}
	return cur
}
