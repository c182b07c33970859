package cache

import "sync/atomic"

type counters struct {
	hits       atomic.Int64 // reads served from the map
	misses     atomic.Int64 // absent or already-expired reads
	loads      atomic.Int64 // loader invocations
	loadErrors atomic.Int64 // failed loader invocations
	expired    atomic.Int64 // entries reaped by the wheel
	dropped    atomic.Int64 // expiration events lost to a full ring
}

func newCounters() *counters {
	return &counters{}
}

func (c *counters) snapshot() (hits, misses, loads, loadErrors, expired, dropped int64) {
	hits = c.hits.Load()
	misses = c.misses.Load()
	loads = c.loads.Load()
	loadErrors = c.loadErrors.Load()
	expired = c.expired.Load()
	dropped = c.dropped.Load()
	return
}
