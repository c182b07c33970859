// Package db implements the sharded concurrent map backing the cache. Hot
// paths (Get/Set/Remove) avoid allocations and keep critical sections short;
// global counters are atomics so they can be read without locks. Expiration
// is not handled here: the map stores entries, the timer wheel decides when
// they die.
package db

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/emberline/go-ember-cache/internal/cache/db/model"
)

// Tunables.
const (
	NumOfShards = 1024
	shardMask   = NumOfShards - 1 // faster than division
)

// Map is a sharded concurrent map with precise global counters.
type Map struct {
	len int64 // aggregated number of items (atomic)
	mem int64 // aggregated entry weight in bytes (atomic)

	shards [NumOfShards]*Shard
}

func NewMap() *Map {
	m := &Map{}
	for id := uint64(0); id < NumOfShards; id++ {
		m.shards[id] = NewShard(id)
	}
	return m
}

// Set inserts/updates a value and adjusts global counters via shard deltas.
func (m *Map) Set(key uint64, value *model.Entry) {
	bytesDelta, lenDelta := m.Shard(key).Set(key, value)
	if bytesDelta != 0 {
		atomic.AddInt64(&m.mem, bytesDelta)
	}
	if lenDelta != 0 {
		atomic.AddInt64(&m.len, lenDelta)
	}
}

// Get reads a value.
func (m *Map) Get(key uint64) (*model.Entry, bool) {
	return m.Shard(key).Get(key)
}

// Remove deletes a key and adjusts global counters.
func (m *Map) Remove(key uint64) (freedBytes int64, hit bool) {
	freedBytes, hit = m.Shard(key).Remove(key)
	if hit {
		atomic.AddInt64(&m.len, -1)
		atomic.AddInt64(&m.mem, -freedBytes)
	}
	return
}

// Clear wipes all shards and fixes global counters.
func (m *Map) Clear() {
	for _, sh := range m.shards {
		freedBytes, items := sh.Clear()
		if freedBytes != 0 {
			atomic.AddInt64(&m.mem, -freedBytes)
		}
		if items != 0 {
			atomic.AddInt64(&m.len, -items)
		}
	}
}

// WalkShards applies fn to all shards synchronously.
func (m *Map) WalkShards(ctx context.Context, fn func(id uint64, shard *Shard)) {
	for id, sh := range m.shards {
		if ctx.Err() != nil {
			return
		}
		fn(uint64(id), sh)
	}
}

// WalkShardsConcurrent executes fn over shards with bounded concurrency.
// Use in maintenance/background tasks; avoid on hot paths.
func (m *Map) WalkShardsConcurrent(ctx context.Context, concurrency int, fn func(id uint64, shard *Shard)) {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	var (
		wg sync.WaitGroup
		ch = make(chan int, NumOfShards)
	)
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer wg.Done()
			for idx := range ch {
				if ctx.Err() != nil {
					return
				}
				fn(uint64(idx), m.shards[idx])
			}
		}()
	}
	for idx := range m.shards {
		select {
		case <-ctx.Done():
			close(ch)
			wg.Wait()
			return
		case ch <- idx:
		}
	}
	close(ch)
	wg.Wait()
}

func (m *Map) AddMem(key uint64, delta int64) {
	atomic.AddInt64(&m.mem, delta)
	m.Shard(key).AddMem(delta)
}

func (m *Map) Shard(key uint64) *Shard { return m.shards[key&shardMask] }
func (m *Map) Len() int64              { return atomic.LoadInt64(&m.len) }
func (m *Map) Mem() int64              { return atomic.LoadInt64(&m.mem) }
