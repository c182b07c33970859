package db

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/emberline/go-ember-cache/internal/cache/db/model"
)

// Shard is one independent segment of the sharded map. Its counters are
// atomics so global readers can aggregate without taking any shard lock.
type Shard struct {
	sync.RWMutex
	items map[uint64]*model.Entry

	id  uint64
	mem int64 // total entry weight in bytes (atomic)
	len int64 // number of items (atomic)
}

func NewShard(id uint64) *Shard {
	return &Shard{id: id, items: make(map[uint64]*model.Entry)}
}

func (sh *Shard) ID() uint64    { return sh.id }
func (sh *Shard) Len() int64    { return atomic.LoadInt64(&sh.len) }
func (sh *Shard) Weight() int64 { return atomic.LoadInt64(&sh.mem) }

// AddMem adjusts the shard weight after an in-place payload swap.
func (sh *Shard) AddMem(delta int64) { atomic.AddInt64(&sh.mem, delta) }

// Set inserts or replaces a key. Returns deltas for global aggregation.
func (sh *Shard) Set(key uint64, entry *model.Entry) (bytesDelta, lenDelta int64) {
	sh.Lock()
	if old, hit := sh.items[key]; hit {
		sh.items[key] = entry
		bytesDelta = entry.Weight() - old.Weight()
		atomic.AddInt64(&sh.mem, bytesDelta)
	} else {
		sh.items[key] = entry
		lenDelta = 1
		bytesDelta = entry.Weight()
		atomic.AddInt64(&sh.len, 1)
		atomic.AddInt64(&sh.mem, bytesDelta)
	}
	sh.Unlock()
	return
}

// Get reads a value under the shared lock.
func (sh *Shard) Get(key uint64) (*model.Entry, bool) {
	sh.RLock()
	v, hit := sh.items[key]
	sh.RUnlock()
	return v, hit
}

// Remove deletes a key and reports the freed weight.
func (sh *Shard) Remove(key uint64) (freedBytes int64, hit bool) {
	sh.Lock()
	if v, ok := sh.items[key]; ok {
		delete(sh.items, key)
		freedBytes = v.Weight()
		hit = true
		atomic.AddInt64(&sh.len, -1)
		atomic.AddInt64(&sh.mem, -freedBytes)
	}
	sh.Unlock()
	return
}

// Clear drops every entry and returns what was freed.
func (sh *Shard) Clear() (freedBytes, items int64) {
	sh.Lock()
	items = atomic.LoadInt64(&sh.len)
	freedBytes = atomic.LoadInt64(&sh.mem)

	sh.items = make(map[uint64]*model.Entry, items)

	atomic.StoreInt64(&sh.len, 0)
	atomic.StoreInt64(&sh.mem, 0)
	sh.Unlock()
	return
}

// WalkR iterates (k,v) under the shared lock. The callback must be
// lightweight; returning false stops the walk.
func (sh *Shard) WalkR(ctx context.Context, fn func(uint64, *model.Entry) bool) {
	sh.RLock()
	defer sh.RUnlock()
	for k, v := range sh.items {
		select {
		case <-ctx.Done():
			return
		default:
			if !fn(k, v) {
				return
			}
		}
	}
}
