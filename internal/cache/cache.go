// Package cache wires the sharded map together with the timer wheel: reads
// and writes consult the expiry policy and (re)schedule deadlines, while
// maintenance sweeps reap due entries and publish them to an optional
// listener through a lock-free ring.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/singleflight"

	"github.com/emberline/go-ember-cache/config"
	"github.com/emberline/go-ember-cache/expiry"
	"github.com/emberline/go-ember-cache/internal/cache/db"
	"github.com/emberline/go-ember-cache/internal/cache/db/model"
	"github.com/emberline/go-ember-cache/internal/expiration"
	"github.com/emberline/go-ember-cache/internal/shared/monotime"
	"github.com/emberline/go-ember-cache/internal/shared/queue"
)

// minLifetime is the smallest schedulable lifetime; non-positive policy
// returns are clamped up to it so the deadline never lands in the past of
// the call site.
const minLifetime = time.Nanosecond

// piggybackSweepEvery bounds how stale the wheel may get between maintenance
// sweeps when mutating traffic is the only driver.
const piggybackSweepEvery = int64(time.Second)

// Event describes one expired entry, delivered to the OnExpire listener.
type Event struct {
	KeySum    uint64 // 64-bit key hash the entry was stored under
	Payload   []byte // payload at the moment of expiration
	ExpiredAt int64  // wheel-domain deadline that fired
}

// Cacher is the storage surface exposed to the facade and the sweeper.
type Cacher interface {
	Get(key string) ([]byte, bool)
	GetOrLoad(key string, loader func() ([]byte, error)) ([]byte, error)
	Set(key string, payload []byte)
	Del(key string) bool
	Len() int64
	Mem() int64
	Clear()
	Sweep() (expired int64)
	ExpirationDelay() time.Duration
	WheelLen() int
	DumpWheel()
	CacheMetrics() (hits, misses, loads, loadErrors, expired, dropped int64)
}

type Cache struct {
	cfg    *config.Cache
	logger *slog.Logger

	db     *db.Map
	wheel  *expiration.Wheel
	policy expiry.Policy
	time   *monotime.Source

	group    singleflight.Group
	counters *counters

	// mu guards the wheel and every entry's intrusive links.
	mu        sync.Mutex
	lastSweep int64 // atomic: wheel-domain nanos of the last sweep

	onExpire func(Event)
	events   *queue.Ring[Event]
	wake     chan struct{}
}

var _ Cacher = (*Cache)(nil)

// New builds the cache core. policy may be nil, which disables expiration
// entirely: no deadlines are kept and Sweep is a no-op. onExpire may be nil;
// when set, expired entries are delivered on background consumers owned by
// ctx.
func New(ctx context.Context, cfg *config.Cache, logger *slog.Logger, clk clock.Clock, policy expiry.Policy, onExpire func(Event)) *Cache {
	c := &Cache{
		cfg:      cfg,
		logger:   logger,
		db:       db.NewMap(),
		policy:   policy,
		time:     monotime.New(clk),
		counters: newCounters(),
		onExpire: onExpire,
	}
	c.wheel = expiration.NewWheel(c.reap)
	if onExpire != nil {
		c.events = queue.NewRing[Event](eventQueueSize(cfg))
		c.wake = make(chan struct{}, 1)
		c.run(ctx)
	}
	return c
}

func eventQueueSize(cfg *config.Cache) int {
	if cfg != nil && cfg.Sweeper.Enabled() {
		return cfg.Sweeper.EventQueueSize
	}
	return 4096
}

func (c *Cache) expiring() bool { return c.policy != nil }

// Get returns the payload for key. An entry whose deadline has passed is
// reported as a miss even before the wheel reaps it.
func (c *Cache) Get(key string) ([]byte, bool) {
	k := model.NewKey(key)
	entry, ok := c.db.Get(k.Sum())
	if !ok || !entry.Key().Same(k) {
		c.counters.misses.Add(1)
		return nil, false
	}

	now := c.time.NowNanos()
	if c.expiring() && entry.ExpiresAt() <= now {
		c.counters.misses.Add(1)
		c.maybeSweep(now)
		return nil, false
	}

	entry.Touch(now)
	payload := entry.PayloadBytes()
	if c.expiring() {
		current := time.Duration(entry.ExpiresAt() - now)
		if next := c.policy.AfterRead(key, payload, now, current); next != current {
			c.renew(entry, now, next)
		}
	}
	c.counters.hits.Add(1)
	return payload, true
}

// GetOrLoad returns the cached payload or computes it with loader, collapsing
// concurrent loads of the same key into a single call.
func (c *Cache) GetOrLoad(key string, loader func() ([]byte, error)) ([]byte, error) {
	if payload, ok := c.Get(key); ok {
		return payload, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		// Another flight may have stored the value after our miss.
		if payload, ok := c.Get(key); ok {
			return payload, nil
		}
		c.counters.loads.Add(1)
		payload, err := loader()
		if err != nil {
			c.counters.loadErrors.Add(1)
			return nil, fmt.Errorf("load %q: %w", key, err)
		}
		c.Set(key, payload)
		return payload, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Set stores or replaces the payload for key and schedules its deadline per
// the expiry policy.
func (c *Cache) Set(key string, payload []byte) {
	k := model.NewKey(key)
	now := c.time.NowNanos()

	if old, ok := c.db.Get(k.Sum()); ok {
		if !old.Key().Same(k) {
			// 64-bit slot collision with a different key: the resident
			// entry loses its slot and must leave the wheel with it.
			c.evictCollided(old)
		} else {
			c.update(key, old, payload, now)
			c.maybeSweep(now)
			return
		}
	}

	entry := model.NewEntry(k, payload, now)
	if c.expiring() {
		ttl := c.policy.AfterCreate(key, payload, now)
		entry.SetExpiresAt(monotime.SaturatingAdd(now, clampLifetime(ttl)))
	}
	c.db.Set(k.Sum(), entry)
	if c.expiring() {
		c.mu.Lock()
		c.wheel.Schedule(entry)
		c.mu.Unlock()
	}
	c.maybeSweep(now)
}

func (c *Cache) update(key string, entry *model.Entry, payload []byte, now int64) {
	if entry.SamePayload(payload) {
		entry.Touch(now)
	} else {
		c.db.AddMem(entry.Key().Sum(), entry.SetPayload(payload, now))
	}
	if c.expiring() {
		current := time.Duration(entry.ExpiresAt() - now)
		if next := c.policy.AfterUpdate(key, payload, now, current); next != current {
			c.renew(entry, now, next)
		}
	}
}

// renew moves the entry's deadline and repositions it inside the wheel.
func (c *Cache) renew(entry *model.Entry, now int64, lifetime time.Duration) {
	entry.SetExpiresAt(monotime.SaturatingAdd(now, clampLifetime(lifetime)))
	c.mu.Lock()
	c.wheel.Reschedule(entry)
	c.mu.Unlock()
}

// Del removes key from the map and from the wheel. Reports whether the key
// was resident.
func (c *Cache) Del(key string) bool {
	k := model.NewKey(key)
	entry, ok := c.db.Get(k.Sum())
	if !ok || !entry.Key().Same(k) {
		return false
	}
	if c.expiring() {
		c.mu.Lock()
		c.wheel.Deschedule(entry)
		c.mu.Unlock()
	}
	_, hit := c.db.Remove(k.Sum())
	return hit
}

func (c *Cache) evictCollided(entry *model.Entry) {
	if c.expiring() {
		c.mu.Lock()
		c.wheel.Deschedule(entry)
		c.mu.Unlock()
	}
	c.db.Remove(entry.Key().Sum())
}

func (c *Cache) Len() int64 { return c.db.Len() }
func (c *Cache) Mem() int64 { return c.db.Mem() }

// Clear drops every entry. The wheel is rebuilt rather than drained so the
// payloads are released immediately instead of at their old deadlines.
func (c *Cache) Clear() {
	c.mu.Lock()
	items := c.db.Len()
	c.db.Clear()
	c.wheel = expiration.NewWheel(c.reap)
	c.mu.Unlock()
	c.logger.Info("cache cleared", "items", items)
}

// Sweep advances the wheel to the current time and reaps every due entry.
// Returns the number reaped by this call.
func (c *Cache) Sweep() (expired int64) {
	if !c.expiring() {
		return 0
	}
	now := c.time.NowNanos()
	before := c.counters.expired.Load()
	c.mu.Lock()
	c.wheel.Advance(now)
	c.mu.Unlock()
	atomic.StoreInt64(&c.lastSweep, now)
	return c.counters.expired.Load() - before
}

// maybeSweep piggybacks a sweep on a mutating call when the wheel has gone
// stale. Contended attempts back off instead of queueing on the mutex.
func (c *Cache) maybeSweep(now int64) {
	if !c.expiring() {
		return
	}
	last := atomic.LoadInt64(&c.lastSweep)
	if now-last < piggybackSweepEvery {
		return
	}
	if !atomic.CompareAndSwapInt64(&c.lastSweep, last, now) {
		return
	}
	if c.mu.TryLock() {
		c.wheel.Advance(now)
		c.mu.Unlock()
		return
	}
	// The lock was contended and nobody swept on our behalf; give the stamp
	// back so the next mutation retries instead of waiting a full interval.
	atomic.StoreInt64(&c.lastSweep, last)
}

// ExpirationDelay reports how long a timed sweeper may sleep before the next
// deadline could possibly fire. Unbounded when nothing is scheduled.
func (c *Cache) ExpirationDelay() time.Duration {
	if !c.expiring() {
		return expiry.Unbounded
	}
	c.mu.Lock()
	delay := c.wheel.ExpirationDelay()
	c.mu.Unlock()
	return time.Duration(delay)
}

// reap is the wheel's eviction callback; runs with c.mu held.
func (c *Cache) reap(n expiration.Node) bool {
	entry := n.(*model.Entry)
	if entry.ExpiresAt() > c.wheel.CurrentTime() {
		// A concurrent read or write pushed the deadline forward after
		// this bucket was detached; the wheel re-files the entry.
		return false
	}
	sum := entry.Key().Sum()
	if resident, ok := c.db.Get(sum); !ok || resident != entry {
		// Already deleted or displaced by a collision; nothing to reap.
		return true
	}
	if _, hit := c.db.Remove(sum); !hit {
		return true
	}
	c.counters.expired.Add(1)
	c.publish(Event{KeySum: sum, Payload: entry.PayloadBytes(), ExpiredAt: entry.ExpiresAt()})
	return true
}

func (c *Cache) publish(ev Event) {
	if c.onExpire == nil {
		return
	}
	if !c.events.TryPush(ev) {
		c.counters.dropped.Add(1)
		return
	}
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// run starts the listener consumers. They drain the ring outside c.mu so a
// slow listener never stalls a sweep.
func (c *Cache) run(ctx context.Context) {
	consumers := runtime.GOMAXPROCS(0) / 2
	if consumers < 1 {
		consumers = 1
	}
	for i := 0; i < consumers; i++ {
		go c.consume(ctx)
	}
}

func (c *Cache) consume(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.wake:
		}
		for {
			ev, ok := c.events.TryPop()
			if !ok {
				break
			}
			c.onExpire(ev)
		}
	}
}

// DumpWheel logs the wheel's bucket layout at debug level.
func (c *Cache) DumpWheel() {
	c.mu.Lock()
	c.wheel.LogBuckets()
	c.mu.Unlock()
}

// WheelLen reports how many entries are currently filed in the wheel.
func (c *Cache) WheelLen() int {
	c.mu.Lock()
	n := c.wheel.Len()
	c.mu.Unlock()
	return n
}

func (c *Cache) CacheMetrics() (hits, misses, loads, loadErrors, expired, dropped int64) {
	return c.counters.snapshot()
}

func clampLifetime(d time.Duration) time.Duration {
	if d < minLifetime {
		return minLifetime
	}
	return d
}
