package model

import (
	"sync/atomic"
	"unsafe"

	"github.com/emberline/go-ember-cache/internal/expiration"
	"github.com/emberline/go-ember-cache/internal/shared/bytes"
)

// Entry is one cached record. Timestamps and the payload pointer are atomics
// so readers never take the shard lock for them; the two wheel links are owned
// by the timer wheel and must only be touched under the cache's maintenance
// mutex.
type Entry struct {
	key       Key
	payload   atomic.Pointer[[]byte]
	touchedAt int64 // atomic: wheel-domain nanos of the last read
	updatedAt int64 // atomic: wheel-domain nanos of the last write
	expiresAt int64 // atomic: wheel-domain deadline nanos

	prevTimer expiration.Node
	nextTimer expiration.Node
}

var _ expiration.Node = (*Entry)(nil)

func NewEntry(key Key, payload []byte, nowNanos int64) *Entry {
	e := &Entry{key: key}
	e.payload.Store(&payload)
	atomic.StoreInt64(&e.touchedAt, nowNanos)
	atomic.StoreInt64(&e.updatedAt, nowNanos)
	return e
}

func (e *Entry) Key() Key { return e.key }

func (e *Entry) PayloadBytes() []byte {
	if ptr := e.payload.Load(); ptr != nil {
		return *ptr
	}
	return nil
}

// SetPayload replaces the payload and renews the write timestamp.
// Returns the weight delta for the owner's memory accounting.
func (e *Entry) SetPayload(p []byte, nowNanos int64) (weightDelta int64) {
	before := e.Weight()
	e.payload.Store(&p)
	atomic.StoreInt64(&e.touchedAt, nowNanos)
	atomic.StoreInt64(&e.updatedAt, nowNanos)
	return e.Weight() - before
}

// SamePayload compares against a candidate payload without copying.
func (e *Entry) SamePayload(p []byte) bool {
	cur := e.PayloadBytes()
	if cur == nil {
		return p == nil
	}
	if p == nil {
		return false
	}
	return bytes.Equals(cur, p)
}

func (e *Entry) Weight() int64 {
	return int64(unsafe.Sizeof(*e)) + int64(cap(e.PayloadBytes()))
}

func (e *Entry) Touch(nowNanos int64) { atomic.StoreInt64(&e.touchedAt, nowNanos) }
func (e *Entry) TouchedAt() int64     { return atomic.LoadInt64(&e.touchedAt) }
func (e *Entry) UpdatedAt() int64     { return atomic.LoadInt64(&e.updatedAt) }

/**
 * expiration.Node surface.
 */

func (e *Entry) ExpiresAt() int64 { return atomic.LoadInt64(&e.expiresAt) }

func (e *Entry) SetExpiresAt(nanos int64) { atomic.StoreInt64(&e.expiresAt, nanos) }

func (e *Entry) PrevInWheel() expiration.Node { return e.prevTimer }

func (e *Entry) SetPrevInWheel(n expiration.Node) { e.prevTimer = n }

func (e *Entry) NextInWheel() expiration.Node { return e.nextTimer }

func (e *Entry) SetNextInWheel(n expiration.Node) { e.nextTimer = n }
