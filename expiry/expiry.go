// Package expiry defines how long cache entries live. A policy is consulted
// on every entry lifecycle event and returns the remaining lifetime; the
// cache turns that duration into an absolute deadline and hands it to the
// timer wheel. A single deadline is retained per entry, so later evaluations
// may extend or shorten it.
package expiry

import "time"

// Unbounded marks an entry that should effectively never expire. The cache
// saturates the resulting deadline instead of overflowing it.
const Unbounded = time.Duration(1<<63 - 1)

// Policy computes an entry's remaining lifetime in nanoseconds.
//
// Every method must return a strictly positive duration; the cache clamps a
// non-positive return to the smallest schedulable lifetime before use.
// Returning current from AfterUpdate or AfterRead keeps the existing
// schedule untouched.
type Policy interface {
	// AfterCreate is evaluated once when the entry is first stored.
	AfterCreate(key string, payload []byte, nowNanos int64) time.Duration

	// AfterUpdate is evaluated when the entry's payload is replaced.
	AfterUpdate(key string, payload []byte, nowNanos int64, current time.Duration) time.Duration

	// AfterRead is evaluated when the entry is read.
	AfterRead(key string, payload []byte, nowNanos int64, current time.Duration) time.Duration
}

type creating struct{ ttl time.Duration }

// Creating expires entries a fixed interval after creation. Updates and
// reads leave the original schedule in place.
func Creating(ttl time.Duration) Policy { return creating{ttl: sanitize(ttl)} }

func (p creating) AfterCreate(string, []byte, int64) time.Duration { return p.ttl }
func (p creating) AfterUpdate(_ string, _ []byte, _ int64, current time.Duration) time.Duration {
	return current
}
func (p creating) AfterRead(_ string, _ []byte, _ int64, current time.Duration) time.Duration {
	return current
}

type writing struct{ ttl time.Duration }

// Writing renews the lifetime on creation and on every payload replacement;
// reads do not extend it.
func Writing(ttl time.Duration) Policy { return writing{ttl: sanitize(ttl)} }

func (p writing) AfterCreate(string, []byte, int64) time.Duration { return p.ttl }
func (p writing) AfterUpdate(string, []byte, int64, time.Duration) time.Duration {
	return p.ttl
}
func (p writing) AfterRead(_ string, _ []byte, _ int64, current time.Duration) time.Duration {
	return current
}

type accessing struct{ ttl time.Duration }

// Accessing keeps an entry alive for the interval past its most recent
// touch, reads included (sliding expiration).
func Accessing(ttl time.Duration) Policy { return accessing{ttl: sanitize(ttl)} }

func (p accessing) AfterCreate(string, []byte, int64) time.Duration { return p.ttl }
func (p accessing) AfterUpdate(string, []byte, int64, time.Duration) time.Duration {
	return p.ttl
}
func (p accessing) AfterRead(string, []byte, int64, time.Duration) time.Duration {
	return p.ttl
}

func sanitize(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return Unbounded
	}
	return ttl
}
