// Package queue provides a bounded, mutex-guarded ring buffer. The cache
// uses it to hand expiration events from the maintenance path to listener
// goroutines without blocking a sweep: a full ring rejects the push and the
// caller decides whether to drop or retry.
package queue

import "sync"

type Ring[T any] struct {
	mu         sync.Mutex
	buf        []T
	head, tail int
}

func NewRing[T any](size int) *Ring[T] {
	if size < 2 {
		size = 2
	}
	return &Ring[T]{buf: make([]T, size)}
}

// TryPush appends v, reporting false when the ring is full.
func (r *Ring[T]) TryPush(v T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := (r.head + 1) % len(r.buf)
	if next == r.tail { // full
		return false
	}
	r.buf[r.head] = v
	r.head = next
	return true
}

// TryPop removes the oldest element, reporting false when empty.
func (r *Ring[T]) TryPop() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	if r.head == r.tail {
		return zero, false
	}
	v := r.buf[r.tail]
	r.buf[r.tail] = zero // release the reference
	r.tail = (r.tail + 1) % len(r.buf)
	return v, true
}

// Len reports the number of buffered elements.
func (r *Ring[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.head >= r.tail {
		return r.head - r.tail
	}
	return r.head + len(r.buf) - r.tail
}
