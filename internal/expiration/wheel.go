// Package expiration implements a hierarchical timer wheel [1]: timers live in
// buckets on circular lists, a bucket covers a coarse power-of-two time span,
// and the levels form a hierarchy (seconds, minutes, hours, days) so distant
// deadlines cascade into finer buckets as the wheel's clock passes their
// window. Insert, remove and reschedule are O(1); a sweep pays for an entire
// bucket at once, amortized over clock rotations.
//
// The wheel is not safe for concurrent use. Callers serialize Schedule,
// Reschedule, Deschedule and Advance under their own maintenance discipline;
// no wheel operation blocks or allocates on the hot path.
//
// [1] Hashed and Hierarchical Timing Wheels
// https://www.cs.columbia.edu/~nahum/w6998/papers/ton97-timing-wheels.pdf
package expiration

import (
	"math"
	"math/bits"
	"time"
)

const numLevels = 5

var (
	// bucketCounts per level, finest to coarsest. Powers of two so bucket
	// selection is a shift and a mask.
	bucketCounts = [numLevels]int64{64, 64, 32, 4, 1}

	// spans is the per-bucket time window of each level, rounded up to a
	// power of two, plus one extra slot holding the total reach of the last
	// finite level. Deadlines beyond spans[numLevels] land in the single
	// top-level bucket and are effectively "never expires" until the clock
	// gets close enough to cascade them down.
	spans = [numLevels + 1]int64{
		ceilingPowerOfTwo(int64(time.Second)),    // 1.07s
		ceilingPowerOfTwo(int64(time.Minute)),    // 1.14m
		ceilingPowerOfTwo(int64(time.Hour)),      // 1.22h
		ceilingPowerOfTwo(int64(24 * time.Hour)), // 1.63d
		bucketCounts[3] * ceilingPowerOfTwo(int64(24*time.Hour)), // 6.5d
		bucketCounts[3] * ceilingPowerOfTwo(int64(24*time.Hour)), // 6.5d
	}

	shifts = [numLevels]uint{
		uint(bits.TrailingZeros64(uint64(spans[0]))),
		uint(bits.TrailingZeros64(uint64(spans[1]))),
		uint(bits.TrailingZeros64(uint64(spans[2]))),
		uint(bits.TrailingZeros64(uint64(spans[3]))),
		uint(bits.TrailingZeros64(uint64(spans[4]))),
	}
)

func ceilingPowerOfTwo(x int64) int64 {
	return 1 << (64 - bits.LeadingZeros64(uint64(x-1)))
}

// EvictFn decides, and performs, disposal of an expired candidate. A true
// return means the node was consumed and the wheel never touches it again; a
// false return means the caller kept it resident and the wheel re-enqueues it
// for its (possibly renewed) deadline. The function must not panic: a panic
// propagates out of Advance mid-sweep with no rollback.
type EvictFn func(Node) bool

// Wheel schedules expiration timers on a monotonically non-decreasing
// caller-supplied clock. Time zero is the wheel's construction instant;
// deadlines are nanoseconds in the same domain and must be non-negative.
type Wheel struct {
	evict EvictFn
	wheel [numLevels][]Node
	nanos int64
}

func NewWheel(evict EvictFn) *Wheel {
	w := &Wheel{evict: evict}
	for i := range w.wheel {
		w.wheel[i] = make([]Node, bucketCounts[i])
		for j := range w.wheel[i] {
			w.wheel[i][j] = newBucket()
		}
	}
	return w
}

// CurrentTime returns the wheel's clock cursor in nanoseconds.
func (w *Wheel) CurrentTime() int64 { return w.nanos }

// Schedule places the node into the bucket matching its deadline. The node
// must not already be linked; use Reschedule for a node that may be.
func (w *Wheel) Schedule(n Node) {
	link(w.findBucket(n.ExpiresAt()), n)
}

// Reschedule re-places an already linked node after its deadline changed.
// A node that is not linked is left alone.
func (w *Wheel) Reschedule(n Node) {
	if n.NextInWheel() != nil {
		unlink(n)
		w.Schedule(n)
	}
}

// Deschedule removes the node's timer if one is scheduled. Removing is the
// only cancellation primitive and is safe to call on an unscheduled node.
func (w *Wheel) Deschedule(n Node) {
	if n.NextInWheel() != nil {
		unlink(n)
		n.SetPrevInWheel(nil)
		n.SetNextInWheel(nil)
	}
}

// findBucket selects the finest level whose reach covers the remaining delay.
// An already-due deadline is clamped forward one nanosecond so the node lands
// in the bucket swept by the very next Advance instead of a lapped one.
func (w *Wheel) findBucket(t int64) Node {
	if t <= w.nanos {
		t = w.nanos + 1
	}
	duration := t - w.nanos
	for i := 0; i < numLevels-1; i++ {
		if duration < spans[i+1] {
			ticks := t >> shifts[i]
			index := ticks & (bucketCounts[i] - 1)
			return w.wheel[i][index]
		}
	}
	return w.wheel[numLevels-1][0]
}

// Advance moves the clock to nowNanos and sweeps every bucket whose window
// elapsed in between. Expired members are offered to the eviction callback;
// members whose true deadline is still ahead cascade into a finer bucket.
// A call that does not move the clock forward is a no-op.
//
// Within one call, members are delivered in bucket-traversal order per level,
// finest level first; delivery is not globally sorted by deadline.
func (w *Wheel) Advance(nowNanos int64) {
	previous := w.nanos
	if nowNanos <= previous {
		return
	}
	w.nanos = nowNanos

	var refused []Node
	for i := 0; i < numLevels; i++ {
		previousTicks := previous >> shifts[i]
		currentTicks := nowNanos >> shifts[i]
		delta := currentTicks - previousTicks
		if delta <= 0 {
			// Coarser levels tick even slower; nothing further crossed.
			break
		}
		refused = w.sweep(i, previousTicks, delta, refused)
	}

	// Re-file kept candidates only after every crossed bucket was processed.
	// A still-due deadline clamps into the current-tick bucket, so filing it
	// mid-sweep would hand the node to this same Advance a second time.
	for _, n := range refused {
		w.Schedule(n)
	}
}

// sweep processes the crossed buckets of one level. The walk is capped at one
// full revolution so a huge time jump still touches every bucket exactly once.
// Due nodes the eviction callback kept resident are appended to refused and
// returned; the caller re-files them once the whole advance is done.
func (w *Wheel) sweep(level int, previousTicks, delta int64, refused []Node) []Node {
	buckets := w.wheel[level]
	mask := int64(len(buckets)) - 1

	// delta+1 includes the bucket the new cursor now sits in, whose earlier
	// members are already due.
	steps := delta + 1
	if steps > int64(len(buckets)) {
		steps = int64(len(buckets))
	}

	start := previousTicks & mask
	for i := int64(0); i < steps; i++ {
		sentinel := buckets[(start+i)&mask]

		// Detach the whole list before visiting any member so a panicking
		// callback can never leave the bucket half-linked.
		node := sentinel.NextInWheel()
		sentinel.SetPrevInWheel(sentinel)
		sentinel.SetNextInWheel(sentinel)

		for node != sentinel {
			next := node.NextInWheel()
			node.SetPrevInWheel(nil)
			node.SetNextInWheel(nil)

			if node.ExpiresAt() <= w.nanos {
				if !w.evict(node) {
					// Kept resident by the caller; re-enqueued for its
					// currently known deadline after the sweep.
					refused = append(refused, node)
				}
			} else {
				// The coarse window elapsed but the real deadline is still
				// ahead: cascade into a finer bucket.
				w.Schedule(node)
			}
			node = next
		}
	}
	return refused
}

// ExpirationDelay estimates the nanoseconds until the next scheduled timer
// can fire, or math.MaxInt64 when the wheel is empty. The estimate is never
// early by more than one bucket span of the level it was found in.
func (w *Wheel) ExpirationDelay() int64 {
	for i := 0; i < numLevels; i++ {
		buckets := w.wheel[i]
		ticks := w.nanos >> shifts[i]
		spanMask := spans[i] - 1
		mask := int64(len(buckets)) - 1

		start := ticks & mask
		for j := int64(0); j < int64(len(buckets)); j++ {
			sentinel := buckets[(start+j)&mask]
			if sentinel.NextInWheel() == sentinel {
				continue
			}
			delay := (j << shifts[i]) - (w.nanos & spanMask)
			if delay <= 0 {
				delay = spans[i]
			}
			for k := i + 1; k < numLevels; k++ {
				if ahead := w.peekAhead(k); ahead < delay {
					delay = ahead
				}
			}
			return delay
		}
	}
	return math.MaxInt64
}

// peekAhead reports the delay until the given level's next bucket fires, or
// math.MaxInt64 when that bucket is empty.
func (w *Wheel) peekAhead(level int) int64 {
	buckets := w.wheel[level]
	ticks := w.nanos >> shifts[level]
	mask := int64(len(buckets)) - 1

	sentinel := buckets[(ticks+1)&mask]
	if sentinel.NextInWheel() == sentinel {
		return math.MaxInt64
	}
	return spans[level] - (w.nanos & (spans[level] - 1))
}
