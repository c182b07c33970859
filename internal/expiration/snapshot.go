package expiration

import (
	"github.com/rs/zerolog/log"
)

// BucketStat describes one non-empty bucket for diagnostics.
type BucketStat struct {
	Level     int
	Bucket    int
	Deadlines []int64
}

// Snapshot walks every bucket and reports the resident deadlines, finest
// level first. It is a pure read: no links move, no clock advances. Safe to
// call whenever the caller holds the same serialization it uses for Advance.
func (w *Wheel) Snapshot() []BucketStat {
	var stats []BucketStat
	for i := range w.wheel {
		for j, sentinel := range w.wheel[i] {
			var deadlines []int64
			for n := sentinel.NextInWheel(); n != sentinel; n = n.NextInWheel() {
				deadlines = append(deadlines, n.ExpiresAt())
			}
			if len(deadlines) > 0 {
				stats = append(stats, BucketStat{Level: i, Bucket: j, Deadlines: deadlines})
			}
		}
	}
	return stats
}

// Len counts every scheduled node. O(n); diagnostics only.
func (w *Wheel) Len() int {
	total := 0
	for _, s := range w.Snapshot() {
		total += len(s.Deadlines)
	}
	return total
}

// LogBuckets renders the occupied buckets at debug level, one line per
// bucket. Useful when chasing a stuck or overcrowded wheel.
func (w *Wheel) LogBuckets() {
	for _, s := range w.Snapshot() {
		log.Debug().
			Int("level", s.Level).
			Int("bucket", s.Bucket).
			Int("count", len(s.Deadlines)).
			Int64("clock", w.nanos).
			Ints64("deadlines", s.Deadlines).
			Msg("timer wheel bucket")
	}
}
