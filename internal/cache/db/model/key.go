package model

import "github.com/zeebo/xxh3"

// Key is the 64-bit xxh3 map key plus the full 128-bit digest kept to tell
// genuine hits from hash collisions.
type Key struct {
	sum uint64
	hi  uint64
	lo  uint64
}

func NewKey(raw string) Key {
	wide := xxh3.HashString128(raw)
	return Key{
		sum: xxh3.HashString(raw),
		hi:  wide.Hi,
		lo:  wide.Lo,
	}
}

// Sum is the shard/map index value.
func (k Key) Sum() uint64 { return k.sum }

// Same reports a full 192-bit match, not just the map index.
func (k Key) Same(other Key) bool {
	return k.sum == other.sum && k.hi == other.hi && k.lo == other.lo
}
