package expiration

// Node is the minimal surface the wheel needs from an entry: an absolute
// expiration instant in nanoseconds and a pair of intrusive list links.
// Everything else about the entry (key, payload, lifecycle) is opaque here.
//
// A node belongs to at most one bucket at a time. Its links are owned by the
// wheel while the node is scheduled and must not be touched by callers.
type Node interface {
	ExpiresAt() int64
	SetExpiresAt(nanos int64)

	PrevInWheel() Node
	SetPrevInWheel(Node)
	NextInWheel() Node
	SetNextInWheel(Node)
}

// bucket is the sentinel heading one circular list. An empty bucket points at
// itself, which gives traversal a natural stop condition with no nil checks.
// A sentinel carries no deadline and is never handed to the eviction predicate.
type bucket struct {
	prev, next Node
}

func newBucket() *bucket {
	b := &bucket{}
	b.prev = b
	b.next = b
	return b
}

func (b *bucket) ExpiresAt() int64       { return 0 }
func (b *bucket) SetExpiresAt(int64)     {}
func (b *bucket) PrevInWheel() Node      { return b.prev }
func (b *bucket) SetPrevInWheel(n Node)  { b.prev = n }
func (b *bucket) NextInWheel() Node      { return b.next }
func (b *bucket) SetNextInWheel(n Node)  { b.next = n }

// link appends the node just before the sentinel (tail insert).
func link(sentinel, n Node) {
	n.SetPrevInWheel(sentinel.PrevInWheel())
	n.SetNextInWheel(sentinel)

	sentinel.PrevInWheel().SetNextInWheel(n)
	sentinel.SetPrevInWheel(n)
}

// unlink removes the node from whatever list holds it using only its own
// links. The links are left dangling; the caller resets them.
func unlink(n Node) {
	next := n.NextInWheel()
	if next != nil {
		prev := n.PrevInWheel()
		next.SetPrevInWheel(prev)
		prev.SetNextInWheel(next)
	}
}
