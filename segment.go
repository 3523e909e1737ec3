package iobuf

import (
	"sync/atomic"

	"github.com/gostdlib/base/values/sizes"
)

// segmentSize is the fixed capacity of every segment's backing array. It
// is never exposed to callers; 8KiB balances copy overhead against the
// cost of chasing many small segments for typical line- and frame-sized
// I/O.
const segmentSize = 8 * sizes.KiB

// shareMinimum is the smallest range CopyTo will share by reference
// rather than copy (Snapshot uses flatSnapshotThreshold instead). Below this threshold
// the cost of tracking a shared segment (refcounting, COW on next write)
// outweighs the copy it would have avoided.
const shareMinimum = 1 * sizes.KiB

// flatSnapshotThreshold is the largest Snapshot(n) that copies into a
// single flat byte array instead of borrowing shared segment clones.
const flatSnapshotThreshold = 4 * sizes.KiB

// segment is a fixed-capacity byte container with head/tail indices and a
// sharing flag. Its backing array is never zero-filled on reuse: only
// [pos, limit) holds defined data.
type segment struct {
	data []byte // len == cap == segmentSize

	pos   int32
	limit int32

	shared bool
	owner  bool

	// refs counts live holders of data. It is shared by every segment
	// produced by splitting or cloning the same backing array. Recycling
	// an owned, unshared segment returns it to the pool only once refs
	// drops to zero; recycling a shared or non-owner segment only drops its
	// reference and never returns it to the pool.
	refs *int32

	next *segment
}

// newSegment allocates a segment with a fresh backing array and a refcount
// of one, as the sole owner.
func newSegment(data []byte) *segment {
	r := int32(1)
	return &segment{
		data:  data,
		owner: true,
		refs:  &r,
	}
}

// len returns the amount of defined, unread data in the segment.
func (s *segment) len() int {
	return int(s.limit - s.pos)
}

// writable returns how much free capacity remains at the tail.
func (s *segment) writable() int {
	if s.shared || !s.owner {
		return 0
	}
	return segmentSize - int(s.limit)
}

// writeFrom copies as many bytes from p into the segment's free tail space
// as will fit, returning the number copied. The segment must be owned and
// unshared.
func (s *segment) writeFrom(p []byte) int {
	n := copy(s.data[s.limit:segmentSize], p)
	s.limit += int32(n)
	return n
}

// readInto copies up to len(p) unread bytes out of the segment, advancing pos.
func (s *segment) readInto(p []byte) int {
	n := copy(p, s.data[s.pos:s.limit])
	s.pos += int32(n)
	return n
}

// acquire increments the shared refcount; used whenever a new holder of
// this backing array is created (split, clone-for-sharing).
func (s *segment) acquire() {
	atomic.AddInt32(s.refs, 1)
}

// release decrements the shared refcount and reports whether this was the
// last holder (the backing array is now free to return to the pool).
func (s *segment) release() bool {
	return atomic.AddInt32(s.refs, -1) == 0
}

// split divides the segment at offset k (relative to pos, 1 <= k < len())
// into two segments sharing the same backing array: a holds [pos, pos+k),
// b holds [pos+k, limit). Both are marked shared/non-owner. split acquires
// one extra reference itself to account for the new holder (the original
// segment struct is replaced by a and b, a net +1 holder of the array).
func (s *segment) split(k int) (a, b *segment) {
	if k < 1 || k >= s.len() {
		panic("iobuf: split offset out of range")
	}
	mid := s.pos + int32(k)
	a = &segment{data: s.data, pos: s.pos, limit: mid, shared: true, refs: s.refs}
	b = &segment{data: s.data, pos: mid, limit: s.limit, shared: true, refs: s.refs}
	s.acquire()
	return a, b
}

// sharedClone returns a new segment referencing the same backing array and
// byte range as s, marked shared, with an acquired reference. Used by
// CopyTo/Snapshot to hand out zero-copy views.
func (s *segment) sharedClone() *segment {
	s.shared = true
	s.owner = false
	s.acquire()
	return &segment{data: s.data, pos: s.pos, limit: s.limit, shared: true, refs: s.refs}
}

// sharedRange returns a clone of s narrowed to [pos, limit) — a sub-range
// of s's own [pos, limit) — marked shared, with an acquired reference.
// Used by CopyTo to hand out a view of only the overlapping portion of a
// traversed segment.
func (s *segment) sharedRange(pos, limit int32) *segment {
	s.shared = true
	s.owner = false
	s.acquire()
	return &segment{data: s.data, pos: pos, limit: limit, shared: true, refs: s.refs}
}

// compactInto copies this segment's data into predecessor's free tail
// space if predecessor is owned, unshared, and has room, returning true on
// success. The caller is responsible for unlinking/recycling s afterward.
func (s *segment) compactInto(predecessor *segment) bool {
	if predecessor == nil || predecessor.shared || !predecessor.owner {
		return false
	}
	if predecessor.writable() < s.len() {
		return false
	}
	predecessor.writeFrom(s.data[s.pos:s.limit])
	return true
}

// makeWritable ensures the segment can be written to without disturbing
// other holders of its backing array. If the segment is shared, this
// performs copy-on-write: a fresh private array is allocated, the live
// range is copied in, and the old array's reference is released.
func (s *segment) makeWritable(takeArray func() []byte, putArray func([]byte)) {
	if !s.shared && s.owner {
		return
	}
	fresh := takeArray()
	n := copy(fresh, s.data[s.pos:s.limit])
	if s.release() {
		putArray(s.data)
	}
	s.data = fresh
	s.pos = 0
	s.limit = int32(n)
	s.shared = false
	s.owner = true
	r := int32(1)
	s.refs = &r
}
