package iobuf

import "sync/atomic"

// segmentQueue is a singly-linked list of segments composing one Buffer's
// storage. sz is the externally observable sum of (limit-pos) across all
// segments, published with atomic release/acquire ordering on every
// link/unlink so a size read can never observe a partially-updated chain
// even though head/tail themselves are plain pointers mutated only by the
// single producer or consumer that owns this side of the queue.
type segmentQueue struct {
	head *segment
	tail *segment
	sz   atomic.Int64
}

// size returns the current observable size.
func (q *segmentQueue) size() int64 {
	return q.sz.Load()
}

// empty reports whether the queue holds no segments.
func (q *segmentQueue) empty() bool {
	return q.head == nil
}

// pushTail appends seg as the new tail.
func (q *segmentQueue) pushTail(seg *segment) {
	if q.tail == nil {
		q.head = seg
		q.tail = seg
	} else {
		q.tail.next = seg
		q.tail = seg
	}
	q.sz.Add(int64(seg.len()))
}

// popHead unlinks and returns the current head segment, or nil if empty.
func (q *segmentQueue) popHead() *segment {
	seg := q.head
	if seg == nil {
		return nil
	}
	q.head = seg.next
	if q.head == nil {
		q.tail = nil
	}
	seg.next = nil
	q.sz.Add(-int64(seg.len()))
	return seg
}

// addSize applies a delta to the observable size; used when a segment's
// pos/limit are advanced in place rather than the segment being unlinked.
func (q *segmentQueue) addSize(delta int) {
	q.sz.Add(int64(delta))
}

// writableTail returns the tail segment if it has room to accept
// at least one more byte and is owned/unshared, else nil.
func (q *segmentQueue) writableTail() *segment {
	if q.tail == nil {
		return nil
	}
	if q.tail.writable() == 0 {
		return nil
	}
	return q.tail
}
