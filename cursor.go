package iobuf

import (
	"github.com/gostdlib/base/context"
)

// UnsafeCursor grants direct access to a Buffer's backing segment arrays
// for callers willing to manage pos/limit bookkeeping themselves in
// exchange for avoiding a copy — "unsafe" in the sense that misuse (a
// write outside [Start, End)) corrupts the Buffer, not in the
// memory-safety sense; an out-of-range Seek panics. A cursor must be closed before its Buffer is used
// through any other method; this is not enforced, by design, the same way
// Okio's UnsafeCursor leaves the discipline to the caller.
type UnsafeCursor struct {
	buffer *Buffer
	seg    *segment
	offset int64 // absolute offset of seg.pos within the buffer
	Data   []byte
	Start  int
	End    int
	readWrite bool
}

// OpenCursor opens a read-only cursor over b.
func (b *Buffer) OpenCursor() *UnsafeCursor {
	return &UnsafeCursor{buffer: b}
}

// OpenReadWriteCursor opens a cursor over b that permits expandBuffer and
// resizeBuffer.
func (b *Buffer) OpenReadWriteCursor() *UnsafeCursor {
	return &UnsafeCursor{buffer: b, readWrite: true}
}

// Seek positions the cursor at the given absolute offset — Data is the
// backing array of the segment containing it, Start that byte's index in
// Data, End the segment's limit — and returns the number of bytes
// remaining in the buffer from that point, or -1 if offset equals Len() (the cursor is now positioned
// past every segment, and Next will report -1 until the next Seek).
func (c *UnsafeCursor) Seek(offset int64) int64 {
	c.seg = nil
	c.Data = nil
	c.Start = 0
	c.End = 0

	if offset < 0 || offset > c.buffer.q.size() {
		panic("iobuf: cursor seek out of range")
	}
	if offset == c.buffer.q.size() {
		c.offset = offset
		return -1
	}

	var cum int64
	for seg := c.buffer.q.head; seg != nil; seg = seg.next {
		segLen := int64(seg.len())
		if offset < cum+segLen {
			c.seg = seg
			c.offset = cum
			c.Data = seg.data
			c.Start = int(seg.pos) + int(offset-cum)
			c.End = int(seg.limit)
			return c.buffer.q.size() - offset
		}
		cum += segLen
	}
	return -1
}

// Next advances the cursor to the start of the following segment,
// reporting the number of bytes available there, or -1 when the cursor
// has moved past the final segment. Once Next returns -1, it continues to
// return -1 until the next Seek repositions the cursor — a one-shot
// sentinel, not an error state.
func (c *UnsafeCursor) Next() int64 {
	if c.seg == nil {
		return -1
	}
	next := c.seg.next
	if next == nil {
		c.seg = nil
		c.Data = nil
		c.Start, c.End = 0, 0
		return -1
	}
	c.offset += int64(c.seg.len())
	c.seg = next
	c.Data = next.data
	c.Start = int(next.pos)
	c.End = int(next.limit)
	return c.buffer.q.size() - c.offset
}

// ExpandBuffer grows the buffer by allocating a new writable segment of at
// least minByteCount bytes (bounded by segmentSize — a single segment
// never exceeds it) and positions the cursor over it for writing. It is
// an invalid-argument failure for minByteCount to be non-positive or
// greater than segmentSize.
func (c *UnsafeCursor) ExpandBuffer(minByteCount int) (int64, error) {
	ctx := context.Background()
	if !c.readWrite {
		return 0, newErr(ctx, KindInvalidArgument, errBadRange)
	}
	if minByteCount <= 0 || minByteCount > segmentSize {
		return 0, newErr(ctx, KindInvalidArgument, errBadRange)
	}

	seg := c.buffer.writableTail(ctx)
	if seg.writable() < minByteCount {
		seg = c.buffer.pool.take(ctx)
		c.buffer.q.pushTail(seg)
	}

	oldLimit := seg.limit
	seg.limit = segmentSize
	c.buffer.q.addSize(int(seg.limit - oldLimit))

	c.seg = seg
	c.offset = c.buffer.q.size() - int64(seg.len())
	c.Data = seg.data
	c.Start = int(oldLimit)
	c.End = int(seg.limit)
	return int64(c.End - c.Start), nil
}

// ResizeBuffer sets the buffer's total length to newSize, truncating or
// zero-padding the tail as needed, and repositions the cursor at the new
// end.
func (c *UnsafeCursor) ResizeBuffer(newSize int64) error {
	ctx := context.Background()
	if !c.readWrite {
		return newErr(ctx, KindInvalidArgument, errBadRange)
	}
	if newSize < 0 {
		return newErr(ctx, KindInvalidArgument, errNegativeCount)
	}

	cur := c.buffer.q.size()
	switch {
	case newSize < cur:
		if err := c.buffer.skipFromTail(cur - newSize); err != nil {
			return err
		}
	case newSize > cur:
		pad := newSize - cur
		staging := c.buffer.pool.takeLarge(segmentSize)
		zeros := staging.B
		for i := range zeros {
			zeros[i] = 0
		}
		for pad > 0 {
			n := int64(len(zeros))
			if n > pad {
				n = pad
			}
			c.buffer.Write(zeros[:n])
			pad -= n
		}
		c.buffer.pool.putLarge(staging)
	}
	c.Seek(c.buffer.q.size())
	return nil
}

// skipFromTail discards n bytes from the tail end of the buffer.
func (b *Buffer) skipFromTail(n int64) error {
	ctx := context.Background()
	if n > b.q.size() {
		return newErr(ctx, KindInvalidArgument, errBadRange)
	}
	for n > 0 {
		seg := b.q.tail
		segLen := int64(seg.len())
		if n < segLen {
			seg.limit -= int32(n)
			b.q.addSize(-int(n))
			return nil
		}
		n -= segLen
		b.removeTailSegment(ctx)
	}
	return nil
}

// removeTailSegment unlinks the current tail segment from the queue and
// recycles it. The queue must be non-empty.
func (b *Buffer) removeTailSegment(ctx context.Context) {
	seg := b.q.tail
	if seg == b.q.head {
		b.q.head = nil
		b.q.tail = nil
	} else {
		prev := b.q.head
		for prev.next != seg {
			prev = prev.next
		}
		prev.next = nil
		b.q.tail = prev
	}
	b.q.addSize(-seg.len())
	b.pool.recycle(ctx, seg)
}

// Close releases the cursor. The cursor must not be used afterward.
func (c *UnsafeCursor) Close() error {
	c.buffer = nil
	c.seg = nil
	c.Data = nil
	c.Start, c.End = 0, 0
	return nil
}
