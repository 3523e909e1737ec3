package iobuf

import (
	"io"

	"github.com/gostdlib/base/context"
)

// Buffer is a mutable byte queue built from a pooled segmentQueue. It
// implements both a Reader and a Writer contract: writes append to or grow
// the tail segment, reads consume from the head segment. A Buffer is safe
// for single-producer-single-consumer use (one goroutine writing, a
// distinct one reading) but not for concurrent use by multiple writers or
// multiple readers; any operation touching both ends (CopyTo, Clear,
// a whole-buffer Snapshot, UnsafeCursor) must be externally serialized.
//
// The zero value is not usable; construct with NewBuffer.
type Buffer struct {
	q    segmentQueue
	pool *segmentPool
}

// NewBuffer returns an empty Buffer backed by the process-wide segment pool.
func NewBuffer() *Buffer {
	return &Buffer{pool: defaultPool}
}

// Len returns the number of unread bytes currently queued.
func (b *Buffer) Len() int64 {
	return b.q.size()
}

// Exhausted reports whether the buffer currently holds no bytes. This does
// not mean it will never hold bytes again — that is a BufferedReader
// concern, not the Buffer's.
func (b *Buffer) Exhausted() bool {
	return b.q.size() == 0
}

// writableTail returns a writable tail segment, allocating one from the pool if
// the current tail is full, absent, or not owned/unshared. A tail that is
// merely shared (rather than full) is made writable in place via
// copy-on-write first, so a stream of small appends after a split or
// shared-clone doesn't fragment into a new segment per write.
func (b *Buffer) writableTail(ctx context.Context) *segment {
	if seg := b.q.writableTail(); seg != nil {
		return seg
	}
	if tail := b.q.tail; tail != nil && (tail.shared || !tail.owner) {
		tail.makeWritable(b.pool.takeArray, b.pool.putArray)
		if tail.writable() > 0 {
			return tail
		}
	}
	seg := b.pool.take(ctx)
	b.q.pushTail(seg)
	return seg
}

// Write appends len(p) bytes to the buffer, growing the tail as needed. It
// always succeeds and never copies more than necessary; the final segment
// may be left partially filled.
func (b *Buffer) Write(p []byte) (int, error) {
	ctx := context.Background()
	total := len(p)
	for len(p) > 0 {
		seg := b.writableTail(ctx)
		n := seg.writeFrom(p)
		b.q.addSize(n)
		p = p[n:]
	}
	return total, nil
}

// WriteString appends s to the buffer. Equivalent to Write([]byte(s)) but
// avoids the intermediate allocation.
func (b *Buffer) WriteString(s string) (int, error) {
	ctx := context.Background()
	total := len(s)
	for len(s) > 0 {
		seg := b.writableTail(ctx)
		n := copy(seg.data[seg.limit:segmentSize], s)
		seg.limit += int32(n)
		b.q.addSize(n)
		s = s[n:]
	}
	return total, nil
}

// WriteByte appends a single byte to the buffer.
func (b *Buffer) WriteByte(c byte) error {
	seg := b.writableTail(context.Background())
	seg.data[seg.limit] = c
	seg.limit++
	b.q.addSize(1)
	return nil
}

// Read copies up to len(p) bytes out of the buffer into p, consuming them.
// It returns io.EOF once the buffer is exhausted, matching io.Reader's
// contract (the typed ReadByte/ReadX family instead report KindEndOfInput
// through *Error).
func (b *Buffer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if b.q.empty() {
		return 0, io.EOF
	}
	total := 0
	ctx := context.Background()
	for len(p) > 0 {
		seg := b.q.head
		if seg == nil {
			break
		}
		n := seg.readInto(p)
		total += n
		p = p[n:]
		b.q.addSize(-n)
		if seg.len() == 0 {
			b.q.popHead()
			b.pool.recycle(ctx, seg)
		}
	}
	return total, nil
}

// ReadByte consumes and returns the first unread byte.
func (b *Buffer) ReadByte() (byte, error) {
	if b.q.empty() {
		return 0, newErr(context.Background(), KindEndOfInput, io.EOF)
	}
	seg := b.q.head
	c := seg.data[seg.pos]
	seg.pos++
	b.q.addSize(-1)
	if seg.len() == 0 {
		b.q.popHead()
		b.pool.recycle(context.Background(), seg)
	}
	return c, nil
}

// ReadFully reads exactly len(p) bytes into p, or returns KindEndOfInput
// without partial consumption being observable beyond what was read.
func (b *Buffer) ReadFully(p []byte) error {
	if int64(len(p)) > b.q.size() {
		return newErr(context.Background(), KindEndOfInput, io.ErrUnexpectedEOF)
	}
	for len(p) > 0 {
		n, _ := b.Read(p)
		p = p[n:]
	}
	return nil
}

// WriteAll writes every unread byte of p into b.
func (b *Buffer) WriteAll(p []byte) {
	_, _ = b.Write(p)
}

// WriteTo drains the entire buffer to w, implementing io.WriterTo.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	var total int64
	ctx := context.Background()
	for !b.q.empty() {
		seg := b.q.head
		n, err := w.Write(seg.data[seg.pos:seg.limit])
		total += int64(n)
		seg.pos += int32(n)
		b.q.addSize(-n)
		if err != nil {
			return total, err
		}
		if seg.len() == 0 {
			b.q.popHead()
			b.pool.recycle(ctx, seg)
		}
	}
	return total, nil
}

// Clear discards every unread byte, recycling all segments.
func (b *Buffer) Clear() {
	ctx := context.Background()
	for {
		seg := b.q.popHead()
		if seg == nil {
			break
		}
		b.pool.recycle(ctx, seg)
	}
}

// Skip discards the first n bytes. It is an invalid-argument failure for n
// to be negative, and an end-of-input failure for n to exceed Len().
func (b *Buffer) Skip(n int64) error {
	if n < 0 {
		return newErr(context.Background(), KindInvalidArgument, errNegativeCount)
	}
	if n > b.q.size() {
		return newErr(context.Background(), KindEndOfInput, io.EOF)
	}
	ctx := context.Background()
	for n > 0 {
		seg := b.q.head
		avail := int64(seg.len())
		if n < avail {
			seg.pos += int32(n)
			b.q.addSize(-int(n))
			return nil
		}
		n -= avail
		b.q.popHead()
		b.pool.recycle(ctx, seg)
	}
	return nil
}
