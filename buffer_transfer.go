package iobuf

import (
	"io"

	"github.com/gostdlib/base/context"
)

// transferThreshold is the minimum payload a segment must carry to be
// moved by reference during TransferFrom rather than copied; segments
// carrying less are coalesced to avoid proliferating tiny segments.
const transferThreshold = segmentSize / 2

// TransferFrom moves exactly n bytes from src into dst in O(1) per
// segment moved: whole or split segments are unlinked from src and
// relinked onto dst's tail whenever they carry at least half a segment's
// worth of payload; otherwise bytes are copied to avoid fragmenting dst
// with many small segments.
func (dst *Buffer) TransferFrom(src *Buffer, n int64) error {
	ctx := context.Background()
	if n < 0 {
		return newErr(ctx, KindInvalidArgument, errNegativeCount)
	}
	if src == dst {
		return newErr(ctx, KindInvalidArgument, errBadRange)
	}
	if n > src.q.size() {
		return newErr(ctx, KindEndOfInput, io.EOF)
	}

	remaining := n
	for remaining > 0 {
		head := src.q.head
		avail := int64(head.len())

		if avail <= remaining {
			src.q.popHead()
			remaining -= avail
			dst.appendTransferred(ctx, head, avail)
			continue
		}

		// Only a prefix of this head segment belongs to the transfer:
		// split at the boundary first.
		k := remaining
		a, b := head.split(int(k))
		b.next = head.next
		src.q.head = b
		if src.q.tail == head {
			src.q.tail = b
		}
		src.q.addSize(-int(k))
		dst.appendTransferred(ctx, a, k)
		remaining = 0
	}
	return nil
}

// appendTransferred relinks segments with enough payload by reference
// (then opportunistically compacts into dst's previous tail to undo
// fragmentation from many small transfers); smaller ones are copied and
// recycled instead. Relinking a segment that split() left shared with a
// sibling is still O(1) and safe without requiring it be unshared first:
// segment.writable reports zero capacity on any shared segment, so dst can
// never write past seg's limit into the sibling's live range, and
// pool.recycle already drops only this holder's reference when seg is
// shared rather than returning the backing array to the pool.
func (dst *Buffer) appendTransferred(ctx context.Context, seg *segment, payload int64) {
	if payload >= transferThreshold {
		prevTail := dst.q.tail
		dst.q.pushTail(seg)
		if prevTail != nil && seg.compactInto(prevTail) {
			dst.q.tail = prevTail
			prevTail.next = nil
			dst.pool.recycle(ctx, seg)
		}
		return
	}
	dst.Write(seg.data[seg.pos:seg.limit])
	dst.pool.recycle(ctx, seg)
}

// ReadFrom implements io.ReaderFrom. When r is a *Buffer, it delegates to
// TransferFrom for the zero-copy fast path; otherwise it falls back to a
// buffered copy loop.
func (dst *Buffer) ReadFrom(r io.Reader) (int64, error) {
	if src, ok := r.(*Buffer); ok {
		n := src.q.size()
		if err := dst.TransferFrom(src, n); err != nil {
			return 0, err
		}
		return n, nil
	}
	var total int64
	staging := dst.pool.takeLarge(segmentSize)
	defer dst.pool.putLarge(staging)
	tmp := staging.B
	for {
		n, err := r.Read(tmp)
		if n > 0 {
			dst.Write(tmp[:n])
			total += int64(n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, wrapExternal(err)
		}
	}
}

// CopyTo is a non-consuming read: it walks src's segments from offset off
// for n bytes and appends them to dst without mutating src. Ranges at or
// above shareMinimum are appended as shared clones (zero-copy, both src
// and dst now hold segments marked shared); smaller ranges are copied into
// a fresh segment to avoid sharing-heavy fragmentation.
func (src *Buffer) CopyTo(dst *Buffer, off, n int64) error {
	ctx := context.Background()
	if off < 0 || n < 0 {
		return newErr(ctx, KindInvalidArgument, errNegativeCount)
	}
	if off+n > src.q.size() {
		return newErr(ctx, KindIndexOutOfBounds, errBadRange)
	}
	if n == 0 {
		return nil
	}

	share := n >= shareMinimum
	var cum int64
	for seg := src.q.head; seg != nil && n > 0; seg = seg.next {
		segLen := int64(seg.len())
		segEnd := cum + segLen
		lo := maxI64(off, cum)
		hi := minI64(off+n, segEnd)
		if lo < hi {
			relLo := int32(lo - cum)
			relHi := int32(hi - cum)
			start := seg.pos + relLo
			limit := seg.pos + relHi
			if share {
				dst.q.pushTail(seg.sharedRange(start, limit))
			} else {
				dst.Write(seg.data[start:limit])
			}
		}
		cum = segEnd
	}
	return nil
}

func maxI64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func minI64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
