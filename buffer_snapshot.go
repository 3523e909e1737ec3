package iobuf

import (
	"github.com/gostdlib/base/context"
)

// Snapshot returns an immutable ByteString over every currently unread
// byte, without consuming them.
func (b *Buffer) Snapshot() (ByteString, error) {
	return b.SnapshotN(b.q.size())
}

// SnapshotN returns an immutable ByteString over the first n unread bytes,
// without consuming them. Payloads at or below flatSnapshotThreshold are
// copied into a flat array; larger payloads borrow shared clones of the
// underlying segments (plus a cumulative-offset directory for O(log n)
// random access), so later writes to b are never observed through the
// returned ByteString.
func (b *Buffer) SnapshotN(n int64) (ByteString, error) {
	ctx := context.Background()
	if n < 0 {
		return ByteString{}, newErr(ctx, KindInvalidArgument, errNegativeCount)
	}
	if n > b.q.size() {
		return ByteString{}, newErr(ctx, KindEndOfInput, errBadRange)
	}
	if n == 0 {
		return ByteString{flat: []byte{}}, nil
	}

	if n <= flatSnapshotThreshold {
		flat := make([]byte, n)
		var written int64
		for seg := b.q.head; seg != nil && written < n; seg = seg.next {
			take := minI64(int64(seg.len()), n-written)
			copy(flat[written:written+take], seg.data[seg.pos:seg.pos+int32(take)])
			written += take
		}
		return ByteString{flat: flat}, nil
	}

	var segs []*segment
	offsets := make([]int, 0, 8)
	var cum int64
	var taken int64
	for seg := b.q.head; seg != nil && taken < n; seg = seg.next {
		take := minI64(int64(seg.len()), n-taken)
		start := seg.pos
		limit := seg.pos + int32(take)
		segs = append(segs, seg.sharedRange(start, limit))
		offsets = append(offsets, int(cum))
		cum += take
		taken += take
	}
	return ByteString{segs: segs, offsets: offsets, segLen: int(n)}, nil
}

// GetByte returns the byte at the given absolute position without
// consuming it. Not intended for sequential access: each call walks
// segments from the head in O(segments traversed).
func (b *Buffer) GetByte(position int64) (byte, error) {
	ctx := context.Background()
	if position < 0 || position >= b.q.size() {
		return 0, newErr(ctx, KindIndexOutOfBounds, errBadOffset)
	}
	var cum int64
	for seg := b.q.head; seg != nil; seg = seg.next {
		segLen := int64(seg.len())
		if position < cum+segLen {
			return seg.data[seg.pos+int32(position-cum)], nil
		}
		cum += segLen
	}
	panic("iobuf: unreachable, size accounting invariant broken")
}

// IndexOf returns the absolute offset of the first occurrence of c within
// [start, end), or -1 if not present. end of -1 means "to the end of the
// buffer".
func (b *Buffer) IndexOf(c byte, start, end int64) (int64, error) {
	ctx := context.Background()
	if end < 0 {
		end = b.q.size()
	}
	if start < 0 || start > end || end > b.q.size() {
		return -1, newErr(ctx, KindInvalidArgument, errBadRange)
	}
	var cum int64
	for seg := b.q.head; seg != nil && cum < end; seg = seg.next {
		segLen := int64(seg.len())
		segEnd := cum + segLen
		lo := maxI64(start, cum)
		hi := minI64(end, segEnd)
		if lo < hi {
			relLo := int32(lo - cum)
			relHi := int32(hi - cum)
			for i := seg.pos + relLo; i < seg.pos+relHi; i++ {
				if seg.data[i] == c {
					return cum + int64(i-seg.pos), nil
				}
			}
		}
		cum = segEnd
	}
	return -1, nil
}

// IndexOfByteString returns the absolute offset of the first occurrence of
// pattern within [start, Len()), or -1 if absent, using Knuth-Morris-Pratt
// so no byte is re-examined across segment boundaries.
func (b *Buffer) IndexOfByteString(pattern ByteString, start int64) (int64, error) {
	ctx := context.Background()
	if start < 0 || start > b.q.size() {
		return -1, newErr(ctx, KindInvalidArgument, errBadRange)
	}
	m := pattern.Len()
	if m == 0 {
		return start, nil
	}
	fail := kmpFailureTable(pattern)

	var pos int64 = start
	var k int
	for seg, cum := b.q.head, int64(0); seg != nil; seg = seg.next {
		segLen := int64(seg.len())
		if cum+segLen <= start {
			cum += segLen
			continue
		}
		relStart := int32(0)
		if start > cum {
			relStart = int32(start - cum)
		}
		for i := seg.pos + relStart; i < seg.limit; i++ {
			for k > 0 && seg.data[i] != pattern.at(k) {
				k = fail[k-1]
			}
			if seg.data[i] == pattern.at(k) {
				k++
			}
			if k == m {
				return pos - int64(m) + 1, nil
			}
			pos++
		}
		cum += segLen
	}
	return -1, nil
}

// kmpFailureTable computes the KMP partial-match table for pattern.
func kmpFailureTable(pattern ByteString) []int {
	m := pattern.Len()
	fail := make([]int, m)
	k := 0
	for i := 1; i < m; i++ {
		for k > 0 && pattern.at(i) != pattern.at(k) {
			k = fail[k-1]
		}
		if pattern.at(i) == pattern.at(k) {
			k++
		}
		fail[i] = k
	}
	return fail
}
