// Package iobuf implements a synchronous, buffered I/O engine: a pooled,
// singly-linked queue of fixed-size byte segments that acts as a mutable
// byte queue (Buffer), the intermediate store for stream adapters
// (BufferedReader/BufferedWriter), and the substrate for an immutable
// byte-string type (ByteString/Utf8) that may share storage with a live
// Buffer.
package iobuf

import (
	"sync/atomic"

	"github.com/gostdlib/base/concurrency/sync"
	"github.com/gostdlib/base/context"
	"github.com/valyala/bytebufferpool"
)

// segmentPool is the process-wide registered pool of recycled segments,
// the same registered-pool shape as a mapping-keyed struct pool generalized
// down to a pool of fixed-size *segment since every segment here is the same
// size. Transient staging buffers — UnsafeCursor.ResizeBuffer's zero
// padding, Buffer.ReadFrom's copy loop, and the io.Reader/io.Writer raw
// adapters — go through a separate bytebufferpool.Pool instead, since
// those call sites need a plain byte slice rather than a *segment.
type segmentPool struct {
	segments *sync.Pool[*segment]
	large    bytebufferpool.Pool
}

func newSegmentPool() *segmentPool {
	return &segmentPool{
		segments: sync.NewPool[*segment](
			context.Background(),
			"iobuf.segment",
			func() *segment {
				return newSegment(make([]byte, segmentSize))
			},
		),
	}
}

// defaultPool is the module's process-wide segment pool. There is no
// teardown path, since process exit reclaims everything it holds.
var defaultPool = newSegmentPool()

// take returns a fresh segment reset to empty: a pooled one if one is
// free, or a newly allocated one otherwise. Its content is undefined;
// callers must overwrite [pos, limit) before reading.
func (p *segmentPool) take(ctx context.Context) *segment {
	seg := p.segments.Get(ctx)
	seg.pos = 0
	seg.limit = 0
	seg.shared = false
	seg.owner = true
	seg.next = nil
	if seg.refs == nil {
		r := int32(1)
		seg.refs = &r
	} else {
		atomic.StoreInt32(seg.refs, 1)
	}
	return seg
}

// recycle returns seg to the pool if it is owned and unshared. A segment
// flagged shared or non-owner is never returned to the pool: this call
// simply drops this holder's reference.
func (p *segmentPool) recycle(ctx context.Context, seg *segment) {
	if seg == nil {
		return
	}
	if seg.shared || !seg.owner {
		seg.release()
		return
	}
	if !seg.release() {
		// Another holder still references the array (should not happen
		// for an owned, unshared segment, but guards future callers).
		return
	}
	seg.next = nil
	p.segments.Put(ctx, seg)
}

// takeArray and putArray hand segment.makeWritable a raw, segment-sized
// backing array independent of the *segment pool above: a copy-on-write
// detach discards the old array rather than returning it anywhere, so
// there is no pool to give it back to.
func (p *segmentPool) takeArray() []byte {
	return make([]byte, segmentSize)
}

func (p *segmentPool) putArray([]byte) {}

// takeLarge returns a pooled staging buffer with at least n bytes of
// capacity, used by UnsafeCursor.ResizeBuffer, Buffer.ReadFrom and the
// raw io adapters for short-lived staging where a bare make() would
// otherwise churn the allocator on every call.
func (p *segmentPool) takeLarge(n int) *bytebufferpool.ByteBuffer {
	buf := p.large.Get()
	if cap(buf.B) < n {
		buf.B = make([]byte, 0, n)
	}
	buf.B = buf.B[:n]
	return buf
}

// putLarge returns a buffer obtained from takeLarge to the pool.
func (p *segmentPool) putLarge(buf *bytebufferpool.ByteBuffer) {
	p.large.Put(buf)
}
