package iobuf

import "testing"

func TestSegmentWriteReadRoundTrip(t *testing.T) {
	seg := newSegment(make([]byte, segmentSize))
	n := seg.writeFrom([]byte("hello"))
	if n != 5 {
		t.Fatalf("writeFrom: got %d, want 5", n)
	}
	if seg.len() != 5 {
		t.Fatalf("len: got %d, want 5", seg.len())
	}
	out := make([]byte, 5)
	if got := seg.readInto(out); got != 5 {
		t.Fatalf("readInto: got %d, want 5", got)
	}
	if string(out) != "hello" {
		t.Fatalf("readInto content: got %q", out)
	}
	if seg.len() != 0 {
		t.Fatalf("len after full read: got %d, want 0", seg.len())
	}
}

func TestSegmentWritableRespectsSharing(t *testing.T) {
	seg := newSegment(make([]byte, segmentSize))
	if seg.writable() != segmentSize {
		t.Fatalf("writable on fresh segment: got %d, want %d", seg.writable(), segmentSize)
	}
	seg.shared = true
	if w := seg.writable(); w != 0 {
		t.Fatalf("writable on shared segment: got %d, want 0", w)
	}
}

func TestSegmentSplit(t *testing.T) {
	seg := newSegment(make([]byte, segmentSize))
	seg.writeFrom([]byte("abcdef"))
	a, b := seg.split(2)
	if a.len() != 2 || b.len() != 4 {
		t.Fatalf("split lengths: got a=%d b=%d, want 2,4", a.len(), b.len())
	}
	if string(a.data[a.pos:a.limit]) != "ab" {
		t.Fatalf("a content: got %q", a.data[a.pos:a.limit])
	}
	if string(b.data[b.pos:b.limit]) != "cdef" {
		t.Fatalf("b content: got %q", b.data[b.pos:b.limit])
	}
	if !a.shared || !b.shared {
		t.Fatalf("split halves must be marked shared")
	}
}

func TestSegmentSplitPanicsOutOfRange(t *testing.T) {
	seg := newSegment(make([]byte, segmentSize))
	seg.writeFrom([]byte("ab"))
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for out-of-range split offset")
		}
	}()
	seg.split(5)
}

func TestSegmentSharedCloneSharesRefcount(t *testing.T) {
	seg := newSegment(make([]byte, segmentSize))
	seg.writeFrom([]byte("xyz"))
	clone := seg.sharedClone()
	if !seg.shared || seg.owner {
		t.Fatalf("original must become shared/non-owner after sharedClone")
	}
	if clone.len() != seg.len() {
		t.Fatalf("clone length: got %d, want %d", clone.len(), seg.len())
	}
	// Releasing one holder must not free the backing array while the other
	// still references it.
	if seg.release() {
		t.Fatalf("release reported last holder too early")
	}
	if !clone.release() {
		t.Fatalf("release on final holder should report true")
	}
}

func TestSegmentCompactInto(t *testing.T) {
	pred := newSegment(make([]byte, segmentSize))
	pred.writeFrom([]byte("ab"))
	succ := newSegment(make([]byte, segmentSize))
	succ.writeFrom([]byte("cd"))

	if !succ.compactInto(pred) {
		t.Fatalf("compactInto should succeed when predecessor has room")
	}
	if string(pred.data[pred.pos:pred.limit]) != "abcd" {
		t.Fatalf("compacted content: got %q", pred.data[pred.pos:pred.limit])
	}
}

func TestSegmentCompactIntoRefusesSharedPredecessor(t *testing.T) {
	pred := newSegment(make([]byte, segmentSize))
	pred.writeFrom([]byte("ab"))
	pred.shared = true
	succ := newSegment(make([]byte, segmentSize))
	succ.writeFrom([]byte("cd"))
	if succ.compactInto(pred) {
		t.Fatalf("compactInto must refuse a shared predecessor")
	}
}

func TestSegmentMakeWritableCopiesOnShared(t *testing.T) {
	seg := newSegment(make([]byte, segmentSize))
	seg.writeFrom([]byte("abc"))
	clone := seg.sharedClone()

	var put []byte
	clone.makeWritable(func() []byte { return make([]byte, segmentSize) }, func(b []byte) { put = b })
	if clone.shared || !clone.owner {
		t.Fatalf("clone should be owned/unshared after makeWritable")
	}
	if string(clone.data[clone.pos:clone.limit]) != "abc" {
		t.Fatalf("content preserved across COW: got %q", clone.data[clone.pos:clone.limit])
	}
	_ = put
}
