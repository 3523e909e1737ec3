package iobuf

import (
	"bytes"
	"strings"
	"testing"
)

func TestTransferFromMovesBytes(t *testing.T) {
	src := NewBuffer()
	dst := NewBuffer()
	src.WriteString("abcdefgh")

	if err := dst.TransferFrom(src, 5); err != nil {
		t.Fatalf("TransferFrom: %v", err)
	}
	if src.Len() != 3 || dst.Len() != 5 {
		t.Fatalf("lengths after transfer: src=%d dst=%d, want src=3 dst=5", src.Len(), dst.Len())
	}
	out := make([]byte, 5)
	dst.ReadFully(out)
	if string(out) != "abcde" {
		t.Fatalf("dst content: got %q, want %q", out, "abcde")
	}
	rest := make([]byte, 3)
	src.ReadFully(rest)
	if string(rest) != "fgh" {
		t.Fatalf("src remainder: got %q, want %q", rest, "fgh")
	}
}

func TestTransferFromSplitBoundaryMovesByReference(t *testing.T) {
	src := NewBuffer()
	dst := NewBuffer()
	payload := bytes.Repeat([]byte("z"), segmentSize)
	src.Write(payload)
	src.WriteString("tail-bytes")

	n := int64(segmentSize - 10) // not segment-aligned: head.split is required
	if n < transferThreshold {
		t.Fatalf("test setup: n=%d must be >= transferThreshold=%d", n, transferThreshold)
	}
	if err := dst.TransferFrom(src, n); err != nil {
		t.Fatalf("TransferFrom: %v", err)
	}

	dc := dst.OpenCursor()
	defer dc.Close()
	if dc.Seek(0) == -1 {
		t.Fatalf("dst cursor seek failed")
	}
	sc := src.OpenCursor()
	defer sc.Close()
	if sc.Seek(0) == -1 {
		t.Fatalf("src cursor seek failed")
	}

	dstArray := &dc.Data[0]
	srcArray := &sc.Data[0]
	if dstArray != srcArray {
		t.Fatalf("TransferFrom across a split boundary should move the segment by reference (same backing array), got distinct arrays")
	}

	if dst.Len() != n {
		t.Fatalf("dst.Len(): got %d, want %d", dst.Len(), n)
	}
	out := make([]byte, n)
	dst.ReadFully(out)
	if !bytes.Equal(out, payload[:n]) {
		t.Fatalf("dst content mismatch after split transfer")
	}
	rest := make([]byte, src.Len())
	src.ReadFully(rest)
	want := string(payload[n:]) + "tail-bytes"
	if string(rest) != want {
		t.Fatalf("src remainder: got %q, want %q", rest, want)
	}
}

func TestTransferFromWholeSegments(t *testing.T) {
	src := NewBuffer()
	dst := NewBuffer()
	payload := bytes.Repeat([]byte("y"), segmentSize*2)
	src.Write(payload)

	if err := dst.TransferFrom(src, int64(len(payload))); err != nil {
		t.Fatalf("TransferFrom: %v", err)
	}
	if src.Len() != 0 {
		t.Fatalf("src should be drained, got Len=%d", src.Len())
	}
	out := make([]byte, len(payload))
	dst.ReadFully(out)
	if !bytes.Equal(out, payload) {
		t.Fatalf("content mismatch after whole-segment transfer")
	}
}

func TestTransferFromRejectsSelf(t *testing.T) {
	b := NewBuffer()
	b.WriteString("x")
	if err := b.TransferFrom(b, 1); !Is(err, KindInvalidArgument) {
		t.Fatalf("TransferFrom(self) should be KindInvalidArgument, got %v", err)
	}
}

func TestTransferFromRejectsTooMany(t *testing.T) {
	src := NewBuffer()
	dst := NewBuffer()
	src.WriteString("ab")
	if err := dst.TransferFrom(src, 5); !Is(err, KindEndOfInput) {
		t.Fatalf("TransferFrom beyond src.Len should be KindEndOfInput, got %v", err)
	}
}

func TestReadFromDelegatesToTransferForBuffers(t *testing.T) {
	src := NewBuffer()
	dst := NewBuffer()
	src.WriteString("zero-copy-path")
	n, err := dst.ReadFrom(src)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if n != int64(len("zero-copy-path")) {
		t.Fatalf("ReadFrom n: got %d, want %d", n, len("zero-copy-path"))
	}
	if src.Len() != 0 {
		t.Fatalf("src should be drained by ReadFrom")
	}
}

func TestReadFromGenericReader(t *testing.T) {
	dst := NewBuffer()
	r := strings.NewReader("from a plain io.Reader")
	n, err := dst.ReadFrom(r)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if n != int64(len("from a plain io.Reader")) {
		t.Fatalf("ReadFrom n: got %d, want %d", n, len("from a plain io.Reader"))
	}
	out := make([]byte, n)
	dst.ReadFully(out)
	if string(out) != "from a plain io.Reader" {
		t.Fatalf("content: got %q", out)
	}
}

func TestCopyToDoesNotConsumeSource(t *testing.T) {
	src := NewBuffer()
	dst := NewBuffer()
	src.WriteString("copy-me-please")

	if err := src.CopyTo(dst, 0, int64(src.Len())); err != nil {
		t.Fatalf("CopyTo: %v", err)
	}
	if src.Len() != int64(len("copy-me-please")) {
		t.Fatalf("CopyTo must not consume src, Len now %d", src.Len())
	}
	out := make([]byte, dst.Len())
	dst.ReadFully(out)
	if string(out) != "copy-me-please" {
		t.Fatalf("dst content: got %q", out)
	}
}

func TestCopyToLargeRangeSharesSegments(t *testing.T) {
	src := NewBuffer()
	dst := NewBuffer()
	payload := bytes.Repeat([]byte("s"), int(shareMinimum)*2)
	src.Write(payload)

	if err := src.CopyTo(dst, 0, int64(len(payload))); err != nil {
		t.Fatalf("CopyTo: %v", err)
	}
	if !src.q.head.shared || !dst.q.head.shared {
		t.Fatalf("large CopyTo should leave both src and dst segments marked shared")
	}
	out := make([]byte, dst.Len())
	dst.ReadFully(out)
	if !bytes.Equal(out, payload) {
		t.Fatalf("content mismatch for large shared CopyTo")
	}
}

func TestCopyToRejectsOutOfRange(t *testing.T) {
	src := NewBuffer()
	dst := NewBuffer()
	src.WriteString("short")
	if err := src.CopyTo(dst, 0, 100); !Is(err, KindIndexOutOfBounds) {
		t.Fatalf("CopyTo out of range should be KindIndexOutOfBounds, got %v", err)
	}
}
