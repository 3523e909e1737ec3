package iobuf

import (
	"bytes"
	"testing"
)

// BenchmarkBufferWriteRead exercises the Write/Read hot path a typical
// frame-oriented caller drives: small appends followed by draining reads.
func BenchmarkBufferWriteRead(b *testing.B) {
	payload := bytes.Repeat([]byte("0123456789abcdef"), 64) // 1KiB

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf := NewBuffer()
		buf.Write(payload)
		out := make([]byte, len(payload))
		buf.ReadFully(out)
	}
}

// BenchmarkBufferTransferFrom benchmarks the O(1)-per-segment ownership
// handoff path: filling a source buffer past several segment boundaries,
// then transferring all of it to a destination.
func BenchmarkBufferTransferFrom(b *testing.B) {
	payload := bytes.Repeat([]byte{0xAB}, 4*segmentSize)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		src := NewBuffer()
		src.Write(payload)
		dst := NewBuffer()
		if err := dst.TransferFrom(src, int64(len(payload))); err != nil {
			b.Fatalf("TransferFrom: %v", err)
		}
	}
}

// BenchmarkBufferSnapshot benchmarks the copy-on-write snapshot path for a
// payload large enough to take the segment-sharing branch rather than the
// flat-copy one.
func BenchmarkBufferSnapshot(b *testing.B) {
	payload := bytes.Repeat([]byte("xo"), 10000) // 20000 bytes

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf := NewBuffer()
		buf.Write(payload)
		if _, err := buf.Snapshot(); err != nil {
			b.Fatalf("Snapshot: %v", err)
		}
	}
}

// BenchmarkBufferedWriterEmitCompleteSegments benchmarks the bounded-
// memory write path: many small typed writes over a discarding sink,
// batched to whole segments rather than flushed on every call.
func BenchmarkBufferedWriterEmitCompleteSegments(b *testing.B) {
	sink := NewRawWriter(discard{})
	w := NewBufferedWriter(sink)
	line := []byte("the quick brown fox jumps over the lazy dog\n")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := w.WriteUtf8(string(line)); err != nil {
			b.Fatalf("WriteUtf8: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		b.Fatalf("Flush: %v", err)
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
