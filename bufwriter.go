package iobuf

import (
	"github.com/gostdlib/base/context"
	"github.com/gostdlib/base/telemetry/otel/trace/span"
)

// writerState mirrors readerState for BufferedWriter.
type writerState int

const (
	writerOpen writerState = iota
	writerClosed
	writerFaulted
)

// BufferedWriter layers segment-batched emission policy over a RawWriter:
// writes accumulate in an internal Buffer and are handed to the sink only
// in whole-segment batches (emitCompleteSegments), or in full on an
// explicit Flush/Close.
type BufferedWriter struct {
	sink  RawWriter
	buf   *Buffer
	state writerState
	fault error

	autoEmit bool
}

// WriterOption configures a BufferedWriter at construction time.
type WriterOption func(*BufferedWriter)

// WithAutoEmit controls whether every typed Write* call opportunistically
// hands complete segments to sink (the default, true). Setting it false
// defers all emission to explicit EmitCompleteSegments/Emit/Flush calls,
// for callers batching many small writes before caring about downstream
// visibility.
func WithAutoEmit(enabled bool) WriterOption {
	return func(w *BufferedWriter) {
		w.autoEmit = enabled
	}
}

// NewBufferedWriter wraps sink with buffering and typed-write support.
func NewBufferedWriter(sink RawWriter, opts ...WriterOption) *BufferedWriter {
	w := &BufferedWriter{sink: sink, buf: NewBuffer(), autoEmit: true}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// maybeEmitCompleteSegments runs the opportunistic emission policy after a
// typed write, a no-op when autoEmit has been disabled.
func (w *BufferedWriter) maybeEmitCompleteSegments() error {
	if !w.autoEmit {
		return nil
	}
	return w.emitCompleteSegments()
}

func (w *BufferedWriter) checkOpen() error {
	switch w.state {
	case writerClosed:
		return newErr(context.Background(), KindClosedResource, errClosed)
	case writerFaulted:
		return w.fault
	default:
		return nil
	}
}

// Write appends p to the internal buffer, emitting complete segments to
// sink opportunistically.
func (w *BufferedWriter) Write(p []byte) (int, error) {
	if err := w.checkOpen(); err != nil {
		return 0, err
	}
	n, _ := w.buf.Write(p)
	if err := w.maybeEmitCompleteSegments(); err != nil {
		return n, err
	}
	return n, nil
}

// WriteByte appends a single byte.
func (w *BufferedWriter) WriteByte(c byte) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if err := w.buf.WriteByte(c); err != nil {
		return err
	}
	return w.maybeEmitCompleteSegments()
}

// WriteDecimalLong appends v's ASCII decimal representation.
func (w *BufferedWriter) WriteDecimalLong(v int64) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	var tmp [20]byte
	n := len(tmp)
	neg := v < 0
	u := uint64(v)
	if neg {
		u = uint64(-v)
	}
	if u == 0 {
		n--
		tmp[n] = '0'
	}
	for u > 0 {
		n--
		tmp[n] = byte('0' + u%10)
		u /= 10
	}
	if neg {
		n--
		tmp[n] = '-'
	}
	w.buf.WriteAll(tmp[n:])
	return w.maybeEmitCompleteSegments()
}

// WriteHexadecimalUnsignedLong appends v's lowercase ASCII hexadecimal
// representation, with no leading zeros beyond a single "0" for v == 0.
func (w *BufferedWriter) WriteHexadecimalUnsignedLong(v uint64) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	const digits = "0123456789abcdef"
	var tmp [16]byte
	n := len(tmp)
	if v == 0 {
		n--
		tmp[n] = '0'
	}
	for v > 0 {
		n--
		tmp[n] = digits[v&0xF]
		v >>= 4
	}
	w.buf.WriteAll(tmp[n:])
	return w.maybeEmitCompleteSegments()
}

// WriteUtf8 appends s as UTF-8.
func (w *BufferedWriter) WriteUtf8(s string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	w.buf.WriteString(s)
	return w.maybeEmitCompleteSegments()
}

// WriteUtf8CodePoint appends the UTF-8 encoding of a single code point.
func (w *BufferedWriter) WriteUtf8CodePoint(r rune) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	w.buf.WriteUtf8CodePoint(r)
	return w.maybeEmitCompleteSegments()
}

// WriteShort/WriteInt/WriteLong append v as fixed-width big-endian bytes.
func (w *BufferedWriter) WriteShort(v int16) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if err := w.buf.WriteShort(v); err != nil {
		return err
	}
	return w.maybeEmitCompleteSegments()
}

func (w *BufferedWriter) WriteInt(v int32) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if err := w.buf.WriteInt(v); err != nil {
		return err
	}
	return w.maybeEmitCompleteSegments()
}

func (w *BufferedWriter) WriteLong(v int64) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if err := w.buf.WriteLong(v); err != nil {
		return err
	}
	return w.maybeEmitCompleteSegments()
}

// Emit hands every complete data range currently buffered off to sink —
// unlike EmitCompleteSegments, this also drains a non-empty partially
// filled tail segment, without forcing sink.Flush the way Flush does.
// Use this when the caller knows a logical unit (a frame, a line) is
// complete and wants it pushed downstream promptly but doesn't want the
// cost of a full flush.
func (w *BufferedWriter) Emit() error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if n := w.buf.Len(); n > 0 {
		return w.emit(context.Background(), n)
	}
	return nil
}

// EmitCompleteSegments hands every segment of the internal buffer that is
// already full (not the tail being actively written to) off to sink,
// batching the underlying write to whole segments rather than one syscall
// per small Write call. At most one partially filled segment remains
// buffered afterward — the bounded-memory write path.
func (w *BufferedWriter) EmitCompleteSegments() error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	return w.emitCompleteSegments()
}

// emitCompleteSegments is the internal policy EmitCompleteSegments and
// every typed Write* method drive after appending to the buffer.
func (w *BufferedWriter) emitCompleteSegments() error {
	ctx := context.Background()
	var complete int64
	for seg := w.buf.q.head; seg != nil && seg != w.buf.q.tail; seg = seg.next {
		complete += int64(seg.len())
	}
	if complete == 0 {
		return nil
	}
	return w.emit(ctx, complete)
}

// emit hands exactly n bytes from the front of the internal buffer to
// sink, instrumented the same way BufferedReader.request spans its pulls.
func (w *BufferedWriter) emit(ctx context.Context, n int64) error {
	ctx, sp := span.New(ctx, span.WithName("iobuf.BufferedWriter.emit"))
	defer sp.End()

	if err := w.sink.Write(w.buf, n); err != nil {
		w.state = writerFaulted
		w.fault = newIOErr(ctx, err)
		return w.fault
	}
	return nil
}

// Flush hands every remaining buffered byte to sink and flushes sink.
func (w *BufferedWriter) Flush() error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if n := w.buf.Len(); n > 0 {
		if err := w.emit(context.Background(), n); err != nil {
			return err
		}
	}
	if err := w.sink.Flush(); err != nil {
		w.state = writerFaulted
		w.fault = newIOErr(context.Background(), err)
		return w.fault
	}
	return nil
}

// Close flushes then closes sink. Further writes fail with
// KindClosedResource.
func (w *BufferedWriter) Close() error {
	if w.state != writerOpen {
		return nil
	}
	flushErr := w.Flush()
	w.state = writerClosed
	closeErr := w.sink.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
