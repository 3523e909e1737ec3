package iobuf

import (
	"io"

	"github.com/gostdlib/base/context"
	"github.com/gostdlib/base/telemetry/otel/trace/span"
)

// readerState tracks a BufferedReader's lifecycle: Open accepts requests,
// Closed rejects all further requests cleanly, Faulted rejects all
// further requests because the underlying RawReader returned a non-EOF
// error (and that error is remembered and replayed on every call after).
type readerState int

const (
	readerOpen readerState = iota
	readerClosed
	readerFaulted
)

// BufferedReader layers request/buffer/emit policy over a RawReader: it
// pulls from the source in up-to-pullChunkSize chunks only when the
// internal Buffer can't already satisfy a request, and exposes typed
// readers (decimal, hex, UTF-8 line, UTF-8 code point) on top. It has no
// fixed-width big-endian readers (ReadShort/ReadInt/ReadLong); those
// exist on Buffer only.
type BufferedReader struct {
	source RawReader
	buf    *Buffer
	state  readerState
	fault  error

	pullChunkSize int64
}

// ReaderOption configures a BufferedReader at construction time.
type ReaderOption func(*BufferedReader)

// WithPullChunkSize overrides the number of bytes requested from source
// per underlying ReadAtMostTo call. Default is one segment's worth; a
// larger value trades peak memory for fewer round trips to a slow
// source, a smaller one bounds memory at the cost of more calls.
// Non-positive values are ignored.
func WithPullChunkSize(n int64) ReaderOption {
	return func(r *BufferedReader) {
		if n > 0 {
			r.pullChunkSize = n
		}
	}
}

// NewBufferedReader wraps source with buffering and typed-read support.
func NewBufferedReader(source RawReader, opts ...ReaderOption) *BufferedReader {
	r := &BufferedReader{source: source, buf: NewBuffer(), pullChunkSize: segmentSize}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// require ensures the internal buffer holds at least n bytes, pulling
// from source as needed. Returns KindEndOfInput if source is exhausted
// before n bytes accumulate.
func (r *BufferedReader) require(n int64) error {
	ctx := context.Background()
	if ok, err := r.request(ctx, n); err != nil {
		return err
	} else if !ok {
		return newErr(ctx, KindEndOfInput, io.EOF)
	}
	return nil
}

// request attempts to fill the internal buffer to at least n bytes,
// reporting false (not an error) if source reached end-of-input first.
func (r *BufferedReader) request(ctx context.Context, n int64) (bool, error) {
	if r.state == readerClosed {
		return false, newErr(ctx, KindClosedResource, errClosed)
	}
	if r.state == readerFaulted {
		return false, r.fault
	}

	for r.buf.Len() < n {
		ctx, sp := span.New(ctx, span.WithName("iobuf.BufferedReader.pull"))
		read, err := r.source.ReadAtMostTo(r.buf, r.pullChunkSize)
		sp.End()
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			r.state = readerFaulted
			r.fault = newIOErr(ctx, err)
			return false, r.fault
		}
		if read == 0 {
			return false, nil
		}
	}
	return true, nil
}

// ReadByte reads a single byte.
func (r *BufferedReader) ReadByte() (byte, error) {
	if err := r.require(1); err != nil {
		return 0, err
	}
	return r.buf.ReadByte()
}

// Read reads up to len(p) bytes, returning as many as are immediately
// available (pulling at most once from source), and io.EOF once both the
// internal buffer and source are exhausted.
func (r *BufferedReader) Read(p []byte) (int, error) {
	ctx := context.Background()
	if r.state == readerClosed {
		return 0, newErr(ctx, KindClosedResource, errClosed)
	}
	if r.state == readerFaulted {
		return 0, r.fault
	}
	if r.buf.Exhausted() {
		if ok, err := r.request(ctx, 1); err != nil {
			return 0, err
		} else if !ok {
			return 0, io.EOF
		}
	}
	return r.buf.Read(p)
}

// ReadFully reads exactly len(p) bytes, failing with KindEndOfInput if
// source is exhausted first.
func (r *BufferedReader) ReadFully(p []byte) error {
	if err := r.require(int64(len(p))); err != nil {
		return err
	}
	return r.buf.ReadFully(p)
}

// ReadDecimalLong reads an ASCII decimal integer, pulling from source as
// needed to find its end.
func (r *BufferedReader) ReadDecimalLong() (int64, error) {
	if err := r.fillForScan(); err != nil {
		return 0, err
	}
	return r.buf.ReadDecimalLong()
}

// ReadHexadecimalUnsignedLong reads an ASCII hexadecimal integer, pulling
// from source as needed to find its end.
func (r *BufferedReader) ReadHexadecimalUnsignedLong() (uint64, error) {
	if err := r.fillForScan(); err != nil {
		return 0, err
	}
	return r.buf.ReadHexadecimalUnsignedLong()
}

// ReadUtf8Line reads and consumes one line, pulling from source until a
// terminator is found or source is exhausted.
func (r *BufferedReader) ReadUtf8Line() (string, bool, error) {
	ctx := context.Background()
	for {
		idx, _ := r.buf.IndexOf('\n', 0, -1)
		if idx != -1 {
			line, ok, err := r.buf.consumeLine(idx)
			return line, ok, err
		}
		ok, err := r.request(ctx, r.buf.Len()+segmentSize)
		if err != nil {
			return "", false, err
		}
		if !ok {
			if r.buf.Exhausted() {
				return "", false, nil
			}
			n := r.buf.Len()
			line := make([]byte, n)
			_ = r.buf.ReadFully(line)
			return string(line), true, nil
		}
	}
}

// ReadUtf8CodePoint reads one UTF-8-encoded code point, pulling from
// source as needed to find its full byte length.
func (r *BufferedReader) ReadUtf8CodePoint() (rune, int, error) {
	if err := r.require(1); err != nil {
		return 0, 0, err
	}
	// A code point needs at most 4 bytes; pull up to that much lookahead
	// so the decode never stalls mid-sequence against a source that still
	// has more to give.
	if _, err := r.request(context.Background(), 4); err != nil {
		return 0, 0, err
	}
	return r.buf.ReadUtf8CodePoint()
}

// ReadUtf8 drains source to end-of-input and decodes every byte received
// (including whatever was already buffered) as a single UTF-8 string.
func (r *BufferedReader) ReadUtf8() (string, error) {
	ctx := context.Background()
	for {
		ok, err := r.request(ctx, r.buf.Len()+segmentSize)
		if err != nil {
			return "", err
		}
		if !ok {
			return r.buf.ReadUtf8()
		}
	}
}

// fillForScan pulls from source until it signals end-of-input or at least
// segmentSize bytes are buffered, so a numeric scan sees the rest of the
// stream (or its end), or a full segment of lookahead — the only way to
// know where a decimal/hex run ends short of a terminator.
func (r *BufferedReader) fillForScan() error {
	ctx := context.Background()
	for {
		ok, err := r.request(ctx, r.buf.Len()+1)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if r.buf.Len() >= segmentSize {
			// Enough lookahead for any realistic numeric token; stop
			// pulling the entire remaining stream into memory.
			return nil
		}
	}
}

// Peek returns a read-only view of the next byteCount unread bytes
// without consuming them. The returned ByteString is invalidated (its
// content may no longer reflect the buffer) by any subsequent read on r.
func (r *BufferedReader) Peek(byteCount int64) (ByteString, error) {
	if err := r.require(byteCount); err != nil {
		return ByteString{}, err
	}
	return r.buf.SnapshotN(byteCount)
}

// Exhausted reports whether source has been fully drained and the
// internal buffer holds no more bytes.
func (r *BufferedReader) Exhausted() (bool, error) {
	ctx := context.Background()
	if !r.buf.Exhausted() {
		return false, nil
	}
	ok, err := r.request(ctx, 1)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// Close releases source. Further reads fail with KindClosedResource.
func (r *BufferedReader) Close() error {
	if r.state == readerOpen {
		r.state = readerClosed
		return r.source.Close()
	}
	return nil
}
