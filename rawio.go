package iobuf

import (
	"io"

	"github.com/gostdlib/base/context"
)

// RawReader is the minimal contract a source of bytes must satisfy to be
// wrapped by a BufferedReader: an untyped, unbuffered supplier that fills
// sink with whatever is available up to byteCount bytes. Implementations
// are expected to be thin adapters over a file descriptor, socket, or
// similar — all buffering policy lives in BufferedReader.
type RawReader interface {
	// ReadAtMostTo reads at least 1 and at most byteCount bytes into sink,
	// returning the number of bytes read, or io.EOF once exhausted.
	ReadAtMostTo(sink *Buffer, byteCount int64) (int64, error)
	io.Closer
}

// RawWriter is the minimal contract a sink of bytes must satisfy to be
// wrapped by a BufferedWriter.
type RawWriter interface {
	// Write consumes exactly byteCount bytes from source.
	Write(source *Buffer, byteCount int64) error
	Flush() error
	io.Closer
}

// ioRawReader adapts an io.Reader to RawReader.
type ioRawReader struct {
	r io.Reader
	c io.Closer
}

// NewRawReader wraps an io.Reader (optionally also an io.Closer) as a
// RawReader.
func NewRawReader(r io.Reader) RawReader {
	c, _ := r.(io.Closer)
	return &ioRawReader{r: r, c: c}
}

func (rr *ioRawReader) ReadAtMostTo(sink *Buffer, byteCount int64) (int64, error) {
	if byteCount <= 0 {
		return 0, newErr(context.Background(), KindInvalidArgument, errNegativeCount)
	}
	staging := sink.pool.takeLarge(int(minI64(byteCount, segmentSize)))
	defer sink.pool.putLarge(staging)
	tmp := staging.B
	n, err := rr.r.Read(tmp)
	if n > 0 {
		sink.Write(tmp[:n])
	}
	if err != nil {
		if err == io.EOF {
			return int64(n), io.EOF
		}
		return int64(n), wrapExternal(err)
	}
	return int64(n), nil
}

func (rr *ioRawReader) Close() error {
	if rr.c == nil {
		return nil
	}
	return rr.c.Close()
}

// ioRawWriter adapts an io.Writer to RawWriter.
type ioRawWriter struct {
	w io.Writer
	c io.Closer
	f interface{ Flush() error }
}

// NewRawWriter wraps an io.Writer (optionally also an io.Closer and/or a
// Flush() error method) as a RawWriter.
func NewRawWriter(w io.Writer) RawWriter {
	c, _ := w.(io.Closer)
	f, _ := w.(interface{ Flush() error })
	return &ioRawWriter{w: w, c: c, f: f}
}

func (rw *ioRawWriter) Write(source *Buffer, byteCount int64) error {
	if byteCount < 0 || byteCount > source.q.size() {
		return newErr(context.Background(), KindInvalidArgument, errBadRange)
	}
	remaining := byteCount
	staging := source.pool.takeLarge(segmentSize)
	defer source.pool.putLarge(staging)
	tmp := staging.B
	for remaining > 0 {
		n := minI64(remaining, int64(len(tmp)))
		if _, err := source.Read(tmp[:n]); err != nil {
			return wrapExternal(err)
		}
		if _, err := rw.w.Write(tmp[:n]); err != nil {
			return wrapExternal(err)
		}
		remaining -= n
	}
	return nil
}

func (rw *ioRawWriter) Flush() error {
	if rw.f == nil {
		return nil
	}
	return rw.f.Flush()
}

func (rw *ioRawWriter) Close() error {
	if rw.c == nil {
		return nil
	}
	return rw.c.Close()
}
