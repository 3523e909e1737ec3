package iobuf

import (
	stderrors "errors"

	"github.com/gostdlib/base/context"
	baseerrors "github.com/gostdlib/base/errors"
	"github.com/pkg/errors"
)

// Sentinel causes wrapped by the Error taxonomy at call sites throughout
// the module; callers should match on Kind(), never on these directly.
var (
	errNegativeCount = stderrors.New("iobuf: negative count")
	errBadRange      = stderrors.New("iobuf: range out of bounds")
	errBadOffset     = stderrors.New("iobuf: offset out of bounds")
	errNoMatch       = stderrors.New("iobuf: numeric parse failed")
	errClosed        = stderrors.New("iobuf: operation on closed resource")
)

//go:generate stringer -type=Kind -linecomment

// Kind identifies the category of failure reported at the module boundary,
// per the error taxonomy every Buffer/ByteString/BufferedReader/
// BufferedWriter operation reports through.
type Kind uint16

const (
	// KindUnknown should never surface; its presence on an Error is a bug.
	KindUnknown Kind = Kind(0) // Unknown

	// KindClosedResource reports an operation on a closed reader, writer, or endpoint.
	KindClosedResource Kind = Kind(1) // ClosedResource
	// KindEndOfInput reports that the underlying stream was exhausted before
	// the requested number of bytes was available.
	KindEndOfInput Kind = Kind(2) // EndOfInput
	// KindInvalidArgument reports a negative count, a bad offset range, or a
	// non-positive expand size.
	KindInvalidArgument Kind = Kind(3) // InvalidArgument
	// KindIndexOutOfBounds reports an offset or length outside a container's indices.
	KindIndexOutOfBounds Kind = Kind(4) // IndexOutOfBounds
	// KindNumericFormat reports that a decimal or hex parse failed or overflowed.
	KindNumericFormat Kind = Kind(5) // NumericFormat
	// KindIOFailure reports a generic failure surfaced by the underlying raw stream.
	KindIOFailure Kind = Kind(6) // IOFailure
)

//go:generate stringer -type=IOSubkind -linecomment

// IOSubkind refines a KindIOFailure error with the underlying platform
// failure class.
type IOSubkind uint16

const (
	// IOSubkindNone applies when the failure is a plain i/o-failure with no
	// more specific classification.
	IOSubkindNone IOSubkind = IOSubkind(0) // None
	IOSubkindFileNotFound      IOSubkind = IOSubkind(1) // FileNotFound
	IOSubkindFileAlreadyExists IOSubkind = IOSubkind(2) // FileAlreadyExists
	IOSubkindProtocol          IOSubkind = IOSubkind(3) // Protocol
	IOSubkindTimeout           IOSubkind = IOSubkind(4) // Timeout
	IOSubkindInterrupted       IOSubkind = IOSubkind(5) // Interrupted
	IOSubkindUnknownHost       IOSubkind = IOSubkind(6) // UnknownHost
	IOSubkindBrokenPipe        IOSubkind = IOSubkind(7) // BrokenPipe
	IOSubkindClosedEndpoint    IOSubkind = IOSubkind(8) // ClosedEndpoint
)

// LogAttrer is implemented by an error that can contribute structured
// attributes to a log record.
type LogAttrer = baseerrors.LogAttrer

// Error is the single unchecked wrapper every failure in this module is
// reported through. Callers inspect Kind()/IOSubkind(), never the message.
type Error struct {
	base    baseerrors.Error
	kind    Kind
	subkind IOSubkind
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.base.Error()
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return stderrors.Unwrap(e.base)
}

// Kind reports which of the six taxonomy kinds this error belongs to.
func (e *Error) Kind() Kind {
	return e.kind
}

// IOSubkind refines a KindIOFailure error. Zero value for any other kind.
func (e *Error) IOSubkind() IOSubkind {
	return e.subkind
}

// newErr wraps cause with the given kind. ctx carries span/logging context
// through to baseerrors.E the way every call site in this module does.
func newErr(ctx context.Context, kind Kind, cause error) *Error {
	return &Error{
		base: baseerrors.E(ctx, baseerrors.CatInternal, baseerrors.TypeUnknown, cause, baseerrors.WithCallNum(3)),
		kind: kind,
	}
}

// newIOErr wraps cause as KindIOFailure, classifying it into an IOSubkind
// the same way classifyIOError would at a RawReader/RawWriter boundary.
func newIOErr(ctx context.Context, cause error) *Error {
	sub := classifyIOError(cause)
	return &Error{
		base:    baseerrors.E(ctx, baseerrors.CatInternal, baseerrors.TypeConn, cause, baseerrors.WithCallNum(3)),
		kind:    KindIOFailure,
		subkind: sub,
	}
}

// wrapExternal wraps an error returned by an external RawReader/RawWriter
// collaborator with a stack trace, so a caller who wants one has it
// available at the one place an outside failure enters the core.
func wrapExternal(err error) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(err)
}

// classifyIOError promotes specific platform error strings to a refined
// IOSubkind. This is the one place the library matches on error message
// text rather than on a typed cause, so that a closed endpoint (including
// "socket closed" and "broken pipe"), a reset connection, or a DNS failure
// can be told apart from a generic I/O failure.
func classifyIOError(err error) IOSubkind {
	if err == nil {
		return IOSubkindNone
	}
	msg := err.Error()
	switch {
	case containsAny(msg, "socket closed", "broken pipe", "use of closed network connection", "closed pipe"):
		return IOSubkindClosedEndpoint
	case containsAny(msg, "connection reset by peer"):
		return IOSubkindBrokenPipe
	case containsAny(msg, "no such host", "unknown host"):
		return IOSubkindUnknownHost
	case containsAny(msg, "i/o timeout", "deadline exceeded"):
		return IOSubkindTimeout
	case containsAny(msg, "interrupted system call"):
		return IOSubkindInterrupted
	case containsAny(msg, "no such file or directory"):
		return IOSubkindFileNotFound
	case containsAny(msg, "file exists"):
		return IOSubkindFileAlreadyExists
	default:
		return IOSubkindNone
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if indexFold(s, sub) >= 0 {
			return true
		}
	}
	return false
}

// indexFold is a tiny case-insensitive substring search; avoids pulling in
// strings.ToLower allocation on every classification for the common case
// where the message does not match at all.
func indexFold(s, sub string) int {
	n, m := len(s), len(sub)
	if m == 0 {
		return 0
	}
	if m > n {
		return -1
	}
outer:
	for i := 0; i+m <= n; i++ {
		for j := 0; j < m; j++ {
			a, b := s[i+j], sub[j]
			if 'A' <= a && a <= 'Z' {
				a += 'a' - 'A'
			}
			if 'A' <= b && b <= 'Z' {
				b += 'a' - 'A'
			}
			if a != b {
				continue outer
			}
		}
		return i
	}
	return -1
}

// Is reports whether err is an *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.kind == kind
	}
	return false
}
