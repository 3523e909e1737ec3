package iobuf

import (
	"github.com/gostdlib/base/context"
)

// ReadUtf8Line reads and consumes a line of input, returning it without
// its terminator ("\n", or "\r\n"). If no terminator is found, a non-empty
// buffer is drained and its full remainder returned with ok=true; only a
// buffer that is already empty returns (_, false, nil).
func (b *Buffer) ReadUtf8Line() (string, bool, error) {
	idx, err := b.IndexOf('\n', 0, -1)
	if err != nil {
		return "", false, err
	}
	if idx == -1 {
		if b.Exhausted() {
			return "", false, nil
		}
		n := b.Len()
		line := make([]byte, n)
		if err := b.ReadFully(line); err != nil {
			return "", false, err
		}
		return string(line), true, nil
	}
	return b.consumeLine(idx)
}

// ReadUtf8LineStrict reads and consumes a line of input, failing with
// KindEndOfInput if no "\n" terminator is found before the buffer (or, if
// limit >= 0, before limit+2 bytes) is exhausted. A limit >= 0 also
// requires the full limit+2-byte window to actually be present in the
// buffer before a match is accepted — a buffer shorter than that window
// cannot yet prove the line fits within limit, so it fails closed even
// when a "\n" is present among the bytes it does have (limit=0 against a
// buffer containing only "\n" is the named case: the 2-byte window is
// never satisfied by a single byte, so it is end-of-input).
func (b *Buffer) ReadUtf8LineStrict(limit int64) (string, error) {
	ctx := context.Background()
	if limit < 0 {
		idx, err := b.IndexOf('\n', 0, -1)
		if err != nil {
			return "", err
		}
		if idx == -1 {
			return "", newErr(ctx, KindEndOfInput, errNoMatch)
		}
		line, _, err := b.consumeLine(idx)
		return line, err
	}

	bound := limit + 2
	if b.q.size() < bound {
		return "", newErr(ctx, KindEndOfInput, errNoMatch)
	}
	idx, err := b.IndexOf('\n', 0, bound)
	if err != nil {
		return "", err
	}
	if idx == -1 {
		return "", newErr(ctx, KindEndOfInput, errNoMatch)
	}
	line, _, err := b.consumeLine(idx)
	return line, err
}

// consumeLine consumes through and including the "\n" at newlineIndex,
// stripping a preceding "\r" if present, and returns the line content.
func (b *Buffer) consumeLine(newlineIndex int64) (string, bool, error) {
	lineLen := newlineIndex
	hasCR := newlineIndex > 0
	if hasCR {
		c, err := b.GetByte(newlineIndex - 1)
		if err != nil {
			return "", false, err
		}
		hasCR = c == '\r'
	}
	if hasCR {
		lineLen--
	}

	line := make([]byte, lineLen)
	if err := b.ReadFully(line); err != nil {
		return "", false, err
	}
	if hasCR {
		if err := b.Skip(1); err != nil {
			return "", false, err
		}
	}
	if err := b.Skip(1); err != nil {
		return "", false, err
	}
	return string(line), true, nil
}
