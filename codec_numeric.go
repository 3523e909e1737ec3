package iobuf

import (
	"encoding/binary"
	"math"

	"github.com/gostdlib/base/context"
)

// ReadDecimalLong reads an ASCII decimal integer — an optional leading
// '-' followed by one or more digits — consuming bytes until the first
// non-digit or until the buffer is exhausted. A value whose magnitude
// exceeds what an int64 can hold is a numeric-format failure; per the
// documented no-rollback behavior every digit is still consumed (the
// buffer has advanced past the whole run) even though the parsed value
// is discarded. An empty buffer (nothing to read at all) is an
// end-of-input failure.
func (b *Buffer) ReadDecimalLong() (int64, error) {
	ctx := context.Background()
	if b.Exhausted() {
		return 0, newErr(ctx, KindEndOfInput, errNoMatch)
	}

	neg := false
	first, _ := b.ReadByte()
	if first == '-' {
		neg = true
		if b.Exhausted() {
			return 0, newErr(ctx, KindNumericFormat, errNoMatch)
		}
		first, _ = b.ReadByte()
	}
	if first < '0' || first > '9' {
		return 0, newErr(ctx, KindNumericFormat, errNoMatch)
	}

	// limit is the largest magnitude representable for this sign:
	// MaxInt64 for positive, MaxInt64+1 (abs of MinInt64) for negative.
	limit := uint64(math.MaxInt64)
	if neg {
		limit++
	}

	mag := uint64(first - '0')
	overflow := mag > limit
	for !b.Exhausted() {
		c, _ := b.ReadByte()
		if c < '0' || c > '9' {
			b.pushBackByte(c)
			break
		}
		d := uint64(c - '0')
		if overflow {
			continue
		}
		if mag > (limit-d)/10 {
			overflow = true
			continue
		}
		mag = mag*10 + d
	}
	if overflow {
		return 0, newErr(ctx, KindNumericFormat, errNoMatch)
	}
	if neg {
		if mag == limit {
			return math.MinInt64, nil
		}
		return -int64(mag), nil
	}
	return int64(mag), nil
}

// ReadHexadecimalUnsignedLong reads an ASCII hexadecimal integer (no
// leading "0x", case-insensitive digits), consuming at most 16 hex digits
// or until the first non-hex-digit byte, whichever comes first. An empty
// buffer is an end-of-input failure; a buffer whose first byte is not a
// hex digit is a numeric-format failure.
func (b *Buffer) ReadHexadecimalUnsignedLong() (uint64, error) {
	ctx := context.Background()
	if b.Exhausted() {
		return 0, newErr(ctx, KindEndOfInput, errNoMatch)
	}
	var v uint64
	digits := 0
	for digits < 16 && !b.Exhausted() {
		c, _ := b.ReadByte()
		d, ok := hexDigit(c)
		if !ok {
			b.pushBackByte(c)
			break
		}
		v = v<<4 | uint64(d)
		digits++
	}
	if digits == 0 {
		return 0, newErr(ctx, KindNumericFormat, errNoMatch)
	}
	return v, nil
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// pushBackByte returns a single lookahead byte to the front of the
// buffer. Used by the numeric readers, which must peek one byte past
// their last digit to find where the number ends, and by the UTF-8
// decoder to return continuation bytes of a rejected sequence.
func (b *Buffer) pushBackByte(c byte) {
	seg := b.pool.take(context.Background())
	seg.data[0] = c
	seg.limit = 1
	seg.next = b.q.head
	b.q.head = seg
	if b.q.tail == nil {
		b.q.tail = seg
	}
	b.q.addSize(1)
}

// WriteShort appends v as 2 big-endian bytes.
func (b *Buffer) WriteShort(v int16) error {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], uint16(v))
	_, err := b.Write(tmp[:])
	return err
}

// WriteInt appends v as 4 big-endian bytes.
func (b *Buffer) WriteInt(v int32) error {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(v))
	_, err := b.Write(tmp[:])
	return err
}

// WriteLong appends v as 8 big-endian bytes.
func (b *Buffer) WriteLong(v int64) error {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(v))
	_, err := b.Write(tmp[:])
	return err
}

// ReadShort consumes 2 big-endian bytes and returns them as an int16.
func (b *Buffer) ReadShort() (int16, error) {
	var tmp [2]byte
	if err := b.ReadFully(tmp[:]); err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(tmp[:])), nil
}

// ReadInt consumes 4 big-endian bytes and returns them as an int32.
func (b *Buffer) ReadInt() (int32, error) {
	var tmp [4]byte
	if err := b.ReadFully(tmp[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(tmp[:])), nil
}

// ReadLong consumes 8 big-endian bytes and returns them as an int64.
func (b *Buffer) ReadLong() (int64, error) {
	var tmp [8]byte
	if err := b.ReadFully(tmp[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(tmp[:])), nil
}
