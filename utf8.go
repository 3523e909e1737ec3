package iobuf

import (
	"unicode/utf16"

	"github.com/gostdlib/base/context"
)

// Utf8 is a ByteString holding UTF-8 text (validated by Utf8Of, not by
// Utf8OfString), with a lazily computed
// UTF-16 code-unit length (the size a JVM- or JS-hosted caller would see
// for the same text, cached the same way ByteString.Hash caches its
// polynomial hash).
type Utf8 struct {
	ByteString

	utf16Len    int
	utf16Cached bool
}

// Utf8Of validates data as UTF-8 and returns it wrapped as a Utf8, copying
// the bytes. It is an invalid-argument failure for data to contain
// malformed UTF-8.
func Utf8Of(data []byte) (Utf8, error) {
	bs := Of(data)
	if !bs.Utf8Valid() {
		return Utf8{}, newErr(context.Background(), KindInvalidArgument, errNoMatch)
	}
	return Utf8{ByteString: bs}, nil
}

// Utf8OfString wraps s without validation, matching the Go standard
// library's own stance that a string is a read-only byte sequence, not a
// guarantee of well-formed UTF-8. Callers who need that guarantee should
// check Utf8Valid or go through Utf8Of instead.
func Utf8OfString(s string) Utf8 {
	return Utf8{ByteString: OfString(s)}
}

// Utf16Len returns the number of UTF-16 code units text using this string
// would occupy: equal to Len() for all-ASCII text, and greater whenever a
// code point outside the Basic Multilingual Plane requires a surrogate
// pair.
func (u *Utf8) Utf16Len() int {
	if u.utf16Cached {
		return u.utf16Len
	}
	n := 0
	for _, r := range u.String() {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	u.utf16Len = n
	u.utf16Cached = true
	return n
}

// Utf16Units returns text's UTF-16 code unit sequence.
func (u Utf8) Utf16Units() []uint16 {
	return utf16.Encode([]rune(u.String()))
}
