package iobuf

import (
	"encoding/base64"
	"encoding/hex"
	"sort"
	"unicode/utf8"

	"github.com/gostdlib/base/context"
)

// ByteString is an immutable sequence of bytes. Small or user-supplied
// payloads are held flat; snapshots taken from a live Buffer above
// flatSnapshotThreshold instead hold shared clones of the Buffer's own
// segments plus a cumulative-offset directory, so a large Snapshot never
// pays for a full copy. Either representation is safe to share freely:
// nothing ever mutates a ByteString's bytes in place.
type ByteString struct {
	flat []byte // nil when segment-backed

	segs    []*segment
	offsets []int // offsets[i] is the cumulative byte offset of segs[i]
	segLen  int

	hash   uint32
	hashed bool
}

// Of copies data into a new flat ByteString. The caller's slice is never
// aliased.
func Of(data []byte) ByteString {
	if len(data) == 0 {
		return ByteString{flat: []byte{}}
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return ByteString{flat: cp}
}

// OfString copies s into a new flat ByteString.
func OfString(s string) ByteString {
	return Of([]byte(s))
}

// Concat returns a new flat ByteString holding the concatenation of parts.
func Concat(parts ...ByteString) ByteString {
	var total int
	for _, p := range parts {
		total += p.Len()
	}
	out := make([]byte, 0, total)
	for _, p := range parts {
		out = p.appendTo(out)
	}
	return ByteString{flat: out}
}

// appendTo appends bs's bytes to dst, materializing across segments if
// segment-backed.
func (bs ByteString) appendTo(dst []byte) []byte {
	if bs.flat != nil {
		return append(dst, bs.flat...)
	}
	for _, seg := range bs.segs {
		dst = append(dst, seg.data[seg.pos:seg.limit]...)
	}
	return dst
}

// Len returns the number of bytes in bs.
func (bs ByteString) Len() int {
	if bs.flat != nil {
		return len(bs.flat)
	}
	return bs.segLen
}

// at returns the byte at index i, 0 <= i < Len(). Segment-backed lookups
// binary-search the offset directory.
func (bs ByteString) at(i int) byte {
	if bs.flat != nil {
		return bs.flat[i]
	}
	idx := sort.Search(len(bs.offsets), func(k int) bool { return bs.offsets[k] > i }) - 1
	seg := bs.segs[idx]
	return seg.data[seg.pos+int32(i-bs.offsets[idx])]
}

// Bytes materializes bs into a freshly allocated byte slice.
func (bs ByteString) Bytes() []byte {
	if bs.flat != nil {
		cp := make([]byte, len(bs.flat))
		copy(cp, bs.flat)
		return cp
	}
	return bs.appendTo(make([]byte, 0, bs.segLen))
}

// String returns bs's bytes as a Go string. Invalid UTF-8 sequences are
// kept byte-for-byte, not replaced.
func (bs ByteString) String() string {
	if bs.flat != nil {
		return string(bs.flat)
	}
	return string(bs.Bytes())
}

// Substring returns the byte range [beginIndex, endIndex) as a new
// ByteString sharing storage where bs is already segment-backed, or
// copying where bs is flat.
func (bs ByteString) Substring(beginIndex, endIndex int) (ByteString, error) {
	ctx := context.Background()
	if beginIndex < 0 || endIndex < beginIndex || endIndex > bs.Len() {
		return ByteString{}, newErr(ctx, KindIndexOutOfBounds, errBadRange)
	}
	if bs.flat != nil {
		out := make([]byte, endIndex-beginIndex)
		copy(out, bs.flat[beginIndex:endIndex])
		return ByteString{flat: out}, nil
	}

	var segs []*segment
	offsets := make([]int, 0, 4)
	var cum int
	for i, seg := range bs.segs {
		segStart := bs.offsets[i]
		segEnd := segStart + seg.len()
		lo := maxInt(beginIndex, segStart)
		hi := minInt(endIndex, segEnd)
		if lo < hi {
			relLo := seg.pos + int32(lo-segStart)
			relHi := seg.pos + int32(hi-segStart)
			segs = append(segs, seg.sharedRange(relLo, relHi))
			offsets = append(offsets, cum)
			cum += hi - lo
		}
	}
	return ByteString{segs: segs, offsets: offsets, segLen: endIndex - beginIndex}, nil
}

// Equal reports whether bs and other hold identical bytes.
func (bs ByteString) Equal(other ByteString) bool {
	if bs.Len() != other.Len() {
		return false
	}
	if bs.hashed && other.hashed && bs.hash != other.hash {
		return false
	}
	if bs.flat != nil && other.flat != nil {
		return string(bs.flat) == string(other.flat)
	}
	n := bs.Len()
	for i := 0; i < n; i++ {
		if bs.at(i) != other.at(i) {
			return false
		}
	}
	return true
}

// RangeEquals reports whether bs[offset:offset+byteCount] equals
// other[otherOffset:otherOffset+byteCount], without materializing bs into
// a contiguous array when it is segment-backed.
func (bs ByteString) RangeEquals(offset int, other []byte, otherOffset, byteCount int) bool {
	if offset < 0 || byteCount < 0 || offset+byteCount > bs.Len() {
		return false
	}
	if otherOffset < 0 || otherOffset+byteCount > len(other) {
		return false
	}
	for i := 0; i < byteCount; i++ {
		if bs.at(offset+i) != other[otherOffset+i] {
			return false
		}
	}
	return true
}

// Hash returns a cached 31h+b polynomial hash of bs's bytes, computed at
// most once per ByteString value (the cache lives on this copy of the
// struct; copying a ByteString before first Hash duplicates the work).
func (bs *ByteString) Hash() uint32 {
	if bs.hashed {
		return bs.hash
	}
	var h uint32
	n := bs.Len()
	for i := 0; i < n; i++ {
		h = 31*h + uint32(bs.at(i))
	}
	bs.hash = h
	bs.hashed = true
	return h
}

// ToAsciiLowercase returns bs with every ASCII A-Z byte lowercased. If no
// such byte is present, bs is returned unchanged (no copy).
func (bs ByteString) ToAsciiLowercase() ByteString {
	n := bs.Len()
	for i := 0; i < n; i++ {
		if c := bs.at(i); c >= 'A' && c <= 'Z' {
			out := bs.Bytes()
			for ; i < n; i++ {
				if out[i] >= 'A' && out[i] <= 'Z' {
					out[i] += 'a' - 'A'
				}
			}
			return ByteString{flat: out}
		}
	}
	return bs
}

// ToAsciiUppercase returns bs with every ASCII a-z byte uppercased. If no
// such byte is present, bs is returned unchanged (no copy).
func (bs ByteString) ToAsciiUppercase() ByteString {
	n := bs.Len()
	for i := 0; i < n; i++ {
		if c := bs.at(i); c >= 'a' && c <= 'z' {
			out := bs.Bytes()
			for ; i < n; i++ {
				if out[i] >= 'a' && out[i] <= 'z' {
					out[i] -= 'a' - 'A'
				}
			}
			return ByteString{flat: out}
		}
	}
	return bs
}

// Base64 encodes bs using standard base64 with padding.
func (bs ByteString) Base64() string {
	return base64.StdEncoding.EncodeToString(bs.Bytes())
}

// Base64Url encodes bs using URL-safe base64 with padding.
func (bs ByteString) Base64Url() string {
	return base64.URLEncoding.EncodeToString(bs.Bytes())
}

// DecodeBase64 strictly decodes s as standard or URL-safe base64 (detected
// by the presence of '-'/'_' versus '+'/'/'); any byte outside the chosen
// alphabet other than whitespace is a decode failure. Whitespace is
// stripped before decoding.
func DecodeBase64(s string) (ByteString, error) {
	ctx := context.Background()
	stripped := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		}
		stripped = append(stripped, c)
	}
	enc := base64.StdEncoding
	for _, c := range stripped {
		if c == '-' || c == '_' {
			enc = base64.URLEncoding
			break
		}
	}
	decoded, err := enc.DecodeString(string(stripped))
	if err != nil {
		return ByteString{}, newErr(ctx, KindInvalidArgument, err)
	}
	return ByteString{flat: decoded}, nil
}

// Hex encodes bs as lowercase hexadecimal.
func (bs ByteString) Hex() string {
	return hex.EncodeToString(bs.Bytes())
}

// DecodeHex decodes s as case-insensitive hexadecimal. An odd-length
// string or a non-hex-digit byte is a decode failure.
func DecodeHex(s string) (ByteString, error) {
	ctx := context.Background()
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return ByteString{}, newErr(ctx, KindInvalidArgument, err)
	}
	return ByteString{flat: decoded}, nil
}

// Utf8Valid reports whether bs holds well-formed UTF-8.
func (bs ByteString) Utf8Valid() bool {
	if bs.flat != nil {
		return utf8.Valid(bs.flat)
	}
	return utf8.Valid(bs.Bytes())
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
