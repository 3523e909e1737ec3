package iobuf

import "testing"

func TestWriteReadUtf8CodePointAscii(t *testing.T) {
	b := NewBuffer()
	writeUtf8CodePoint(b, 'A')
	r, n, err := readUtf8CodePoint(b)
	if err != nil {
		t.Fatalf("readUtf8CodePoint: %v", err)
	}
	if r != 'A' || n != 1 {
		t.Fatalf("got (%q, %d), want ('A', 1)", r, n)
	}
}

func TestWriteReadUtf8CodePointMultiByte(t *testing.T) {
	cases := []rune{0x20AC, 'é', 0x1F600}
	for _, r := range cases {
		b := NewBuffer()
		writeUtf8CodePoint(b, r)
		got, n, err := readUtf8CodePoint(b)
		if err != nil {
			t.Fatalf("readUtf8CodePoint(%U): %v", r, err)
		}
		if got != r {
			t.Fatalf("round trip %U: got %U (consumed %d)", r, got, n)
		}
		if !b.Exhausted() {
			t.Fatalf("round trip %U should consume exactly its own encoding", r)
		}
	}
}

func TestWriteUtf8CodePointInvalidRuneUsesReplacement(t *testing.T) {
	b := NewBuffer()
	writeUtf8CodePoint(b, 0xD800) // unpaired surrogate
	c, err := b.ReadByte()
	if err != nil {
		t.Fatalf("ReadByte: %v", err)
	}
	if c != utf8ReplacementByte {
		t.Fatalf("invalid rune should encode to replacement byte: got %x", c)
	}
}

func TestReadUtf8CodePointMalformedLeadByte(t *testing.T) {
	b := NewBuffer()
	b.WriteByte(0xFF) // never a valid UTF-8 lead byte
	b.WriteByte('z')
	r, n, err := readUtf8CodePoint(b)
	if err != nil {
		t.Fatalf("readUtf8CodePoint: %v", err)
	}
	if r != utf8ReplacementRune || n != 1 {
		t.Fatalf("got (%U, %d), want (replacement, 1)", r, n)
	}
	if b.Len() != 1 {
		t.Fatalf("only the bad lead byte should be consumed, Len now %d", b.Len())
	}
}

func TestReadUtf8CodePointTruncatedSequence(t *testing.T) {
	b := NewBuffer()
	b.WriteByte(0xE2) // start of a 3-byte sequence
	b.WriteByte(0x82) // one valid continuation byte
	// stream ends here, missing the final continuation byte
	r, n, err := readUtf8CodePoint(b)
	if err != nil {
		t.Fatalf("readUtf8CodePoint: %v", err)
	}
	if r != utf8ReplacementRune {
		t.Fatalf("truncated sequence should decode to replacement rune, got %U", r)
	}
	if n != 1 {
		t.Fatalf("a malformed sequence should always consume exactly 1 byte, got %d", n)
	}
	if b.Len() != 1 {
		t.Fatalf("the probed continuation byte should be pushed back, Len now %d", b.Len())
	}
	c, err := b.ReadByte()
	if err != nil || c != 0x82 {
		t.Fatalf("pushed-back byte: got (%x, %v), want (0x82, nil)", c, err)
	}
}

func TestReadUtf8CodePointBadContinuationByte(t *testing.T) {
	b := NewBuffer()
	b.WriteByte(0xC2) // start of a 2-byte sequence
	b.WriteByte('z')  // not a continuation byte (top bits != 10)
	r, n, err := readUtf8CodePoint(b)
	if err != nil {
		t.Fatalf("readUtf8CodePoint: %v", err)
	}
	if r != utf8ReplacementRune || n != 1 {
		t.Fatalf("got (%U, %d), want (replacement, 1)", r, n)
	}
	if b.Len() != 1 {
		t.Fatalf("the rejected byte should be pushed back, not consumed, Len now %d", b.Len())
	}
	c, err := b.ReadByte()
	if err != nil || c != 'z' {
		t.Fatalf("pushed-back byte: got (%q, %v), want ('z', nil)", c, err)
	}
}

func TestReadUtf8CodePointOverlongEncodingRejected(t *testing.T) {
	b := NewBuffer()
	b.WriteByte(0xC0) // overlong 2-byte lead for NUL
	b.WriteByte(0x80)
	r, n, err := readUtf8CodePoint(b)
	if err != nil {
		t.Fatalf("readUtf8CodePoint: %v", err)
	}
	if r != utf8ReplacementRune || n != 1 {
		t.Fatalf("overlong NUL encoding: got (%U, %d), want (replacement, 1)", r, n)
	}
	if b.Len() != 1 {
		t.Fatalf("the probed continuation byte should be pushed back, Len now %d", b.Len())
	}
}

func TestReadUtf8CodePointSurrogateRejected(t *testing.T) {
	b := NewBuffer()
	// 0xED 0xA0 0x80 encodes U+D800, the first UTF-16 surrogate.
	b.WriteByte(0xED)
	b.WriteByte(0xA0)
	b.WriteByte(0x80)
	r, n, err := readUtf8CodePoint(b)
	if err != nil {
		t.Fatalf("readUtf8CodePoint: %v", err)
	}
	if r != utf8ReplacementRune || n != 1 {
		t.Fatalf("surrogate-range encoding: got (%U, %d), want (replacement, 1)", r, n)
	}
	if b.Len() != 2 {
		t.Fatalf("the two probed continuation bytes should be pushed back, Len now %d", b.Len())
	}
}

func TestBufferWriteUtf8CodePointThenReadUtf8(t *testing.T) {
	b := NewBuffer()
	b.WriteUtf8CodePoint(0x1F600)
	s, err := b.ReadUtf8()
	if err != nil {
		t.Fatalf("ReadUtf8: %v", err)
	}
	want := string(rune(0x1F600))
	if s != want {
		t.Fatalf("got %q, want %q", s, want)
	}
}

func TestUtf8SizeMatchesEncodedLength(t *testing.T) {
	cases := map[rune]int{
		'a':     1,
		0x7FF:   2,
		0xFFFF:  3,
		0x10000: 4,
		-1:      1,
	}
	for r, want := range cases {
		if got := utf8Size(r); got != want {
			t.Fatalf("utf8Size(%U): got %d, want %d", r, got, want)
		}
	}
}
