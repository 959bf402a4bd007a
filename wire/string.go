package wire

import (
	"bytes"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
)

// ParseString reads a uint32 length-prefixed string from the front of in.
// The returned contents are a copy; rest aliases the unread part of in.
func ParseString(in []byte) (out []byte, rest []byte, err error) {
	s := cryptobyte.String(in)
	var n uint32
	if !s.ReadUint32(&n) {
		return nil, nil, fmt.Errorf("%w: need 4 bytes for length, have %d", ErrTruncatedInput, len(in))
	}
	var body []byte
	if !s.ReadBytes(&body, int(n)) {
		return nil, nil, fmt.Errorf("%w: length %d exceeds remaining %d bytes", ErrTruncatedInput, n, len(s))
	}
	return bytes.Clone(body), s, nil
}

// ParseFixed reads exactly size raw bytes with no length prefix.
func ParseFixed(in []byte, size int) (out []byte, rest []byte, err error) {
	if size < 0 {
		return nil, nil, fmt.Errorf("%w: negative size %d", ErrMalformedField, size)
	}
	s := cryptobyte.String(in)
	var body []byte
	if !s.ReadBytes(&body, size) {
		return nil, nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedInput, size, len(in))
	}
	return bytes.Clone(body), s, nil
}

// AddString appends v to b as a uint32 length-prefixed string.
func AddString(b *cryptobyte.Builder, v []byte) {
	b.AddUint32LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(v)
	})
}

// MarshalString returns v encoded as a length-prefixed string.
func MarshalString(v []byte) []byte {
	b := cryptobyte.NewBuilder(make([]byte, 0, 4+len(v)))
	AddString(b, v)
	return b.BytesOrPanic()
}
