package wire

import (
	"bytes"
	"encoding/hex"
	"math/big"

	"golang.org/x/crypto/cryptobyte"
)

var bigOne = big.NewInt(1)

// MPInt is an SSH multiple precision integer: big-endian two's complement
// bytes, with a single leading zero byte when the top bit of a positive
// value would otherwise be set. The stored bytes are kept exactly as
// received so that decoding followed by Marshal reproduces the input.
//
// An MPInt is immutable; accessors return copies.
type MPInt struct {
	b []byte
}

// ParseMPInt reads a length-prefixed mpint from the front of in. The
// encoding is accepted as sent, minimal or not. A zero length yields the
// zero value.
func ParseMPInt(in []byte) (MPInt, []byte, error) {
	b, rest, err := ParseString(in)
	if err != nil {
		return MPInt{}, nil, err
	}
	return MPInt{b: b}, rest, nil
}

// NewMPInt returns the minimal encoding of an unsigned big-endian magnitude.
func NewMPInt(magnitude []byte) MPInt {
	magnitude = trimLeadingZeros(magnitude)
	if len(magnitude) == 0 {
		return MPInt{}
	}
	b := make([]byte, 0, len(magnitude)+1)
	if magnitude[0]&0x80 != 0 {
		b = append(b, 0)
	}
	return MPInt{b: append(b, magnitude...)}
}

// RawMPInt wraps b verbatim, without normalizing its encoding.
func RawMPInt(b []byte) MPInt {
	return MPInt{b: bytes.Clone(b)}
}

// MPIntFromBigInt returns the minimal two's complement encoding of x.
func MPIntFromBigInt(x *big.Int) MPInt {
	switch x.Sign() {
	case 0:
		return MPInt{}
	case 1:
		return NewMPInt(x.Bytes())
	}
	// -x - 1 has the same bits as x in two's complement, inverted.
	nMinus1 := new(big.Int).Neg(x)
	nMinus1.Sub(nMinus1, bigOne)
	b := nMinus1.Bytes()
	for i := range b {
		b[i] ^= 0xff
	}
	if len(b) == 0 || b[0]&0x80 == 0 {
		b = append([]byte{0xff}, b...)
	}
	return MPInt{b: b}
}

// Bytes returns the stored bytes, including any sign byte.
func (m MPInt) Bytes() []byte {
	return bytes.Clone(m.b)
}

// Len is the number of stored bytes.
func (m MPInt) Len() int {
	return len(m.b)
}

// PaddedToAtLeast returns the stored bytes left-padded with zeros to n
// bytes. Values already n bytes or longer are returned unchanged, never
// truncated.
func (m MPInt) PaddedToAtLeast(n int) []byte {
	if len(m.b) >= n {
		return bytes.Clone(m.b)
	}
	out := make([]byte, n)
	copy(out[n-len(m.b):], m.b)
	return out
}

// Magnitude returns the bytes of a non-negative value with every leading
// zero byte removed, matching big.Int.Bytes.
func (m MPInt) Magnitude() []byte {
	return bytes.Clone(trimLeadingZeros(m.b))
}

// Negative reports whether the two's complement value is below zero.
func (m MPInt) Negative() bool {
	return len(m.b) > 0 && m.b[0]&0x80 != 0
}

// IsMinimal reports whether the encoding carries no redundant leading
// 0x00 (or 0xff, for negative values) byte.
func (m MPInt) IsMinimal() bool {
	if len(m.b) < 2 {
		return len(m.b) == 0 || m.b[0] != 0
	}
	switch m.b[0] {
	case 0x00:
		return m.b[1]&0x80 != 0
	case 0xff:
		return m.b[1]&0x80 == 0
	}
	return true
}

// BigInt interprets the stored bytes as a two's complement integer.
func (m MPInt) BigInt() *big.Int {
	out := new(big.Int)
	if !m.Negative() {
		return out.SetBytes(m.b)
	}
	notBytes := make([]byte, len(m.b))
	for i := range notBytes {
		notBytes[i] = ^m.b[i]
	}
	out.SetBytes(notBytes)
	out.Add(out, bigOne)
	return out.Neg(out)
}

// Equal reports whether both values hold identical encodings.
func (m MPInt) Equal(o MPInt) bool {
	return bytes.Equal(m.b, o.b)
}

// AddTo appends the wire encoding of m to b.
func (m MPInt) AddTo(b *cryptobyte.Builder) {
	AddString(b, m.b)
}

// Marshal returns the length-prefixed wire encoding.
func (m MPInt) Marshal() []byte {
	return MarshalString(m.b)
}

func (m MPInt) String() string {
	return hex.EncodeToString(m.b)
}

func trimLeadingZeros(b []byte) []byte {
	for len(b) > 0 && b[0] == 0 {
		b = b[1:]
	}
	return b
}
