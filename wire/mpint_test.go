package wire

import (
	"bytes"
	"encoding/hex"
	"errors"
	"math/big"
	"testing"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

// Examples from RFC 4251 section 5.
var mpintExamples = []struct {
	Value   string
	Encoded string
}{
	{"0", "00000000"},
	{"9a378f9b2e332a7", "0000000809a378f9b2e332a7"},
	{"80", "000000020080"},
	{"-1234", "00000002edcc"},
	{"-deadbeef", "00000005ff21524111"},
}

func TestMPIntExamples(t *testing.T) {
	for _, tc := range mpintExamples {
		want, ok := new(big.Int).SetString(tc.Value, 16)
		if !ok {
			t.Fatalf("bad value %s", tc.Value)
		}
		enc := mustHex(t, tc.Encoded)

		m, rest, err := ParseMPInt(enc)
		if err != nil {
			t.Fatalf("%s: parse failed: %v", tc.Value, err)
		}
		if len(rest) != 0 {
			t.Errorf("%s: %d bytes left over", tc.Value, len(rest))
		}
		if got := m.BigInt(); got.Cmp(want) != 0 {
			t.Errorf("%s: got value %x", tc.Value, got)
		}
		if !m.IsMinimal() {
			t.Errorf("%s: expected minimal encoding", tc.Value)
		}
		if got := m.Marshal(); !bytes.Equal(got, enc) {
			t.Errorf("%s: round trip got %s, expected %s", tc.Value, hex.EncodeToString(got), tc.Encoded)
		}
		if got := MPIntFromBigInt(want).Marshal(); !bytes.Equal(got, enc) {
			t.Errorf("%s: encode got %s, expected %s", tc.Value, hex.EncodeToString(got), tc.Encoded)
		}
	}
}

func TestParseMPIntNonMinimal(t *testing.T) {
	enc := mustHex(t, "00000003000001")
	m, _, err := ParseMPInt(enc)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if m.IsMinimal() {
		t.Errorf("redundant zero byte reported as minimal")
	}
	if m.Len() != 3 {
		t.Errorf("got length %d, expected 3", m.Len())
	}
	if m.BigInt().Int64() != 1 {
		t.Errorf("got value %v, expected 1", m.BigInt())
	}
	if !bytes.Equal(m.Marshal(), enc) {
		t.Errorf("non-minimal input was not preserved: %s", hex.EncodeToString(m.Marshal()))
	}
	if !bytes.Equal(m.Magnitude(), []byte{1}) {
		t.Errorf("got magnitude %x", m.Magnitude())
	}
}

func TestParseMPIntTruncated(t *testing.T) {
	enc := mustHex(t, "0000000809a378f9b2e332a7")
	for i := 0; i < len(enc); i++ {
		_, _, err := ParseMPInt(enc[:i])
		if !errors.Is(err, ErrTruncatedInput) {
			t.Errorf("cut at %d: got %v, expected ErrTruncatedInput", i, err)
		}
	}
	huge := mustHex(t, "ffffffff00")
	if _, _, err := ParseMPInt(huge); !errors.Is(err, ErrTruncatedInput) {
		t.Errorf("oversized length: got %v", err)
	}
}

func TestParseMPIntRest(t *testing.T) {
	enc := mustHex(t, "0000000180000000020080")
	first, rest, err := ParseMPInt(enc)
	if err != nil {
		t.Fatal(err)
	}
	second, rest, err := ParseMPInt(rest)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 0 {
		t.Errorf("%d bytes left over", len(rest))
	}
	if !first.Negative() || first.BigInt().Int64() != -128 {
		t.Errorf("first value got %v", first.BigInt())
	}
	if second.Negative() || second.BigInt().Int64() != 128 {
		t.Errorf("second value got %v", second.BigInt())
	}
}

func TestNewMPInt(t *testing.T) {
	testCases := []struct {
		Magnitude []byte
		Expected  []byte
	}{
		{nil, nil},
		{[]byte{0, 0}, nil},
		{[]byte{0x7f}, []byte{0x7f}},
		{[]byte{0x80}, []byte{0, 0x80}},
		{[]byte{0, 0, 0x80, 1}, []byte{0, 0x80, 1}},
		{[]byte{0, 0x01, 0xff}, []byte{0x01, 0xff}},
	}
	for _, tc := range testCases {
		m := NewMPInt(tc.Magnitude)
		if !bytes.Equal(m.Bytes(), tc.Expected) {
			t.Errorf("got %x for %x, expected %x", m.Bytes(), tc.Magnitude, tc.Expected)
		}
		if !m.IsMinimal() {
			t.Errorf("%x is not minimal", m.Bytes())
		}
	}
}

func TestPaddedToAtLeast(t *testing.T) {
	m := RawMPInt([]byte{0x61, 0x6d, 0x15})
	testCases := []struct {
		N        int
		Expected []byte
	}{
		{0, []byte{0x61, 0x6d, 0x15}},
		{2, []byte{0x61, 0x6d, 0x15}},
		{3, []byte{0x61, 0x6d, 0x15}},
		{4, []byte{0x00, 0x61, 0x6d, 0x15}},
		{6, []byte{0x00, 0x00, 0x00, 0x61, 0x6d, 0x15}},
	}
	for _, tc := range testCases {
		got := m.PaddedToAtLeast(tc.N)
		if !bytes.Equal(got, tc.Expected) {
			t.Errorf("n=%d: got %x, expected %x", tc.N, got, tc.Expected)
		}
		again := RawMPInt(got).PaddedToAtLeast(tc.N)
		if !bytes.Equal(again, got) {
			t.Errorf("n=%d: not idempotent, %x became %x", tc.N, got, again)
		}
	}
	if got := (MPInt{}).PaddedToAtLeast(2); !bytes.Equal(got, []byte{0, 0}) {
		t.Errorf("zero value padded to %x", got)
	}
}

func TestMPIntOwnsBytes(t *testing.T) {
	enc := mustHex(t, "000000020080")
	m, _, err := ParseMPInt(enc)
	if err != nil {
		t.Fatal(err)
	}
	enc[5] = 0x01
	b := m.Bytes()
	b[0] = 0xff
	p := m.PaddedToAtLeast(2)
	p[1] = 0xff
	if !bytes.Equal(m.Bytes(), []byte{0x00, 0x80}) {
		t.Errorf("stored bytes changed to %x", m.Bytes())
	}
}
