package sshrsa

import (
	"bytes"
	"errors"
	"testing"

	"github.com/runZeroInc/sshsigcheck/wire"
)

func TestVectors(t *testing.T) {
	for _, tv := range getVectors(t) {
		t.Run(tv.File, func(t *testing.T) {
			t.Logf("running vector: %s", tv.Name)
			pub, sig, msg := decodeVector(t, tv)

			if pub.Type != KeyAlgoRSA || sig.Type != KeyAlgoRSA {
				t.Fatalf("unexpected types: key %q, signature %q", pub.Type, sig.Type)
			}
			if pub.N.Len() != tv.ModulusLength {
				t.Errorf("modulus length got %d, want %d", pub.N.Len(), tv.ModulusLength)
			}
			if sig.S.Len() != tv.SignatureLength {
				t.Errorf("signature length got %d, want %d", sig.S.Len(), tv.SignatureLength)
			}
			if got := len(sig.S.PaddedToAtLeast(pub.N.Len())); got != pub.N.Len() {
				t.Errorf("padded signature length got %d, want %d", got, pub.N.Len())
			}
			if pub.Bits() != tv.Bits {
				t.Errorf("bits got %d, want %d", pub.Bits(), tv.Bits)
			}
			if fp := pub.Fingerprint(); fp != tv.Fingerprint {
				t.Errorf("fingerprint got %s, want %s", fp, tv.Fingerprint)
			}

			if !Verify(pub, sig, msg) {
				t.Fatalf("valid signature did not verify")
			}
			for bit := 0; bit < len(msg)*8; bit++ {
				flipped := bytes.Clone(msg)
				flipped[bit/8] ^= 1 << (bit % 8)
				if Verify(pub, sig, flipped) {
					t.Fatalf("message with bit %d flipped verified", bit)
				}
			}

			raw := sig.S.Bytes()
			raw[len(raw)-1] ^= 0x01
			if Verify(pub, &RSASignature{Type: sig.Type, S: wire.RawMPInt(raw)}, msg) {
				t.Errorf("tampered signature verified")
			}
		})
	}
}

func TestVerifyMinimalShortSignature(t *testing.T) {
	checked := 0
	for _, tv := range getVectors(t) {
		pub, sig, msg := decodeVector(t, tv)
		short := &RSASignature{Type: sig.Type, S: wire.NewMPInt(sig.S.Bytes())}
		if short.S.Len() == sig.S.Len() {
			continue
		}
		if want := len(pub.N.Magnitude()) - 1; short.S.Len() != want {
			t.Fatalf("%s: signature length got %d, want %d", tv.File, short.S.Len(), want)
		}
		if !Verify(pub, short, msg) {
			t.Errorf("%s: signature with leading zero stripped did not verify", tv.File)
		}
		checked++
	}
	if checked == 0 {
		t.Fatalf("no vector has a signature shorter than its modulus")
	}
}

func TestVerifyPaddingEquivalence(t *testing.T) {
	prim := PKCS1v15SHA1{}
	for _, tv := range getVectors(t) {
		pub, sig, msg := decodeVector(t, tv)
		for _, m := range [][]byte{msg, append(bytes.Clone(msg), 0)} {
			direct := prim.VerifyPKCS1v15SHA1(pub.N.Bytes(), pub.E.Bytes(), m, sig.S.PaddedToAtLeast(pub.N.Len()))
			if got := Verify(pub, sig, m); got != direct {
				t.Errorf("%s: Verify returned %v, primitive returned %v", tv.File, got, direct)
			}
		}
	}
}

type primitiveCall struct {
	Modulus   []byte
	Exponent  []byte
	Message   []byte
	Signature []byte
}

func recordingPrimitive(calls *[]primitiveCall, result bool) Primitive {
	return PrimitiveFunc(func(modulus, exponent, message, signature []byte) bool {
		*calls = append(*calls, primitiveCall{modulus, exponent, message, signature})
		return result
	})
}

func TestVerifierPadsSignature(t *testing.T) {
	pub := &RSAPublicKey{
		Type: KeyAlgoRSA,
		E:    wire.NewMPInt([]byte{0x01, 0x00, 0x01}),
		N:    wire.NewMPInt([]byte{0xc1, 0x02, 0x03, 0x04, 0x05}),
	}
	sig := &RSASignature{Type: KeyAlgoRSA, S: wire.NewMPInt([]byte{0x0a, 0x0b})}

	for _, result := range []bool{true, false} {
		var calls []primitiveCall
		v := NewVerifier(recordingPrimitive(&calls, result))
		if got := v.Verify(pub, sig, []byte("msg")); got != result {
			t.Errorf("got %v, primitive returned %v", got, result)
		}
		if len(calls) != 1 {
			t.Fatalf("primitive called %d times", len(calls))
		}
		c := calls[0]
		if !bytes.Equal(c.Signature, []byte{0, 0, 0, 0, 0x0a, 0x0b}) {
			t.Errorf("signature passed as %x", c.Signature)
		}
		if !bytes.Equal(c.Modulus, []byte{0, 0xc1, 0x02, 0x03, 0x04, 0x05}) {
			t.Errorf("modulus passed as %x", c.Modulus)
		}
		if !bytes.Equal(c.Exponent, []byte{0x01, 0x00, 0x01}) {
			t.Errorf("exponent passed as %x", c.Exponent)
		}
		if string(c.Message) != "msg" {
			t.Errorf("message passed as %q", c.Message)
		}
	}
}

func TestVerifierFailsClosed(t *testing.T) {
	pub := &RSAPublicKey{
		Type: KeyAlgoRSA,
		E:    wire.NewMPInt([]byte{0x03}),
		N:    wire.NewMPInt([]byte{0x71, 0x02, 0x03}),
	}
	testCases := []struct {
		Name string
		Pub  *RSAPublicKey
		Sig  *RSASignature
	}{
		{"nil key", nil, &RSASignature{Type: KeyAlgoRSA}},
		{"nil signature", pub, nil},
		{"dss key", &RSAPublicKey{Type: "ssh-dss", E: pub.E, N: pub.N}, &RSASignature{Type: KeyAlgoRSA, S: wire.NewMPInt([]byte{1})}},
		{"dss signature", pub, &RSASignature{Type: "ssh-dss", S: wire.NewMPInt([]byte{1})}},
		{"long signature", pub, &RSASignature{Type: KeyAlgoRSA, S: wire.RawMPInt([]byte{0, 0, 1, 2})}},
	}
	for _, tc := range testCases {
		var calls []primitiveCall
		v := NewVerifier(recordingPrimitive(&calls, true))
		if v.Verify(tc.Pub, tc.Sig, []byte("msg")) {
			t.Errorf("%s: verified", tc.Name)
		}
		if len(calls) != 0 {
			t.Errorf("%s: primitive was called", tc.Name)
		}
	}
}

func TestVerifyBlobs(t *testing.T) {
	tv := getVectors(t)[0]
	v := NewVerifier(nil)
	ok, err := v.VerifyBlobs(mustB64(t, tv.Key), mustB64(t, tv.Signature), mustB64(t, tv.Data))
	if err != nil || !ok {
		t.Fatalf("got %v, %v", ok, err)
	}
	ok, err = v.VerifyBlobs(mustB64(t, tv.Key), mustB64(t, tv.Signature), []byte("other"))
	if err != nil || ok {
		t.Errorf("wrong message: got %v, %v", ok, err)
	}
	sig := mustB64(t, tv.Signature)
	_, err = v.VerifyBlobs(mustB64(t, tv.Key), sig[:len(sig)-1], mustB64(t, tv.Data))
	if !errors.Is(err, wire.ErrTruncatedInput) {
		t.Errorf("truncated signature: got %v", err)
	}
}
