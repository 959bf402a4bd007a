// Package sshrsa decodes SSH "ssh-rsa" public key and signature blobs and
// verifies PKCS#1 v1.5 SHA-1 signatures made with them.
package sshrsa

import (
	"crypto/rsa"
	"fmt"
	"math/big"

	"github.com/runZeroInc/sshsigcheck/wire"
	"golang.org/x/crypto/cryptobyte"
)

// KeyAlgoRSA is the type tag shared by RSA public keys and their SHA-1
// signatures.
const KeyAlgoRSA = "ssh-rsa"

var (
	headerSchema = wire.Schema{
		{Name: "type", Rule: wire.RuleString},
	}
	rsaPublicKeySchema = wire.Schema{
		{Name: "type", Rule: wire.RuleString, Expect: KeyAlgoRSA},
		{Name: "e", Rule: wire.RuleMPInt},
		{Name: "n", Rule: wire.RuleMPInt},
	}
	rsaSignatureSchema = wire.Schema{
		{Name: "type", Rule: wire.RuleString, Expect: KeyAlgoRSA},
		{Name: "s", Rule: wire.RuleMPInt},
	}
	signatureSchema = wire.Schema{
		{Name: "format", Rule: wire.RuleString},
		{Name: "blob", Rule: wire.RuleString},
	}
)

// PublicKeyHeader is the leading type tag of a key or signature blob.
type PublicKeyHeader struct {
	Type string
}

// ParsePublicKeyHeader reads only the type tag, ignoring the rest of the
// blob, so callers can pick a decoder before committing to one.
func ParsePublicKeyHeader(in []byte) (*PublicKeyHeader, error) {
	rec, _, err := headerSchema.Decode(in)
	if err != nil {
		return nil, fmt.Errorf("sshrsa: header: %w", err)
	}
	return &PublicKeyHeader{Type: rec.Text("type")}, nil
}

// RSAPublicKey is an "ssh-rsa" public key blob.
type RSAPublicKey struct {
	Type string
	E    wire.MPInt
	N    wire.MPInt
}

// NewRSAPublicKey encodes a crypto/rsa key.
func NewRSAPublicKey(pub *rsa.PublicKey) *RSAPublicKey {
	return &RSAPublicKey{
		Type: KeyAlgoRSA,
		E:    wire.MPIntFromBigInt(big.NewInt(int64(pub.E))),
		N:    wire.MPIntFromBigInt(pub.N),
	}
}

// ParseRSAPublicKey decodes a complete "ssh-rsa" public key blob.
func ParseRSAPublicKey(in []byte) (*RSAPublicKey, error) {
	rec, err := rsaPublicKeySchema.DecodeAll(in)
	if err != nil {
		return nil, fmt.Errorf("sshrsa: public key: %w", err)
	}
	return &RSAPublicKey{
		Type: rec.Text("type"),
		E:    rec.MPInt("e"),
		N:    rec.MPInt("n"),
	}, nil
}

// Marshal returns the wire encoding of the key.
func (k *RSAPublicKey) Marshal() []byte {
	b := cryptobyte.NewBuilder(nil)
	wire.AddString(b, []byte(k.Type))
	k.E.AddTo(b)
	k.N.AddTo(b)
	return b.BytesOrPanic()
}

// Bits is the bit length of the modulus.
func (k *RSAPublicKey) Bits() int {
	return k.N.BigInt().BitLen()
}

// Fingerprint returns the ssh-keygen style SHA256 fingerprint.
func (k *RSAPublicKey) Fingerprint() string {
	return FingerprintSHA256(k.Marshal())
}

// CryptoPublicKey converts the key for use with crypto/rsa.
func (k *RSAPublicKey) CryptoPublicKey() (*rsa.PublicKey, error) {
	if k.N.Negative() || k.E.Negative() {
		return nil, fmt.Errorf("sshrsa: negative key parameter")
	}
	e := k.E.BigInt()
	if !e.IsInt64() || e.Int64() > 1<<31-1 {
		return nil, fmt.Errorf("sshrsa: exponent too large: %d bits", e.BitLen())
	}
	return &rsa.PublicKey{
		N: k.N.BigInt(),
		E: int(e.Int64()),
	}, nil
}

// RSASignature is an "ssh-rsa" signature blob. S may be shorter than the
// modulus when the signature value has leading zero bytes.
type RSASignature struct {
	Type string
	S    wire.MPInt
}

// ParseRSASignature decodes a complete "ssh-rsa" signature blob.
func ParseRSASignature(in []byte) (*RSASignature, error) {
	rec, err := rsaSignatureSchema.DecodeAll(in)
	if err != nil {
		return nil, fmt.Errorf("sshrsa: signature: %w", err)
	}
	return &RSASignature{
		Type: rec.Text("type"),
		S:    rec.MPInt("s"),
	}, nil
}

// Marshal returns the wire encoding of the signature.
func (s *RSASignature) Marshal() []byte {
	b := cryptobyte.NewBuilder(nil)
	wire.AddString(b, []byte(s.Type))
	s.S.AddTo(b)
	return b.BytesOrPanic()
}

// Signature is an algorithm-agnostic signature envelope.
type Signature struct {
	Format string
	Blob   []byte
}

// ParseSignature decodes a signature blob of any format.
func ParseSignature(in []byte) (*Signature, error) {
	rec, err := signatureSchema.DecodeAll(in)
	if err != nil {
		return nil, fmt.Errorf("sshrsa: signature: %w", err)
	}
	v, _ := rec.Get("blob")
	return &Signature{
		Format: rec.Text("format"),
		Blob:   v.Bytes,
	}, nil
}

// Marshal returns the wire encoding of the envelope.
func (s *Signature) Marshal() []byte {
	b := cryptobyte.NewBuilder(nil)
	wire.AddString(b, []byte(s.Format))
	wire.AddString(b, s.Blob)
	return b.BytesOrPanic()
}

// RSA narrows the envelope to an RSA signature. The blob is kept verbatim.
func (s *Signature) RSA() (*RSASignature, error) {
	if s.Format != KeyAlgoRSA {
		return nil, fmt.Errorf("sshrsa: signature: type: %w: got %q, want %q", wire.ErrMalformedField, s.Format, KeyAlgoRSA)
	}
	return &RSASignature{
		Type: s.Format,
		S:    wire.RawMPInt(s.Blob),
	}, nil
}
