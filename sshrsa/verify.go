package sshrsa

// Primitive performs a raw RSASSA-PKCS1-v1_5 verification with SHA-1. All
// buffers are big-endian; signature is expected to be as long as modulus.
type Primitive interface {
	VerifyPKCS1v15SHA1(modulus, exponent, message, signature []byte) bool
}

// PrimitiveFunc adapts a function to the Primitive interface.
type PrimitiveFunc func(modulus, exponent, message, signature []byte) bool

func (f PrimitiveFunc) VerifyPKCS1v15SHA1(modulus, exponent, message, signature []byte) bool {
	return f(modulus, exponent, message, signature)
}

// Verifier checks SSH RSA signatures with a pluggable primitive. It holds
// no mutable state and is safe for concurrent use.
type Verifier struct {
	primitive Primitive
}

// NewVerifier returns a Verifier backed by p, or by PKCS1v15SHA1 if p is nil.
func NewVerifier(p Primitive) *Verifier {
	if p == nil {
		p = PKCS1v15SHA1{}
	}
	return &Verifier{primitive: p}
}

var defaultVerifier = NewVerifier(nil)

// Verify checks sig over message with the default verifier.
func Verify(pub *RSAPublicKey, sig *RSASignature, message []byte) bool {
	return defaultVerifier.Verify(pub, sig, message)
}

// Verify reports whether sig is a valid signature of message by pub. A
// mismatch is a false result, not an error.
//
// The signature is left-padded with zeros to the modulus length before it
// reaches the primitive, since its mpint encoding drops leading zero bytes.
// A signature longer than the modulus is rejected without calling the
// primitive.
func (v *Verifier) Verify(pub *RSAPublicKey, sig *RSASignature, message []byte) bool {
	if pub == nil || sig == nil {
		return false
	}
	if pub.Type != KeyAlgoRSA || sig.Type != KeyAlgoRSA {
		return false
	}
	modLen := pub.N.Len()
	if sig.S.Len() > modLen {
		return false
	}
	return v.primitive.VerifyPKCS1v15SHA1(pub.N.Bytes(), pub.E.Bytes(), message, sig.S.PaddedToAtLeast(modLen))
}

// VerifyBlobs decodes a public key and signature blob and verifies message.
// Decoding problems are returned as errors; a bad signature is only false.
func (v *Verifier) VerifyBlobs(pubBlob, sigBlob, message []byte) (bool, error) {
	pub, err := ParseRSAPublicKey(pubBlob)
	if err != nil {
		return false, err
	}
	sig, err := ParseRSASignature(sigBlob)
	if err != nil {
		return false, err
	}
	return v.Verify(pub, sig, message), nil
}
