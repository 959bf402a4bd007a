package sshrsa

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha1"
	"math/big"
)

// PKCS1v15SHA1 is the default Primitive, built on crypto/rsa.
//
// The modulus and exponent are mpint bytes and may carry a leading sign
// byte, so the signature may arrive one byte longer than the modulus size.
// Extra leading bytes are dropped only when they are zero.
type PKCS1v15SHA1 struct{}

func (PKCS1v15SHA1) VerifyPKCS1v15SHA1(modulus, exponent, message, signature []byte) bool {
	if len(modulus) == 0 || len(exponent) == 0 {
		return false
	}
	if modulus[0]&0x80 != 0 || exponent[0]&0x80 != 0 {
		return false
	}
	n := new(big.Int).SetBytes(modulus)
	e := new(big.Int).SetBytes(exponent)
	if n.Sign() == 0 || !e.IsInt64() || e.Int64() < 2 || e.Int64() > 1<<31-1 {
		return false
	}

	k := (n.BitLen() + 7) / 8
	if len(signature) < k {
		return false
	}
	for _, b := range signature[:len(signature)-k] {
		if b != 0 {
			return false
		}
	}
	signature = signature[len(signature)-k:]

	digest := sha1.Sum(message)
	pub := &rsa.PublicKey{N: n, E: int(e.Int64())}
	return rsa.VerifyPKCS1v15(pub, crypto.SHA1, digest[:], signature) == nil
}
