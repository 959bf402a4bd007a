package blocklist

import (
	stdrsa "crypto/rsa"
	"fmt"

	"github.com/runZeroInc/excrypto/crypto/sha256"
	"github.com/runZeroInc/excrypto/x/crypto/ssh"
	"github.com/runZeroInc/sshsigcheck/sshrsa"
)

// PrefixFromModulus implements the badkeys `blocklistmaker` hashing method
// for RSA: the first bytes of the SHA-256 of the unsigned modulus.
func PrefixFromModulus(modulus []byte) []byte {
	for len(modulus) > 0 && modulus[0] == 0 {
		modulus = modulus[1:]
	}
	sum := sha256.Sum256(modulus)
	return sum[:BlockHashPrefix]
}

// PrefixFromPublicKey hashes an RSA key given as a decoded record, a wire
// blob, an ssh.PublicKey or a crypto/rsa key.
func PrefixFromPublicKey(pub any) ([]byte, error) {
	switch pub := pub.(type) {
	case *sshrsa.RSAPublicKey:
		return PrefixFromModulus(pub.N.Magnitude()), nil
	case []byte:
		k, err := sshrsa.ParseRSAPublicKey(pub)
		if err != nil {
			return nil, err
		}
		return PrefixFromPublicKey(k)
	case ssh.PublicKey:
		if pub.Type() != sshrsa.KeyAlgoRSA {
			return nil, fmt.Errorf("unsupported ssh public key: %v", pub.Type())
		}
		return PrefixFromPublicKey(pub.Marshal())
	case *stdrsa.PublicKey:
		return PrefixFromModulus(pub.N.Bytes()), nil
	case nil:
		return nil, fmt.Errorf("unsupported nil key")
	default:
		return nil, fmt.Errorf("unsupported key: %T", pub)
	}
}
