package sshrsa

import (
	"crypto/sha256"
	"encoding/base64"
)

// FingerprintSHA256 formats the SHA-256 digest of a public key blob the way
// ssh-keygen -l does: "SHA256:" followed by unpadded base64.
func FingerprintSHA256(blob []byte) string {
	sum := sha256.Sum256(blob)
	return "SHA256:" + base64.RawStdEncoding.EncodeToString(sum[:])
}
