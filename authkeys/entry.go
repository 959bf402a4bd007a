// Package authkeys reads authorized_keys style public key lines and keeps
// the decoded keys in a bounded store keyed by fingerprint.
package authkeys

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/runZeroInc/excrypto/x/crypto/ssh"
	"github.com/runZeroInc/sshsigcheck/sshrsa"
)

const MaxKeyLine = 32768

// Entry is one public key. RSA is only set for "ssh-rsa" keys.
type Entry struct {
	Algo        string
	Blob        []byte
	Fingerprint string
	Comment     string
	Options     []string
	RSA         *sshrsa.RSAPublicKey
}

// ParseLine parses an authorized_keys line, or a bare base64 key blob.
// Blank lines and comments return a nil entry and no error.
func ParseLine(line string) (*Entry, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, nil
	}

	if !strings.ContainsAny(line, " \t") {
		blob, err := base64.StdEncoding.DecodeString(line)
		if err != nil {
			return nil, fmt.Errorf("bad key blob: %w", err)
		}
		return NewEntry(blob, "", nil)
	}

	pub, comment, options, _, err := ssh.ParseAuthorizedKey([]byte(line))
	if err != nil {
		return nil, fmt.Errorf("bad key line: %w", err)
	}
	return NewEntry(pub.Marshal(), comment, options)
}

// NewEntry builds an entry from a wire-format key blob.
func NewEntry(blob []byte, comment string, options []string) (*Entry, error) {
	hdr, err := sshrsa.ParsePublicKeyHeader(blob)
	if err != nil {
		return nil, err
	}
	e := &Entry{
		Algo:        hdr.Type,
		Blob:        bytes.Clone(blob),
		Fingerprint: sshrsa.FingerprintSHA256(blob),
		Comment:     comment,
		Options:     options,
	}
	if hdr.Type == sshrsa.KeyAlgoRSA {
		if e.RSA, err = sshrsa.ParseRSAPublicKey(blob); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// String renders the entry as an authorized_keys line without options.
func (e *Entry) String() string {
	s := e.Algo + " " + base64.StdEncoding.EncodeToString(e.Blob)
	if e.Comment != "" {
		s += " " + e.Comment
	}
	return s
}
