package cmd

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/runZeroInc/excrypto/x/crypto/ssh"
	"github.com/runZeroInc/sshsigcheck/sshrsa"
	"github.com/runZeroInc/sshsigcheck/wire"
	"github.com/spf13/cobra"
)

// inspectCmd describes key and signature blobs
var inspectCmd = &cobra.Command{
	Use:   "inspect base64-blob ...",
	Short: "Describes SSH public key and signature blobs",
	Long:  "Decodes base64 SSH public key or signature blobs and writes a JSON description of each.",
	Args:  cobra.MinimumNArgs(1),
	Run:   runInspect,
}

// BlobField describes one decoded field.
type BlobField struct {
	Name    string `json:"name"`
	Length  int    `json:"length"`
	Hex     string `json:"hex,omitempty"`
	Minimal *bool  `json:"minimal,omitempty"`
}

// BlobInfo describes a key or signature blob.
type BlobInfo struct {
	Kind        string      `json:"kind"`
	Type        string      `json:"type"`
	Length      int         `json:"length"`
	Fingerprint string      `json:"fingerprint,omitempty"`
	Bits        int         `json:"bits,omitempty"`
	Fields      []BlobField `json:"fields,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) {
	conf := newRunConfig()
	failed := 0
	for _, arg := range args {
		blob, err := base64.StdEncoding.DecodeString(strings.TrimSpace(arg))
		if err != nil {
			conf.Logger.Errorf("bad base64 blob: %v", err)
			failed++
			continue
		}
		info, err := inspectBlob(blob)
		if err != nil {
			conf.Logger.Errorf("could not decode blob: %v", err)
			failed++
			continue
		}
		conf.WriteOutput(info)
	}
	if failed > 0 {
		conf.Logger.Fatalf("%d of %d blobs could not be decoded", failed, len(args))
	}
}

func mpintField(name string, m wire.MPInt) BlobField {
	minimal := m.IsMinimal()
	return BlobField{Name: name, Length: m.Len(), Hex: m.String(), Minimal: &minimal}
}

// inspectBlob picks a decoder from the blob's type tag. An ssh-rsa blob is
// a key when it holds two integers and a signature when it holds one.
func inspectBlob(blob []byte) (*BlobInfo, error) {
	hdr, err := sshrsa.ParsePublicKeyHeader(blob)
	if err != nil {
		return nil, err
	}
	info := &BlobInfo{Type: hdr.Type, Length: len(blob)}

	if hdr.Type == sshrsa.KeyAlgoRSA {
		if pub, kerr := sshrsa.ParseRSAPublicKey(blob); kerr == nil {
			info.Kind = "public-key"
			info.Fingerprint = pub.Fingerprint()
			info.Bits = pub.Bits()
			info.Fields = []BlobField{
				{Name: "type", Length: len(pub.Type)},
				mpintField("e", pub.E),
				mpintField("n", pub.N),
			}
			return info, nil
		}
		sig, err := sshrsa.ParseRSASignature(blob)
		if err != nil {
			return nil, fmt.Errorf("neither an ssh-rsa key nor signature: %w", err)
		}
		info.Kind = "signature"
		info.Bits = len(sig.S.Magnitude()) * 8
		info.Fields = []BlobField{
			{Name: "type", Length: len(sig.Type)},
			mpintField("s", sig.S),
		}
		return info, nil
	}

	// Other algorithms are only described at the envelope level
	if pub, err := ssh.ParsePublicKey(blob); err == nil {
		info.Kind = "public-key"
		info.Fingerprint = sshrsa.FingerprintSHA256(blob)
		info.Fields = []BlobField{{Name: "type", Length: len(pub.Type())}}
		return info, nil
	}
	env, err := sshrsa.ParseSignature(blob)
	if err != nil {
		return nil, fmt.Errorf("unrecognized %s blob: %w", hdr.Type, err)
	}
	info.Kind = "signature"
	info.Fields = []BlobField{
		{Name: "format", Length: len(env.Format)},
		{Name: "blob", Length: len(env.Blob), Hex: hex.EncodeToString(env.Blob)},
	}
	return info, nil
}
