package sshrsa

import (
	"embed"
	"encoding/base64"
	"testing"

	"gopkg.in/yaml.v3"
)

//go:embed testdata/*.yaml
var testData embed.FS

type testVector struct {
	File            string `yaml:"-"`
	Name            string `yaml:"name"`
	Comment         string `yaml:"comment"`
	Key             string `yaml:"key"`
	Signature       string `yaml:"signature"`
	Data            string `yaml:"data"`
	Fingerprint     string `yaml:"fingerprint"`
	Bits            int    `yaml:"bits"`
	ModulusLength   int    `yaml:"modulusLength"`
	SignatureLength int    `yaml:"signatureLength"`
}

func getVectors(t *testing.T) []testVector {
	t.Helper()
	files, err := testData.ReadDir("testdata")
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	var vectors []testVector
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, err := testData.ReadFile("testdata/" + f.Name())
		if err != nil {
			t.Fatalf("read %s: %v", f.Name(), err)
		}
		tv := testVector{}
		if err := yaml.Unmarshal(data, &tv); err != nil {
			t.Fatalf("parse %s: %v", f.Name(), err)
		}
		tv.File = f.Name()
		vectors = append(vectors, tv)
	}
	if len(vectors) == 0 {
		t.Fatalf("no test vectors found")
	}
	return vectors
}

func mustB64(t *testing.T, s string) []byte {
	t.Helper()
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		t.Fatalf("bad base64 %q: %v", s, err)
	}
	return b
}

// decodeVector returns the parsed key, signature and message of a vector.
func decodeVector(t *testing.T, tv testVector) (*RSAPublicKey, *RSASignature, []byte) {
	t.Helper()
	pub, err := ParseRSAPublicKey(mustB64(t, tv.Key))
	if err != nil {
		t.Fatalf("%s: failed to parse public key: %v", tv.File, err)
	}
	sig, err := ParseRSASignature(mustB64(t, tv.Signature))
	if err != nil {
		t.Fatalf("%s: failed to parse signature: %v", tv.File, err)
	}
	return pub, sig, mustB64(t, tv.Data)
}
