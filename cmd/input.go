package cmd

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/runZeroInc/sshsigcheck/authkeys"
	"github.com/runZeroInc/sshsigcheck/sshrsa"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// inputOptions names the key, signature and data a command operates on.
type inputOptions struct {
	Key            string
	AuthorizedKeys string
	Signature      string
	Data           string
	DataFile       string
}

var gInput inputOptions

func addInputFlags(cmd *cobra.Command, opts *inputOptions) {
	cmd.Flags().StringVarP(&opts.Key, "key", "k", "", "A public key as an authorized_keys line or base64 blob")
	cmd.Flags().StringVarP(&opts.AuthorizedKeys, "authorized-keys", "a", "", "An authorized_keys file whose ssh-rsa keys are all tried")
	cmd.Flags().StringVarP(&opts.Signature, "signature", "s", "", "The base64 signature blob, or @file to read it from a file")
	cmd.Flags().StringVarP(&opts.Data, "data", "d", "", "The signed data as base64")
	cmd.Flags().StringVar(&opts.DataFile, "data-file", "", "A file holding the raw signed data")
}

// verifyInput is the decoded form of inputOptions.
type verifyInput struct {
	Keys      *authkeys.Store
	Signature *sshrsa.RSASignature
	Data      []byte
}

func loadInput(opts inputOptions, storeSize int, lgr *logrus.Logger) (*verifyInput, error) {
	in := &verifyInput{}

	keys, err := loadKeys(opts, storeSize, lgr)
	if err != nil {
		return nil, err
	}
	in.Keys = keys

	sigBlob, err := readSignatureArg(opts.Signature)
	if err != nil {
		return nil, fmt.Errorf("signature: %w", err)
	}
	if in.Signature, err = parseSignatureBlob(sigBlob); err != nil {
		return nil, err
	}

	if in.Data, err = readDataArg(opts.Data, opts.DataFile); err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}
	return in, nil
}

func loadKeys(opts inputOptions, storeSize int, lgr *logrus.Logger) (*authkeys.Store, error) {
	store, err := authkeys.NewStore(storeSize)
	if err != nil {
		return nil, err
	}

	var entries []*authkeys.Entry
	switch {
	case opts.Key != "" && opts.AuthorizedKeys != "":
		return nil, errors.New("--key and --authorized-keys are mutually exclusive")
	case opts.Key != "":
		e, err := authkeys.ParseLine(opts.Key)
		if err != nil {
			return nil, fmt.Errorf("key: %w", err)
		}
		if e == nil {
			return nil, errors.New("key: empty key")
		}
		entries = append(entries, e)
	case opts.AuthorizedKeys != "":
		if entries, err = authkeys.ReadFile(opts.AuthorizedKeys, lgr); err != nil {
			return nil, fmt.Errorf("authorized keys: %w", err)
		}
	default:
		return nil, errors.New("one of --key or --authorized-keys is required")
	}

	for _, e := range entries {
		if store.Add(e) {
			lgr.Warnf("key cache is full (%d), evicted the oldest key", storeSize)
		}
	}
	if store.Len() == 0 {
		return nil, errors.New("no keys were loaded")
	}
	return store, nil
}

// readSignatureArg decodes a base64 argument, or the contents of the file
// named after a leading '@'. File contents that are not base64 are taken
// as the raw blob.
func readSignatureArg(arg string) ([]byte, error) {
	if arg == "" {
		return nil, errors.New("--signature is required")
	}
	if !strings.HasPrefix(arg, "@") {
		return base64.StdEncoding.DecodeString(strings.TrimSpace(arg))
	}
	raw, err := os.ReadFile(arg[1:])
	if err != nil {
		return nil, err
	}
	if blob, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace(raw))); err == nil {
		return blob, nil
	}
	return raw, nil
}

func readDataArg(data, dataFile string) ([]byte, error) {
	switch {
	case data != "" && dataFile != "":
		return nil, errors.New("--data and --data-file are mutually exclusive")
	case dataFile != "":
		return os.ReadFile(dataFile)
	default:
		// Empty data is a valid message
		return base64.StdEncoding.DecodeString(strings.TrimSpace(data))
	}
}

// parseSignatureBlob decodes an ssh-rsa signature blob, naming the format
// when it is some other algorithm.
func parseSignatureBlob(blob []byte) (*sshrsa.RSASignature, error) {
	sig, err := sshrsa.ParseRSASignature(blob)
	if err == nil {
		return sig, nil
	}
	if env, eerr := sshrsa.ParseSignature(blob); eerr == nil && env.Format != sshrsa.KeyAlgoRSA {
		return nil, fmt.Errorf("unsupported signature format %q", env.Format)
	}
	return nil, err
}
