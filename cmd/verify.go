package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/logrusorgru/aurora/v3"
	"github.com/runZeroInc/sshsigcheck/authkeys"
	"github.com/runZeroInc/sshsigcheck/blocklist"
	"github.com/runZeroInc/sshsigcheck/sshrsa"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// verifyCmd checks a signature against one or more public keys
var verifyCmd = &cobra.Command{
	Use:   "verify [-k key | -a authorized_keys] -s signature [-d base64 | --data-file file]",
	Short: "Verifies an ssh-rsa signature against one or more public keys",
	Long:  "Verifies an ssh-rsa signature against one or more public keys. Exits non-zero if no key verifies it.",
	Args:  cobra.NoArgs,
	Run:   runVerify,
}

var (
	gCheckBlocklist bool
	gFirstMatch     bool
)

func init() {
	addInputFlags(verifyCmd, &gInput)
	verifyCmd.Flags().BoolVar(&gCheckBlocklist, "check-blocklist", false, "Look up each key in the badkeys.info blocklist cache")
	verifyCmd.Flags().BoolVar(&gFirstMatch, "first", false, "Stop at the most recently loaded key that verifies")
}

// VerifyResult is written once for each key tried.
type VerifyResult struct {
	Fingerprint string            `json:"fingerprint"`
	Algo        string            `json:"algo"`
	Comment     string            `json:"comment,omitempty"`
	Bits        int               `json:"bits,omitempty"`
	Verified    bool              `json:"verified"`
	Error       string            `json:"error,omitempty"`
	Blocklisted *blocklist.Result `json:"blocklisted,omitempty"`
}

func runVerify(cmd *cobra.Command, args []string) {
	conf := newRunConfig()

	in, err := loadInput(gInput, viper.GetInt("key-cache-size"), conf.Logger)
	if err != nil {
		conf.Logger.Fatalf("%v", err)
	}

	var list *blocklist.List
	if gCheckBlocklist {
		bkc := blocklist.NewCache(viper.GetString("blocklist-dir"), conf.Logger)
		if list, err = bkc.Load(); err != nil {
			conf.Logger.Warnf("blocklist is unavailable, run blocklist-update: %v", err)
		}
	}

	results := verifyKeys(conf.Verifier, in, list, gFirstMatch)
	verified := 0
	for _, res := range results {
		conf.WriteOutput(res)
		if res.Blocklisted != nil {
			conf.Logger.Warnf("%s is a known compromised key (%s)", res.Fingerprint, res.Blocklisted.ID())
		}
		if res.Verified {
			verified++
		}
	}

	if isTerminal(os.Stdout) {
		printVerifySummary(results)
	}
	if verified == 0 {
		conf.Logger.Fatalf("no key verified the signature (%d tried)", len(results))
	}
	conf.Logger.Debugf("%d of %d keys verified the signature", verified, len(results))
}

// verifyKeys tries every stored key, or only the matching one when first
// is set. A non-nil list adds blocklist matches to the results.
func verifyKeys(v *sshrsa.Verifier, in *verifyInput, list *blocklist.List, first bool) []*VerifyResult {
	var entries []*authkeys.Entry
	if first {
		if e := in.Keys.FindSigner(v, in.Signature, in.Data); e != nil {
			entries = append(entries, e)
		}
	} else {
		entries = in.Keys.Entries()
	}

	results := make([]*VerifyResult, 0, len(entries))
	for _, e := range entries {
		res := &VerifyResult{
			Fingerprint: e.Fingerprint,
			Algo:        e.Algo,
			Comment:     e.Comment,
		}
		results = append(results, res)

		if e.RSA == nil {
			res.Error = fmt.Sprintf("unsupported key type %s", e.Algo)
			continue
		}
		res.Bits = e.RSA.Bits()
		res.Verified = v.Verify(e.RSA, in.Signature, in.Data)

		if list == nil {
			continue
		}
		bl, err := list.LookupPublicKey(e.RSA)
		switch {
		case err == nil:
			res.Blocklisted = bl
		case !errors.Is(err, blocklist.ErrNotListed):
			res.Error = fmt.Sprintf("blocklist: %v", err)
		}
	}
	return results
}

func printVerifySummary(results []*VerifyResult) {
	au := aurora.NewAurora(isTerminal(os.Stderr))
	for _, res := range results {
		status := au.Red("FAIL")
		if res.Verified {
			status = au.Green("OK")
		}
		line := fmt.Sprintf("%s %s %s", status, res.Algo, res.Fingerprint)
		if res.Comment != "" {
			line += " " + au.Faint(res.Comment).String()
		}
		if res.Blocklisted != nil {
			line += " " + au.BrightRed("compromised: "+res.Blocklisted.ID()).String()
		}
		fmt.Fprintln(os.Stderr, line)
	}
}
