package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/logrusorgru/aurora/v3"
	"github.com/runZeroInc/sshsigcheck/authkeys"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	gLogfile      string
	gLogLevel     string
	gOutput       string
	gPProfAddr    string
	gBlocklistDir string
	gKeyCacheSize int
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sshsigcheck {verify, inspect, bench, blocklist-update}",
	Short: "Verifies ssh-rsa (SHA-1) signatures against SSH public keys",
	Long: `
` + aurora.BrightCyan("sshsigcheck").String() + ` verifies ssh-rsa PKCS#1 v1.5 SHA-1 signatures.

Check a signature against every key in an authorized_keys file:

$ sshsigcheck verify --authorized-keys ~/.ssh/authorized_keys --signature @sig.b64 --data-file challenge.bin

Describe a key or signature blob:

$ sshsigcheck inspect AAAAB3NzaC1yc2E...

`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		startProfiler()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "The config file to use (default is $HOME/.sshsigcheck.json)")
	pf.StringVarP(&gLogfile, "log", "l", "-", "The file to write logs to (default is stderr)")
	pf.StringVarP(&gLogLevel, "log-level", "L", "info", "The log level to write (trace,debug,info,warn,error)")
	pf.StringVarP(&gOutput, "output", "o", "-", "The file to write JSON results to (default is stdout)")
	pf.StringVar(&gPProfAddr, "pprof", "", "Start a Go pprof debug listener on the provided address")
	pf.StringVar(&gBlocklistDir, "blocklist-dir", "", "The badkeys cache directory (default is $HOME/.cache/badkeys)")
	pf.IntVar(&gKeyCacheSize, "key-cache-size", authkeys.DefaultStoreSize, "The maximum number of distinct keys to load")

	cobra.CheckErr(viper.BindPFlag("blocklist-dir", pf.Lookup("blocklist-dir")))
	cobra.CheckErr(viper.BindPFlag("key-cache-size", pf.Lookup("key-cache-size")))

	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(blocklistCmd)

	rootCmd.CompletionOptions = cobra.CompletionOptions{DisableDefaultCmd: true}
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".sshsigcheck" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("json")
		viper.SetConfigName(".sshsigcheck")
	}

	viper.SetEnvPrefix("SSHSIGCHECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
