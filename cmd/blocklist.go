package cmd

import (
	"github.com/runZeroInc/sshsigcheck/blocklist"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// blocklistCmd refreshes the compromised key cache
var blocklistCmd = &cobra.Command{
	Use:   "blocklist-update",
	Short: "Updates the badkeys.info blocklist cache.",
	Long:  "Updates the badkeys.info blocklist cache used by verify --check-blocklist.",
	Args:  cobra.NoArgs,
	Run:   runBlocklistUpdate,
}

func runBlocklistUpdate(cmd *cobra.Command, args []string) {
	conf := newRunConfig()

	bkc := blocklist.NewCache(viper.GetString("blocklist-dir"), conf.Logger)

	conf.Logger.Infof("updating badkeys cache in %s from %s", bkc.Dir(), bkc.MetaURL)
	over, nver, err := bkc.Update(cmd.Context())
	if err != nil {
		conf.Logger.Fatalf("failed to update cache: %v", err)
	}
	if over == nver {
		conf.Logger.Infof("cache is current (%s)", nver)
		return
	}
	conf.Logger.Infof("cache updated (old:%s, new:%s)", over, nver)
}
