package cmd

import (
	"os"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sagan/erolauncher/config"
	"github.com/sagan/erolauncher/flags"
)

// rootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "erolauncher",
	Short: "erolauncher is a command-line program which helps you organize and launch your game library.",
	Long: `erolauncher is a command-line program which helps you organize and launch your game library.
It's a free and open-source software released under the AGPL-3.0 license,
visit https://github.com/sagan/erolauncher for source codes and other infomation.`,
	SilenceUsage: true,
	// Uncomment the following line if your bare application
	// has an action associated with it:
	// Run: func(cmd *cobra.Command, args []string) { },
}

func Execute() {
	cobra.OnInitialize(sync.OnceFunc(func() {
		// level: panic(0), fatal(1), error(2), warn(3), info(4), debug(5), trace(6).
		log.SetLevel(log.Level(3 + config.VerboseLevel))
		if err := config.Load(); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}))
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&flags.DumpHeaders, "dump-headers", "", false,
		`Dump HTTP headers to log (error level)`)
	RootCmd.PersistentFlags().BoolVarP(&flags.DumpBody, "dump-body", "", false,
		`Dump HTTP body to log (error level)`)
	RootCmd.PersistentFlags().StringVarP(&config.ConfigFile, "config", "", config.DefaultConfigFile, "Config file")
	RootCmd.PersistentFlags().StringVarP(&flags.Proxy, "proxy", "", "",
		`Set proxy. If not set, will try to get proxy from HTTPS_PROXY env. `+
			`E.g. "http://127.0.0.1:1080", "socks5://127.0.0.1:7890"`)
	RootCmd.PersistentFlags().CountVarP(&config.VerboseLevel, "verbose", "v", "verbose (-v, -vv, -vvv)")
}
