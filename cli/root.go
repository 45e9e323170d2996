// Package cli provides the workrecap command-line interface: a cobra root
// command with subcommands for running the daily/range pipeline, answering
// ad-hoc queries, and inspecting checkpoints, configured via viper.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yongseopkim/workrecap/config"
	"github.com/yongseopkim/workrecap/logging"
)

var cfgFile string
var dataDir string

// RootCmd is the workrecap entrypoint.
var RootCmd = &cobra.Command{
	Use:   "workrecap",
	Short: "Summarise a GitHub Enterprise user's daily activity into Markdown recaps",
	Long: `workrecap fetches a user's pull requests, commits, and issues from a
GitHub Enterprise instance, normalises them into a daily activity stream,
and renders daily/weekly/monthly/yearly Markdown summaries through a
configurable LLM provider.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.workrecap.yaml or ./.workrecap.yaml)")
	RootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default: ./data, or $WORKRECAP_DATA_DIR)")
	RootCmd.PersistentFlags().String("secrets", "secrets.yaml", "path to the host secrets document")
	RootCmd.PersistentFlags().String("providers", "providers.yaml", "path to the LLM provider config document")
	RootCmd.PersistentFlags().String("pricing", "pricing.yaml", "path to the model pricing document")
	RootCmd.PersistentFlags().String("log-level", "info", "log level (debug|info|warn|error)")
	RootCmd.PersistentFlags().String("log-format", "text", "log format (text|json)")

	viper.BindPFlag("data_dir", RootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("secrets", RootCmd.PersistentFlags().Lookup("secrets"))
	viper.BindPFlag("providers", RootCmd.PersistentFlags().Lookup("providers"))
	viper.BindPFlag("pricing", RootCmd.PersistentFlags().Lookup("pricing"))
	viper.BindPFlag("log_level", RootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", RootCmd.PersistentFlags().Lookup("log-format"))
	viper.SetDefault("include_own_pr_comments", true)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".workrecap")
	}

	viper.SetEnvPrefix("WORKRECAP")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "using config file:", viper.ConfigFileUsed())
	}

	logging.Configure(viper.GetString("log_level"), viper.GetString("log_format"))
}

// resolvedDataDir returns the effective data directory: the --data-dir flag
// if set, else the runtime env default.
func resolvedDataDir() string {
	if v := viper.GetString("data_dir"); v != "" {
		return v
	}
	return config.LoadRuntimeConfig().DataDir
}
