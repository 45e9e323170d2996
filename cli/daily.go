package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	dailyTypes  []string
	dailyEnrich bool
)

var dailyCmd = &cobra.Command{
	Use:   "daily [date]",
	Short: "Run the fetch -> normalize -> summarize pipeline for one date (YYYY-MM-DD)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		return a.orchestrator.RunDaily(context.Background(), args[0], dailyTypes, dailyEnrich)
	},
}

func init() {
	dailyCmd.Flags().StringSliceVar(&dailyTypes, "types", nil, "entity types to fetch (prs,commits,issues); default all")
	dailyCmd.Flags().BoolVar(&dailyEnrich, "enrich", false, "enrich activities via the LLM router before summarizing")
	RootCmd.AddCommand(dailyCmd)
}
