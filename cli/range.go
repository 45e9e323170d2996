package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yongseopkim/workrecap/orchestrator"
)

var (
	rangeTypes      []string
	rangeForce      bool
	rangeBatch      bool
	rangeEnrich     bool
	rangeWeekly     bool
	rangeMonthly    bool
	rangeYearly     bool
	rangeMaxWorkers int
)

var rangeCmd = &cobra.Command{
	Use:   "range [since] [until]",
	Short: "Run the pipeline across a date range (YYYY-MM-DD YYYY-MM-DD)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		results, err := a.orchestrator.RunRange(context.Background(), orchestrator.RangeOptions{
			Since:      args[0],
			Until:      args[1],
			Types:      rangeTypes,
			Force:      rangeForce,
			MaxWorkers: rangeMaxWorkers,
			Batch:      rangeBatch,
			Enrich:     rangeEnrich,
			Weekly:     rangeWeekly,
			Monthly:    rangeMonthly,
			Yearly:     rangeYearly,
		})
		if err != nil {
			return err
		}
		for _, r := range results {
			if r.Error != "" {
				fmt.Printf("%s: %s (%s)\n", r.Date, r.Status, r.Error)
			} else {
				fmt.Printf("%s: %s\n", r.Date, r.Status)
			}
		}
		return nil
	},
}

func init() {
	rangeCmd.Flags().StringSliceVar(&rangeTypes, "types", nil, "entity types to fetch (prs,commits,issues); default all")
	rangeCmd.Flags().BoolVar(&rangeForce, "force", false, "reprocess every date, ignoring staleness/retry state")
	rangeCmd.Flags().BoolVar(&rangeBatch, "batch", false, "submit LLM work as a single provider batch instead of per-date calls")
	rangeCmd.Flags().BoolVar(&rangeEnrich, "enrich", false, "enrich activities via the LLM router during normalization")
	rangeCmd.Flags().BoolVar(&rangeWeekly, "weekly", false, "also render weekly summaries covering the range")
	rangeCmd.Flags().BoolVar(&rangeMonthly, "monthly", false, "also render monthly summaries covering the range (implies --weekly)")
	rangeCmd.Flags().BoolVar(&rangeYearly, "yearly", false, "also render yearly summaries covering the range (implies --monthly and --weekly)")
	rangeCmd.Flags().IntVar(&rangeMaxWorkers, "max-workers", 0, "stored in RangeOptions.MaxWorkers; the stage services keep the worker pool size they were built with")
	RootCmd.AddCommand(rangeCmd)
}
