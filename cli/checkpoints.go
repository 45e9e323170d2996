package cli

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/yongseopkim/workrecap/config"
	"github.com/yongseopkim/workrecap/layout"
	"github.com/yongseopkim/workrecap/model"
	"github.com/yongseopkim/workrecap/state"
)

var checkpointsCmd = &cobra.Command{
	Use:   "checkpoints",
	Short: "Show per-stage checkpoints and dates that have exhausted their retries",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir := resolvedDataDir()
		tree := layout.New(dataDir)
		runtime := config.LoadRuntimeConfig()

		cp, err := state.NewCheckpointStore(tree.Checkpoints()).Get()
		if err != nil {
			return fmt.Errorf("read checkpoints: %w", err)
		}
		printCheckpoints(cp)

		failed := state.NewFailedDateStore(tree.FailedDates())
		exhausted, err := failed.ExhaustedDates(runtime.RetryCap)
		if err != nil {
			return fmt.Errorf("read failed dates: %w", err)
		}
		return printExhausted(failed, exhausted)
	},
}

func init() {
	RootCmd.AddCommand(checkpointsCmd)
}

func printCheckpoints(cp model.Checkpoint) {
	fmt.Println("Checkpoints:")
	stages := []model.StageName{model.StageFetch, model.StageNormalize, model.StageSummarize}
	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	for _, stage := range stages {
		date := cp[stage]
		if date == "" {
			date = "(none)"
		}
		fmt.Fprintf(w, "  %s\t%s\n", stage, date)
	}
	w.Flush()
}

// printExhausted renders the dates that have given up retrying, per the
// exhausted-date report: a table of date, phase, classification, attempts,
// last error, and how long ago the failure first started.
func printExhausted(store *state.FailedDateStore, dates []string) error {
	fmt.Println("\nExhausted dates:")
	if len(dates) == 0 {
		fmt.Println("  (none)")
		return nil
	}
	sort.Strings(dates)

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "  DATE\tPHASE\tCLASS\tATTEMPTS\tSINCE\tLAST ERROR")
	for _, date := range dates {
		entry, ok, err := store.Entry(date)
		if err != nil {
			return fmt.Errorf("read failed date %s: %w", date, err)
		}
		if !ok {
			continue
		}
		since := humanize.Time(entry.FirstFailureAt)
		fmt.Fprintf(w, "  %s\t%s\t%s\t%d\t%s\t%s\n",
			date, entry.Phase, entry.ClassifiedAs, entry.AttemptCount, since, entry.LastError)
	}
	return w.Flush()
}
