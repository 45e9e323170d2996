package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var queryMonthsBack int

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Answer a question against the most recent monthly/weekly/daily summaries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.summariser.Close()

		answer, err := a.summariser.Query(context.Background(), args[0], queryMonthsBack)
		if err != nil {
			return err
		}
		fmt.Println(answer)
		return nil
	},
}

func init() {
	queryCmd.Flags().IntVar(&queryMonthsBack, "months-back", 3, "how many months of summaries to use as context")
	RootCmd.AddCommand(queryCmd)
}
