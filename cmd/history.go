package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/trellotodo/pkg/history"
)

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List recorded reconciliation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, err := history.Open(historyPath())
			if err != nil {
				return fmt.Errorf("failed to open run history: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tDAY\tDONE ARCHIVED\tEVERYDAY\tWEEKDAY\tCALENDAR")
			for _, date := range journal.Dates() {
				run, _ := journal.Get(date)
				fmt.Fprintf(w, "%s\t%s\t%t\t%d\t%d\t%d\n", date, run.Day, run.DoneArchived, run.Everyday, run.Weekday, run.Calendar)
			}
			return w.Flush()
		},
	}
}
