package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/trellotodo/pkg/auth"
	"github.com/harrisonrobin/trellotodo/pkg/google"
	"github.com/harrisonrobin/trellotodo/pkg/logging"
	"github.com/harrisonrobin/trellotodo/pkg/model"
	"github.com/harrisonrobin/trellotodo/pkg/routine"
)

func newPlanCmd() *cobra.Command {
	var skipCalendar bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the cards today's run would add, without touching the board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closer, err := setup()
			defer closer.Close()
			if err != nil {
				return err
			}

			day := routine.Abbrev(time.Now())
			weekday, err := cfg.Routine.ForDay(day)
			if err != nil {
				logger.Warn("could not look up weekday tasks", logging.Day(day), logging.Err(err))
			}

			var events []string
			if !skipCalendar {
				store := auth.NewStore(cfg.Google.TokenFile, cfg.Google.CredentialsFile, logger)
				events = google.NewClient(store, cfg.Google, logger).TodaysTitles(cmd.Context())
			}

			out := cmd.OutOrStdout()
			for _, card := range model.Plan(cfg.Routine.Everyday, weekday, events) {
				fmt.Fprintf(out, "%-9s %s\n", card.Source, card.Title)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipCalendar, "skip-calendar", false, "do not query Google Calendar")
	return cmd
}
