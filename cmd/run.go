package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/trellotodo/pkg/auth"
	"github.com/harrisonrobin/trellotodo/pkg/board"
	"github.com/harrisonrobin/trellotodo/pkg/config"
	"github.com/harrisonrobin/trellotodo/pkg/google"
	"github.com/harrisonrobin/trellotodo/pkg/history"
	"github.com/harrisonrobin/trellotodo/pkg/logging"
	"github.com/harrisonrobin/trellotodo/pkg/reconcile"
	"github.com/harrisonrobin/trellotodo/pkg/util"
)

// historyDays is how many days of runs the journal keeps.
const historyDays = 60

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Archive yesterday's cards and fill today's to-do list",
		Args:  cobra.NoArgs,
		RunE:  runE,
	}
}

// runE is shared by run and the bare root command.
func runE(cmd *cobra.Command, args []string) error {
	cfg, logger, closer, err := setup()
	defer closer.Close()
	if err != nil {
		return err
	}

	if err := runDaily(cmd.Context(), cfg, logger, newDaily(cfg, logger)); err != nil {
		logger.Error("error during main processing", logging.Err(err))
		return err
	}
	logger.Info("TODO list updated successfully")
	return nil
}

// daily holds the services one reconciliation pass talks to.
type daily struct {
	journalPath string
	titles      func(ctx context.Context) []string
	connect     func(ctx context.Context) (*board.Session, error)
	now         func() time.Time
}

func newDaily(cfg *config.Config, logger *slog.Logger) daily {
	store := auth.NewStore(cfg.Google.TokenFile, cfg.Google.CredentialsFile, logger)
	fetcher := google.NewClient(store, cfg.Google, logger)
	return daily{
		journalPath: historyPath(),
		titles:      fetcher.TodaysTitles,
		connect: func(ctx context.Context) (*board.Session, error) {
			return board.NewSession(ctx, cfg.Trello, logger)
		},
		now: time.Now,
	}
}

func runDaily(ctx context.Context, cfg *config.Config, logger *slog.Logger, d daily) error {
	now := d.now()
	today := util.DateOf(now)

	journal, err := history.Open(d.journalPath)
	if err != nil {
		logger.Warn("could not open run history", logging.Err(err))
	} else if prev, ok := journal.Get(today); ok {
		logger.Warn("already reconciled today, cards will be archived and added again",
			slog.Time("previous_run", prev.At))
	}

	// Calendar first: an authorization prompt must not leave the board half done.
	titles := d.titles(ctx)

	session, err := d.connect(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to Trello: %w", err)
	}

	rec := reconcile.New(session.Todo(), session.Done(), cfg.Routine, logger)
	rec.Now = d.now
	res, err := rec.Run(ctx, titles)
	if err != nil {
		return fmt.Errorf("daily reconciliation failed: %w", err)
	}

	if journal != nil {
		journal.Record(today, history.Run{
			At:           now,
			Day:          res.Day,
			DoneArchived: res.DoneArchived,
			Everyday:     res.Everyday,
			Weekday:      res.Weekday,
			Calendar:     res.Calendar,
		})
		journal.Prune(historyDays)
		if err := journal.Save(); err != nil {
			logger.Warn("could not save run history", logging.Err(err))
		}
	}
	return nil
}
