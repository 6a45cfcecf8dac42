package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/trellotodo/pkg/config"
	"github.com/harrisonrobin/trellotodo/pkg/logging"
)

var configPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "trellotodo",
	Short: "Resets a Trello to-do list every day from a routine and Google Calendar",
	Long: `trellotodo archives yesterday's cards on a Trello board and fills the
to-do list with your everyday tasks, the tasks of the current weekday and
today's Google Calendar events.

Running it without a subcommand performs one reconciliation pass.`,
	Args:          cobra.NoArgs,
	RunE:          runE,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var version = "dev"

func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute runs the CLI and exits with status 1 on any error.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "trellotodo version %s\n" .Version}}`)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.ini (default "+config.GetConfigPath()+")")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newPlanCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newInitCmd())
}

// setup loads the configuration and opens the log file. The closer is
// never nil.
func setup() (*config.Config, *slog.Logger, io.Closer, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load configuration", logging.Err(err))
		return nil, nil, io.NopCloser(nil), err
	}

	logger, closer, err := logging.Setup(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return nil, nil, io.NopCloser(nil), err
	}
	return cfg, logger, closer, nil
}

func historyPath() string {
	return filepath.Join(config.StateDir(), "history.json")
}
