// Command tokenpurge deletes stale credential cache files so the next
// trellotodo run asks for authorization again.
//
// Without arguments it removes the token cache named in the trellotodo
// config (or the default location). Paths given on the command line
// replace that list. It always exits 0; every outcome is logged.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/trellotodo/pkg/config"
	"github.com/harrisonrobin/trellotodo/pkg/logging"
	"github.com/harrisonrobin/trellotodo/pkg/purge"
)

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:          "tokenpurge [path...]",
		Short:        "Delete cached credential files",
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			logger, closer, err := logging.Setup(filepath.Join(config.StateDir(), "file_deletion.log"), "info")
			if err != nil {
				logger = slog.Default()
				logger.Warn("logging to stderr only", logging.Err(err))
			} else {
				defer closer.Close()
			}

			purge.Purge(targets(configPath, args, logger), logger)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "trellotodo config.ini used to find the token cache")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func targets(configPath string, args []string, logger *slog.Logger) []string {
	if len(args) > 0 {
		return args
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Debug("config unavailable, using default token path", logging.Err(err))
		return []string{config.DefaultTokenFile()}
	}
	return []string{cfg.Google.TokenFile}
}
