package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/trellotodo/pkg/auth"
	"github.com/harrisonrobin/trellotodo/pkg/logging"
)

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Discard the cached Google token and authorize again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closer, err := setup()
			defer closer.Close()
			if err != nil {
				return err
			}

			store := auth.NewStore(cfg.Google.TokenFile, cfg.Google.CredentialsFile, logger)
			store.Out = cmd.OutOrStdout()
			if err := store.Reset(); err != nil {
				return err
			}
			logger.Info("removed cached token", logging.Path(cfg.Google.TokenFile))

			if _, err := store.Acquire(cmd.Context()); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			logger.Info("authentication successful", logging.Path(cfg.Google.TokenFile))
			return nil
		},
	}
}
