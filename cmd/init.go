package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/trellotodo/pkg/config"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a config.ini skeleton",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				path = config.GetConfigPath()
			}
			if err := config.WriteTemplate(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s. Fill in the [login] section and the list names.\n", path)
			return nil
		},
	}
}
