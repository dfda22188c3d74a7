package main

import (
	"github.com/spf13/cobra"

	"symposium/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "symposium",
		Short:         "Symposium event registration backend",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newCatalogCmd())
	return root
}

// loadConfig is shared by every subcommand.
func loadConfig() (*config.Config, error) {
	return config.Load()
}
