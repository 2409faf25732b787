package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tunesyncd",
		Short:         "Music catalog sync service",
		Long:          "tunesyncd reconciles a local song catalog against an external music catalog,\nstreaming sync progress to operators and queuing ambiguous matches for review.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env if present, ignore errors.
			_ = godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newAPIKeyCommand())

	return rootCmd
}
