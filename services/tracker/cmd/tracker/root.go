package main

import (
	"github.com/spf13/cobra"

	platformconfig "github.com/example/vocab-tracker/internal/platform/config"
)

func newRootCmd() *cobra.Command {
	var envFile string
	cmd := &cobra.Command{
		Use:           "tracker",
		Short:         "Vocabulary practice tracker",
		Long:          "tracker records flashcard responses locally, keeps per-word mastery\nand delivers the response history to a remote collector in batches.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return platformconfig.LoadDotEnv(envFile)
		},
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	cmd.AddCommand(
		newServeCmd(),
		newPracticeCmd(),
		newFlushCmd(),
		newExportCmd(),
		newImportCmd(),
		newStatsCmd(),
	)
	return cmd
}
