package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/videoprep/videoprep-server/internal/config"
	"github.com/videoprep/videoprep-server/internal/logging"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "videoprep",
		Short:         "Video upload, thumbnail and batch export server",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newProbeCommand())
	rootCmd.AddCommand(newNormalizeCommand())

	return rootCmd
}

// cliLogger is used by the one-shot subcommands: warnings only, on stderr.
func cliLogger() *slog.Logger {
	return logging.New(logging.Options{Level: "warn", Format: "text"}, os.Stderr)
}
