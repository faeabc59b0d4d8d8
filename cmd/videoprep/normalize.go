package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/videoprep/videoprep-server/internal/export"
)

func newNormalizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <path>",
		Short: "Show where an export output path resolves on this host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), export.NormalizeOutputDir(args[0]))
			return nil
		},
	}
}
