package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/videoprep/videoprep-server/internal/config"
	"github.com/videoprep/videoprep-server/internal/media"
)

var errEncoderMissing = errors.New("ffmpeg with libx264 is required for exports")

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Detect ffmpeg and ffprobe and report what is available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			caps := media.Detect(cmd.Context(), cfg.FFmpegPath(), cfg.FFprobePath(), cliLogger())
			fmt.Fprintln(cmd.OutOrStdout(), renderCapabilities(caps))

			if !caps.EncoderAvailable() {
				return errEncoderMissing
			}
			return nil
		},
	}
}

func renderCapabilities(caps media.Capabilities) string {
	rows := [][]string{
		{"ffmpeg", availability(caps.HasFFmpeg), orDash(caps.FFmpegPath), orDash(caps.FFmpegVersion)},
		{"ffprobe", availability(caps.HasFFprobe), orDash(caps.FFprobePath), orDash(caps.FFprobeVersion)},
		{"libx264", availability(caps.HasH264), "-", "-"},
	}
	return renderTable([]string{"Tool", "Status", "Path", "Version"}, rows, nil)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
