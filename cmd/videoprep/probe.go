package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/videoprep/videoprep-server/internal/catalog"
	"github.com/videoprep/videoprep-server/internal/config"
	"github.com/videoprep/videoprep-server/internal/media"
)

func newProbeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "probe <file>",
		Short: "Print the playback metadata the server would record for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			info, err := os.Stat(path)
			if err != nil {
				return err
			}

			cfg, err := config.New()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			logger := cliLogger()
			caps := media.Detect(cmd.Context(), cfg.FFmpegPath(), cfg.FFprobePath(), logger)

			meta, err := media.NewProber(caps, logger).Probe(cmd.Context(), path)
			source := "ffprobe"
			if err != nil {
				logger.Warn("probe failed, showing defaults", "error", err)
				d := catalog.DefaultMetadata()
				meta = &d
				source = "defaults"
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderMetadata(path, info.Size(), *meta, source))
			return nil
		},
	}
}

func renderMetadata(path string, size int64, meta catalog.ClipMetadata, source string) string {
	rows := [][]string{
		{"File", path},
		{"Size", humanize.IBytes(uint64(size))},
		{"Duration", strconv.FormatFloat(meta.Duration, 'f', 3, 64) + "s"},
		{"FPS", strconv.FormatFloat(meta.FPS, 'f', 3, 64)},
		{"Resolution", fmt.Sprintf("%dx%d", meta.Width, meta.Height)},
		{"Source", source},
	}
	return renderTable([]string{"Field", "Value"}, rows, nil)
}
