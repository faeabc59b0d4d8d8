package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Thumbnailer grabs a single JPEG frame from a clip.
type Thumbnailer struct {
	caps   Capabilities
	logger *slog.Logger
}

func NewThumbnailer(caps Capabilities, logger *slog.Logger) *Thumbnailer {
	return &Thumbnailer{caps: caps, logger: logger}
}

// Extract writes one frame taken at offset seconds into src to dst. Every
// failure wraps ErrThumbnailFailed.
func (t *Thumbnailer) Extract(ctx context.Context, src, dst string, offset float64) error {
	if !t.caps.ThumbnailsAvailable() {
		return fmt.Errorf("%w: %w", ErrThumbnailFailed, ErrEncoderUnavailable)
	}
	if offset < 0 {
		offset = 0
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("%w: create thumbnail dir: %w", ErrThumbnailFailed, err)
	}

	res, err := run(ctx, t.logger, t.caps.FFmpegPath, false,
		"-hide_banner", "-nostdin", "-y",
		"-ss", formatSeconds(offset),
		"-i", src,
		"-frames:v", "1",
		"-q:v", "2",
		dst,
	)
	if err != nil {
		os.Remove(dst)
		return fmt.Errorf("%w: %w: %s", ErrThumbnailFailed, err, strings.TrimSpace(res.StderrTail))
	}

	// ffmpeg exits 0 without writing a frame when seeking past the end.
	info, err := os.Stat(dst)
	if err != nil || info.Size() == 0 {
		os.Remove(dst)
		return fmt.Errorf("%w: no frame written at %ss", ErrThumbnailFailed, formatSeconds(offset))
	}

	return nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
