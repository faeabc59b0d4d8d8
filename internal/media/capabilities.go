package media

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

const detectTimeout = 10 * time.Second

// Capabilities records which media tools were usable when the process
// started. It is detected once and then passed by value; nothing refreshes it.
type Capabilities struct {
	FFmpegPath     string    `json:"ffmpeg_path,omitempty"`
	FFprobePath    string    `json:"ffprobe_path,omitempty"`
	FFmpegVersion  string    `json:"ffmpeg_version,omitempty"`
	FFprobeVersion string    `json:"ffprobe_version,omitempty"`
	HasFFmpeg      bool      `json:"has_ffmpeg"`
	HasFFprobe     bool      `json:"has_ffprobe"`
	HasH264        bool      `json:"has_h264"`
	DetectedAt     time.Time `json:"detected_at"`
}

// EncoderAvailable reports whether exports can run.
func (c Capabilities) EncoderAvailable() bool {
	return c.HasFFmpeg && c.HasH264
}

// ProberAvailable reports whether metadata probing can run.
func (c Capabilities) ProberAvailable() bool {
	return c.HasFFprobe
}

// ThumbnailsAvailable reports whether single-frame extraction can run.
func (c Capabilities) ThumbnailsAvailable() bool {
	return c.HasFFmpeg
}

// Detect resolves ffmpeg and ffprobe (names or paths) and records their
// versions. Missing tools are not an error; they show up as false flags.
func Detect(ctx context.Context, ffmpeg, ffprobe string, logger *slog.Logger) Capabilities {
	ctx, cancel := context.WithTimeout(ctx, detectTimeout)
	defer cancel()

	caps := Capabilities{DetectedAt: time.Now()}

	if path, err := exec.LookPath(defaultString(ffmpeg, "ffmpeg")); err == nil {
		caps.FFmpegPath = path
		if res, err := run(ctx, logger, path, true, "-version"); err == nil {
			caps.HasFFmpeg = true
			caps.FFmpegVersion = firstLine(res.Stdout)
		}
		if caps.HasFFmpeg {
			if res, err := run(ctx, logger, path, true, "-hide_banner", "-encoders"); err == nil {
				caps.HasH264 = strings.Contains(string(res.Stdout), "libx264")
			}
		}
	}

	if path, err := exec.LookPath(defaultString(ffprobe, "ffprobe")); err == nil {
		caps.FFprobePath = path
		if res, err := run(ctx, logger, path, true, "-version"); err == nil {
			caps.HasFFprobe = true
			caps.FFprobeVersion = firstLine(res.Stdout)
		}
	}

	switch {
	case !caps.HasFFmpeg:
		logger.Warn("ffmpeg not found; thumbnails and exports are disabled",
			"hint", "install ffmpeg (apt install ffmpeg, brew install ffmpeg) or set VIDEOPREP_FFMPEG_PATH")
	case !caps.HasH264:
		logger.Warn("ffmpeg has no libx264 encoder; exports are disabled", "ffmpeg", caps.FFmpegPath)
	}
	if !caps.HasFFprobe {
		logger.Warn("ffprobe not found; uploads will use default metadata",
			"hint", "ffprobe ships with ffmpeg; or set VIDEOPREP_FFPROBE_PATH")
	}

	logger.Info("media capabilities detected",
		"ffmpeg", caps.HasFFmpeg,
		"ffprobe", caps.HasFFprobe,
		"h264", caps.HasH264,
	)

	return caps
}

func firstLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func defaultString(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
