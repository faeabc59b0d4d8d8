package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Fixed encode settings for exported clips.
const (
	VideoCodec   = "libx264"
	EncodePreset = "fast"
	EncodeCRF    = 23
)

// Transcoder produces trimmed, frame-rate-resampled, audio-less H.264 files.
type Transcoder struct {
	caps    Capabilities
	timeout time.Duration // zero means no limit
	logger  *slog.Logger
}

func NewTranscoder(caps Capabilities, timeout time.Duration, logger *slog.Logger) *Transcoder {
	return &Transcoder{caps: caps, timeout: timeout, logger: logger}
}

// BuildTranscodeArgs returns the ffmpeg argument list for job.
func BuildTranscodeArgs(job TranscodeJob) []string {
	return []string{
		"-hide_banner", "-nostdin", "-y",
		"-ss", formatSeconds(job.Start),
		"-i", job.Source,
		"-t", formatSeconds(job.Duration),
		"-r", strconv.Itoa(job.FPS),
		"-an",
		"-c:v", VideoCodec,
		"-preset", EncodePreset,
		"-crf", strconv.Itoa(EncodeCRF),
		job.Destination,
	}
}

// Transcode runs job to completion. Failures wrap ErrEncodeFailed and carry
// the tail of ffmpeg's stderr. A partially written destination is left for
// the caller to clean up.
func (t *Transcoder) Transcode(ctx context.Context, job TranscodeJob) error {
	if !t.caps.EncoderAvailable() {
		return ErrEncoderUnavailable
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	t.logger.Info("transcoding clip",
		"start", job.Start,
		"duration", job.Duration,
		"fps", job.FPS,
	)

	res, err := run(ctx, t.logger, t.caps.FFmpegPath, false, BuildTranscodeArgs(job)...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: timed out after %s", ErrEncodeFailed, t.timeout)
		}
		tail := strings.TrimSpace(truncate(res.StderrTail, 1024))
		return fmt.Errorf("%w: %w: %s", ErrEncodeFailed, err, tail)
	}

	t.logger.Info("transcode complete", "duration_ms", res.Duration.Milliseconds())
	return nil
}
