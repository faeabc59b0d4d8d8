package media

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/videoprep/videoprep-server/internal/catalog"
)

// probeOutput is the subset of `ffprobe -print_format json` we decode.
type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	RFrameRate string `json:"r_frame_rate"`
	Duration   string `json:"duration"`
}

type probeFormat struct {
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// Prober extracts playback metadata with ffprobe.
type Prober struct {
	caps   Capabilities
	logger *slog.Logger
}

func NewProber(caps Capabilities, logger *slog.Logger) *Prober {
	return &Prober{caps: caps, logger: logger}
}

// Probe inspects the clip at path. Callers substitute
// catalog.DefaultMetadata() on any error.
func (p *Prober) Probe(ctx context.Context, path string) (*catalog.ClipMetadata, error) {
	if !p.caps.ProberAvailable() {
		return nil, ErrProbeUnavailable
	}

	res, err := run(ctx, p.logger, p.caps.FFprobePath, true,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		"--", path,
	)
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w: %s", path, err, strings.TrimSpace(res.StderrTail))
	}

	return ParseProbeJSON(res.Stdout)
}

// ParseProbeJSON turns raw ffprobe JSON into clip metadata using the first
// video stream.
func ParseProbeJSON(data []byte) (*catalog.ClipMetadata, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	var video *probeStream
	for i := range out.Streams {
		if out.Streams[i].CodecType == "video" {
			video = &out.Streams[i]
			break
		}
	}
	if video == nil {
		return nil, ErrNoVideoStream
	}

	duration, ok := parsePositive(out.Format.Duration)
	if !ok {
		duration, ok = parsePositive(video.Duration)
	}
	if !ok {
		duration = catalog.DefaultDuration
	}

	return &catalog.ClipMetadata{
		Duration: duration,
		FPS:      ParseFrameRate(video.RFrameRate),
		Width:    max(video.Width, 0),
		Height:   max(video.Height, 0),
	}, nil
}

// ParseFrameRate converts an ffprobe rational such as "30000/1001" (or a
// plain number) to frames per second. Anything malformed, zero, negative or
// non-finite yields catalog.DefaultFPS.
func ParseFrameRate(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return catalog.DefaultFPS
	}

	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return catalog.DefaultFPS
	}
	d := 1.0
	if found {
		d, err = strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err != nil || d == 0 {
			return catalog.DefaultFPS
		}
	}

	fps := n / d
	if math.IsNaN(fps) || math.IsInf(fps, 0) || fps <= 0 {
		return catalog.DefaultFPS
	}
	return fps
}

func parsePositive(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}
