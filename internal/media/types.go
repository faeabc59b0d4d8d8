// Package media wraps the ffmpeg and ffprobe executables: capability
// detection, metadata probing, single-frame thumbnails and trimmed H.264
// transcodes.
package media

import (
	"errors"
	"time"
)

var (
	ErrProbeUnavailable   = errors.New("metadata prober unavailable")
	ErrNoVideoStream      = errors.New("no video stream found")
	ErrThumbnailFailed    = errors.New("thumbnail extraction failed")
	ErrEncoderUnavailable = errors.New("video encoder unavailable")
	ErrEncodeFailed       = errors.New("encode failed")
)

// TranscodeJob describes one trimmed, re-encoded output.
type TranscodeJob struct {
	Source      string
	Destination string
	Start       float64 // seconds
	Duration    float64 // seconds
	FPS         int
}

// RunResult is the structured outcome of executing a media tool.
type RunResult struct {
	ExitCode   int
	Stdout     []byte
	StderrTail string // last N bytes of stderr
	Duration   time.Duration
}

func (r RunResult) IsSuccess() bool { return r.ExitCode == 0 }
