// Package export turns a batch of stored clips into trimmed, re-encoded
// files grouped into tag folders under a caller-chosen output directory.
package export

import (
	"errors"
	"fmt"
)

// TranscodeConcurrency is the number of transcodes run at once within a
// batch. Results keep input order for any value.
const TranscodeConcurrency = 1

const (
	MinFPS         = 1
	MaxFPS         = 120
	MinTotalFrames = 1
	MaxTotalFrames = 10000
)

const (
	StatusCompleted = "completed"
	StatusError     = "error"
)

const outputPrefix = "processed_"

var (
	ErrMissingSourcePath = errors.New("video path is missing")
	ErrSourceNotFound    = errors.New("input file not found")
	ErrInvalidTag        = errors.New("invalid tag name")
	ErrInvalidStartTime  = errors.New("start time must not be negative")
	ErrInvalidSettings   = errors.New("invalid export settings")
	ErrMissingOutputPath = errors.New("output path is required")
)

// Item is one clip to export.
type Item struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Path      string  `json:"path"`
	StartTime float64 `json:"startTime"`
	TagName   string  `json:"tagName,omitempty"`
}

// Settings apply to every item in a batch.
type Settings struct {
	FPS         int `json:"fps"`
	TotalFrames int `json:"totalFrames"`
}

// Duration is the per-item clip length in seconds.
func (s Settings) Duration() float64 {
	return float64(s.TotalFrames) / float64(s.FPS)
}

func (s Settings) Validate() error {
	if s.FPS < MinFPS || s.FPS > MaxFPS {
		return fmt.Errorf("%w: fps must be between %d and %d, got %d", ErrInvalidSettings, MinFPS, MaxFPS, s.FPS)
	}
	if s.TotalFrames < MinTotalFrames || s.TotalFrames > MaxTotalFrames {
		return fmt.Errorf("%w: totalFrames must be between %d and %d, got %d",
			ErrInvalidSettings, MinTotalFrames, MaxTotalFrames, s.TotalFrames)
	}
	return nil
}

// Batch is a whole export request.
type Batch struct {
	Items      []Item
	Settings   Settings
	OutputPath string
}

// Result reports the outcome for one item.
type Result struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	OutputPath string `json:"outputPath,omitempty"`
	Error      string `json:"error,omitempty"`
}

func (r Result) Succeeded() bool { return r.Status == StatusCompleted }
