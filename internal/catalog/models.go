package catalog

import (
	"strings"
	"time"
)

// Default metadata substituted when a clip cannot be probed.
const (
	DefaultDuration = 30.0
	DefaultFPS      = 30.0
	DefaultWidth    = 1920
	DefaultHeight   = 1080
)

// StoredClip is one uploaded video persisted under the upload directory.
// ID is the generated unique name joined to the original file name and is
// also the on-disk file name.
type StoredClip struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"original_name"`
	Path         string    `json:"path"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`

	Metadata  ClipMetadata `json:"metadata"`
	Probed    bool         `json:"probed"`
	Thumbnail string       `json:"thumbnail,omitempty"`
}

// ClipMetadata is the playback metadata extracted from a stored clip.
type ClipMetadata struct {
	Duration float64 `json:"duration"`
	FPS      float64 `json:"fps"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
}

// DefaultMetadata returns the triple used when probing is unavailable or fails.
func DefaultMetadata() ClipMetadata {
	return ClipMetadata{
		Duration: DefaultDuration,
		FPS:      DefaultFPS,
		Width:    DefaultWidth,
		Height:   DefaultHeight,
	}
}

// IsVideoContentType reports whether a declared MIME type belongs to the
// video family.
func IsVideoContentType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "video/")
}
