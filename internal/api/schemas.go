package api

import (
	"net/url"
	"time"

	"github.com/videoprep/videoprep-server/internal/catalog"
	"github.com/videoprep/videoprep-server/internal/export"
	"github.com/videoprep/videoprep-server/internal/media"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type StatusResponse struct {
	Capabilities   media.Capabilities `json:"capabilities"`
	EncoderReady   bool               `json:"encoder_ready"`
	ProberReady    bool               `json:"prober_ready"`
	ClipsCount     int                `json:"clips_count"`
	MaxUploadBytes int64              `json:"max_upload_bytes"`
}

type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// UploadResponse keeps the field names the browser client expects.
type UploadResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Path       string     `json:"path"`
	Thumbnail  *string    `json:"thumbnail"`
	Duration   float64    `json:"duration"`
	FPS        float64    `json:"fps"`
	Resolution Resolution `json:"resolution"`
}

// ExportRequest uses pointers so an absent field can be told apart from an
// empty one.
type ExportRequest struct {
	Videos         *[]export.Item   `json:"videos"`
	GlobalSettings *export.Settings `json:"globalSettings"`
	OutputPath     string           `json:"outputPath"`
}

type ExportResponse struct {
	Results []export.Result `json:"results"`
}

type ProgressResponse struct {
	Progress int    `json:"progress"`
	Status   string `json:"status"`
}

type ClipResponse struct {
	ID           string     `json:"id"`
	OriginalName string     `json:"original_name"`
	Path         string     `json:"path"`
	ContentType  string     `json:"content_type"`
	Size         int64      `json:"size"`
	Duration     float64    `json:"duration"`
	FPS          float64    `json:"fps"`
	Resolution   Resolution `json:"resolution"`
	Probed       bool       `json:"probed"`
	Thumbnail    *string    `json:"thumbnail"`
	CreatedAt    string     `json:"created_at"`
}

type ClipsResponse struct {
	Clips []ClipResponse `json:"clips"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ThumbnailURL is the route under which a stored thumbnail is served.
func ThumbnailURL(name string) *string {
	if name == "" {
		return nil
	}
	u := "/api/thumbnail/" + url.PathEscape(name)
	return &u
}

func ClipToUploadResponse(c *catalog.StoredClip) UploadResponse {
	return UploadResponse{
		ID:         c.ID,
		Name:       c.OriginalName,
		Path:       c.Path,
		Thumbnail:  ThumbnailURL(c.Thumbnail),
		Duration:   c.Metadata.Duration,
		FPS:        c.Metadata.FPS,
		Resolution: Resolution{Width: c.Metadata.Width, Height: c.Metadata.Height},
	}
}

func ClipToResponse(c *catalog.StoredClip) ClipResponse {
	return ClipResponse{
		ID:           c.ID,
		OriginalName: c.OriginalName,
		Path:         c.Path,
		ContentType:  c.ContentType,
		Size:         c.Size,
		Duration:     c.Metadata.Duration,
		FPS:          c.Metadata.FPS,
		Resolution:   Resolution{Width: c.Metadata.Width, Height: c.Metadata.Height},
		Probed:       c.Probed,
		Thumbnail:    ThumbnailURL(c.Thumbnail),
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
	}
}
