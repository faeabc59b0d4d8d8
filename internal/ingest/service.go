package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/videoprep/videoprep-server/internal/catalog"
	"github.com/videoprep/videoprep-server/internal/logging"
)

// MetadataProber extracts playback metadata from a stored clip.
type MetadataProber interface {
	Probe(ctx context.Context, path string) (*catalog.ClipMetadata, error)
}

// FrameExtractor writes a single-frame JPEG.
type FrameExtractor interface {
	Extract(ctx context.Context, src, dst string, offset float64) error
}

// Service runs the upload flow: store, probe, thumbnail, record.
type Service struct {
	assigner     *Assigner
	prober       MetadataProber
	thumbnailer  FrameExtractor
	repo         catalog.Repository
	thumbnailDir string
	logger       *slog.Logger
}

func NewService(assigner *Assigner, prober MetadataProber, thumbnailer FrameExtractor,
	repo catalog.Repository, thumbnailDir string, logger *slog.Logger) *Service {
	return &Service{
		assigner:     assigner,
		prober:       prober,
		thumbnailer:  thumbnailer,
		repo:         repo,
		thumbnailDir: thumbnailDir,
		logger:       logger,
	}
}

// ThumbnailName is the file name under which a clip's thumbnail is stored.
func ThumbnailName(clipID string) string {
	return clipID + ".jpg"
}

// Ingest stores the upload and then enriches it. Probe and thumbnail
// failures are logged and degrade to default metadata and an empty
// thumbnail; only storage and catalog errors are returned, and then no
// files are left behind.
func (s *Service) Ingest(ctx context.Context, up Upload) (*catalog.StoredClip, error) {
	clip, err := s.assigner.Store(ctx, up)
	if err != nil {
		return nil, err
	}

	logger := logging.WithClipID(s.logger, clip.ID)

	meta, err := s.prober.Probe(ctx, clip.Path)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.discard(logger, clip)
			return nil, err
		}
		logger.Warn("metadata probe failed, using defaults", "error", err)
		clip.Metadata = catalog.DefaultMetadata()
	} else {
		clip.Metadata = *meta
		clip.Probed = true
	}

	thumb := ThumbnailName(clip.ID)
	if err := s.thumbnailer.Extract(ctx, clip.Path, filepath.Join(s.thumbnailDir, thumb), 0); err != nil {
		logger.Warn("thumbnail extraction failed", "error", err)
	} else {
		clip.Thumbnail = thumb
	}

	if s.repo != nil {
		if err := s.repo.CreateClip(ctx, clip); err != nil {
			s.discard(logger, clip)
			return nil, fmt.Errorf("record clip: %w", err)
		}
	}

	logger.Info("clip ingested",
		"probed", clip.Probed,
		"duration", clip.Metadata.Duration,
		"fps", clip.Metadata.FPS,
		"thumbnail", clip.Thumbnail != "",
	)

	return clip, nil
}

// discard removes the files of a clip that will not be recorded.
func (s *Service) discard(logger *slog.Logger, clip *catalog.StoredClip) {
	paths := []string{clip.Path}
	if clip.Thumbnail != "" {
		paths = append(paths, filepath.Join(s.thumbnailDir, clip.Thumbnail))
	}
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("failed to remove unrecorded clip file", "path", logging.SanitizePath(p), "error", err)
		}
	}
}
