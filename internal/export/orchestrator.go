package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/videoprep/videoprep-server/internal/logging"
	"github.com/videoprep/videoprep-server/internal/media"
)

// Encoder runs one transcode job.
type Encoder interface {
	Transcode(ctx context.Context, job media.TranscodeJob) error
}

// Orchestrator drives one transcode per batch item and collects a result
// for each.
type Orchestrator struct {
	encoder Encoder
	caps    media.Capabilities
	lockDir string
	logger  *slog.Logger
}

func NewOrchestrator(encoder Encoder, caps media.Capabilities, lockDir string, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		encoder: encoder,
		caps:    caps,
		lockDir: lockDir,
		logger:  logger,
	}
}

// Export processes b.Items in order. It returns an error only for whole-batch
// failures; per-item failures are reported in the matching Result and never
// stop later items.
func (o *Orchestrator) Export(ctx context.Context, b Batch) ([]Result, error) {
	if !o.caps.EncoderAvailable() {
		return nil, media.ErrEncoderUnavailable
	}
	if err := b.Settings.Validate(); err != nil {
		return nil, err
	}

	results := make([]Result, len(b.Items))
	if len(b.Items) == 0 {
		return results, nil
	}

	outDir := NormalizeOutputDir(b.OutputPath)
	if err := ValidateOutputDir(outDir); err != nil {
		return nil, err
	}

	unlock, err := lockDestination(ctx, o.lockDir, outDir)
	if err != nil {
		return nil, err
	}
	defer unlock()

	start := time.Now()
	o.logger.Info("export batch started",
		"items", len(b.Items),
		"output_dir", logging.SanitizePath(outDir),
		"fps", b.Settings.FPS,
		"total_frames", b.Settings.TotalFrames,
	)

	var g errgroup.Group
	g.SetLimit(TranscodeConcurrency)
	for i, item := range b.Items {
		i, item := i, item
		g.Go(func() error {
			results[i] = o.exportItem(ctx, outDir, item, b.Settings)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if !r.Succeeded() {
			failed++
		}
	}
	o.logger.Info("export batch finished",
		"items", len(results),
		"failed", failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return results, nil
}

func (o *Orchestrator) exportItem(ctx context.Context, outDir string, item Item, settings Settings) Result {
	logger := o.logger.With("item_id", item.ID)

	dst, err := o.prepareItem(outDir, item)
	if err != nil {
		logger.Warn("export item rejected", "error", err)
		return Result{ID: item.ID, Status: StatusError, Error: err.Error()}
	}

	// The encoder writes beside dst; dst is only replaced after success.
	part := partialPath(dst)
	job := media.TranscodeJob{
		Source:      item.Path,
		Destination: part,
		Start:       item.StartTime,
		Duration:    settings.Duration(),
		FPS:         settings.FPS,
	}
	if err := o.encoder.Transcode(ctx, job); err != nil {
		removePartial(logger, part)
		logger.Warn("export item failed", "error", err)
		return Result{ID: item.ID, Status: StatusError, Error: err.Error()}
	}
	if err := os.Rename(part, dst); err != nil {
		removePartial(logger, part)
		logger.Warn("export item failed", "error", err)
		return Result{ID: item.ID, Status: StatusError, Error: fmt.Sprintf("finalize output: %v", err)}
	}

	logger.Info("export item completed", "output", logging.SanitizePath(dst))
	return Result{ID: item.ID, Status: StatusCompleted, OutputPath: dst}
}

// prepareItem checks the item and resolves (and creates) its destination
// directory, returning the output file path.
func (o *Orchestrator) prepareItem(outDir string, item Item) (string, error) {
	if item.Path == "" {
		return "", ErrMissingSourcePath
	}
	if _, err := os.Stat(item.Path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrSourceNotFound, item.Path)
	}
	if item.StartTime < 0 {
		return "", fmt.Errorf("%w: %v", ErrInvalidStartTime, item.StartTime)
	}

	dir := outDir
	if item.TagName != "" {
		if err := ValidateTag(item.TagName); err != nil {
			return "", err
		}
		dir = filepath.Join(outDir, item.TagName)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	return filepath.Join(dir, OutputFileName(item.Name, item.Path)), nil
}

// partialPath names the in-progress file for dst. The extension is kept so
// ffmpeg still picks the container from it.
func partialPath(dst string) string {
	dir, base := filepath.Split(dst)
	ext := filepath.Ext(base)
	return filepath.Join(dir, "."+strings.TrimSuffix(base, ext)+".part"+ext)
}

func removePartial(logger *slog.Logger, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to remove partial output", "path", path, "error", err)
	}
}
