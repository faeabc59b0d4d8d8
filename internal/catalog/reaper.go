package catalog

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// Reaper periodically removes uploads and thumbnails older than a fixed TTL
// and drops the matching catalog rows. A file being read by a concurrent
// request may be removed underneath it.
type Reaper struct {
	repo     Repository
	dirs     []string
	ttl      time.Duration
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
	running  atomic.Bool
}

// SweepStats summarises a single sweep.
type SweepStats struct {
	FilesRemoved int
	BytesFreed   int64
	RowsRemoved  int64
}

func NewReaper(repo Repository, dirs []string, ttl, interval time.Duration, logger *slog.Logger) *Reaper {
	return &Reaper{
		repo:     repo,
		dirs:     dirs,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

func (r *Reaper) Start(ctx context.Context) {
	if r.running.Swap(true) {
		return
	}

	r.logger.Info("retention reaper started", "ttl", r.ttl, "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("retention reaper stopping")
			r.running.Store(false)
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

func (r *Reaper) IsRunning() bool {
	return r.running.Load()
}

// Sweep runs one retention pass. Errors on individual entries are logged and
// skipped.
func (r *Reaper) Sweep(ctx context.Context) SweepStats {
	var stats SweepStats
	cutoff := r.now().Add(-r.ttl)

	for _, dir := range r.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				r.logger.Error("failed to read directory", "dir", dir, "error", err)
			}
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if !info.ModTime().Before(cutoff) {
				continue
			}

			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				r.logger.Warn("failed to remove expired file", "path", path, "error", err)
				continue
			}
			stats.FilesRemoved++
			stats.BytesFreed += info.Size()
			r.logger.Debug("removed expired file", "path", path)
		}
	}

	if r.repo != nil {
		n, err := r.repo.DeleteClipsCreatedBefore(ctx, cutoff)
		if err != nil {
			r.logger.Error("failed to prune catalog", "error", err)
		}
		stats.RowsRemoved = n
	}

	if stats.FilesRemoved > 0 || stats.RowsRemoved > 0 {
		r.logger.Info("retention sweep completed",
			"files_removed", stats.FilesRemoved,
			"freed", humanize.IBytes(uint64(stats.BytesFreed)),
			"rows_removed", stats.RowsRemoved,
		)
	}
	return stats
}
