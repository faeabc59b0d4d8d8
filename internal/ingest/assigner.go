// Package ingest persists uploaded clips under unique names and enriches
// them with metadata and a thumbnail.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/videoprep/videoprep-server/internal/catalog"
)

var (
	ErrInvalidContentType = errors.New("only video files are allowed")
	ErrPayloadTooLarge    = errors.New("upload exceeds size limit")
)

// Upload is one incoming file as received from the client.
type Upload struct {
	Body        io.Reader
	Filename    string
	ContentType string
}

// Assigner writes uploads into a single directory under
// "<uuid>-<original base name>".
type Assigner struct {
	dir      string
	maxBytes int64
	logger   *slog.Logger
	newID    func() string
	now      func() time.Time
}

func NewAssigner(dir string, maxBytes int64, logger *slog.Logger) *Assigner {
	return &Assigner{
		dir:      dir,
		maxBytes: maxBytes,
		logger:   logger,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// Store streams up.Body to disk. The content type is checked before anything
// is written; an oversized body is removed and reported as
// ErrPayloadTooLarge.
func (a *Assigner) Store(ctx context.Context, up Upload) (*catalog.StoredClip, error) {
	if !catalog.IsVideoContentType(up.ContentType) {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidContentType, up.ContentType)
	}

	original := baseName(up.Filename)
	id := a.newID() + "-" + original

	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(a.dir, id)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}

	body := io.Reader(ctxReader{ctx: ctx, r: up.Body})
	if a.maxBytes > 0 {
		body = io.LimitReader(body, a.maxBytes+1)
	}

	n, copyErr := io.Copy(f, body)
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		os.Remove(path)
		if isTooLarge(copyErr) {
			return nil, a.tooLarge()
		}
		return nil, fmt.Errorf("write upload: %w", copyErr)
	case closeErr != nil:
		os.Remove(path)
		return nil, fmt.Errorf("write upload: %w", closeErr)
	case a.maxBytes > 0 && n > a.maxBytes:
		os.Remove(path)
		return nil, a.tooLarge()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	a.logger.Info("upload stored", "clip_id", id, "size", humanize.IBytes(uint64(n)))

	return &catalog.StoredClip{
		ID:           id,
		OriginalName: original,
		Path:         abs,
		ContentType:  up.ContentType,
		Size:         n,
		CreatedAt:    a.now(),
	}, nil
}

func (a *Assigner) tooLarge() error {
	return fmt.Errorf("%w of %s", ErrPayloadTooLarge, humanize.IBytes(uint64(a.maxBytes)))
}

// baseName strips any directory component, in either separator style, so a
// crafted filename cannot leave the upload directory.
func baseName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "upload"
	}
	return name
}

// isTooLarge matches the error http.MaxBytesReader returns once its limit is
// hit.
func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
