package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/videoprep/videoprep-server/internal/db"
)

func setupTestDB(t *testing.T) Repository {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath, nil)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return NewRepository(database.Conn())
}

func newClip(id string, createdAt time.Time) *StoredClip {
	return &StoredClip{
		ID:           id,
		OriginalName: "holiday.mp4",
		Path:         "/data/uploads/" + id,
		ContentType:  "video/mp4",
		Size:         2048,
		CreatedAt:    createdAt,
	}
}

func TestRepository_CreateAndGetClip(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	clip := newClip("abc-holiday.mp4", time.Now())
	clip.Metadata = ClipMetadata{Duration: 12.5, FPS: 29.97, Width: 1280, Height: 720}
	clip.Probed = true
	clip.Thumbnail = "abc-holiday.mp4.jpg"

	if err := repo.CreateClip(ctx, clip); err != nil {
		t.Fatalf("CreateClip() error = %v", err)
	}

	got, err := repo.GetClip(ctx, clip.ID)
	if err != nil {
		t.Fatalf("GetClip() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetClip() returned nil")
	}
	if got.Metadata != clip.Metadata {
		t.Errorf("Metadata = %+v, want %+v", got.Metadata, clip.Metadata)
	}
	if !got.Probed {
		t.Error("Probed = false, want true")
	}
	if got.Thumbnail != clip.Thumbnail {
		t.Errorf("Thumbnail = %q, want %q", got.Thumbnail, clip.Thumbnail)
	}
}

func TestRepository_GetClipMissing(t *testing.T) {
	repo := setupTestDB(t)

	got, err := repo.GetClip(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetClip() error = %v", err)
	}
	if got != nil {
		t.Fatalf("GetClip() = %+v, want nil", got)
	}
}

func TestRepository_UnprobedClipWithoutThumbnail(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	clip := newClip("id1-a.mp4", time.Now())
	clip.Metadata = DefaultMetadata()
	if err := repo.CreateClip(ctx, clip); err != nil {
		t.Fatalf("CreateClip() error = %v", err)
	}

	got, err := repo.GetClip(ctx, clip.ID)
	if err != nil || got == nil {
		t.Fatalf("GetClip() = %v, %v", got, err)
	}
	if got.Metadata != DefaultMetadata() {
		t.Errorf("Metadata = %+v, want defaults", got.Metadata)
	}
	if got.Probed {
		t.Error("Probed = true, want false")
	}
	if got.Thumbnail != "" {
		t.Errorf("Thumbnail = %q, want empty", got.Thumbnail)
	}
}

func TestRepository_ListAndDeleteBefore(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	now := time.Now()

	old := newClip("old-a.mp4", now.Add(-2*time.Hour))
	fresh := newClip("new-b.mp4", now)
	for _, c := range []*StoredClip{old, fresh} {
		if err := repo.CreateClip(ctx, c); err != nil {
			t.Fatalf("CreateClip(%s) error = %v", c.ID, err)
		}
	}

	clips, err := repo.ListClips(ctx, 10)
	if err != nil {
		t.Fatalf("ListClips() error = %v", err)
	}
	if len(clips) != 2 || clips[0].ID != fresh.ID {
		t.Fatalf("ListClips() = %d clips, first %v; want newest first", len(clips), clips)
	}

	n, err := repo.DeleteClipsCreatedBefore(ctx, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("DeleteClipsCreatedBefore() error = %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}

	count, _ := repo.CountClips(ctx)
	if count != 1 {
		t.Errorf("CountClips() = %d, want 1", count)
	}
}
