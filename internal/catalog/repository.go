package catalog

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	CreateClip(ctx context.Context, clip *StoredClip) error
	GetClip(ctx context.Context, id string) (*StoredClip, error)
	ListClips(ctx context.Context, limit int) ([]*StoredClip, error)
	DeleteClipsCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CountClips(ctx context.Context) (int, error)
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const clipColumns = `id, original_name, path, content_type, size, created_at,
	duration, fps, width, height, metadata_probed, thumbnail`

func (r *SQLiteRepository) CreateClip(ctx context.Context, c *StoredClip) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clips (id, original_name, path, content_type, size, created_at,
			duration, fps, width, height, metadata_probed, thumbnail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.OriginalName, c.Path, c.ContentType, c.Size, c.CreatedAt.UTC().Format(time.RFC3339),
		c.Metadata.Duration, c.Metadata.FPS, c.Metadata.Width, c.Metadata.Height,
		boolToInt(c.Probed), nullString(c.Thumbnail))
	return err
}

func (r *SQLiteRepository) GetClip(ctx context.Context, id string) (*StoredClip, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+clipColumns+` FROM clips WHERE id = ?`, id)
	return scanClip(row)
}

func (r *SQLiteRepository) ListClips(ctx context.Context, limit int) ([]*StoredClip, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+clipColumns+` FROM clips ORDER BY created_at DESC, id LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clips []*StoredClip
	for rows.Next() {
		c, err := scanClip(rows)
		if err != nil {
			return nil, err
		}
		clips = append(clips, c)
	}
	return clips, rows.Err()
}

func (r *SQLiteRepository) DeleteClipsCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM clips WHERE created_at < ?", cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) CountClips(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM clips").Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClip(row rowScanner) (*StoredClip, error) {
	var c StoredClip
	var createdAt string
	var probed int
	var thumbnail sql.NullString

	err := row.Scan(&c.ID, &c.OriginalName, &c.Path, &c.ContentType, &c.Size, &createdAt,
		&c.Metadata.Duration, &c.Metadata.FPS, &c.Metadata.Width, &c.Metadata.Height,
		&probed, &thumbnail)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.Probed = probed == 1
	c.Thumbnail = thumbnail.String
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &c, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
