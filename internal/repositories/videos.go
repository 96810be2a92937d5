package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/vidgen/internal/models"
	"github.com/desertthunder/vidgen/internal/shared"
)

// VideoRepository caches the gallery for offline listing.
type VideoRepository struct {
	db *sql.DB
}

// NewVideoRepository creates a new VideoRepository with the given database connection
func NewVideoRepository(db *sql.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// ReplaceVideos swaps the cached list for videos, keeping their order. A record id that
// appears twice keeps its first position.
func (r *VideoRepository) ReplaceVideos(ctx context.Context, videos []models.Video) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM videos"); err != nil {
		return fmt.Errorf("failed to clear videos: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO videos (video_id, position, status, message, video_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(video_id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, v := range videos {
		if _, err := stmt.ExecContext(ctx, args(v, i)...); err != nil {
			return fmt.Errorf("failed to insert video %s: %w", v.VideoID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit videos: %w", err)
	}
	return nil
}

// CacheVideo puts video at the head of the list, replacing any row with the same id.
func (r *VideoRepository) CacheVideo(ctx context.Context, video models.Video) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM videos WHERE video_id = ?", video.VideoID); err != nil {
		return fmt.Errorf("failed to remove video: %w", err)
	}

	position, err := nextPosition(ctx, tx, "videos")
	if err != nil {
		return err
	}

	query := `
		INSERT INTO videos (video_id, position, status, message, video_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, query, args(video, position)...); err != nil {
		return fmt.Errorf("failed to insert video: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit video: %w", err)
	}
	return nil
}

// List returns the cached videos, head first.
func (r *VideoRepository) List(ctx context.Context) ([]models.Video, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT video_id, status, message, video_path, created_at
		FROM videos
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, *v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return videos, nil
}

// Get retrieves one cached video.
func (r *VideoRepository) Get(ctx context.Context, id string) (*models.Video, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT video_id, status, message, video_path, created_at
		FROM videos
		WHERE video_id = ?
	`, id)

	v, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrVideoNotFound, id)
	}
	return v, err
}

func args(v models.Video, position int) []any {
	var created sql.NullString
	if v.CreatedAt != nil {
		created = sql.NullString{String: v.CreatedAt.String(), Valid: true}
	}
	return []any{v.VideoID, position, string(v.Status), nullable(v.Message), nullable(v.VideoPath), created}
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVideo(s scanner) (*models.Video, error) {
	var (
		v         models.Video
		status    string
		message   sql.NullString
		videoPath sql.NullString
		createdAt sql.NullString
	)

	if err := s.Scan(&v.VideoID, &status, &message, &videoPath, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan video: %w", err)
	}

	v.Status = models.VideoStatus(status)
	if message.Valid {
		v.Message = &message.String
	}
	if videoPath.Valid {
		v.VideoPath = &videoPath.String
	}
	if createdAt.Valid {
		ts := models.LenientTimestamp(createdAt.String)
		v.CreatedAt = &ts
	}
	return &v, nil
}
