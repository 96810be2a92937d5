package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/vidgen/internal/models"
	"github.com/desertthunder/vidgen/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func strPtr(s string) *string { return &s }

func videoIDs(videos []models.Video) []string {
	out := make([]string, len(videos))
	for i, v := range videos {
		out[i] = v.VideoID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestVideoRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("ReplaceVideos Keeps Server Order", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewVideoRepository(db)
		ts, err := models.ParseTimestamp("2025-01-02 10:00:00.123456")
		if err != nil {
			t.Fatalf("failed to parse timestamp: %v", err)
		}

		videos := []models.Video{
			{VideoID: "c", Status: models.StatusCompleted, Message: strPtr("third"), VideoPath: strPtr("videos/c.mp4"), CreatedAt: &ts},
			{VideoID: "b", Status: models.StatusProcessing},
			{VideoID: "a", Status: "queued"},
		}
		if err := repo.ReplaceVideos(ctx, videos); err != nil {
			t.Fatalf("failed to replace videos: %v", err)
		}

		got, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("failed to list videos: %v", err)
		}
		if !equalIDs(videoIDs(got), []string{"c", "b", "a"}) {
			t.Errorf("unexpected order: %v", videoIDs(got))
		}
		if got[0].MessageOr("") != "third" || !got[0].Ready() {
			t.Errorf("unexpected first video: %+v", got[0])
		}
		if got[0].CreatedAt == nil || got[0].CreatedAt.String() != "2025-01-02 10:00:00.123456" {
			t.Errorf("expected created_at to round trip, got %v", got[0].CreatedAt)
		}
		if got[1].Message != nil || got[1].CreatedAt != nil {
			t.Error("expected null columns to stay nil")
		}
		if got[2].Status != "queued" {
			t.Errorf("expected unknown status to be preserved, got %s", got[2].Status)
		}
	})

	t.Run("ReplaceVideos Replaces Everything", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewVideoRepository(db)
		if err := repo.ReplaceVideos(ctx, []models.Video{{VideoID: "old", Status: models.StatusFailed}}); err != nil {
			t.Fatalf("failed to replace videos: %v", err)
		}
		if err := repo.ReplaceVideos(ctx, []models.Video{{VideoID: "new", Status: models.StatusPending}}); err != nil {
			t.Fatalf("failed to replace videos: %v", err)
		}

		got, _ := repo.List(ctx)
		if !equalIDs(videoIDs(got), []string{"new"}) {
			t.Errorf("expected only new video, got %v", videoIDs(got))
		}
	})

	t.Run("ReplaceVideos With Empty List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewVideoRepository(db)
		_ = repo.ReplaceVideos(ctx, []models.Video{{VideoID: "a", Status: models.StatusPending}})
		if err := repo.ReplaceVideos(ctx, nil); err != nil {
			t.Fatalf("failed to replace videos: %v", err)
		}

		got, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("failed to list videos: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil list, got %#v", got)
		}
	})

	t.Run("ReplaceVideos Collapses Duplicate IDs", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewVideoRepository(db)
		videos := []models.Video{
			{VideoID: "a", Status: models.StatusCompleted},
			{VideoID: "b", Status: models.StatusPending},
			{VideoID: "a", Status: models.StatusFailed},
		}
		if err := repo.ReplaceVideos(ctx, videos); err != nil {
			t.Fatalf("failed to replace videos: %v", err)
		}

		got, _ := repo.List(ctx)
		if !equalIDs(videoIDs(got), []string{"a", "b"}) {
			t.Errorf("unexpected ids: %v", videoIDs(got))
		}
		if got[0].Status != models.StatusCompleted {
			t.Errorf("expected first occurrence to win, got %s", got[0].Status)
		}
	})

	t.Run("CacheVideo Prepends", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewVideoRepository(db)
		_ = repo.ReplaceVideos(ctx, []models.Video{{VideoID: "b", Status: models.StatusCompleted}, {VideoID: "a", Status: models.StatusCompleted}})

		if err := repo.CacheVideo(ctx, models.Video{VideoID: "c", Status: models.StatusProcessing}); err != nil {
			t.Fatalf("failed to cache video: %v", err)
		}
		if err := repo.CacheVideo(ctx, models.Video{VideoID: "d", Status: models.StatusProcessing}); err != nil {
			t.Fatalf("failed to cache video: %v", err)
		}

		got, _ := repo.List(ctx)
		if !equalIDs(videoIDs(got), []string{"d", "c", "b", "a"}) {
			t.Errorf("unexpected order: %v", videoIDs(got))
		}
	})

	t.Run("CacheVideo Into Empty Table", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewVideoRepository(db)
		if err := repo.CacheVideo(ctx, models.Video{VideoID: "only", Status: models.StatusPending}); err != nil {
			t.Fatalf("failed to cache video: %v", err)
		}

		got, _ := repo.List(ctx)
		if !equalIDs(videoIDs(got), []string{"only"}) {
			t.Errorf("unexpected ids: %v", videoIDs(got))
		}
	})

	t.Run("CacheVideo Moves Existing Record", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewVideoRepository(db)
		_ = repo.ReplaceVideos(ctx, []models.Video{{VideoID: "b", Status: models.StatusCompleted}, {VideoID: "a", Status: models.StatusProcessing}})

		if err := repo.CacheVideo(ctx, models.Video{VideoID: "a", Status: models.StatusCompleted}); err != nil {
			t.Fatalf("failed to cache video: %v", err)
		}

		got, _ := repo.List(ctx)
		if !equalIDs(videoIDs(got), []string{"a", "b"}) {
			t.Errorf("unexpected order: %v", videoIDs(got))
		}
		if got[0].Status != models.StatusCompleted {
			t.Errorf("expected updated status, got %s", got[0].Status)
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewVideoRepository(db)
		_ = repo.CacheVideo(ctx, models.Video{VideoID: "a", Status: models.StatusPending, Message: strPtr("a cat")})

		v, err := repo.Get(ctx, "a")
		if err != nil {
			t.Fatalf("failed to get video: %v", err)
		}
		if v.MessageOr("") != "a cat" {
			t.Errorf("unexpected message: %v", v.Message)
		}

		if _, err := repo.Get(ctx, "missing"); !errors.Is(err, shared.ErrVideoNotFound) {
			t.Errorf("expected ErrVideoNotFound, got %v", err)
		}
	})

	t.Run("Closed Database", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewVideoRepository(db)
		db.Close()

		if err := repo.ReplaceVideos(ctx, []models.Video{{VideoID: "a"}}); err == nil {
			t.Error("expected error from ReplaceVideos")
		}
		if err := repo.CacheVideo(ctx, models.Video{VideoID: "a"}); err == nil {
			t.Error("expected error from CacheVideo")
		}
		if _, err := repo.List(ctx); err == nil {
			t.Error("expected error from List")
		}
		if _, err := repo.Get(ctx, "a"); err == nil {
			t.Error("expected error from Get")
		}
	})
}
