package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"video-analytics/internal/models"
	"video-analytics/shared/config"
)

// openTestStore returns a migrated SQLite store in a temporary directory.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(context.Background(), config.StoreConfig{
		Driver:   "sqlite",
		URL:      filepath.Join(t.TempDir(), "videos.db"),
		MinConns: 1,
		MaxConns: 5,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate(context.Background()))
	return s
}

// seedVideos imports n videos with 100*i views and two snapshots each.
func seedVideos(t *testing.T, s *Store, n int) []models.Video {
	t.Helper()

	base := time.Date(2025, 11, 26, 10, 0, 0, 0, time.UTC)
	videos := make([]models.Video, n)
	for i := range videos {
		id := uuid.NewString()
		published := base.Add(time.Duration(i) * time.Hour)
		videos[i] = models.Video{
			ID:             id,
			CreatorID:      fmt.Sprintf("creator-%d", i%3),
			VideoCreatedAt: &published,
			ViewsCount:     int64(100 * i),
			LikesCount:     int64(i),
			Snapshots: []models.Snapshot{
				{ID: uuid.NewString(), VideoID: id, ViewsCount: 10, DeltaViewsCount: 10, CreatedAt: base.Add(24 * time.Hour)},
				{ID: uuid.NewString(), VideoID: id, ViewsCount: 30, DeltaViewsCount: 20, CreatedAt: base.Add(25 * time.Hour)},
			},
		}
	}

	_, err := s.Import(context.Background(), videos)
	require.NoError(t, err)
	return videos
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "oracle", URL: "x"}, nil)
	require.Error(t, err)
}

func TestOpenRequiresURL(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "sqlite"}, nil)
	require.ErrorIs(t, err, config.ErrStoreNotConfigured)
}

func TestMigrateIsRepeatable(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.Ping(context.Background()))
}
