package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-analytics/internal/apperrors"
)

func TestExecuteCount(t *testing.T) {
	s := openTestStore(t)
	seedVideos(t, s, 150)

	got, err := s.Execute(context.Background(), "SELECT COUNT(*) FROM videos")
	require.NoError(t, err)
	assert.Equal(t, Scalar{Value: 150, Determined: true}, got)
}

func TestExecuteCoercion(t *testing.T) {
	s := openTestStore(t)
	seedVideos(t, s, 4)

	tests := []struct {
		name  string
		query string
		want  Scalar
	}{
		{"sum", "SELECT SUM(views_count) FROM videos", Scalar{Value: 600, Determined: true}},
		{"null aggregate is a determined zero", "SELECT SUM(views_count) FROM videos WHERE views_count < 0", Scalar{Value: 0, Determined: true}},
		{"average", "SELECT AVG(likes_count) FROM videos", Scalar{Value: 1.5, Determined: true}},
		{"numeric string", "SELECT '1 234,5' FROM videos LIMIT 1", Scalar{Value: 1234.5, Determined: true}},
		{"non numeric", "SELECT creator_id FROM videos LIMIT 1", Scalar{}},
		{"no rows", "SELECT views_count FROM videos WHERE 1 = 0", Scalar{}},
		{"first column wins", "SELECT COUNT(*), SUM(views_count) FROM videos", Scalar{Value: 4, Determined: true}},
		{"delta sum", "SELECT SUM(delta_views_count) FROM video_snapshots", Scalar{Value: 120, Determined: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Execute(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecuteRejectsUnsafeQuery(t *testing.T) {
	s := openTestStore(t)
	seedVideos(t, s, 1)

	_, err := s.Execute(context.Background(), "DELETE FROM videos")
	require.ErrorIs(t, err, apperrors.ErrValidation)

	n, err := s.CountVideos(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestExecuteReportsStoreErrors(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Execute(context.Background(), "SELECT COUNT(*) FROM missing_table")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrExecution)

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Snippet, "missing_table")
}

func TestExecuteHonoursContext(t *testing.T) {
	s := openTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Execute(ctx, "SELECT COUNT(*) FROM videos")
	assert.ErrorIs(t, err, apperrors.ErrExecution)
}

func TestExecuteDateFilters(t *testing.T) {
	s := openTestStore(t)
	// Snapshots are taken on 2025-11-27 at 10:00 and 11:00 with deltas 10
	// and 20; videos are published on 2025-11-26.
	seedVideos(t, s, 3)

	tests := []struct {
		name  string
		query string
		want  Scalar
	}{
		{"views added on a day", "SELECT SUM(delta_views_count) FROM video_snapshots WHERE DATE(created_at) = '2025-11-27'", Scalar{Value: 90, Determined: true}},
		{"nothing added on another day", "SELECT SUM(delta_views_count) FROM video_snapshots WHERE DATE(created_at) = '2025-11-28'", Scalar{Value: 0, Determined: true}},
		{"distinct videos with new views", "SELECT COUNT(DISTINCT video_id) FROM video_snapshots WHERE DATE(created_at) = '2025-11-27' AND delta_views_count > 0", Scalar{Value: 3, Determined: true}},
		{"published in a range", "SELECT COUNT(*) FROM videos WHERE DATE(video_created_at) BETWEEN '2025-11-01' AND '2025-11-26'", Scalar{Value: 3, Determined: true}},
		{"hourly bucket", "SELECT SUM(delta_views_count) FROM video_snapshots WHERE created_at >= '2025-11-27 11:00:00'", Scalar{Value: 60, Determined: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Execute(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStoredTimestampsAreDateParsable(t *testing.T) {
	s := openTestStore(t)
	seedVideos(t, s, 1)

	var raw, day string
	err := s.db.QueryRowContext(context.Background(),
		"SELECT CAST(created_at AS TEXT), DATE(created_at) FROM video_snapshots ORDER BY created_at LIMIT 1").Scan(&raw, &day)
	require.NoError(t, err)
	assert.Equal(t, "2025-11-27 10:00:00", raw)
	assert.Equal(t, "2025-11-27", day)
}
