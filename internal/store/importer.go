package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"video-analytics/internal/apperrors"
	"video-analytics/internal/models"
)

// ImportStats summarizes one import run.
type ImportStats struct {
	Videos           int
	Snapshots        int
	SkippedVideos    int
	SkippedSnapshots int
	DeltaMismatches  int
}

var (
	videoColumns = []string{
		"id", "creator_id", "video_created_at",
		"views_count", "likes_count", "comments_count", "reports_count",
		"created_at", "updated_at",
	}
	snapshotColumns = []string{
		"id", "video_id",
		"views_count", "likes_count", "comments_count", "reports_count",
		"delta_views_count", "delta_likes_count", "delta_comments_count", "delta_reports_count",
		"created_at", "updated_at",
	}
)

// DecodeVideos reads an export: either {"videos": [...]}, {"data": [...]} or
// a bare array of videos. Videos without an id and snapshots without a
// parseable created_at are skipped and counted.
func DecodeVideos(r io.Reader) ([]models.Video, ImportStats, error) {
	var stats ImportStats

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, stats, apperrors.Wrap(apperrors.ErrParse, err, "invalid JSON")
	}

	var items []any
	switch v := root.(type) {
	case []any:
		items = v
	case map[string]any:
		var ok bool
		if items, ok = v["videos"].([]any); !ok {
			if items, ok = v["data"].([]any); !ok {
				return nil, stats, apperrors.New(apperrors.ErrValidation, "expected an array or an object with a \"videos\" array")
			}
		}
	default:
		return nil, stats, apperrors.New(apperrors.ErrValidation, "expected an array or an object with a \"videos\" array")
	}

	videos := make([]models.Video, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			stats.SkippedVideos++
			continue
		}
		rec := models.Record(obj)
		video, ok := decodeVideo(rec)
		if !ok {
			stats.SkippedVideos++
			continue
		}
		for _, snapRec := range rec.Snapshots() {
			snap, ok := decodeSnapshot(snapRec, video.ID)
			if !ok {
				stats.SkippedSnapshots++
				continue
			}
			video.Snapshots = append(video.Snapshots, snap)
		}
		videos = append(videos, video)
	}
	return videos, stats, nil
}

func decodeVideo(rec models.Record) (models.Video, bool) {
	id := scalarString(rec["id"])
	if id == "" {
		return models.Video{}, false
	}
	return models.Video{
		ID:             id,
		CreatorID:      scalarString(rec["creator_id"]),
		VideoCreatedAt: optionalTime(rec, "video_created_at"),
		ViewsCount:     rec.Int("views_count"),
		LikesCount:     rec.Int("likes_count"),
		CommentsCount:  rec.Int("comments_count"),
		ReportsCount:   rec.Int("reports_count"),
		CreatedAt:      optionalTime(rec, "created_at"),
		UpdatedAt:      optionalTime(rec, "updated_at"),
	}, true
}

func decodeSnapshot(rec models.Record, videoID string) (models.Snapshot, bool) {
	created := optionalTime(rec, "created_at")
	if created == nil {
		return models.Snapshot{}, false
	}
	id := scalarString(rec["id"])
	if id == "" {
		id = uuid.NewString()
	}
	return models.Snapshot{
		ID:                 id,
		VideoID:            videoID,
		ViewsCount:         rec.Int("views_count"),
		LikesCount:         rec.Int("likes_count"),
		CommentsCount:      rec.Int("comments_count"),
		ReportsCount:       rec.Int("reports_count"),
		DeltaViewsCount:    rec.Int("delta_views_count"),
		DeltaLikesCount:    rec.Int("delta_likes_count"),
		DeltaCommentsCount: rec.Int("delta_comments_count"),
		DeltaReportsCount:  rec.Int("delta_reports_count"),
		CreatedAt:          *created,
		UpdatedAt:          optionalTime(rec, "updated_at"),
	}, true
}

// scalarString renders string and numeric ids the same way.
func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	default:
		return ""
	}
}

func optionalTime(rec models.Record, field string) *time.Time {
	t, ok := models.ParseTimestamp(rec.String(field))
	if !ok {
		return nil
	}
	return &t
}

// Import upserts videos and their snapshots in one transaction. Snapshot
// deltas that disagree with consecutive counters are logged and counted but
// stored as given.
func (s *Store) Import(ctx context.Context, videos []models.Video) (ImportStats, error) {
	var stats ImportStats

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, apperrors.Wrap(apperrors.ErrExecution, err, "failed to begin import")
	}
	defer func() { _ = tx.Rollback() }()

	videoStmt, err := tx.PrepareContext(ctx, s.dialect.Upsert("videos", videoColumns, "id", videoColumns[1:]))
	if err != nil {
		return stats, apperrors.Wrap(apperrors.ErrExecution, err, "failed to prepare video upsert")
	}
	defer videoStmt.Close()

	snapStmt, err := tx.PrepareContext(ctx, s.dialect.Upsert("video_snapshots", snapshotColumns, "id", snapshotColumns[1:]))
	if err != nil {
		return stats, apperrors.Wrap(apperrors.ErrExecution, err, "failed to prepare snapshot upsert")
	}
	defer snapStmt.Close()

	for _, v := range videos {
		if _, err := videoStmt.ExecContext(ctx,
			v.ID, v.CreatorID, s.dialect.TimeArg(v.VideoCreatedAt),
			v.ViewsCount, v.LikesCount, v.CommentsCount, v.ReportsCount,
			s.dialect.TimeArg(v.CreatedAt), s.dialect.TimeArg(v.UpdatedAt),
		); err != nil {
			return stats, apperrors.Wrap(apperrors.ErrExecution, err, "failed to upsert video %s", v.ID)
		}
		stats.Videos++

		snaps := append([]models.Snapshot(nil), v.Snapshots...)
		sort.SliceStable(snaps, func(i, j int) bool { return snaps[i].CreatedAt.Before(snaps[j].CreatedAt) })

		for i, snap := range snaps {
			if i > 0 && snap.DeltaMismatch(snaps[i-1]) {
				stats.DeltaMismatches++
				s.logger.Warn("snapshot deltas disagree with counters",
					zap.String("video_id", v.ID),
					zap.String("snapshot_id", snap.ID),
					zap.Time("created_at", snap.CreatedAt))
			}
			if _, err := snapStmt.ExecContext(ctx,
				snap.ID, v.ID,
				snap.ViewsCount, snap.LikesCount, snap.CommentsCount, snap.ReportsCount,
				snap.DeltaViewsCount, snap.DeltaLikesCount, snap.DeltaCommentsCount, snap.DeltaReportsCount,
				s.dialect.TimeArg(&snap.CreatedAt), s.dialect.TimeArg(snap.UpdatedAt),
			); err != nil {
				return stats, apperrors.Wrap(apperrors.ErrExecution, err, "failed to upsert snapshot %s", snap.ID)
			}
			stats.Snapshots++
		}
	}

	if err := tx.Commit(); err != nil {
		return stats, apperrors.Wrap(apperrors.ErrExecution, err, "failed to commit import")
	}

	s.logger.Info("import finished",
		zap.Int("videos", stats.Videos),
		zap.Int("snapshots", stats.Snapshots),
		zap.Int("delta_mismatches", stats.DeltaMismatches))
	return stats, nil
}

// ImportJSON decodes an export and imports it. Skip counters from decoding
// are merged into the result.
func (s *Store) ImportJSON(ctx context.Context, data []byte) (ImportStats, error) {
	videos, decoded, err := DecodeVideos(bytes.NewReader(data))
	if err != nil {
		return decoded, err
	}
	stats, err := s.Import(ctx, videos)
	stats.SkippedVideos = decoded.SkippedVideos
	stats.SkippedSnapshots = decoded.SkippedSnapshots
	return stats, err
}

// CountVideos returns the number of stored videos.
func (s *Store) CountVideos(ctx context.Context) (int64, error) {
	n, err := s.QueryRowInt(ctx, "SELECT COUNT(*) FROM videos")
	if err != nil {
		return 0, fmt.Errorf("failed to count videos: %w", err)
	}
	return n, nil
}
