package models

import "time"

// Video is the summary row for one video: cumulative counters as of the last update.
type Video struct {
	ID             string     `json:"id"`
	CreatorID      string     `json:"creator_id"`
	VideoCreatedAt *time.Time `json:"video_created_at,omitempty"`
	ViewsCount     int64      `json:"views_count"`
	LikesCount     int64      `json:"likes_count"`
	CommentsCount  int64      `json:"comments_count"`
	ReportsCount   int64      `json:"reports_count"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
	Snapshots      []Snapshot `json:"snapshots,omitempty"`
}

// Snapshot is an hourly measurement of a video's counters plus the increment
// since the previous measurement of the same video.
type Snapshot struct {
	ID                 string     `json:"id"`
	VideoID            string     `json:"video_id"`
	ViewsCount         int64      `json:"views_count"`
	LikesCount         int64      `json:"likes_count"`
	CommentsCount      int64      `json:"comments_count"`
	ReportsCount       int64      `json:"reports_count"`
	DeltaViewsCount    int64      `json:"delta_views_count"`
	DeltaLikesCount    int64      `json:"delta_likes_count"`
	DeltaCommentsCount int64      `json:"delta_comments_count"`
	DeltaReportsCount  int64      `json:"delta_reports_count"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}

// DeltaMismatch reports whether the snapshot's deltas disagree with the
// difference from prev. The store does not enforce this.
func (s Snapshot) DeltaMismatch(prev Snapshot) bool {
	return s.DeltaViewsCount != s.ViewsCount-prev.ViewsCount ||
		s.DeltaLikesCount != s.LikesCount-prev.LikesCount ||
		s.DeltaCommentsCount != s.CommentsCount-prev.CommentsCount ||
		s.DeltaReportsCount != s.ReportsCount-prev.ReportsCount
}
