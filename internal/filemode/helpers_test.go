package filemode

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func videoID(i int) string {
	return fmt.Sprintf("%08x-1f24-4b97-a944-%012x", i, i)
}

// testVideos builds n valid videos. Video i has i*100 views, i likes,
// i%3 snapshots and is published on day 20+i%5 of November 2025.
func testVideos(n int) []map[string]any {
	videos := make([]map[string]any, n)
	for i := range videos {
		id := videoID(i)
		snaps := make([]map[string]any, i%3)
		for j := range snaps {
			snaps[j] = map[string]any{
				"id":                fmt.Sprintf("snap-%d-%d", i, j),
				"video_id":          id,
				"views_count":       (j + 1) * 10,
				"delta_views_count": 10,
				"created_at":        fmt.Sprintf("2025-11-28T%02d:00:00+00:00", j),
			}
		}
		videos[i] = map[string]any{
			"id":               id,
			"creator_id":       fmt.Sprintf("creator-%d", i%4),
			"video_created_at": fmt.Sprintf("2025-11-%02dT10:00:00+00:00", 20+i%5),
			"views_count":      i * 100,
			"likes_count":      i,
			"comments_count":   1,
			"reports_count":    0,
			"snapshots":        snaps,
		}
	}
	return videos
}

func testDocumentJSON(t *testing.T, n int) []byte {
	t.Helper()
	data, err := json.Marshal(map[string]any{"videos": testVideos(n)})
	require.NoError(t, err)
	return data
}
