package filemode

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"video-analytics/internal/models"
)

func rec(id string, views int, created string, snapshots int) models.Record {
	r := models.Record{"id": id, "views_count": float64(views)}
	if created != "" {
		r["video_created_at"] = created
	}
	if snapshots >= 0 {
		list := make([]any, snapshots)
		for i := range list {
			list[i] = map[string]any{"video_id": id}
		}
		r["snapshots"] = list
	}
	return r
}

func ids(records []models.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID()
	}
	return out
}

func TestSelectSamplesReturnsAllWhenFew(t *testing.T) {
	videos := []models.Record{rec("a", 1, "", -1), rec("b", 2, "", -1)}
	assert.Equal(t, []string{"a", "b"}, ids(SelectSamples(videos, 3)))
	assert.Empty(t, SelectSamples(videos, 0))
}

func TestSelectSamplesOrder(t *testing.T) {
	videos := []models.Record{
		rec("first", 50, "2025-11-20T10:00:00Z", 1),
		rec("d20", 10, "2025-11-20T12:00:00Z", 0),
		rec("busy", 70, "2025-11-20T13:00:00Z", 9),
		rec("d21", 90, "2025-11-21T09:00:00Z", 2),
		rec("d22", 30, "2025-11-22T09:00:00Z", 1),
		rec("nodate-low", 1, "", -1),
		rec("nodate-high", 1000, "", -1),
	}

	tests := []struct {
		name string
		n    int
		want []string
	}{
		{"first then most snapshots", 2, []string{"first", "busy"}},
		// 2025-11-20 is claimed by "d20" because "first" and "busy" are already picked.
		{"then one per date", 5, []string{"first", "busy", "d20", "d21", "d22"}},
		{"then by views", 6, []string{"first", "busy", "d20", "d21", "d22", "nodate-low"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(SelectSamples(videos, tt.n)))
		})
	}
}

func TestSelectSamplesViewsSpread(t *testing.T) {
	videos := []models.Record{
		rec("first", 500, "", -1),
		rec("v40", 40, "", -1),
		rec("v10", 10, "", -1),
		rec("v30", 30, "", -1),
		rec("v20", 20, "", -1),
		rec("v50", 50, "", -1),
	}

	// Unpicked by views: v10 v20 v30 v40 v50 -> low, middle, high.
	assert.Equal(t, []string{"first", "v10", "v30", "v50"}, ids(SelectSamples(videos, 4)))
}

func TestSelectSamplesNeverDuplicates(t *testing.T) {
	videos := []models.Record{
		rec("a", 1, "2025-11-20", 5),
		rec("b", 1, "2025-11-20", 5),
		rec("c", 1, "2025-11-20", 5),
		rec("d", 1, "2025-11-20", 5),
	}

	got := ids(SelectSamples(videos, 3))
	assert.Len(t, got, 3)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, got)
}
