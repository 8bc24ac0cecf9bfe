package filemode

import (
	"sort"

	"video-analytics/internal/models"
)

// SelectSamples picks up to n representative videos, in order: the first
// video; the one with the most snapshots; the first video of each distinct
// publication date; the lowest, median and highest by views; then the
// remaining videos in document order. No video is picked twice.
func SelectSamples(videos []models.Record, n int) []models.Record {
	if n <= 0 {
		return nil
	}
	if len(videos) <= n {
		return videos
	}

	picked := make(map[int]bool, n)
	order := make([]int, 0, n)
	take := func(i int) {
		if len(order) < n && !picked[i] {
			picked[i] = true
			order = append(order, i)
		}
	}

	take(0)

	best, bestCount := -1, -1
	for i := 1; i < len(videos); i++ {
		if !videos[i].HasSnapshotList() {
			continue
		}
		if c := len(videos[i].Snapshots()); c > bestCount {
			best, bestCount = i, c
		}
	}
	if best != -1 {
		take(best)
	}

	seenDates := make(map[string]bool)
	for i, v := range videos {
		if len(order) >= n {
			break
		}
		if picked[i] || !v.Has("video_created_at") {
			continue
		}
		date := v.String("video_created_at")
		if len(date) > 10 {
			date = date[:10]
		}
		if seenDates[date] {
			continue
		}
		seenDates[date] = true
		take(i)
	}

	if len(order) < n {
		rest := make([]int, 0, len(videos)-len(order))
		for i := range videos {
			if !picked[i] {
				rest = append(rest, i)
			}
		}
		sort.SliceStable(rest, func(a, b int) bool {
			return videos[rest[a]].Int("views_count") < videos[rest[b]].Int("views_count")
		})
		if len(rest) > 0 {
			for _, k := range []int{0, len(rest) / 2, len(rest) - 1} {
				take(rest[k])
			}
		}
	}

	for i := range videos {
		if len(order) >= n {
			break
		}
		take(i)
	}

	out := make([]models.Record, len(order))
	for k, i := range order {
		out[k] = videos[i]
	}
	return out
}
