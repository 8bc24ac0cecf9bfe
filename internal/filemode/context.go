package filemode

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"video-analytics/internal/models"
)

// BuildContext renders doc for the prompt. The full indented JSON is used
// when it fits in maxSize characters; otherwise a statistical summary plus
// sampleSize representative videos.
func BuildContext(doc *models.Document, maxSize, sampleSize int) (string, error) {
	full, err := encodeJSON(doc.Root)
	if err != nil {
		return "", fmt.Errorf("failed to serialize document: %w", err)
	}
	size := utf8.RuneCountInString(full)
	if size <= maxSize {
		return full, nil
	}

	samples := SelectSamples(doc.Videos, sampleSize)
	sampleJSON, err := encodeJSON(map[string]any{"videos": samples})
	if err != nil {
		return "", fmt.Errorf("failed to serialize sample videos: %w", err)
	}

	return fmt.Sprintf("%s\n\nПримеры данных (выбрано %d репрезентативных видео):\n%s",
		Summarize(doc), len(samples), sampleJSON), nil
}

func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// Summarize describes the document structure and its totals.
func Summarize(doc *models.Document) string {
	var b strings.Builder
	videos := doc.Videos

	fmt.Fprintf(&b, "Файл содержит %d видео.\n", len(videos))

	if len(videos) > 0 {
		first := videos[0]
		b.WriteString("\nСтруктура данных о видео:\n")
		fmt.Fprintf(&b, "- id: %s (UUID, строка формата 8-4-4-4-12)\n", field(first, "id"))
		for _, f := range []string{"creator_id", "video_created_at", "views_count", "likes_count", "comments_count", "reports_count"} {
			fmt.Fprintf(&b, "- %s: %s\n", f, field(first, f))
		}
		if first.Has("created_at") {
			fmt.Fprintf(&b, "- created_at: %s (дата создания записи)\n", field(first, "created_at"))
		}
		if first.Has("updated_at") {
			fmt.Fprintf(&b, "- updated_at: %s (дата обновления записи)\n", field(first, "updated_at"))
		}

		if first.HasSnapshotList() {
			snaps := first.Snapshots()
			fmt.Fprintf(&b, "\nУ первого видео %d снапшотов.\n", len(snaps))
			if len(snaps) > 0 {
				s := snaps[0]
				b.WriteString("\nСтруктура снапшотов:\n")
				fmt.Fprintf(&b, "- id: %s\n", field(s, "id"))
				fmt.Fprintf(&b, "- video_id: %s (UUID, совпадает с id видео)\n", field(s, "video_id"))
				for _, f := range []string{"views_count", "likes_count", "comments_count", "reports_count"} {
					fmt.Fprintf(&b, "- %s: %s\n", f, field(s, f))
				}
				for _, f := range []struct{ name, desc string }{
					{"delta_views_count", "приращение просмотров"},
					{"delta_likes_count", "приращение лайков"},
					{"delta_comments_count", "приращение комментариев"},
					{"delta_reports_count", "приращение жалоб"},
					{"created_at", "время замера"},
					{"updated_at", "время обновления снапшота"},
				} {
					fmt.Fprintf(&b, "- %s: %s (%s)\n", f.name, field(s, f.name), f.desc)
				}
			}
		}
	}

	var views, likes, comments, reports int64
	var snapshots, withSnapshots, validIDs int
	for _, v := range videos {
		views += v.Int("views_count")
		likes += v.Int("likes_count")
		comments += v.Int("comments_count")
		reports += v.Int("reports_count")
		if n := len(v.Snapshots()); n > 0 {
			snapshots += n
			withSnapshots++
		}
		if IsCanonicalUUID(v.ID()) {
			validIDs++
		}
	}

	b.WriteString("\nОбщая статистика:\n")
	fmt.Fprintf(&b, "- Всего видео: %d\n", len(videos))
	fmt.Fprintf(&b, "- Видео с валидным UUID: %d/%d\n", validIDs, len(videos))
	fmt.Fprintf(&b, "- Сумма просмотров: %s\n", groupThousands(views))
	fmt.Fprintf(&b, "- Сумма лайков: %s\n", groupThousands(likes))
	fmt.Fprintf(&b, "- Сумма комментариев: %s\n", groupThousands(comments))
	fmt.Fprintf(&b, "- Сумма жалоб: %s\n", groupThousands(reports))
	fmt.Fprintf(&b, "- Всего снапшотов: %d\n", snapshots)
	fmt.Fprintf(&b, "- Видео со снапшотами: %d/%d", withSnapshots, len(videos))
	if withSnapshots > 0 {
		fmt.Fprintf(&b, "\n- Среднее количество снапшотов на видео: %.1f", float64(snapshots)/float64(withSnapshots))
	}
	return b.String()
}

// groupThousands renders 3326609 as "3 326 609".
func groupThousands(n int64) string {
	return strings.ReplaceAll(humanize.Comma(n), ",", " ")
}

func field(r models.Record, name string) string {
	v, ok := r[name]
	if !ok || v == nil {
		return "N/A"
	}
	return fmt.Sprint(v)
}
