package nlq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-analytics/internal/apperrors"
)

func TestExtractSQL(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{
			name:  "bare statement",
			reply: "SELECT COUNT(*) FROM videos;",
			want:  "SELECT COUNT(*) FROM videos",
		},
		{
			name:  "sql fence preferred",
			reply: "Вот запрос:\n```sql\nSELECT SUM(views_count)\nFROM videos;\n```\nОн считает просмотры.",
			want:  "SELECT SUM(views_count) FROM videos",
		},
		{
			name:  "unlabelled fence",
			reply: "```\nSELECT MAX(views_count) FROM videos\n```",
			want:  "SELECT MAX(views_count) FROM videos",
		},
		{
			name:  "unterminated sql fence",
			reply: "```sql\nSELECT COUNT(*) FROM video_snapshots",
			want:  "SELECT COUNT(*) FROM video_snapshots",
		},
		{
			name:  "preamble",
			reply: "SQL: SELECT COUNT(*) FROM videos",
			want:  "SELECT COUNT(*) FROM videos",
		},
		{
			name:  "russian preamble any case",
			reply: "вот sql запрос: select count(*) from videos",
			want:  "select count(*) from videos",
		},
		{
			name:  "prose before select",
			reply: "Чтобы посчитать видео, выполните SELECT COUNT(*) FROM videos; это вернёт число",
			want:  "SELECT COUNT(*) FROM videos",
		},
		{
			name:  "multiline statement",
			reply: "SELECT SUM(delta_views_count)\n  FROM video_snapshots\n  WHERE DATE(created_at) = DATE '2025-11-28';",
			want:  "SELECT SUM(delta_views_count) FROM video_snapshots WHERE DATE(created_at) = DATE '2025-11-28'",
		},
		{
			name:  "trailing explanation without semicolon",
			reply: "SELECT COUNT(DISTINCT creator_id) FROM videos Этот запрос считает уникальных креаторов",
			want:  "SELECT COUNT(DISTINCT creator_id) FROM videos",
		},
		{
			name:  "select inside string is kept",
			reply: "SELECT COUNT(*) FROM videos WHERE creator_id = 'select'",
			want:  "SELECT COUNT(*) FROM videos WHERE creator_id = 'select'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractSQL(tt.reply)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractSQLFailures(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"no select", "Я не могу ответить на этот вопрос."},
		{"empty", ""},
		{"too short", "SELECT 1;"},
		{"select only", "SELECT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractSQL(tt.reply)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrGeneration)
		})
	}
}

func TestExtractSQLKeepsSnippet(t *testing.T) {
	_, err := ExtractSQL("никакого запроса тут нет")

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "никакого запроса тут нет", appErr.Snippet)
}
