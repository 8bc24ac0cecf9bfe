package filemode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-analytics/internal/apperrors"
	"video-analytics/shared/storage"
)

func TestParseValidDocument(t *testing.T) {
	data := testDocumentJSON(t, 5)

	doc, err := Parse("videos.json", data)
	require.NoError(t, err)
	assert.Equal(t, "videos.json", doc.Name)
	assert.Equal(t, storage.Hash(data), doc.Hash)
	require.Len(t, doc.Videos, 5)
	assert.Equal(t, int64(400), doc.Videos[4].Int("views_count"))
	assert.Len(t, doc.Videos[2].Snapshots(), 2)
}

func TestParseReportsPosition(t *testing.T) {
	data := []byte("{\n  \"videos\": [\n    {\"id\": x}\n  ]\n}")

	_, err := Parse("broken.json", data)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrParse)
	assert.Contains(t, err.Error(), "line 3, column 12")

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Snippet, `{"id": x}`)
}

func TestParseRejectsTruncatedAndTrailingData(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"empty", "", "empty or truncated"},
		{"truncated", `{"videos": [`, "empty or truncated"},
		{"trailing value", `{"videos": []} {}`, "unexpected data after the JSON value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("x.json", []byte(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrParse)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upload.json")
	require.NoError(t, os.WriteFile(path, testDocumentJSON(t, 2), 0644))

	doc, data, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "upload.json", doc.Name)
	assert.NotEmpty(t, data)

	_, _, err = ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
