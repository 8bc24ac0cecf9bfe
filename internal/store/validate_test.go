package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-analytics/internal/apperrors"
)

func TestValidateAcceptsAggregates(t *testing.T) {
	queries := []string{
		"SELECT COUNT(*) FROM videos",
		"select sum(views_count) from videos",
		"SELECT SUM(delta_views_count) FROM video_snapshots WHERE DATE(created_at) = DATE '2025-11-28'",
		"SELECT MAX(updated_at) FROM videos",
		"SELECT COUNT(DISTINCT video_id) FROM video_snapshots WHERE delta_views_count > 0",
		"  SELECT AVG(likes_count) FROM videos",
	}

	for _, q := range queries {
		assert.True(t, Validate(q), q)
	}
}

func TestValidateRejectsDeniedKeywords(t *testing.T) {
	templates := []string{
		"%s TABLE videos",
		"SELECT COUNT(*) FROM videos; %s FROM videos",
		"SELECT COUNT(*) FROM videos WHERE id IN (%s x)",
		"SELECT 1 FROM videos --%s",
		"SELECT COUNT(*) FROM videos\n%s",
	}

	for _, kw := range deniedKeywords {
		for _, variant := range []string{kw, strings.ToLower(kw), kw[:1] + strings.ToLower(kw[1:])} {
			for _, tmpl := range templates {
				q := strings.Replace(tmpl, "%s", variant, 1)
				assert.False(t, Validate(q), q)
			}
		}
	}
}

func TestValidateRequiresSelect(t *testing.T) {
	for _, q := range []string{"", "WITH x AS (SELECT 1) SELECT * FROM x", "EXPLAIN SELECT 1", "show tables"} {
		assert.False(t, Validate(q), q)
	}
}

func TestCheckNamesRule(t *testing.T) {
	err := Check("SELECT COUNT(*) FROM videos; DROP TABLE videos")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "DROP")

	err = Check("DELETE FROM videos")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must start with SELECT")
}

func TestValidateMatchesWholeWordsOnly(t *testing.T) {
	// Keywords embedded in identifiers or string literals are not statements.
	accepted := []string{
		"SELECT COUNT(*) FROM videos WHERE creator_id = 'xDELETEx'",
		"SELECT COUNT(*) FROM videos WHERE creator_id = 'dropbox_fan'",
		"SELECT MAX(created_at) FROM video_snapshots",
		"SELECT COUNT(*) FROM videos WHERE creator_id LIKE 'updated_%'",
		"SELECT SUM(views_count) AS executed_total FROM videos",
	}
	for _, q := range accepted {
		assert.True(t, Validate(q), q)
	}

	rejected := []string{
		"SELECT COUNT(*) FROM videos WHERE creator_id = 'x DELETE x'",
		"SELECT 1;DELETE FROM videos",
		"SELECT (DROP)",
	}
	for _, q := range rejected {
		assert.False(t, Validate(q), q)
	}
}
