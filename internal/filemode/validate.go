package filemode

import (
	"fmt"

	"github.com/google/uuid"

	"video-analytics/internal/apperrors"
	"video-analytics/internal/models"
)

// IsCanonicalUUID reports whether s is a hyphenated 8-4-4-4-12 hex UUID.
// Braced, URN and unhyphenated forms are rejected.
func IsCanonicalUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// Validate checks the document shape and returns its videos. It stops at the
// first violation; indices in messages are 0-based.
func Validate(root any) (map[string]any, []models.Record, error) {
	obj, ok := root.(map[string]any)
	if !ok {
		return nil, nil, invalid("document root must be an object, got %s", typeName(root))
	}

	raw, ok := obj["videos"]
	if !ok {
		return nil, nil, invalid(`document is missing the "videos" key`)
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, nil, invalid(`"videos" must be an array, got %s`, typeName(raw))
	}
	if len(list) == 0 {
		return nil, nil, invalid(`"videos" is empty`)
	}

	videos := make([]models.Record, len(list))
	for i, item := range list {
		video, err := validateVideo(i, item)
		if err != nil {
			return nil, nil, err
		}
		videos[i] = video
	}
	return obj, videos, nil
}

func validateVideo(i int, item any) (models.Record, error) {
	m, ok := item.(map[string]any)
	if !ok {
		return nil, invalid("videos[%d] must be an object, got %s", i, typeName(item))
	}
	video := models.Record(m)

	rawID, ok := video["id"]
	if !ok {
		return nil, invalid("videos[%d].id is missing", i)
	}
	id, ok := rawID.(string)
	if !ok {
		return nil, invalid("videos[%d].id must be a string, got %s", i, typeName(rawID))
	}
	if !IsCanonicalUUID(id) {
		return nil, invalid("videos[%d].id is not a UUID (xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx)", i).WithSnippet(id)
	}
	if !video.Has("creator_id") {
		return nil, invalid("videos[%d].creator_id is missing", i)
	}

	rawSnaps, ok := video["snapshots"]
	if !ok {
		return video, nil
	}
	snaps, ok := rawSnaps.([]any)
	if !ok {
		return nil, invalid("videos[%d].snapshots must be an array, got %s", i, typeName(rawSnaps))
	}
	for j, s := range snaps {
		snap, ok := s.(map[string]any)
		if !ok {
			return nil, invalid("videos[%d].snapshots[%d] must be an object, got %s", i, j, typeName(s))
		}
		videoID, ok := snap["video_id"]
		if !ok {
			return nil, invalid("videos[%d].snapshots[%d].video_id is missing", i, j)
		}
		if got, _ := videoID.(string); got != id {
			return nil, invalid("videos[%d].snapshots[%d].video_id: expected %q, got %s", i, j, id, describe(videoID))
		}
		if _, ok := snap["created_at"]; !ok {
			return nil, invalid("videos[%d].snapshots[%d].created_at is missing", i, j)
		}
	}
	return video, nil
}

func invalid(format string, args ...any) *apperrors.Error {
	return apperrors.New(apperrors.ErrValidation, format, args...)
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	default:
		return "number"
	}
}

func describe(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return typeName(v)
}
