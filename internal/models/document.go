package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Document is an uploaded JSON export held in memory for file mode.
// Root keeps the full parsed tree so it can be serialized back unchanged;
// numbers are decoded as json.Number.
type Document struct {
	Name   string
	Hash   string
	Root   map[string]any
	Videos []Record
}

// Record is one JSON object from the document (a video or a snapshot).
type Record map[string]any

// ID returns the record's "id" when it is a string.
func (r Record) ID() string {
	return r.String("id")
}

// String returns field as a string, or "" if absent or not a string.
func (r Record) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// Has reports whether field is present.
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// Int returns field as an integer. Missing or non-numeric values count as 0,
// fractional values are truncated.
func (r Record) Int(field string) int64 {
	switch v := r[field].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return truncate(f)
		}
	case float64:
		return truncate(v)
	case int64:
		return v
	case int:
		return int64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return truncate(f)
		}
	}
	return 0
}

// Snapshots returns the nested snapshot objects. Non-object entries are skipped.
func (r Record) Snapshots() []Record {
	list, ok := r["snapshots"].([]any)
	if !ok {
		return nil
	}
	out := make([]Record, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Record(m))
		}
	}
	return out
}

// HasSnapshotList reports whether the record carries a "snapshots" array (possibly empty).
func (r Record) HasSnapshotList() bool {
	_, ok := r["snapshots"].([]any)
	return ok
}

// FindVideo returns the video whose id equals id exactly.
func (d *Document) FindVideo(id string) (Record, bool) {
	for _, v := range d.Videos {
		if v.ID() == id {
			return v, true
		}
	}
	return nil, false
}

func truncate(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int64(math.Trunc(f))
}
