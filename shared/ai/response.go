package ai

import (
	"reflect"
	"strconv"
	"strings"

	"video-analytics/internal/apperrors"
)

// textExtractor tries to pull reply text out of one known response shape.
type textExtractor struct {
	name    string
	extract func(resp any) (string, bool)
}

// textExtractors are tried in order; the first non-empty text wins.
var textExtractors = []textExtractor{
	{"string", func(resp any) (string, bool) {
		return asString(resp)
	}},
	{"content", func(resp any) (string, bool) {
		return lookupString(resp, "content")
	}},
	{"choices", func(resp any) (string, bool) {
		return lookupString(resp, "choices", "0", "message", "content")
	}},
	{"text-method", func(resp any) (string, bool) {
		if t, ok := resp.(interface{ Text() string }); ok {
			return t.Text(), true
		}
		return "", false
	}},
	{"text", func(resp any) (string, bool) {
		return lookupString(resp, "text")
	}},
	{"message", func(resp any) (string, bool) {
		if s, ok := lookupString(resp, "message"); ok {
			return s, true
		}
		return lookupString(resp, "message", "content")
	}},
	{"result", func(resp any) (string, bool) {
		if s, ok := lookupString(resp, "result"); ok {
			return s, true
		}
		return lookupString(resp, "result", "content")
	}},
}

// ExtractText returns the trimmed reply text of an opaque model response.
// It fails with apperrors.ErrMalformedResponse when no known response shape yields text.
func ExtractText(resp any) (string, error) {
	if resp == nil {
		return "", apperrors.New(apperrors.ErrMalformedResponse, "model returned no response")
	}
	for _, p := range textExtractors {
		text, ok := p.extract(resp)
		if !ok {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			return text, nil
		}
	}
	return "", apperrors.New(apperrors.ErrMalformedResponse, "unexpected response shape %T", resp)
}

func asString(v any) (string, bool) {
	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() || rv.Kind() != reflect.String {
		return "", false
	}
	return rv.String(), true
}

func lookupString(v any, path ...string) (string, bool) {
	found, ok := lookup(v, path...)
	if !ok {
		return "", false
	}
	return asString(found)
}

// lookup walks struct fields (case-insensitive), string-keyed map entries and
// slice indexes.
func lookup(v any, path ...string) (any, bool) {
	cur := reflect.ValueOf(v)
	for _, seg := range path {
		cur = indirect(cur)
		if !cur.IsValid() {
			return nil, false
		}
		switch cur.Kind() {
		case reflect.Struct:
			f := cur.FieldByNameFunc(func(name string) bool { return strings.EqualFold(name, seg) })
			if !f.IsValid() || !f.CanInterface() {
				return nil, false
			}
			cur = f
		case reflect.Map:
			if cur.Type().Key().Kind() != reflect.String {
				return nil, false
			}
			e := cur.MapIndex(reflect.ValueOf(seg).Convert(cur.Type().Key()))
			if !e.IsValid() {
				return nil, false
			}
			cur = e
		case reflect.Slice, reflect.Array:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= cur.Len() {
				return nil, false
			}
			cur = cur.Index(i)
		default:
			return nil, false
		}
	}
	cur = indirect(cur)
	if !cur.IsValid() || !cur.CanInterface() {
		return nil, false
	}
	return cur.Interface(), true
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}
