// Package filemode answers questions from an uploaded JSON document instead
// of the store.
package filemode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"video-analytics/internal/apperrors"
	"video-analytics/internal/models"
	"video-analytics/shared/storage"
)

// ReadFile reads and parses a document from disk. The base name of path
// becomes the document name.
func ReadFile(path string) (*models.Document, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := Parse(filepath.Base(path), data)
	if err != nil {
		return nil, nil, err
	}
	return doc, data, nil
}

// Parse decodes and validates a document. Malformed JSON fails with
// apperrors.ErrParse carrying the line and column; a wrong shape fails with
// apperrors.ErrValidation.
func Parse(name string, data []byte) (*models.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, parseError(data, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		line, col := position(data, dec.InputOffset())
		return nil, apperrors.New(apperrors.ErrParse, "unexpected data after the JSON value at line %d, column %d", line, col)
	}

	obj, videos, err := Validate(root)
	if err != nil {
		return nil, err
	}

	return &models.Document{
		Name:   name,
		Hash:   storage.Hash(data),
		Root:   obj,
		Videos: videos,
	}, nil
}

func parseError(data []byte, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := position(data, syntaxErr.Offset)
		return apperrors.Wrap(apperrors.ErrParse, err, "invalid JSON at line %d, column %d", line, col).
			WithSnippet(around(data, syntaxErr.Offset))
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return apperrors.Wrap(apperrors.ErrParse, err, "JSON document is empty or truncated")
	}
	return apperrors.Wrap(apperrors.ErrParse, err, "invalid JSON")
}

// position converts a byte offset into a 1-based line and column (in runes).
func position(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	before := data[:offset]
	line := bytes.Count(before, []byte("\n")) + 1
	lineStart := bytes.LastIndexByte(before, '\n') + 1
	col := len(bytes.Runes(before[lineStart:]))
	if col == 0 {
		col = 1
	}
	return line, col
}

// around returns up to 40 bytes of input on either side of offset.
func around(data []byte, offset int64) string {
	start := max(offset-40, 0)
	end := min(offset+40, int64(len(data)))
	if start > end {
		return ""
	}
	return string(bytes.ToValidUTF8(data[start:end], nil))
}
