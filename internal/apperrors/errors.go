// Package apperrors defines the failure kinds a question can end in and
// converts them into the text shown to the person who asked.
package apperrors

import (
	"errors"
	"fmt"
)

// Kinds. Match them with errors.Is.
var (
	// ErrParse: malformed JSON upload or no SQL could be carved out of a reply.
	ErrParse = errors.New("parse error")
	// ErrValidation: a document or SQL statement broke a structural or safety rule.
	ErrValidation = errors.New("validation error")
	// ErrNoData: a file-mode question was asked with no document loaded.
	ErrNoData = errors.New("no data loaded")
	// ErrGeneration: the model reply could not be reduced to a SELECT statement.
	ErrGeneration = errors.New("generation error")
	// ErrMalformedResponse: no text could be extracted from the model response.
	ErrMalformedResponse = errors.New("malformed model response")
	// ErrExecution: the store rejected the query or the connection failed.
	ErrExecution = errors.New("execution error")
)

// snippetLen bounds the offending text carried in error messages.
const snippetLen = 200

// Error carries a kind, a human readable description and, when relevant,
// the offending snippet of input.
type Error struct {
	Kind    error
	Msg     string
	Snippet string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Snippet != "" {
		msg += fmt.Sprintf(" (got %q)", e.Snippet)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New builds an Error of the given kind.
func New(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind around cause.
func Wrap(kind error, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// WithSnippet attaches a shortened copy of the offending input.
func (e *Error) WithSnippet(s string) *Error {
	e.Snippet = Truncate(s, snippetLen)
	return e
}

// Truncate shortens s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// KindOf returns the kind sentinel carried by err, or nil.
func KindOf(err error) error {
	for _, k := range []error{ErrParse, ErrValidation, ErrNoData, ErrGeneration, ErrMalformedResponse, ErrExecution} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
