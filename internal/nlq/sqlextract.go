package nlq

import (
	"regexp"
	"strings"

	"video-analytics/internal/apperrors"
)

const minSQLLen = 10

var fenceTag = regexp.MustCompile("```[A-Za-z]*")

// preambles are removed from the start of the reply, longest first.
var preambles = []string{
	"Вот SQL запрос:",
	"SQL запрос:",
	"Запрос SQL:",
	"SQL:",
	"Запрос:",
	"Ответ:",
}

// explanationMarkers end a statement that has no semicolon. They only count
// past the first 30% of the text so a marker inside the query is kept.
var explanationMarkers = []string{
	"Этот запрос",
	"Данный запрос",
	"Пояснение",
	"Объяснение",
	"This query",
	"Explanation",
	"Note:",
}

// ExtractSQL recovers a single SELECT statement from a model reply. The
// stages are strip, locate and bound; each either produces text for the next
// stage or fails with apperrors.ErrGeneration.
func ExtractSQL(reply string) (string, error) {
	text := stripPreamble(collapseLines(stripFences(reply)))

	text, err := locateSelect(text)
	if err != nil {
		return "", err
	}

	text = boundStatement(text)
	if len(text) < minSQLLen || !hasPrefixFold(text, "SELECT") {
		return "", apperrors.New(apperrors.ErrGeneration, "model reply is not a usable SELECT statement").WithSnippet(reply)
	}
	return text, nil
}

// stripFences prefers the contents of a ```sql block and otherwise drops
// every fence marker with its language tag.
func stripFences(text string) string {
	if start := strings.Index(text, "```sql"); start != -1 {
		body := text[start+len("```sql"):]
		if end := strings.Index(body, "```"); end != -1 {
			return strings.TrimSpace(body[:end])
		}
	}
	return strings.TrimSpace(fenceTag.ReplaceAllString(text, ""))
}

func collapseLines(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, " ")
}

func stripPreamble(text string) string {
	for _, p := range preambles {
		if hasPrefixFold(text, p) {
			return strings.TrimSpace(text[len(p):])
		}
	}
	return text
}

func locateSelect(text string) (string, error) {
	i := indexFold(text, "SELECT")
	if i == -1 {
		return "", apperrors.New(apperrors.ErrGeneration, "model reply contains no SELECT statement").WithSnippet(text)
	}
	return strings.TrimSpace(text[i:]), nil
}

func boundStatement(text string) string {
	if i := strings.IndexByte(text, ';'); i != -1 {
		return strings.TrimSpace(text[:i])
	}
	cut := len(text)
	for _, m := range explanationMarkers {
		i := strings.Index(text, m)
		if i != -1 && float64(i) > float64(len(text))*0.3 && i < cut {
			cut = i
		}
	}
	return strings.TrimSpace(text[:cut])
}

// hasPrefixFold reports whether s starts with prefix, ignoring case. Latin and
// Cyrillic case pairs have the same UTF-8 length, so slicing by len(prefix)
// is safe.
func hasPrefixFold(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	return strings.EqualFold(s[:len(prefix)], prefix)
}

// indexFold finds an ASCII needle in s ignoring case.
func indexFold(s, needle string) int {
	n := len(needle)
	for i := 0; i+n <= len(s); i++ {
		if strings.EqualFold(s[i:i+n], needle) {
			return i
		}
	}
	return -1
}
