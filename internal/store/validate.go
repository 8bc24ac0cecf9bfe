package store

import (
	"strings"

	"video-analytics/internal/apperrors"
)

// deniedKeywords may not appear as a word anywhere in a generated query.
var deniedKeywords = []string{
	"DROP", "DELETE", "UPDATE", "INSERT", "ALTER", "CREATE",
	"TRUNCATE", "EXEC", "EXECUTE", "GRANT", "REVOKE",
}

// Validate reports whether query passes Check.
func Validate(query string) bool {
	return Check(query) == nil
}

// Check is a syntactic allowlist for generated SQL: the statement must start
// with SELECT and contain none of the denied keywords. Keywords are matched
// as whole words so columns like created_at and updated_at pass.
//
// This is not a parser and creative SQL can get past it. The store account
// used for questions should be read-only.
func Check(query string) error {
	upper := strings.ToUpper(strings.TrimSpace(query))
	if !strings.HasPrefix(upper, "SELECT") {
		return apperrors.New(apperrors.ErrValidation, "query must start with SELECT").WithSnippet(query)
	}
	for _, kw := range deniedKeywords {
		if containsWord(upper, kw) {
			return apperrors.New(apperrors.ErrValidation, "query contains forbidden keyword %s", kw).WithSnippet(query)
		}
	}
	return nil
}

// containsWord reports whether word occurs in s delimited by non-identifier
// characters or the ends of s.
func containsWord(s, word string) bool {
	for from := 0; ; {
		i := strings.Index(s[from:], word)
		if i == -1 {
			return false
		}
		start := from + i
		end := start + len(word)
		if (start == 0 || !isIdentByte(s[start-1])) && (end == len(s) || !isIdentByte(s[end])) {
			return true
		}
		from = start + 1
	}
}

func isIdentByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z'
}
