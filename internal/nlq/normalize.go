package nlq

import (
	"regexp"
	"strings"
)

type synonym struct {
	pattern *regexp.Regexp
	replace string
}

func newSynonym(from, to string) synonym {
	return synonym{
		pattern: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(from)),
		replace: to,
	}
}

// synonyms is applied once, in order. No entry produces text that an earlier
// entry would match, so Normalize is idempotent.
var synonyms = []synonym{
	newSynonym("какое количество", "сколько"),
	newSynonym("какая сумма", "сколько всего"),
	newSynonym("суммарно", "всего"),
	newSynonym("в сумме", "всего"),
	newSynonym("всего вместе", "всего"),
	newSynonym("сколько всего", "сколько"),
	newSynonym("за весь период", "за всё время"),
	newSynonym("за все время", "за всё время"),
}

// Normalize rewrites a question into canonical phrasing: whitespace is
// collapsed, thousands-grouped numbers ("100 000") are joined and the synonym
// table is applied.
func Normalize(q string) string {
	tokens := mergeDigitGroups(strings.Fields(q))
	out := strings.Join(tokens, " ")
	for _, s := range synonyms {
		out = s.pattern.ReplaceAllLiteralString(out, s.replace)
	}
	return strings.TrimSpace(out)
}

// mergeDigitGroups joins a 1-3 digit token with the exactly-3-digit tokens
// that follow it. Anything else (years, ids, "28 ноября") is left alone.
func mergeDigitGroups(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if !isDigits(tok) || len(tok) > 3 {
			out = append(out, tok)
			continue
		}
		merged := tok
		for i+1 < len(tokens) && len(tokens[i+1]) == 3 && isDigits(tokens[i+1]) {
			merged += tokens[i+1]
			i++
		}
		out = append(out, merged)
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
