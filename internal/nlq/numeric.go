package nlq

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	latexBlock   = regexp.MustCompile(`(?s)\$\$.*?\$\$`)
	latexInline  = regexp.MustCompile(`\$[^$]*?\$`)
	codeFence    = regexp.MustCompile("```[a-z]*\n?")
	boldMarkup   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicMarkup = regexp.MustCompile(`\*([^*]+)\*`)

	// Either a number grouped by dots or commas in at least two groups of
	// three ("1.000.000", "2,500,000"), or a digit run grouped by spaces,
	// tabs, non-breaking or narrow no-break spaces. Both may carry a
	// fractional part, which is dropped. A single separated group such as
	// "1.000" reads as a fraction. Line breaks end a run.
	groupedNumber = regexp.MustCompile(`(\d{1,3}(?:[.,]\d{3}){2,})(?:[.,]\d+)?|(\d[\d \t\x{00A0}\x{202F}]*)(?:[.,]\d+)?`)
)

// ExtractNumber pulls the answer out of a free-text model reply. The digit
// run with the most digits wins, so "Ответ: 3 326 609 просмотров" gives
// "3326609". This prefers a longer unrelated number over a short correct one.
// Fractional parts are truncated ("42,9" gives "42"). When nothing numeric is
// found it returns "0" and false.
func ExtractNumber(text string) (string, bool) {
	text = latexBlock.ReplaceAllString(text, "")
	text = latexInline.ReplaceAllString(text, "")
	text = codeFence.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "```", "")
	text = boldMarkup.ReplaceAllString(text, "$1")
	text = italicMarkup.ReplaceAllString(text, "$1")

	best := ""
	for _, m := range groupedNumber.FindAllStringSubmatch(text, -1) {
		run := m[1]
		if run == "" {
			run = m[2]
		}
		if digits := onlyDigits(run); len(digits) > len(best) {
			best = digits
		}
	}
	if best == "" {
		return "0", false
	}
	if best = strings.TrimLeft(best, "0"); best == "" {
		best = "0"
	}
	return best, true
}

// FormatNumber renders v as a plain integer string truncated toward zero.
// nil, NaN, infinities and anything unparseable become "0".
func FormatNumber(v any) string {
	f, ok := ToFloat(v)
	if !ok {
		return "0"
	}
	return formatFloat(f)
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "0"
	}
	t := math.Trunc(f)
	if t == 0 {
		return "0"
	}
	return strconv.FormatFloat(t, 'f', 0, 64)
}

// ToFloat coerces a scanned or decoded scalar to float64. Strings may carry
// thousands-grouping spaces and a decimal comma.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		return parseNumeric(string(n))
	case []byte:
		return parseNumeric(string(n))
	case string:
		return parseNumeric(n)
	default:
		return 0, false
	}
}

func parseNumeric(s string) (float64, bool) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
