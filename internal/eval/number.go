package eval

import (
	"strconv"
	"strings"

	"yesnt/internal/escape"
)

// ParseNumber reads a culture invariant decimal, accepting either ',' or '.'
// as the decimal separator. A sign may be separated from its digits by spaces.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(escape.Decode(s), ",", "."))
	if s == "" {
		return 0, false
	}
	if s[0] == '-' || s[0] == '+' {
		s = s[:1] + strings.TrimSpace(s[1:])
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// FormatNumber renders f in its shortest plain decimal form.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
