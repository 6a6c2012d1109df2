package escape

import (
	"strings"
)

// guard surrounds every encoded rune so that no statement pattern can span
// two characters of user input.
const guard = "\v"

var tokens = []struct {
	raw   string
	token string
}{
	{"~", "~til"},
	{" ", "~spc"},
	{"%", "~per"},
	{"<", "~let"},
	{">", "~grt"},
	{",", "~com"},
	{"!", "~exm"},
	{"|", "~pip"},
}

var (
	encoder *strings.Replacer
	decoder *strings.Replacer
)

func init() {
	enc := make([]string, 0, len(tokens)*2)
	dec := make([]string, 0, len(tokens)*2)
	for _, t := range tokens {
		enc = append(enc, t.raw, t.token)
		dec = append(dec, t.token, t.raw)
	}
	encoder = strings.NewReplacer(enc...)
	decoder = strings.NewReplacer(dec...)
}

// Encode turns text read from the console into its inert form.
func Encode(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)
	for _, r := range s {
		b.WriteString(guard)
		b.WriteString(encoder.Replace(string(r)))
		b.WriteString(guard)
	}
	return b.String()
}

// Decode reverses Encode. Text that was never encoded passes through
// unchanged unless it contains one of the replacement tokens.
func Decode(s string) string {
	if !strings.Contains(s, guard) && !strings.Contains(s, "~") {
		return s
	}
	return decoder.Replace(strings.ReplaceAll(s, guard, ""))
}

// IsSpecial reports whether r has a dedicated token.
func IsSpecial(r rune) bool {
	for _, t := range tokens {
		if t.raw == string(r) {
			return true
		}
	}
	return false
}
