package builtins

import (
	"strings"

	"yesnt/internal/escape"
	"yesnt/internal/statement"
)

func escapeRule() *statement.StaticRule {
	return &statement.StaticRule{Name: "escape", Priority: statement.PreProcessing, SearchSafe: true, Handler: escapeLine}
}

// escapeLine makes "\X" a literal X for every special character X. A
// doubled backslash stands for one backslash.
func escapeLine(x *statement.Exec) {
	if !strings.Contains(x.Line, `\`) {
		return
	}

	var b strings.Builder
	runes := []rune(x.Line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '\\' || i+1 == len(runes) {
			b.WriteRune(r)
			continue
		}
		next := runes[i+1]
		switch {
		case next == '\\':
			b.WriteRune('\\')
			i++
		case escape.IsSpecial(next):
			b.WriteString(escape.Encode(string(next)))
			i++
		default:
			b.WriteRune(r)
		}
	}
	x.Line = b.String()
}
