package statement

import (
	"strings"

	"yesnt/internal/runtime"
)

type SearchMode int

const (
	StartOfLine SearchMode = iota
	EndOfLine
	Contains
	Exact
)

func (m SearchMode) String() string {
	switch m {
	case StartOfLine:
		return "StartOfLine"
	case EndOfLine:
		return "EndOfLine"
	case Contains:
		return "Contains"
	case Exact:
		return "Exact"
	}
	return "Unknown"
}

// Spacing says which sides of a pattern must be followed or preceded by a
// space for the pattern to match.
type Spacing int

const (
	None Spacing = iota
	Start
	End
	StartEnd
)

// Priority orders rules. Lower values run first.
type Priority int

const (
	PreProcessing Priority = iota
	Highest
	VeryHigh
	High
	Normal
	Low
	VeryLow
)

func (p Priority) String() string {
	return [...]string{"PreProcessing", "Highest", "VeryHigh", "High", "Normal", "Low", "VeryLow"}[p]
}

// Exec carries one line through its dispatch. Rules read and rewrite Line in
// sequence; Ctx is the context that owns the line.
type Exec struct {
	Ctx  *runtime.Context
	Line string
}

type Handler func(x *Exec, args string)

type StaticHandler func(x *Exec)

// Rule binds a line pattern to a handler.
type Rule struct {
	Name     string
	Pattern  string
	Mode     SearchMode
	Spacing  Spacing
	Priority Priority

	// Separator, when set, must occur in the line for the rule to match.
	Separator string
	// SearchSafe rules still run while the context scans forward for a
	// label or function.
	SearchSafe bool
	// KeepPattern hands the handler the whole line instead of the residual.
	KeepPattern bool

	Handler Handler
}

// StaticRule runs on every line regardless of its content.
type StaticRule struct {
	Name       string
	Priority   Priority
	SearchSafe bool
	Handler    StaticHandler
}

func (r *Rule) qualified() string {
	switch r.Spacing {
	case Start:
		return " " + r.Pattern
	case End:
		return r.Pattern + " "
	case StartEnd:
		return " " + r.Pattern + " "
	}
	return r.Pattern
}

// Match reports whether line selects the rule and returns the handler
// arguments. For Contains rules the arguments are computed on the line padded
// with a space on each side.
func (r *Rule) Match(line string) (string, bool) {
	if r.Separator != "" && !strings.Contains(line, r.Separator) {
		return "", false
	}

	q := r.qualified()
	switch r.Mode {
	case StartOfLine:
		if !strings.HasPrefix(line, q) {
			return "", false
		}
		if r.KeepPattern {
			return line, true
		}
		return line[len(q):], true

	case EndOfLine:
		if !strings.HasSuffix(line, q) {
			return "", false
		}
		if r.KeepPattern {
			return line, true
		}
		return line[:len(line)-len(q)], true

	case Contains:
		padded := " " + line + " "
		if !strings.Contains(padded, q) {
			return "", false
		}
		if r.KeepPattern {
			return padded, true
		}
		return strings.ReplaceAll(padded, q, ""), true

	case Exact:
		if strings.TrimSpace(line) != strings.TrimSpace(q) {
			return "", false
		}
		return "", true
	}
	return "", false
}

// Apply matches x.Line and, on success, invokes the handler. Contains rules
// see the padded line in x.Line and get it trimmed back afterwards.
func (r *Rule) Apply(x *Exec) bool {
	args, ok := r.Match(x.Line)
	if !ok {
		return false
	}

	if r.Mode != Contains {
		r.Handler(x, args)
		return true
	}

	leading := strings.HasPrefix(x.Line, " ")
	x.Line = " " + x.Line + " "
	r.Handler(x, args)
	if leading {
		x.Line = strings.TrimRight(x.Line, " ")
	} else {
		x.Line = strings.TrimSpace(x.Line)
	}
	return true
}
