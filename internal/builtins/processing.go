package builtins

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"yesnt/internal/escape"
	"yesnt/internal/eval"
	"yesnt/internal/source"
	"yesnt/internal/statement"
)

const number = `[0-9]+(?:[.,][0-9]+)?`

// calculation matches an arithmetic run of at least two operands, with any
// parentheses around or inside it.
var calculation = regexp.MustCompile(`(?:\(\s*)*` + number +
	`(?:(?:\s*\))*\s*[-+*/%^]\s*(?:\(\s*)*[-+]?` + number + `)+(?:\s*\))*`)

func processingRules() []*statement.Rule {
	return []*statement.Rule{
		{Name: "!eval", Pattern: "!eval", Mode: statement.EndOfLine, Spacing: statement.Start, Priority: statement.VeryHigh, Handler: evaluate},
		{Name: "!task", Pattern: "!task", Mode: statement.EndOfLine, Spacing: statement.Start, Priority: statement.VeryHigh, Handler: runTask},
		{Name: "!calc", Pattern: "!calc", Mode: statement.EndOfLine, Spacing: statement.Start, Priority: statement.High, SearchSafe: true, Handler: calculate},
		{Name: "slp", Pattern: "slp", Mode: statement.StartOfLine, Spacing: statement.End, Priority: statement.Normal, Handler: sleep},
		{Name: "imp", Pattern: "imp", Mode: statement.StartOfLine, Spacing: statement.End, Priority: statement.Normal, Handler: importFile},
		{Name: "mod", Pattern: "mod", Mode: statement.StartOfLine, Spacing: statement.End, Priority: statement.VeryLow, Separator: "|", Handler: modulo},
	}
}

// evaluate turns encoded text back into source so it runs as a statement.
func evaluate(x *statement.Exec, args string) {
	x.Line = escape.Decode(args)
}

func runTask(x *statement.Exec, args string) {
	x.Ctx.Spawn(args)
	x.Line = ""
}

// calculate folds every arithmetic run in the line into its value.
func calculate(x *statement.Exec, args string) {
	failed := false
	line := calculation.ReplaceAllStringFunc(escape.Decode(args), func(expr string) string {
		if failed {
			return expr
		}
		v, err := eval.Calculate(expr)
		if err != nil {
			failed = true
			return expr
		}
		return v
	})

	if failed {
		x.Ctx.Exit("Invalid operation", true)
		return
	}
	x.Line = line
}

func sleep(x *statement.Exec, args string) {
	ms, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil {
		ms = 0
	}
	x.Ctx.Sleep(time.Duration(ms) * time.Millisecond)
}

// importFile replaces the current line with the lines of another file.
func importFile(x *statement.Exec, args string) {
	c := x.Ctx
	path := strings.TrimSpace(escape.Decode(args))
	if filepath.Ext(path) == "" {
		path += source.Extension
	}

	cfg := c.Config()
	resolved, err := source.Resolve(path, cfg.RootPath, cfg.Home)
	if err != nil {
		c.Exit(fmt.Sprintf("Could not find file %q", path), true)
		return
	}

	lines, err := source.LoadFile(resolved)
	if err != nil {
		slog.Warn("error loading import", slog.String("file", resolved), slog.Any("error", err))
		c.Exit(fmt.Sprintf("Could not load file %q", path), true)
		return
	}

	slog.Debug("import", slog.String("file", resolved), slog.Int("lines", len(lines)), slog.Int64("task", c.TaskID()))
	c.Splice(lines)
}

func modulo(x *statement.Exec, args string) {
	c := x.Ctx
	parts := strings.Split(args, "|")
	if len(parts) != 2 {
		c.Exit("Invalid syntax", true)
		return
	}

	operands := strings.Split(parts[1], ",")
	if len(operands) != 2 {
		c.Exit("Invalid arguments", true)
		return
	}

	a, errA := strconv.ParseUint(strings.TrimSpace(operands[0]), 10, 64)
	b, errB := strconv.ParseUint(strings.TrimSpace(operands[1]), 10, 64)
	if errA != nil || errB != nil {
		c.Exit("Invalid arguments", true)
		return
	}
	if b == 0 {
		c.Exit("Invalid operation", true)
		return
	}
	c.Variables()[strings.TrimSpace(parts[0])] = strconv.FormatUint(a%b, 10)
}
