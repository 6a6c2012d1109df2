package builtins

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"yesnt/internal/escape"
	"yesnt/internal/process"
	"yesnt/internal/runtime"
	"yesnt/internal/statement"
)

func systemRules() []*statement.Rule {
	return []*statement.Rule{
		{Name: "exc", Pattern: "exc", Mode: statement.StartOfLine, Spacing: statement.End, Priority: statement.Low, Separator: "|", Handler: executeWithArgs},
		{Name: "exc", Pattern: "exc", Mode: statement.StartOfLine, Spacing: statement.End, Priority: statement.VeryLow, Handler: execute},
	}
}

func executeWithArgs(x *statement.Exec, args string) {
	name, rest, _ := strings.Cut(escape.Decode(args), "|")

	var extra []string
	for _, a := range strings.Split(rest, ",") {
		if a = strings.TrimSpace(a); a != "" {
			extra = append(extra, a)
		}
	}
	runProcess(x.Ctx, strings.TrimSpace(name), extra)

	// keeps the plain "exc" rule from running the process again
	x.Line = ""
}

func execute(x *statement.Exec, args string) {
	runProcess(x.Ctx, strings.TrimSpace(escape.Decode(args)), nil)
}

// runProcess blocks until the process exits and leaves its exit code
// followed by its output lines in the out channel.
func runProcess(c *runtime.Context, name string, extra []string) {
	args := append(c.TakeIn(), extra...)

	result, err := process.Run(name, args, func(o process.Output) {
		if o.Stderr {
			c.WriteLine("Error: "+o.Text, false)
			return
		}
		c.WriteLine(o.Text, false)
	})
	if errors.Is(err, process.ErrNotFound) {
		c.Exit(fmt.Sprintf("Cannot find file %q.", name), false)
		return
	}
	if err != nil {
		c.Exit(fmt.Sprintf("Failed to start %q. %v", name, err), false)
		return
	}

	out := make([]string, 0, len(result.Lines)+1)
	out = append(out, strconv.Itoa(result.ExitCode))
	for _, l := range result.Lines {
		out = append(out, l.Text)
	}
	c.SetOut(out)
}
