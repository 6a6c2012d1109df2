package engine

import (
	"fmt"
	"strings"

	"yesnt/internal/escape"
	"yesnt/internal/runtime"
	"yesnt/internal/statement"
)

// loop drives c from its current line until it stops or runs out of lines.
func (in *Interpreter) loop(c *runtime.Context) {
	statics := in.registry.Statics()
	rules := in.registry.Rules()

	for ; c.LineNumber() < c.LineCount(); c.Advance() {
		if c.Stopped() {
			break
		}

		line, _ := c.Line(c.LineNumber())
		raw := strings.ReplaceAll(strings.TrimRight(line.Content, " \t\r"), "\r", "")
		// indentation carries no meaning
		text := strings.TrimLeft(raw, " \t")
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		ev := runtime.LineEvent{
			LineNumber: c.LineNumber() + 1,
			TaskID:     c.TaskID(),
			IsTask:     c.IsTask(),
			Original:   escape.Decode(raw),
		}
		x := &statement.Exec{Ctx: c, Line: text}

		for _, s := range statics {
			if !s.SearchSafe && c.IsSearching() {
				continue
			}
			s.Handler(x)
		}

		searching := c.IsSearching()
		if !dispatch(x, rules) {
			c.Exit("Invalid statement", true)
		}

		if c.Debug() && !searching {
			ev.Current = escape.Decode(x.Line)
			c.LineExecuted(ev)
		}
	}

	if c.Stopped() {
		return
	}
	switch {
	case c.SearchLabel() != "":
		c.Exit(fmt.Sprintf("Label %q not found", c.SearchLabel()), true)
	case c.SearchFunction() != "":
		c.Exit(fmt.Sprintf("Function %q not found", c.SearchFunction()), true)
	default:
		c.Exit("End of file", false)
	}
}

// dispatch offers x to every rule in order and reports whether any rule
// recognized the line. Rules that may not run during a search still count
// as recognizing it.
func dispatch(x *statement.Exec, rules []*statement.Rule) bool {
	found := false
	for _, rule := range rules {
		if !rule.SearchSafe && x.Ctx.IsSearching() {
			found = true
			continue
		}
		if x.Ctx.Stopped() {
			break
		}
		if rule.Apply(x) {
			found = true
		}
	}
	return found
}
