package builtins

import (
	"strings"

	"yesnt/internal/eval"
	"yesnt/internal/runtime"
	"yesnt/internal/statement"
)

func flowRules() []*statement.Rule {
	return []*statement.Rule{
		{Name: "lbl", Pattern: "lbl", Mode: statement.StartOfLine, Spacing: statement.End, Priority: statement.Normal, SearchSafe: true, Handler: declareLabel},
		{Name: "end", Pattern: "end", Mode: statement.Exact, Priority: statement.Normal, SearchSafe: true, Handler: end},
		{Name: "trm", Pattern: "trm", Mode: statement.Exact, Priority: statement.Normal, SearchSafe: true, Handler: terminate},
	}
}

func transferRules() []*statement.Rule {
	return []*statement.Rule{
		{Name: "jmp", Pattern: "jmp", Mode: statement.StartOfLine, Spacing: statement.End, Priority: statement.VeryLow, Handler: jumpStatement},
		{Name: "jif", Pattern: "jif", Mode: statement.StartOfLine, Spacing: statement.End, Priority: statement.VeryLow, Separator: "|", Handler: jumpIf},
		{Name: "cal", Pattern: "cal", Mode: statement.StartOfLine, Spacing: statement.End, Priority: statement.VeryLow, Handler: callStatement},
		{Name: "cif", Pattern: "cif", Mode: statement.StartOfLine, Spacing: statement.End, Priority: statement.VeryLow, Separator: "|", Handler: callIf},
	}
}

// jump moves to a known label or starts searching forward for it.
func jump(c *runtime.Context, target string) {
	if i, ok := c.Labels()[target]; ok {
		c.SetLineNumber(i)
		return
	}
	c.SetSearchLabel(target)
}

// call opens a frame for target. Parameters queued with "in" come first,
// followed by args.
func call(c *runtime.Context, target string, args []string) {
	in := append(c.TakeIn(), args...)
	c.PushFrame(runtime.NewFrame(c.LineNumber(), in))

	if i, ok := c.Functions()[target]; ok {
		c.SetLineNumber(i)
		return
	}
	c.SetSearchFunction(target)
}

// condition splits "target|condition" and evaluates the condition. ok is
// false when the context was stopped because of a malformed line.
func condition(c *runtime.Context, args string) (target string, result bool, ok bool) {
	parts := strings.Split(args, "|")
	if len(parts) != 2 {
		c.Exit("Invalid syntax", true)
		return "", false, false
	}

	result, err := eval.Condition(strings.TrimSpace(parts[1]))
	if err != nil {
		c.Exit("Invalid operation", true)
		return "", false, false
	}
	return strings.TrimSpace(parts[0]), result, true
}

func jumpStatement(x *statement.Exec, args string) {
	jump(x.Ctx, strings.TrimSpace(args))
}

func jumpIf(x *statement.Exec, args string) {
	target, result, ok := condition(x.Ctx, args)
	if ok && result {
		jump(x.Ctx, target)
	}
}

func callStatement(x *statement.Exec, args string) {
	target, params, _ := strings.Cut(args, "|")

	var in []string
	for _, p := range strings.Split(params, ",") {
		if p = strings.TrimSpace(p); p != "" {
			in = append(in, p)
		}
	}
	call(x.Ctx, strings.TrimSpace(target), in)
}

func callIf(x *statement.Exec, args string) {
	target, result, ok := condition(x.Ctx, args)
	if ok && result {
		call(x.Ctx, target, nil)
	}
}

func declareLabel(x *statement.Exec, args string) {
	c := x.Ctx
	name := strings.TrimSpace(args)
	c.Labels()[name] = c.LineNumber()
	if c.SearchLabel() == name {
		c.SetSearchLabel("")
	}
}

func end(x *statement.Exec, _ string) {
	c := x.Ctx
	searching := c.IsSearching()
	c.SetInFunction(false)
	if !searching {
		c.Exit("Planned termination by code", false)
	}
}

func terminate(x *statement.Exec, _ string) {
	c := x.Ctx
	searching := c.IsSearching()
	c.SetInFunction(false)
	if !searching {
		c.Exit("Planned termination by code. Canceling all tasks", true)
	}
}
