package builtins

import (
	"strings"

	"yesnt/internal/statement"
)

func functionRules() []*statement.Rule {
	return []*statement.Rule{
		{Name: "fnc", Pattern: "fnc", Mode: statement.StartOfLine, Spacing: statement.End, Priority: statement.Normal, SearchSafe: true, Handler: declareFunction},
		{Name: "ret", Pattern: "ret", Mode: statement.Exact, Priority: statement.Normal, SearchSafe: true, Handler: returnStatement},
		{Name: "in", Pattern: "in", Mode: statement.StartOfLine, Spacing: statement.End, Priority: statement.Normal, Handler: pushIn},
		{Name: "get", Pattern: "get", Mode: statement.StartOfLine, Spacing: statement.End, Priority: statement.Normal, Handler: getIn},
		{Name: "put", Pattern: "put", Mode: statement.StartOfLine, Spacing: statement.End, Priority: statement.Normal, Handler: putOut},
		{Name: "out", Pattern: "out", Mode: statement.StartOfLine, Spacing: statement.End, Priority: statement.Normal, Handler: getOut},
	}
}

func declareFunction(x *statement.Exec, args string) {
	c := x.Ctx
	if c.DeclaredInFunction() {
		c.Exit("Nested functions are not allowed", true)
		return
	}

	name := strings.TrimSpace(args)
	c.Functions()[name] = c.LineNumber()
	if c.SearchFunction() == name {
		c.SetSearchFunction("")
	}
	c.SetInFunction(true)
}

// returnStatement resumes after the call site. While searching it only
// leaves the function body being skipped.
func returnStatement(x *statement.Exec, _ string) {
	c := x.Ctx
	searching := c.IsSearching()
	c.SetInFunction(false)
	if searching {
		return
	}

	f, ok := c.PopFrame()
	if !ok {
		c.Exit("No function in stack", true)
		return
	}
	c.SetOut(f.Out)
	c.SetLineNumber(f.CallerLine)
}

func pushIn(x *statement.Exec, args string) {
	x.Ctx.PushIn(strings.TrimSpace(args))
}

func getIn(x *statement.Exec, args string) {
	c := x.Ctx
	if c.Depth() == 0 {
		c.Exit("No function in stack", true)
		return
	}
	v, ok := c.PopIn()
	if !ok {
		c.Exit("No in parameter in stack", true)
		return
	}
	c.Variables()[strings.TrimSpace(args)] = v
}

func putOut(x *statement.Exec, args string) {
	c := x.Ctx
	f, ok := c.Frame()
	if !ok {
		c.Exit("No function in stack", true)
		return
	}
	f.Out = append(f.Out, strings.TrimSpace(args))
}

func getOut(x *statement.Exec, args string) {
	c := x.Ctx
	v, ok := c.PopOut()
	if !ok {
		c.Exit("No out parameter in stack", true)
		return
	}
	c.Variables()[strings.TrimSpace(args)] = v
}
