package builtins

import (
	"cmp"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"yesnt/internal/runtime"
	"yesnt/internal/statement"
)

// variableReference is what an undefined reference looks like.
var variableReference = regexp.MustCompile(`^>[a-zA-Z0-9_]+`)

func variableReadRule() *statement.Rule {
	return &statement.Rule{Name: ">", Pattern: ">", Mode: statement.Contains, Priority: statement.Highest, Handler: readVariables}
}

func variableRules() []*statement.Rule {
	return []*statement.Rule{
		{Name: "<", Pattern: "<", Mode: statement.StartOfLine, Priority: statement.VeryLow, Handler: defineVariable},
		{Name: "!<", Pattern: "!<", Mode: statement.StartOfLine, Priority: statement.VeryLow, Handler: defineGlobal},
		{Name: "del", Pattern: "del", Mode: statement.StartOfLine, Spacing: statement.End, Priority: statement.VeryLow, Handler: deleteVariable},
	}
}

// definedNames lists every variable visible from c, longest first, so that
// ">xy" is read as xy even when x is also defined.
func definedNames(c *runtime.Context) []string {
	names := slices.Collect(maps.Keys(c.Variables()))
	for name := range c.Globals().Snapshot() {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	slices.SortFunc(names, func(a, b string) int {
		return cmp.Or(cmp.Compare(len(b), len(a)), strings.Compare(a, b))
	})
	return names
}

// resolve reads the reference at the start of ref, which begins after the
// '>'. Any name can be read once defined, and a reference may run into
// trailing text.
func resolve(c *runtime.Context, names []string, ref string) (value string, n int, ok bool) {
	for _, name := range names {
		if name == "" || !strings.HasPrefix(ref, name) {
			continue
		}
		if v, found := c.LookupVariable(name); found {
			return v, len(name), true
		}
	}
	return "", 0, false
}

// readVariables substitutes every ">name" reference in one left to right
// pass. Substituted values are not scanned again.
func readVariables(x *statement.Exec, _ string) {
	c := x.Ctx
	names := definedNames(c)

	var b strings.Builder
	var missing string
	line := x.Line
	for i := 0; i < len(line); i++ {
		if line[i] != '>' {
			b.WriteByte(line[i])
			continue
		}
		if value, n, ok := resolve(c, names, line[i+1:]); ok {
			b.WriteString(value)
			i += n
			continue
		}
		if ref := variableReference.FindString(line[i:]); ref != "" && missing == "" {
			missing = ref[1:]
		}
		b.WriteByte('>')
	}
	x.Line = b.String()

	if missing != "" && !c.IsSearching() {
		c.Exit(fmt.Sprintf("Variable %q not found", missing), true)
	}
}

func assignment(c *runtime.Context, args string) (key, value string, ok bool) {
	parts := strings.Split(args, "=")
	if len(parts) != 2 {
		c.Exit("Invalid syntax", true)
		return "", "", false
	}
	key = strings.TrimSpace(parts[0])
	if strings.Contains(key, " ") {
		c.Exit("Invalid syntax", true)
		return "", "", false
	}
	return key, strings.TrimSpace(parts[1]), true
}

func defineVariable(x *statement.Exec, args string) {
	if key, value, ok := assignment(x.Ctx, args); ok {
		x.Ctx.Variables()[key] = value
	}
}

func defineGlobal(x *statement.Exec, args string) {
	if key, value, ok := assignment(x.Ctx, args); ok {
		x.Ctx.Globals().Set(key, value)
	}
}

func deleteVariable(x *statement.Exec, args string) {
	c := x.Ctx
	name := strings.TrimSpace(args)

	vars := c.Variables()
	if _, ok := vars[name]; ok {
		delete(vars, name)
		return
	}
	if c.Globals().Delete(name) {
		return
	}
	c.Exit(fmt.Sprintf("Variable %q not found", name), true)
}
