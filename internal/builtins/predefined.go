package builtins

import (
	"math"
	"math/rand/v2"
	goruntime "runtime"
	"strconv"
	"strings"
	"time"

	"yesnt/internal/eval"
	"yesnt/internal/statement"
)

type token struct {
	name  string
	value func() string
}

// Longer names come first so that "%time" is not read as "%tim".
var tokens = []token{
	{"%time", unixTime},
	{"%tim", unixTime},
	{"%os", func() string { return goruntime.GOOS }},
	{"%cpu", func() string { return goruntime.GOARCH }},
	{"%is64", func() string { return strconv.FormatBool(strconv.IntSize == 64) }},
	{"%pi", func() string { return eval.FormatNumber(math.Pi) }},
	{"%rnd", random},
}

func unixTime() string {
	return strconv.FormatInt(time.Now().Unix(), 10)
}

func random() string {
	return strconv.Itoa(32767 + rand.IntN(math.MaxInt32-32767))
}

func predefinedRules() []*statement.Rule {
	rules := make([]*statement.Rule, 0, len(tokens))
	for _, t := range tokens {
		rules = append(rules, &statement.Rule{
			Name:        t.name,
			Pattern:     t.name,
			Mode:        statement.Contains,
			Priority:    statement.Highest,
			KeepPattern: true,
			Handler:     substitute(t),
		})
	}
	return rules
}

// substitute replaces each occurrence with a freshly computed value.
func substitute(t token) statement.Handler {
	return func(x *statement.Exec, _ string) {
		for strings.Contains(x.Line, t.name) {
			x.Line = strings.Replace(x.Line, t.name, t.value(), 1)
		}
	}
}
