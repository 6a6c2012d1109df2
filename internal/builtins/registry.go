// Package builtins holds the statement table of the language.
package builtins

import (
	"yesnt/internal/statement"
)

// Registry builds the ordered statement table. Line transformations sit in
// the high tiers so that terminal statements in the low tiers see the fully
// rewritten line.
func Registry() *statement.Registry {
	r := statement.NewRegistry()
	r.AddStatic(escapeRule())

	r.Add(variableReadRule())
	r.Add(predefinedRules()...)
	r.Add(consoleReadRules()...)
	r.Add(processingRules()...)
	r.Add(flowRules()...)
	r.Add(functionRules()...)
	r.Add(systemRules()...)
	r.Add(consoleWriteRules()...)
	r.Add(variableRules()...)
	r.Add(transferRules()...)
	return r
}
