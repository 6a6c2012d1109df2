package builtins

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"yesnt/internal/escape"
	"yesnt/internal/statement"
)

func consoleWriteRules() []*statement.Rule {
	return []*statement.Rule{
		{Name: "cwl", Pattern: "cwl", Mode: statement.Exact, Priority: statement.VeryLow, Handler: writeEmptyLine},
		{Name: "cwl", Pattern: "cwl", Mode: statement.StartOfLine, Spacing: statement.End, Priority: statement.VeryLow, Handler: writeLine},
		{Name: "cw", Pattern: "cw", Mode: statement.StartOfLine, Spacing: statement.End, Priority: statement.VeryLow, Handler: write},
		{Name: "cls", Pattern: "cls", Mode: statement.Exact, Priority: statement.Normal, Handler: clearScreen},
	}
}

func consoleReadRules() []*statement.Rule {
	return []*statement.Rule{
		{Name: "%crl", Pattern: "%crl", Mode: statement.Contains, Spacing: statement.End, Priority: statement.Highest, KeepPattern: true, Handler: readLine},
		{Name: "%cr", Pattern: "%cr", Mode: statement.Contains, Spacing: statement.End, Priority: statement.Highest, KeepPattern: true, Handler: readKey},
	}
}

func writeEmptyLine(x *statement.Exec, _ string) {
	x.Ctx.WriteLine("", false)
}

func writeLine(x *statement.Exec, args string) {
	x.Ctx.WriteLine(args, false)
}

func write(x *statement.Exec, args string) {
	x.Ctx.Write(args, false)
}

func clearScreen(x *statement.Exec, _ string) {
	console := x.Ctx.Console()
	if console == nil {
		return
	}
	if err := console.Clear(); err != nil {
		slog.Warn("error clearing screen", slog.Any("error", err))
	}
}

// readLine replaces every "%crl" with a line typed by the user. The input is
// encoded so it cannot be taken for a statement.
func readLine(x *statement.Exec, _ string) {
	const token = "%crl "
	x.Line += " "
	for strings.Contains(x.Line, token) {
		var input string
		var err error
		if console := x.Ctx.Console(); console != nil {
			input, err = console.ReadLine(x.Ctx.Ctx())
		} else {
			err = io.EOF
		}
		if errors.Is(err, io.EOF) {
			x.Ctx.Exit("Terminated by external process", true)
			return
		}
		if err != nil {
			input = ""
		}
		x.Line = strings.Replace(x.Line, token, escape.Encode(input)+" ", 1)
	}
}

// readKey replaces every "%cr" with a single key press, echoing the key.
func readKey(x *statement.Exec, _ string) {
	const token = "%cr "
	x.Line += " "
	for strings.Contains(x.Line, token) {
		key := ' '
		if console := x.Ctx.Console(); console != nil {
			if r, err := console.ReadKey(x.Ctx.Ctx()); err == nil {
				key = r
				x.Ctx.Write(string(r), false)
			}
		}
		x.Line = strings.Replace(x.Line, token, escape.Encode(string(key))+" ", 1)
	}
}
