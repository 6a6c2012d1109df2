package eval

import (
	"errors"
	"strings"

	"yesnt/internal/escape"
)

// ErrInvalidCondition is returned when no comparison operator splits the
// input into exactly two sides. It is distinct from a false result.
var ErrInvalidCondition = errors.New("invalid condition")

type comparison struct {
	op      string
	numeric bool
	test    func(a, b float64) bool
}

// Operators are tried in this order; the first one producing exactly two
// sides wins.
var comparisons = []comparison{
	{op: "=="},
	{op: "!="},
	{op: ">=", numeric: true, test: func(a, b float64) bool { return a >= b }},
	{op: "<=", numeric: true, test: func(a, b float64) bool { return a <= b }},
	{op: ">", numeric: true, test: func(a, b float64) bool { return a > b }},
	{op: "<", numeric: true, test: func(a, b float64) bool { return a < b }},
}

// Condition evaluates an already interpolated condition.
func Condition(input string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(escape.Decode(input))) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}

	for _, cmp := range comparisons {
		parts := strings.Split(input, cmp.op)
		if len(parts) != 2 {
			continue
		}

		if !cmp.numeric {
			left := strings.TrimSpace(escape.Decode(parts[0]))
			right := strings.TrimSpace(escape.Decode(parts[1]))
			if cmp.op == "==" {
				return left == right, nil
			}
			return left != right, nil
		}

		left, okLeft := ParseNumber(parts[0])
		right, okRight := ParseNumber(parts[1])
		if !okLeft || !okRight {
			return false, nil
		}
		return cmp.test(left, right), nil
	}

	return false, ErrInvalidCondition
}
