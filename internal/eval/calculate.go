package eval

import (
	"errors"
	"math"
	"regexp"
	"strings"

	"yesnt/internal/escape"
)

// ErrInvalidOperation is returned when some segment of an arithmetic
// expression does not reduce to a number.
var ErrInvalidOperation = errors.New("invalid operation")

var (
	innerGroup = regexp.MustCompile(`\(([^()]*)\)`)
	signPair   = regexp.MustCompile(`([-+])\s*([-+])`)
)

// ladder lists the operators from lowest to highest precedence. Each tier
// splits its input and hands every segment to the next tier.
var ladder = []byte{'+', '-', '*', '/', '%', '^'}

// Calculate evaluates an arithmetic expression and renders the result.
// Division by zero yields an infinity or NaN rather than an error.
func Calculate(expr string) (string, error) {
	v, err := calculate(escape.Decode(expr))
	if err != nil {
		return "", err
	}
	return FormatNumber(v), nil
}

func calculate(expr string) (float64, error) {
	var failed error
	for innerGroup.MatchString(expr) {
		expr = innerGroup.ReplaceAllStringFunc(expr, func(group string) string {
			v, err := calculate(group[1 : len(group)-1])
			if err != nil {
				failed = err
				return "0"
			}
			return FormatNumber(v)
		})
		if failed != nil {
			return 0, failed
		}
	}
	if strings.ContainsAny(expr, "()") {
		return 0, ErrInvalidOperation
	}

	return reduce(normalizeSigns(expr), 0)
}

// normalizeSigns collapses adjacent sign tokens so that leading and doubled
// unary signs reach the number parser as a single sign.
func normalizeSigns(expr string) string {
	for {
		next := signPair.ReplaceAllStringFunc(expr, func(pair string) string {
			first, last := pair[0], pair[len(pair)-1]
			if first == last {
				return "+"
			}
			return "-"
		})
		if next == expr {
			return expr
		}
		expr = next
	}
}

func reduce(expr string, tier int) (float64, error) {
	if tier == len(ladder) {
		v, ok := ParseNumber(expr)
		if !ok {
			return 0, ErrInvalidOperation
		}
		return v, nil
	}

	op := ladder[tier]
	var acc float64
	for i, segment := range split(expr, op) {
		v, err := reduce(segment, tier+1)
		if err != nil {
			return 0, err
		}
		if i == 0 {
			acc = v
			continue
		}
		acc = apply(op, acc, v)
	}
	return acc, nil
}

func apply(op byte, a, b float64) float64 {
	switch op {
	case '+':
		return a + b
	case '-':
		return a - b
	case '*':
		return a * b
	case '/':
		return a / b
	case '%':
		return math.Mod(a, b)
	case '^':
		return math.Pow(a, b)
	}
	return math.NaN()
}

// split cuts expr at every binary occurrence of op. A '+' or '-' with no
// operand on its left is a sign and stays with the following segment.
func split(expr string, op byte) []string {
	var parts []string
	start := 0
	for i := 0; i < len(expr); i++ {
		if expr[i] != op {
			continue
		}
		if (op == '+' || op == '-') && isUnary(expr, i) {
			continue
		}
		parts = append(parts, expr[start:i])
		start = i + 1
	}
	return append(parts, expr[start:])
}

func isUnary(expr string, i int) bool {
	prev := strings.TrimRight(expr[:i], " \t")
	if prev == "" {
		return true
	}
	switch last := prev[len(prev)-1]; last {
	case '+', '-', '*', '/', '%', '^':
		return true
	case 'e', 'E':
		// exponent of a number like 1e+20
		return len(prev) > 1 && prev[len(prev)-2] >= '0' && prev[len(prev)-2] <= '9' && len(prev) == i
	}
	return false
}
