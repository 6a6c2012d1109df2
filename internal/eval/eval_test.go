package eval

import (
	"errors"
	"testing"

	"yesnt/internal/escape"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		expr     string
		expected string
	}{
		{"2 + 3 * 4", "14"},
		{"(2 + 3) * 4", "20"},
		{"10 % 3", "1"},
		{"2 ^ 3", "8"},
		{"10 * 10", "100"},
		{"10 - 3 - 2", "5"},
		{"8 / 4 / 2", "1"},
		{"-3 + 5", "2"},
		{"3 - -2", "5"},
		{"3 * -2", "-6"},
		{"((1 + 1) * (2 + 2))", "8"},
		{"1,5 + 1", "2.5"},
		{"7 / 2", "3.5"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Calculate(tt.expr)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Calculate(%q) = %q, want %q", tt.expr, got, tt.expected)
			}
		})
	}
}

func TestCalculateErrors(t *testing.T) {
	for _, expr := range []string{"2 + abc", "(2 + 3", "2 +", ""} {
		if _, err := Calculate(expr); !errors.Is(err, ErrInvalidOperation) {
			t.Errorf("Calculate(%q): expected ErrInvalidOperation, got %v", expr, err)
		}
	}
}

func TestCalculateDivisionByZero(t *testing.T) {
	got, err := Calculate("1 / 0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "+Inf" {
		t.Errorf("expected +Inf, got %q", got)
	}
}

func TestCondition(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"true", true},
		{"FALSE", false},
		{"5 > 3", true},
		{"5 < 3", false},
		{"3 >= 3", true},
		{"2 <= 1", false},
		{"abc == abc", true},
		{"abc == abd", false},
		{"abc != abd", true},
		{"x > 3", false},
		{escape.Encode("a b") + " == a b", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Condition(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Condition(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestConditionInvalid(t *testing.T) {
	for _, input := range []string{"hello", "1 == 2 == 3"} {
		if _, err := Condition(input); !errors.Is(err, ErrInvalidCondition) {
			t.Errorf("Condition(%q): expected ErrInvalidCondition, got %v", input, err)
		}
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"42", 42, true},
		{" 3,25 ", 3.25, true},
		{"- 7", -7, true},
		{"seven", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseNumber(tt.input)
		if ok != tt.ok || got != tt.expected {
			t.Errorf("ParseNumber(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.expected, tt.ok)
		}
	}
}
