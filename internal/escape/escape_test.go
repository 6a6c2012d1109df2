package escape

import (
	"strings"
	"testing"
)

func TestEncodeDecode(t *testing.T) {
	tests := []string{
		"hello",
		"jmp top",
		"5 > 3",
		"a|b,c",
		"100% !done",
		"~spc literal",
		"",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			encoded := Encode(input)
			if got := Decode(encoded); got != input {
				t.Fatalf("Decode(Encode(%q)) = %q", input, got)
			}
		})
	}
}

func TestEncodedTextIsInert(t *testing.T) {
	encoded := Encode("cwl >x | %rnd")

	for _, special := range []string{" ", ">", "|", "%", "cwl"} {
		if strings.Contains(encoded, special) {
			t.Errorf("encoded text still contains %q: %q", special, encoded)
		}
	}
}

func TestDecodePlainText(t *testing.T) {
	if got := Decode("plain text"); got != "plain text" {
		t.Errorf("expected plain text untouched, got %q", got)
	}
	if got := Decode("a~spcb"); got != "a b" {
		t.Errorf("expected token to decode, got %q", got)
	}
}

func TestIsSpecial(t *testing.T) {
	if !IsSpecial('>') || !IsSpecial(' ') {
		t.Errorf("expected > and space to be special")
	}
	if IsSpecial('a') {
		t.Errorf("expected a not to be special")
	}
}
