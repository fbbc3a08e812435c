package cipher

import (
	"errors"
	"testing"
	"unicode/utf8"
)

func TestParseAlphabetRejectsEmptyAndDuplicates(t *testing.T) {
	for _, input := range []string{"", "ABA", "  "} {
		if _, err := ParseAlphabet(input); !errors.Is(err, ErrInvalidAlphabet) {
			t.Fatalf("expected ErrInvalidAlphabet for %q, got %v", input, err)
		}
	}
	a, err := ParseAlphabet(DefaultAlphabet)
	if err != nil {
		t.Fatalf("default alphabet rejected: %v", err)
	}
	if len(a) != 34 {
		t.Fatalf("expected 34 characters, got %d", len(a))
	}
	if !a.Contains(' ') || !a.Contains('Ё') {
		t.Fatalf("expected space and Ё in default alphabet")
	}
}

func TestSubstituteSwapKey(t *testing.T) {
	key := Key{'A': 'B', 'B': 'A'}
	enc := Substitute("AAB", key)
	if enc != "BBA" {
		t.Fatalf("expected BBA, got %q", enc)
	}
	if dec := Substitute(enc, key.Inverse()); dec != "AAB" {
		t.Fatalf("expected AAB, got %q", dec)
	}
}

func TestSubstitutePassesThroughUnknown(t *testing.T) {
	key := Key{'А': 'Б', 'Б': 'А'}
	got := Substitute("АБ, 42!", key)
	if got != "БА, 42!" {
		t.Fatalf("unexpected output %q", got)
	}
	partial := map[rune]rune{'X': 'Y'}
	if got := Substitute("XZX", partial); got != "YZY" {
		t.Fatalf("unexpected partial output %q", got)
	}
}

func TestSubstituteRoundTrip(t *testing.T) {
	key := Key{'П': 'Р', 'Р': 'И', 'И': 'В', 'В': 'Е', 'Е': 'Т', 'Т': ' ', ' ': 'П'}
	texts := []string{"ПРИВЕТ", "ПРИВЕТ ПРИВЕТ", "", "ТТТ  ЕЕ", "ПРИВЕТ, world 123"}
	for _, text := range texts {
		enc := Substitute(text, key)
		if utf8.RuneCountInString(enc) != utf8.RuneCountInString(text) {
			t.Fatalf("length changed for %q", text)
		}
		if dec := Substitute(enc, key.Inverse()); dec != text {
			t.Fatalf("round trip failed: %q -> %q -> %q", text, enc, dec)
		}
	}
}

func TestValidateKey(t *testing.T) {
	alphabet := Alphabet("ABC")
	if err := ValidateKey(Key{'A': 'C', 'B': 'A', 'C': 'B'}, alphabet); err != nil {
		t.Fatalf("expected valid key, got %v", err)
	}
	cases := []Key{
		{'A': 'C', 'B': 'A'},
		{'A': 'C', 'B': 'C', 'C': 'B'},
		{'A': 'C', 'B': 'A', 'D': 'B'},
		{'A': 'Z', 'B': 'A', 'C': 'B'},
	}
	for _, key := range cases {
		if err := ValidateKey(key, alphabet); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("expected ErrInvalidKey for %v, got %v", key, err)
		}
	}
}

func TestValidateInjective(t *testing.T) {
	if err := ValidateInjective(map[rune]rune{'A': 'X'}); err != nil {
		t.Fatalf("expected partial mapping to pass: %v", err)
	}
	if err := ValidateInjective(map[rune]rune{'A': 'X', 'B': 'X'}); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	decomposed := "\u0435\u0308\u0436"
	if got := Normalize(decomposed, true); got != "ЁЖ" {
		t.Fatalf("expected ЁЖ, got %q", got)
	}
	if got := Normalize("abc", false); got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
}
