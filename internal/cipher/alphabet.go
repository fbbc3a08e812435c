// Package cipher implements the substitution cipher primitives.
package cipher

import (
	"errors"
	"fmt"
)

// DefaultAlphabet is the uppercase Russian alphabet followed by a space.
const DefaultAlphabet = "АБВГДЕЁЖЗИЙКЛМНОПРСТУФХЦЧШЩЪЫЬЭЮЯ "

// ErrInvalidAlphabet reports an empty alphabet or one with repeated characters.
var ErrInvalidAlphabet = errors.New("invalid alphabet")

// Alphabet is an ordered set of distinct characters.
type Alphabet []rune

// ParseAlphabet converts a string into a validated Alphabet.
func ParseAlphabet(s string) (Alphabet, error) {
	a := Alphabet([]rune(s))
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks that the alphabet is non-empty and duplicate-free.
func (a Alphabet) Validate() error {
	if len(a) == 0 {
		return fmt.Errorf("%w: alphabet is empty", ErrInvalidAlphabet)
	}
	seen := make(map[rune]struct{}, len(a))
	for _, r := range a {
		if _, ok := seen[r]; ok {
			return fmt.Errorf("%w: duplicate character %q", ErrInvalidAlphabet, r)
		}
		seen[r] = struct{}{}
	}
	return nil
}

// Contains reports whether r belongs to the alphabet.
func (a Alphabet) Contains(r rune) bool {
	for _, c := range a {
		if c == r {
			return true
		}
	}
	return false
}

// Set returns the alphabet as a lookup set.
func (a Alphabet) Set() map[rune]struct{} {
	set := make(map[rune]struct{}, len(a))
	for _, r := range a {
		set[r] = struct{}{}
	}
	return set
}

func (a Alphabet) String() string {
	return string(a)
}
