package cipher

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidKey reports a key that is not a bijection over its alphabet.
var ErrInvalidKey = errors.New("invalid cipher key")

// Key maps every alphabet character to its substitute.
type Key map[rune]rune

// Inverse returns the key that undoes k.
func (k Key) Inverse() Key {
	inv := make(Key, len(k))
	for from, to := range k {
		inv[to] = from
	}
	return inv
}

// Sources returns the key's domain in ascending code point order.
func (k Key) Sources() []rune {
	out := make([]rune, 0, len(k))
	for r := range k {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ValidateKey checks that key is a total bijection over alphabet.
func ValidateKey(key map[rune]rune, alphabet Alphabet) error {
	if err := alphabet.Validate(); err != nil {
		return err
	}
	if len(key) != len(alphabet) {
		return fmt.Errorf("%w: key has %d entries, alphabet has %d", ErrInvalidKey, len(key), len(alphabet))
	}
	set := alphabet.Set()
	used := make(map[rune]struct{}, len(key))
	for from, to := range key {
		if _, ok := set[from]; !ok {
			return fmt.Errorf("%w: %q is not in the alphabet", ErrInvalidKey, from)
		}
		if _, ok := set[to]; !ok {
			return fmt.Errorf("%w: %q is not in the alphabet", ErrInvalidKey, to)
		}
		if _, ok := used[to]; ok {
			return fmt.Errorf("%w: %q is used more than once", ErrInvalidKey, to)
		}
		used[to] = struct{}{}
	}
	return nil
}

// ValidateInjective checks that no two sources share a target.
func ValidateInjective(mapping map[rune]rune) error {
	used := make(map[rune]rune, len(mapping))
	for from, to := range mapping {
		if prev, ok := used[to]; ok {
			return fmt.Errorf("%w: %q and %q both map to %q", ErrInvalidKey, prev, from, to)
		}
		used[to] = from
	}
	return nil
}
