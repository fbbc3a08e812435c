package generator

import (
	"errors"
	"testing"

	"github.com/verte-zerg/subcrack/internal/cipher"
)

type reverseShuffler struct {
	calls int
}

func (r *reverseShuffler) Shuffle(n int, swap func(i, j int)) {
	r.calls++
	for i := 0; i < n/2; i++ {
		swap(i, n-1-i)
	}
}

func TestKeyWithDeterministicSource(t *testing.T) {
	src := &reverseShuffler{}
	gen := NewWithSource(src)
	key, err := gen.Key(cipher.Alphabet("ABC"))
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	expected := cipher.Key{'A': 'C', 'B': 'B', 'C': 'A'}
	if len(key) != len(expected) {
		t.Fatalf("expected %d entries, got %d", len(expected), len(key))
	}
	for from, to := range expected {
		if key[from] != to {
			t.Fatalf("expected %q -> %q, got %q", from, to, key[from])
		}
	}
}

func TestKeyIsBijection(t *testing.T) {
	alphabet, err := cipher.ParseAlphabet(cipher.DefaultAlphabet)
	if err != nil {
		t.Fatalf("parse alphabet: %v", err)
	}
	for seed := int64(0); seed < 20; seed++ {
		key, err := NewSeeded(seed).Key(alphabet)
		if err != nil {
			t.Fatalf("Key failed: %v", err)
		}
		if err := cipher.ValidateKey(key, alphabet); err != nil {
			t.Fatalf("seed %d produced invalid key: %v", seed, err)
		}
	}
}

func TestKeySeedIsReproducible(t *testing.T) {
	alphabet := cipher.Alphabet("ABCDEFGHIJ")
	a, err := NewSeeded(42).Key(alphabet)
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	b, err := NewSeeded(42).Key(alphabet)
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	for _, r := range alphabet {
		if a[r] != b[r] {
			t.Fatalf("seeded keys differ at %q: %q vs %q", r, a[r], b[r])
		}
	}
}

func TestKeyRejectsInvalidAlphabetBeforeShuffling(t *testing.T) {
	src := &reverseShuffler{}
	gen := NewWithSource(src)
	for _, alphabet := range []cipher.Alphabet{nil, cipher.Alphabet("AA")} {
		if _, err := gen.Key(alphabet); !errors.Is(err, cipher.ErrInvalidAlphabet) {
			t.Fatalf("expected ErrInvalidAlphabet, got %v", err)
		}
	}
	if src.calls != 0 {
		t.Fatalf("expected no shuffle calls, got %d", src.calls)
	}
}
