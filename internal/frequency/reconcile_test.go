package frequency

import (
	"errors"
	"math/rand"
	"testing"
)

func TestReconcileFullRanks(t *testing.T) {
	mapping, err := Reconcile(Table{'A': 0.9, 'B': 0.1}, Table{'X': 0.8, 'Y': 0.2})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(mapping) != 2 || mapping['A'] != 'X' || mapping['B'] != 'Y' {
		t.Fatalf("unexpected mapping: %v", mapping)
	}
}

func TestReconcileShorterReference(t *testing.T) {
	observed := Table{'A': 0.9, 'B': 0.1}
	mapping, err := Reconcile(observed, Table{'X': 0.8})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(mapping) != 1 || mapping['A'] != 'X' {
		t.Fatalf("unexpected mapping: %v", mapping)
	}
	if _, ok := mapping['B']; ok {
		t.Fatalf("expected B to stay unmapped")
	}
	unmapped := mapping.Unmapped(observed)
	if len(unmapped) != 1 || unmapped[0] != 'B' {
		t.Fatalf("unexpected unmapped set: %q", unmapped)
	}
}

func TestReconcileUsesTieBreak(t *testing.T) {
	observed := Table{'Q': 0.5, 'P': 0.5}
	reference := Table{'Y': 0.5, 'X': 0.5}
	mapping, err := Reconcile(observed, reference)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if mapping['P'] != 'X' || mapping['Q'] != 'Y' {
		t.Fatalf("unexpected mapping: %v", mapping)
	}
}

func TestReconcileEmptyTables(t *testing.T) {
	if _, err := Reconcile(Table{}, Table{'X': 1}); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput for observed, got %v", err)
	}
	if _, err := Reconcile(Table{'A': 1}, nil); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput for reference, got %v", err)
	}
}

func TestReconcileInjectiveAndDeterministic(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		observed := randomTable(rnd, 'А', 1+rnd.Intn(30))
		reference := randomTable(rnd, 'a', 1+rnd.Intn(30))
		first, err := Reconcile(observed, reference)
		if err != nil {
			t.Fatalf("Reconcile failed: %v", err)
		}
		images := map[rune]struct{}{}
		for from, to := range first {
			if _, ok := observed[from]; !ok {
				t.Fatalf("source %q not in observed table", from)
			}
			if _, ok := reference[to]; !ok {
				t.Fatalf("target %q not in reference table", to)
			}
			if _, ok := images[to]; ok {
				t.Fatalf("target %q assigned twice", to)
			}
			images[to] = struct{}{}
		}
		second, err := Reconcile(observed, reference)
		if err != nil {
			t.Fatalf("Reconcile failed: %v", err)
		}
		if len(first) != len(second) {
			t.Fatalf("non-deterministic mapping size")
		}
		for from, to := range first {
			if second[from] != to {
				t.Fatalf("non-deterministic mapping for %q", from)
			}
		}
	}
}

// randomTable draws coarse weights so ties are frequent.
func randomTable(rnd *rand.Rand, base rune, size int) Table {
	weights := make(map[rune]float64, size)
	for i := 0; i < size; i++ {
		weights[base+rune(i)] = float64(1 + rnd.Intn(4))
	}
	table, err := Normalize(weights)
	if err != nil {
		panic(err)
	}
	return table
}
