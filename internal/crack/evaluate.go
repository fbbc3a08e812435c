package crack

import (
	"github.com/verte-zerg/subcrack/internal/cipher"
	"github.com/verte-zerg/subcrack/internal/frequency"
)

// Evaluation compares a recovered mapping with the real key.
type Evaluation struct {
	// Mapped counts sources with an image, Correct those matching the real key.
	Mapped   int
	Correct  int
	Distinct int
	// KeyAccuracy is Correct/Mapped.
	KeyAccuracy float64
	// Coverage is Mapped/Distinct.
	Coverage float64
	// TextAccuracy is the share of matching positions, or -1 without a plaintext.
	TextAccuracy float64
}

// Evaluate scores the recovered mapping against the encryption key.
// plaintext may be empty.
func Evaluate(result Result, key cipher.Key, plaintext string) Evaluation {
	inverse := key.Inverse()
	ev := Evaluation{Distinct: len(result.Observed), TextAccuracy: -1}
	for from, to := range result.Mapping {
		ev.Mapped++
		if want, ok := inverse[from]; ok && want == to {
			ev.Correct++
		}
	}
	if ev.Mapped > 0 {
		ev.KeyAccuracy = float64(ev.Correct) / float64(ev.Mapped)
	}
	if ev.Distinct > 0 {
		ev.Coverage = float64(ev.Mapped) / float64(ev.Distinct)
	}
	if plaintext != "" {
		ev.TextAccuracy = textAccuracy(result.Recovered, plaintext)
	}
	return ev
}

func textAccuracy(recovered, plaintext string) float64 {
	got := []rune(recovered)
	want := []rune(plaintext)
	n := len(want)
	if len(got) > n {
		n = len(got)
	}
	if n == 0 {
		return 0
	}
	matches := 0
	for i := 0; i < len(got) && i < len(want); i++ {
		if got[i] == want[i] {
			matches++
		}
	}
	return float64(matches) / float64(n)
}

// Rank pairs observed and reference entries of the same rank with the
// image the reconciler chose for the observed character.
type Rank struct {
	Observed  *frequency.Entry
	Reference *frequency.Entry
	Assigned  rune
	HasImage  bool
}

// Ranks lays out both tables side by side.
func Ranks(result Result) []Rank {
	obs := result.Observed.Sorted()
	ref := result.Reference.Sorted()
	n := len(obs)
	if len(ref) > n {
		n = len(ref)
	}
	out := make([]Rank, n)
	for i := 0; i < n; i++ {
		if i < len(obs) {
			e := obs[i]
			out[i].Observed = &e
			out[i].Assigned, out[i].HasImage = result.Mapping[e.Char]
		}
		if i < len(ref) {
			e := ref[i]
			out[i].Reference = &e
		}
	}
	return out
}
