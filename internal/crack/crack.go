// Package crack runs the frequency-analysis attack on a ciphertext.
package crack

import (
	"fmt"

	"github.com/verte-zerg/subcrack/internal/cipher"
	"github.com/verte-zerg/subcrack/internal/frequency"
)

// Options tunes the attack.
type Options struct {
	// AlphabetOnly restricts the ciphertext analysis to Alphabet characters.
	AlphabetOnly bool
	Alphabet     cipher.Alphabet
}

// Result holds everything the attack produced.
type Result struct {
	Observed  frequency.Table
	Reference frequency.Table
	Mapping   frequency.Mapping
	Recovered string
	Unmapped  []rune
}

// Run analyzes ciphertext, reconciles it with reference and decrypts with the
// recovered mapping.
func Run(ciphertext string, reference frequency.Table, opts Options) (Result, error) {
	if err := reference.Validate(); err != nil {
		return Result{}, fmt.Errorf("reference model: %w", err)
	}
	var keep func(rune) bool
	if opts.AlphabetOnly {
		if err := opts.Alphabet.Validate(); err != nil {
			return Result{}, err
		}
		set := opts.Alphabet.Set()
		keep = func(r rune) bool {
			_, ok := set[r]
			return ok
		}
	}
	observed, err := frequency.AnalyzeFunc(ciphertext, keep)
	if err != nil {
		return Result{}, fmt.Errorf("ciphertext: %w", err)
	}
	mapping, err := frequency.Reconcile(observed, reference)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Observed:  observed,
		Reference: reference,
		Mapping:   mapping,
		Recovered: cipher.Substitute(ciphertext, mapping),
		Unmapped:  mapping.Unmapped(observed),
	}, nil
}
