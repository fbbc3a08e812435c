// Package frequency computes character distributions and reconciles them into
// substitution mappings.
package frequency

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrEmptyInput reports an empty text or frequency table.
	ErrEmptyInput = errors.New("empty input")
	// ErrInvalidTable reports a table with values outside [0,1].
	ErrInvalidTable = errors.New("invalid frequency table")
)

// Table maps characters to their share of a text.
type Table map[rune]float64

// Entry is a single ranked table row.
type Entry struct {
	Char rune
	Freq float64
}

// Analyze counts every character in text and normalizes by the total count.
func Analyze(text string) (Table, error) {
	return AnalyzeFunc(text, nil)
}

// AnalyzeFunc is Analyze restricted to characters accepted by keep. A nil keep
// accepts everything.
func AnalyzeFunc(text string, keep func(rune) bool) (Table, error) {
	counts := map[rune]int{}
	total := 0
	for _, r := range text {
		if keep != nil && !keep(r) {
			continue
		}
		counts[r]++
		total++
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: no characters to analyze", ErrEmptyInput)
	}
	table := make(Table, len(counts))
	for r, n := range counts {
		table[r] = float64(n) / float64(total)
	}
	return table, nil
}

// Normalize converts non-negative weights into a table.
func Normalize(weights map[rune]float64) (Table, error) {
	var total float64
	for r, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: weight %v for %q", ErrInvalidTable, w, r)
		}
		total += w
	}
	if len(weights) == 0 || total == 0 {
		return nil, fmt.Errorf("%w: no weights to normalize", ErrEmptyInput)
	}
	table := make(Table, len(weights))
	for r, w := range weights {
		if w == 0 {
			continue
		}
		table[r] = w / total
	}
	return table, nil
}

// Validate checks that the table is non-empty and every value lies in [0,1].
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: frequency table has no entries", ErrEmptyInput)
	}
	for r, f := range t {
		if math.IsNaN(f) || f < 0 || f > 1 {
			return fmt.Errorf("%w: %q has frequency %v", ErrInvalidTable, r, f)
		}
	}
	return nil
}

// Sum returns the total of all frequencies.
func (t Table) Sum() float64 {
	var sum float64
	for _, f := range t {
		sum += f
	}
	return sum
}

// Sorted returns entries by descending frequency. Equal frequencies are
// ordered by ascending code point.
func (t Table) Sorted() []Entry {
	entries := make([]Entry, 0, len(t))
	for r, f := range t {
		entries = append(entries, Entry{Char: r, Freq: f})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Freq == entries[j].Freq {
			return entries[i].Char < entries[j].Char
		}
		return entries[i].Freq > entries[j].Freq
	})
	return entries
}

// Top returns at most n characters in rank order.
func (t Table) Top(n int) []rune {
	if n <= 0 || len(t) == 0 {
		return nil
	}
	entries := t.Sorted()
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]rune, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, entries[i].Char)
	}
	return out
}
