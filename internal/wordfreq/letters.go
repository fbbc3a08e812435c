package wordfreq

import (
	"archive/zip"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/verte-zerg/subcrack/internal/cipher"
	"github.com/verte-zerg/subcrack/internal/frequency"
)

// LetterFrequencies builds a character model for lang from the wheel's word list.
//
// Each word is upper-cased and weighted by its frequency. Words containing
// characters outside the alphabet are skipped. When the alphabet contains a
// space, every word contributes one space as its separator. limit caps the
// number of words read; zero reads all.
func LetterFrequencies(wheelPath, lang string, alphabet cipher.Alphabet, limit int) (frequency.Table, error) {
	if err := alphabet.Validate(); err != nil {
		return nil, err
	}
	reader, err := zip.OpenReader(wheelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open wheel: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	rc, err := openWordList(&reader.Reader, lang)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rc.Close()
	}()

	buckets, err := decodeBuckets(rc)
	if err != nil {
		return nil, err
	}
	weights := letterWeights(buckets, alphabet, limit)
	table, err := frequency.Normalize(weights)
	if err != nil {
		return nil, fmt.Errorf("no usable words for %s: %w", lang, err)
	}
	return table, nil
}

// decodeBuckets reads a cBpack stream: a header map followed by word lists,
// where list i holds words with frequency 10^(-i/100).
func decodeBuckets(r io.Reader) ([][]string, error) {
	var raw []msgpack.RawMessage
	if err := msgpack.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode word list: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	var header map[string]any
	if err := msgpack.Unmarshal(raw[0], &header); err != nil {
		return nil, fmt.Errorf("failed to decode word list header: %w", err)
	}
	if format, _ := header["format"].(string); format != "cB" {
		return nil, fmt.Errorf("unsupported word list format %q", format)
	}
	buckets := make([][]string, 0, len(raw)-1)
	for i, msg := range raw[1:] {
		var words []string
		if err := msgpack.Unmarshal(msg, &words); err != nil {
			return nil, fmt.Errorf("failed to decode bucket %d: %w", i, err)
		}
		buckets = append(buckets, words)
	}
	return buckets, nil
}

func letterWeights(buckets [][]string, alphabet cipher.Alphabet, limit int) map[rune]float64 {
	set := alphabet.Set()
	_, withSpace := set[' ']
	weights := map[rune]float64{}
	read := 0
	for i, words := range buckets {
		freq := math.Pow(10, -float64(i)/100)
		for _, word := range words {
			if limit > 0 && read >= limit {
				return weights
			}
			read++
			word = cipher.Normalize(strings.TrimSpace(word), true)
			if word == "" || !within(word, set) {
				continue
			}
			for _, r := range word {
				weights[r] += freq
			}
			if withSpace {
				weights[' '] += freq
			}
		}
	}
	return weights
}

func within(word string, set map[rune]struct{}) bool {
	for _, r := range word {
		if r == ' ' {
			return false
		}
		if _, ok := set[r]; !ok {
			return false
		}
	}
	return true
}
