package main

import (
	"context"
	"fmt"
	"time"

	"github.com/verte-zerg/subcrack/internal/cipher"
	"github.com/verte-zerg/subcrack/internal/crack"
	"github.com/verte-zerg/subcrack/internal/frequency"
	"github.com/verte-zerg/subcrack/internal/generator"
	"github.com/verte-zerg/subcrack/internal/model"
)

// historyRecorder is the part of the store the pipelines write to.
type historyRecorder interface {
	InsertRun(ctx context.Context, run model.Run, freqs []model.RankedFreq, pairs []model.MappingPair) (string, error)
}

func newGenerator(seed int64) *generator.Generator {
	if seed != 0 {
		return generator.NewSeeded(seed)
	}
	return generator.New()
}

func prepareText(text string, settings model.Settings) (string, error) {
	text = cipher.Normalize(text, settings.Uppercase)
	if text == "" {
		return "", fmt.Errorf("input text: %w", frequency.ErrEmptyInput)
	}
	return text, nil
}

func encryptText(plaintext string, settings model.Settings, gen *generator.Generator) (string, cipher.Key, error) {
	alphabet, err := cipher.ParseAlphabet(settings.Alphabet)
	if err != nil {
		return "", nil, err
	}
	text, err := prepareText(plaintext, settings)
	if err != nil {
		return "", nil, err
	}
	key, err := gen.Key(alphabet)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return cipher.Substitute(text, key), key, nil
}

// decryptText inverts an encryption key, or applies mapping as-is when asIs
// is set (recovered mappings are already ciphertext → plaintext).
func decryptText(ciphertext string, mapping map[rune]rune, alphabet cipher.Alphabet, asIs bool) (string, error) {
	if asIs {
		if err := cipher.ValidateInjective(mapping); err != nil {
			return "", err
		}
		return cipher.Substitute(ciphertext, mapping), nil
	}
	if err := cipher.ValidateKey(mapping, alphabet); err != nil {
		return "", err
	}
	return cipher.Substitute(ciphertext, cipher.Key(mapping).Inverse()), nil
}

func attackOptions(settings model.Settings) (crack.Options, error) {
	opts := crack.Options{AlphabetOnly: settings.AlphabetOnly}
	if settings.AlphabetOnly {
		alphabet, err := cipher.ParseAlphabet(settings.Alphabet)
		if err != nil {
			return crack.Options{}, err
		}
		opts.Alphabet = alphabet
	}
	return opts, nil
}

func rankedFreqs(source string, table frequency.Table) []model.RankedFreq {
	entries := table.Sorted()
	out := make([]model.RankedFreq, 0, len(entries))
	for i, e := range entries {
		out = append(out, model.RankedFreq{
			Source: source,
			Rank:   i + 1,
			Char:   string(e.Char),
			Freq:   e.Freq,
		})
	}
	return out
}

func mappingPairs(mapping frequency.Mapping) []model.MappingPair {
	pairs := mapping.Pairs()
	out := make([]model.MappingPair, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, model.MappingPair{From: string(p[0]), To: string(p[1])})
	}
	return out
}

// crackRun summarizes an attack for the history.
func crackRun(inputPath, outputPath string, settings model.Settings, ciphertext string, result crack.Result, ev *crack.Evaluation) (model.Run, []model.RankedFreq, []model.MappingPair) {
	run := model.Run{
		Kind:       model.KindCrack,
		InputPath:  inputPath,
		OutputPath: outputPath,
		Alphabet:   settings.Alphabet,
		TextLen:    len([]rune(ciphertext)),
		Mapped:     len(result.Mapping),
		Unmapped:   len(result.Unmapped),
	}
	if ev != nil {
		keyAcc := ev.KeyAccuracy
		run.KeyAccuracy = &keyAcc
		if ev.TextAccuracy >= 0 {
			textAcc := ev.TextAccuracy
			run.TextAccuracy = &textAcc
		}
	}
	freqs := append(rankedFreqs(model.SourceObserved, result.Observed), rankedFreqs(model.SourceReference, result.Reference)...)
	return run, freqs, mappingPairs(result.Mapping)
}

// resultFromHistory rebuilds an attack result from stored rows. Recovered is
// left empty; the caller fills it when the input text is still available.
func resultFromHistory(freqs []model.RankedFreq, pairs []model.MappingPair) crack.Result {
	result := crack.Result{
		Observed:  frequency.Table{},
		Reference: frequency.Table{},
		Mapping:   frequency.Mapping{},
	}
	for _, f := range freqs {
		r := firstRune(f.Char)
		switch f.Source {
		case model.SourceObserved:
			result.Observed[r] = f.Freq
		case model.SourceReference:
			result.Reference[r] = f.Freq
		}
	}
	for _, p := range pairs {
		result.Mapping[firstRune(p.From)] = firstRune(p.To)
	}
	result.Unmapped = result.Mapping.Unmapped(result.Observed)
	return result
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

// recordRun stores a run. History is best-effort: failures are logged.
func recordRun(ctx context.Context, rec historyRecorder, run model.Run, freqs []model.RankedFreq, pairs []model.MappingPair) string {
	if rec == nil {
		return ""
	}
	id, err := rec.InsertRun(ctx, run, freqs, pairs)
	if err != nil {
		logErrf("failed to record %s run: %v\n", run.Kind, err)
		return ""
	}
	return id
}

func parseSince(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --since value: %w", err)
	}
	return &parsed, nil
}
