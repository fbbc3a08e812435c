package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/subcrack/internal/cipher"
	"github.com/verte-zerg/subcrack/internal/fileio"
	"github.com/verte-zerg/subcrack/internal/frequency"
	"github.com/verte-zerg/subcrack/internal/model"
)

type fakeRecorder struct {
	runs  []model.Run
	freqs [][]model.RankedFreq
	pairs [][]model.MappingPair
	err   error
}

func (f *fakeRecorder) InsertRun(_ context.Context, run model.Run, freqs []model.RankedFreq, pairs []model.MappingPair) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.runs = append(f.runs, run)
	f.freqs = append(f.freqs, freqs)
	f.pairs = append(f.pairs, pairs)
	return "id", nil
}

func smallSettings(reference string) model.Settings {
	return model.Settings{Alphabet: "АБВ", Uppercase: true, Seed: 42, Reference: reference}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	settings := model.Settings{Alphabet: cipher.DefaultAlphabet, Uppercase: true, Seed: 7}
	ciphertext, key, err := encryptText("привет, мир", settings, newGenerator(settings.Seed))
	if err != nil {
		t.Fatalf("encryptText: %v", err)
	}
	alphabet, err := cipher.ParseAlphabet(settings.Alphabet)
	if err != nil {
		t.Fatalf("ParseAlphabet: %v", err)
	}
	got, err := decryptText(ciphertext, key, alphabet, false)
	if err != nil {
		t.Fatalf("decryptText: %v", err)
	}
	if got != "ПРИВЕТ, МИР" {
		t.Fatalf("expected normalized plaintext, got %q", got)
	}
}

func TestEncryptRejectsEmptyText(t *testing.T) {
	_, _, err := encryptText("", smallSettings(""), newGenerator(1))
	if !errors.Is(err, frequency.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestEncryptRejectsInvalidAlphabet(t *testing.T) {
	settings := smallSettings("")
	settings.Alphabet = "ААБ"
	_, _, err := encryptText("АБ", settings, newGenerator(1))
	if !errors.Is(err, cipher.ErrInvalidAlphabet) {
		t.Fatalf("expected ErrInvalidAlphabet, got %v", err)
	}
}

func TestDecryptAsIsAppliesMapping(t *testing.T) {
	got, err := decryptText("XYZ", map[rune]rune{'X': 'А', 'Y': 'Б'}, nil, true)
	if err != nil {
		t.Fatalf("decryptText: %v", err)
	}
	if got != "АБZ" {
		t.Fatalf("expected АБZ, got %q", got)
	}
	if _, err := decryptText("XY", map[rune]rune{'X': 'А', 'Y': 'А'}, nil, true); !errors.Is(err, cipher.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey for colliding mapping, got %v", err)
	}
}

func TestDecryptRejectsPartialKey(t *testing.T) {
	alphabet := cipher.Alphabet("АБВ")
	_, err := decryptText("А", map[rune]rune{'А': 'Б'}, alphabet, false)
	if !errors.Is(err, cipher.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestRunPipelineRecoversKey(t *testing.T) {
	dir := t.TempDir()
	plaintext := "ААААББВ"
	reference, err := frequency.Analyze(plaintext)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	refPath := filepath.Join(dir, "ref.json")
	if err := fileio.WriteTable(refPath, reference); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	rec := &fakeRecorder{}

	outcome, err := runPipeline(context.Background(), plaintext, smallSettings(refPath), dir, rec)
	if err != nil {
		t.Fatalf("runPipeline: %v", err)
	}
	if outcome.result == nil {
		t.Fatalf("expected attack result")
	}
	if outcome.result.Recovered != plaintext {
		t.Fatalf("expected %q, got %q", plaintext, outcome.result.Recovered)
	}
	if outcome.evaluation.KeyAccuracy != 1 || outcome.evaluation.TextAccuracy != 1 {
		t.Fatalf("expected perfect evaluation, got %+v", outcome.evaluation)
	}
	for _, name := range []string{"ciphertext.txt", "key.json", "recovered.txt", "mapping.json", "frequencies.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
	if len(rec.runs) != 2 {
		t.Fatalf("expected 2 recorded runs, got %d", len(rec.runs))
	}
	if rec.runs[1].Kind != model.KindCrack || rec.runs[1].KeyAccuracy == nil {
		t.Fatalf("unexpected crack run: %+v", rec.runs[1])
	}
	if len(rec.freqs[1]) != 6 || len(rec.pairs[1]) != 3 {
		t.Fatalf("expected 6 frequency rows and 3 pairs, got %d and %d", len(rec.freqs[1]), len(rec.pairs[1]))
	}
}

func TestRunPipelineMissingReferenceKeepsPartialResults(t *testing.T) {
	dir := t.TempDir()
	rec := &fakeRecorder{}
	outcome, err := runPipeline(context.Background(), "АБВ", smallSettings(filepath.Join(dir, "missing.json")), dir, rec)
	if err != nil {
		t.Fatalf("runPipeline: %v", err)
	}
	if outcome.result != nil {
		t.Fatalf("expected attack to be skipped")
	}
	text, err := fileio.ReadText(outcome.cipherPath)
	if err != nil {
		t.Fatalf("ReadText: %v", err)
	}
	key, err := fileio.ReadMapping(outcome.keyPath)
	if err != nil {
		t.Fatalf("ReadMapping: %v", err)
	}
	if got := cipher.Substitute(text, cipher.Key(key).Inverse()); got != "АБВ" {
		t.Fatalf("expected key to decrypt ciphertext, got %q", got)
	}
	if len(rec.runs) != 1 || rec.runs[0].Kind != model.KindEncrypt {
		t.Fatalf("expected only the encrypt run, got %+v", rec.runs)
	}
}

func TestRunPipelineEmptyInputWritesNothing(t *testing.T) {
	dir := t.TempDir()
	_, err := runPipeline(context.Background(), "", smallSettings(""), dir, nil)
	if !errors.Is(err, frequency.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no outputs, got %d", len(entries))
	}
}

func TestRecordRunLogsFailure(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("disk full")}
	if id := recordRun(context.Background(), rec, model.Run{Kind: model.KindCrack}, nil, nil); id != "" {
		t.Fatalf("expected empty id on failure, got %q", id)
	}
	if id := recordRun(context.Background(), nil, model.Run{}, nil, nil); id != "" {
		t.Fatalf("expected empty id without history, got %q", id)
	}
}

func TestResultFromHistory(t *testing.T) {
	freqs := []model.RankedFreq{
		{Source: model.SourceObserved, Rank: 1, Char: "X", Freq: 0.75},
		{Source: model.SourceObserved, Rank: 2, Char: "Y", Freq: 0.25},
		{Source: model.SourceReference, Rank: 1, Char: "А", Freq: 1},
	}
	pairs := []model.MappingPair{{From: "X", To: "А"}}

	result := resultFromHistory(freqs, pairs)
	if len(result.Observed) != 2 || len(result.Reference) != 1 {
		t.Fatalf("unexpected tables: %+v", result)
	}
	if result.Mapping['X'] != 'А' {
		t.Fatalf("expected X to map to А")
	}
	if len(result.Unmapped) != 1 || result.Unmapped[0] != 'Y' {
		t.Fatalf("expected Y unmapped, got %v", result.Unmapped)
	}
}

func TestResolveSettingsFlagsOverrideConfig(t *testing.T) {
	cfgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgHome)
	cfgPath := filepath.Join(cfgHome, "subcrack", "config.toml")
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := "[cipher]\nalphabet = \"АБВ\"\nseed = 7\n\n[crack]\nalphabet-only = true\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cmd := &cobra.Command{Use: "test"}
	addCipherFlags(cmd)
	addCrackFlags(cmd)
	cmd.Flags().Int64Var(&seedFlag, "seed", 0, "")
	if err := cmd.Flags().Set("seed", "3"); err != nil {
		t.Fatalf("set seed: %v", err)
	}

	settings, err := resolveSettings(cmd)
	if err != nil {
		t.Fatalf("resolveSettings: %v", err)
	}
	if settings.Alphabet != "АБВ" {
		t.Fatalf("expected alphabet from config, got %q", settings.Alphabet)
	}
	if settings.Seed != 3 {
		t.Fatalf("expected explicit seed to win, got %d", settings.Seed)
	}
	if !settings.AlphabetOnly || !settings.Uppercase {
		t.Fatalf("unexpected settings: %+v", settings)
	}
}

func TestParseSince(t *testing.T) {
	if got, err := parseSince(""); err != nil || got != nil {
		t.Fatalf("expected nil for empty value, got %v, %v", got, err)
	}
	if _, err := parseSince("yesterday"); err == nil {
		t.Fatalf("expected error for invalid date")
	}
	got, err := parseSince("2024-03-05")
	if err != nil {
		t.Fatalf("parseSince: %v", err)
	}
	if got.Year() != 2024 || got.Month() != 3 || got.Day() != 5 {
		t.Fatalf("unexpected date: %v", got)
	}
}

func TestMissingInputWritesNothing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	missing := filepath.Join(t.TempDir(), "missing.txt")

	cases := map[string]func(dir string) []string{
		"encrypt": func(dir string) []string {
			return []string{"encrypt", "--in", missing, "--out", filepath.Join(dir, "cipher.txt"), "--key-out", filepath.Join(dir, "key.json")}
		},
		"run": func(dir string) []string {
			return []string{"run", "--in", missing, "--out-dir", dir}
		},
	}
	for name, args := range cases {
		dir := t.TempDir()
		rootCmd := newRootCmd()
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&out)
		rootCmd.SetArgs(args(dir))

		err := rootCmd.Execute()
		if !errors.Is(err, fileio.ErrNotFound) {
			t.Fatalf("%s: expected ErrNotFound, got %v", name, err)
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("%s: ReadDir: %v", name, err)
		}
		if len(entries) != 0 {
			t.Fatalf("%s: expected no outputs, got %d", name, len(entries))
		}
	}
}
