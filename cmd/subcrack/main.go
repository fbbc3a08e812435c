// Package main provides the CLI entrypoint for subcrack.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/subcrack/internal/cipher"
	"github.com/verte-zerg/subcrack/internal/config"
	"github.com/verte-zerg/subcrack/internal/crack"
	"github.com/verte-zerg/subcrack/internal/fileio"
	"github.com/verte-zerg/subcrack/internal/frequency"
	"github.com/verte-zerg/subcrack/internal/inspect"
	"github.com/verte-zerg/subcrack/internal/model"
	"github.com/verte-zerg/subcrack/internal/report"
	"github.com/verte-zerg/subcrack/internal/store"
	"github.com/verte-zerg/subcrack/internal/wordfreq"
)

const (
	defaultLang       = "ru"
	defaultTop        = 0
	defaultWordLimit  = 50000
	defaultHistoryCap = 20
	previewRunes      = 120
)

var (
	alphabetFlag     string
	uppercaseFlag    bool
	seedFlag         int64
	referenceFlag    string
	alphabetOnlyFlag bool

	inPath      string
	outPath     string
	keyOutPath  string
	keyPath     string
	plainPath   string
	mappingOut  string
	freqOut     string
	outDir      string
	decryptAsIs bool
	analyzeTop  int
	analyzeBars bool
	openInspect bool

	wordfreqLang  string
	wordfreqLimit int

	historyKind    string
	historySince   string
	historyLast    int
	historyInspect bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "subcrack",
		Short:         "Substitution cipher and frequency-analysis attack",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(newEncryptCmd())
	rootCmd.AddCommand(newDecryptCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newCrackCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newReferenceCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func addCipherFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&alphabetFlag, "alphabet", cipher.DefaultAlphabet, "cipher alphabet")
	cmd.Flags().BoolVar(&uppercaseFlag, "uppercase", true, "upper-case the input before processing")
}

func addCrackFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&referenceFlag, "reference", config.DefaultReferencePath(defaultLang), "reference frequency model (JSON or YAML)")
	cmd.Flags().BoolVar(&alphabetOnlyFlag, "alphabet-only", false, "analyze only alphabet characters")
}

// resolveSettings merges the config file into flags that were not set explicitly.
func resolveSettings(cmd *cobra.Command) (model.Settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "alphabet", &alphabetFlag, fileCfg.Cipher.Alphabet)
	applyBoolConfig(cmd, "uppercase", &uppercaseFlag, fileCfg.Cipher.Uppercase)
	applyInt64Config(cmd, "seed", &seedFlag, fileCfg.Cipher.Seed)
	applyStringConfig(cmd, "reference", &referenceFlag, fileCfg.Crack.Reference)
	applyBoolConfig(cmd, "alphabet-only", &alphabetOnlyFlag, fileCfg.Crack.AlphabetOnly)

	return model.Settings{
		Alphabet:     alphabetFlag,
		Uppercase:    uppercaseFlag,
		Seed:         seedFlag,
		Reference:    referenceFlag,
		AlphabetOnly: alphabetOnlyFlag,
	}, nil
}

func newEncryptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a text with a fresh random key",
		Args:  cobra.NoArgs,
		RunE:  runEncryptCmd,
	}
	addCipherFlags(cmd)
	cmd.Flags().StringVar(&inPath, "in", "", "plaintext file")
	cmd.Flags().StringVar(&outPath, "out", "", "ciphertext output file")
	cmd.Flags().StringVar(&keyOutPath, "key-out", "", "key output file (JSON or YAML)")
	cmd.Flags().Int64Var(&seedFlag, "seed", 0, "key generator seed (0: random)")
	mustMarkRequired(cmd, "in", "out", "key-out")
	return cmd
}

func runEncryptCmd(cmd *cobra.Command, _ []string) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	plaintext, err := fileio.ReadText(inPath)
	if err != nil {
		return fmt.Errorf("failed to read plaintext: %w", err)
	}
	ciphertext, key, err := encryptText(plaintext, settings, newGenerator(settings.Seed))
	if err != nil {
		return err
	}
	if err := fileio.WriteText(outPath, ciphertext); err != nil {
		return err
	}
	if err := fileio.WriteMapping(keyOutPath, key); err != nil {
		return err
	}

	hist, closeHist := openHistory()
	defer closeHist()
	recordRun(context.Background(), hist, model.Run{
		Kind:       model.KindEncrypt,
		InputPath:  inPath,
		OutputPath: outPath,
		Alphabet:   settings.Alphabet,
		TextLen:    len([]rune(ciphertext)),
		Mapped:     len(key),
	}, nil, nil)

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Encrypted %d characters into %s (key: %s)\n", len([]rune(ciphertext)), outPath, keyOutPath)
	return err
}

func newDecryptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt a text with a key or recovered mapping",
		Args:  cobra.NoArgs,
		RunE:  runDecryptCmd,
	}
	addCipherFlags(cmd)
	cmd.Flags().StringVar(&inPath, "in", "", "ciphertext file")
	cmd.Flags().StringVar(&keyPath, "key", "", "key or mapping file (JSON or YAML)")
	cmd.Flags().StringVar(&outPath, "out", "", "plaintext output file")
	cmd.Flags().BoolVar(&decryptAsIs, "as-is", false, "apply the mapping directly instead of inverting an encryption key")
	mustMarkRequired(cmd, "in", "key", "out")
	return cmd
}

func runDecryptCmd(cmd *cobra.Command, _ []string) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	alphabet, err := cipher.ParseAlphabet(settings.Alphabet)
	if err != nil {
		return err
	}
	ciphertext, err := fileio.ReadText(inPath)
	if err != nil {
		return fmt.Errorf("failed to read ciphertext: %w", err)
	}
	mapping, err := fileio.ReadMapping(keyPath)
	if err != nil {
		return fmt.Errorf("failed to read key: %w", err)
	}
	plaintext, err := decryptText(ciphertext, mapping, alphabet, decryptAsIs)
	if err != nil {
		return err
	}
	if err := fileio.WriteText(outPath, plaintext); err != nil {
		return err
	}

	hist, closeHist := openHistory()
	defer closeHist()
	recordRun(context.Background(), hist, model.Run{
		Kind:       model.KindDecrypt,
		InputPath:  inPath,
		OutputPath: outPath,
		Alphabet:   settings.Alphabet,
		TextLen:    len([]rune(plaintext)),
		Mapped:     len(mapping),
	}, nil, nil)

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Decrypted %d characters into %s\n", len([]rune(plaintext)), outPath)
	return err
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute the character frequency table of a text",
		Args:  cobra.NoArgs,
		RunE:  runAnalyzeCmd,
	}
	addCipherFlags(cmd)
	cmd.Flags().StringVar(&inPath, "in", "", "text file")
	cmd.Flags().StringVar(&outPath, "out", "", "frequency table output file (JSON or YAML)")
	cmd.Flags().BoolVar(&alphabetOnlyFlag, "alphabet-only", false, "analyze only alphabet characters")
	cmd.Flags().IntVar(&analyzeTop, "top", defaultTop, "rows to print (0: all)")
	cmd.Flags().BoolVar(&analyzeBars, "bars", false, "print a bar chart instead of a table")
	mustMarkRequired(cmd, "in")
	return cmd
}

func runAnalyzeCmd(cmd *cobra.Command, _ []string) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	if analyzeTop < 0 {
		return fmt.Errorf("--top must be >= 0")
	}
	text, err := fileio.ReadText(inPath)
	if err != nil {
		return fmt.Errorf("failed to read text: %w", err)
	}
	opts, err := attackOptions(settings)
	if err != nil {
		return err
	}
	table, err := analyzeText(text, opts)
	if err != nil {
		return err
	}
	if outPath != "" {
		if err := fileio.WriteTable(outPath, table); err != nil {
			return err
		}
		logErrf("Wrote %s\n", outPath)
	}
	if analyzeBars {
		return report.RenderBars(cmd.OutOrStdout(), "Character Frequencies", table, 0, false)
	}
	return report.RenderFrequencyTable(cmd.OutOrStdout(), "Character Frequencies", table, analyzeTop)
}

func analyzeText(text string, opts crack.Options) (frequency.Table, error) {
	if !opts.AlphabetOnly {
		return frequency.Analyze(text)
	}
	set := opts.Alphabet.Set()
	return frequency.AnalyzeFunc(text, func(r rune) bool {
		_, ok := set[r]
		return ok
	})
}

func newCrackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crack",
		Short: "Recover a substitution mapping by frequency analysis",
		Args:  cobra.NoArgs,
		RunE:  runCrackCmd,
	}
	addCipherFlags(cmd)
	addCrackFlags(cmd)
	cmd.Flags().StringVar(&inPath, "in", "", "ciphertext file")
	cmd.Flags().StringVar(&outPath, "out", "", "recovered text output file")
	cmd.Flags().StringVar(&mappingOut, "mapping-out", "", "recovered mapping output file")
	cmd.Flags().StringVar(&freqOut, "freq-out", "", "ciphertext frequency table output file")
	cmd.Flags().StringVar(&keyPath, "key", "", "real encryption key for evaluation")
	cmd.Flags().StringVar(&plainPath, "plain", "", "real plaintext for evaluation")
	cmd.Flags().BoolVar(&openInspect, "inspect", false, "open the interactive inspector")
	mustMarkRequired(cmd, "in", "out")
	return cmd
}

func runCrackCmd(cmd *cobra.Command, _ []string) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	ciphertext, err := fileio.ReadText(inPath)
	if err != nil {
		return fmt.Errorf("failed to read ciphertext: %w", err)
	}
	reference, err := fileio.ReadTable(settings.Reference)
	if err != nil {
		return referenceLoadError(settings.Reference, err)
	}
	opts, err := attackOptions(settings)
	if err != nil {
		return err
	}
	result, err := crack.Run(ciphertext, reference, opts)
	if err != nil {
		return err
	}
	if err := writeCrackOutputs(result, outPath, mappingOut, freqOut); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := report.RenderComparison(out, result); err != nil {
		return err
	}
	ev, err := evaluateAgainst(result, keyPath, plainPath, settings)
	if err != nil {
		return err
	}
	if ev != nil {
		if err := report.RenderEvaluation(out, *ev); err != nil {
			return err
		}
	}

	hist, closeHist := openHistory()
	defer closeHist()
	run, freqs, pairs := crackRun(inPath, outPath, settings, ciphertext, result, ev)
	if id := recordRun(context.Background(), hist, run, freqs, pairs); id != "" {
		logErrf("Recorded run %s\n", id)
	}

	if openInspect {
		return runInspector(filepath.Base(inPath), ciphertext, result)
	}
	return nil
}

func writeCrackOutputs(result crack.Result, textPath, mapPath, tablePath string) error {
	if err := fileio.WriteText(textPath, result.Recovered); err != nil {
		return err
	}
	if mapPath != "" {
		if err := fileio.WriteMapping(mapPath, result.Mapping); err != nil {
			return err
		}
	}
	if tablePath != "" {
		if err := fileio.WriteTable(tablePath, result.Observed); err != nil {
			return err
		}
	}
	return nil
}

// evaluateAgainst scores result when a real key is available. It returns nil
// without a key.
func evaluateAgainst(result crack.Result, keyFile, plainFile string, settings model.Settings) (*crack.Evaluation, error) {
	if keyFile == "" {
		return nil, nil
	}
	key, err := fileio.ReadMapping(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read key: %w", err)
	}
	plaintext := ""
	if plainFile != "" {
		raw, err := fileio.ReadText(plainFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read plaintext: %w", err)
		}
		plaintext = cipher.Normalize(raw, settings.Uppercase)
	}
	ev := crack.Evaluate(result, cipher.Key(key), plaintext)
	return &ev, nil
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Encrypt a text, then attack the ciphertext",
		Args:  cobra.NoArgs,
		RunE:  runPipelineCmd,
	}
	addCipherFlags(cmd)
	addCrackFlags(cmd)
	cmd.Flags().StringVar(&inPath, "in", "", "plaintext file")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "directory for all outputs")
	cmd.Flags().Int64Var(&seedFlag, "seed", 0, "key generator seed (0: random)")
	cmd.Flags().BoolVar(&openInspect, "inspect", false, "open the interactive inspector")
	mustMarkRequired(cmd, "in", "out-dir")
	return cmd
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	plaintext, err := fileio.ReadText(inPath)
	if err != nil {
		return fmt.Errorf("failed to read plaintext: %w", err)
	}
	hist, closeHist := openHistory()
	defer closeHist()

	outcome, err := runPipeline(context.Background(), plaintext, settings, outDir, hist)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "Ciphertext: %s\nKey: %s\n", outcome.cipherPath, outcome.keyPath); err != nil {
		return err
	}
	if outcome.result == nil {
		return nil
	}
	if err := report.RenderComparison(out, *outcome.result); err != nil {
		return err
	}
	if err := report.RenderEvaluation(out, outcome.evaluation); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "Recovered: %s\n", report.PreviewText(outcome.result.Recovered, previewRunes)); err != nil {
		return err
	}
	if openInspect {
		return runInspector(filepath.Base(inPath), outcome.ciphertext, *outcome.result)
	}
	return nil
}

type pipelineOutcome struct {
	cipherPath string
	keyPath    string
	ciphertext string
	result     *crack.Result
	evaluation crack.Evaluation
}

// runPipeline encrypts plaintext and attacks the ciphertext, writing every
// artifact into dir. A missing reference model skips the attack but keeps the
// ciphertext and key.
func runPipeline(ctx context.Context, plaintext string, settings model.Settings, dir string, hist historyRecorder) (pipelineOutcome, error) {
	var outcome pipelineOutcome
	prepared, err := prepareText(plaintext, settings)
	if err != nil {
		return outcome, err
	}
	ciphertext, key, err := encryptText(prepared, settings, newGenerator(settings.Seed))
	if err != nil {
		return outcome, err
	}
	outcome.ciphertext = ciphertext
	outcome.cipherPath = filepath.Join(dir, "ciphertext.txt")
	outcome.keyPath = filepath.Join(dir, "key.json")
	if err := fileio.WriteText(outcome.cipherPath, ciphertext); err != nil {
		return outcome, err
	}
	if err := fileio.WriteMapping(outcome.keyPath, key); err != nil {
		return outcome, err
	}
	recordRun(ctx, hist, model.Run{
		Kind:       model.KindEncrypt,
		OutputPath: outcome.cipherPath,
		Alphabet:   settings.Alphabet,
		TextLen:    len([]rune(ciphertext)),
		Mapped:     len(key),
	}, nil, nil)

	reference, err := fileio.ReadTable(settings.Reference)
	if err != nil {
		if errors.Is(err, fileio.ErrNotFound) {
			logErrf("Reference model %s not found; skipping the attack.\n", settings.Reference)
			logErrf("Build one with: subcrack reference wordfreq --lang %s\n", defaultLang)
			return outcome, nil
		}
		return outcome, referenceLoadError(settings.Reference, err)
	}
	opts, err := attackOptions(settings)
	if err != nil {
		return outcome, err
	}
	result, err := crack.Run(ciphertext, reference, opts)
	if err != nil {
		return outcome, err
	}
	recoveredPath := filepath.Join(dir, "recovered.txt")
	if err := writeCrackOutputs(result, recoveredPath, filepath.Join(dir, "mapping.json"), filepath.Join(dir, "frequencies.json")); err != nil {
		return outcome, err
	}
	outcome.result = &result
	outcome.evaluation = crack.Evaluate(result, key, prepared)

	run, freqs, pairs := crackRun(outcome.cipherPath, recoveredPath, settings, ciphertext, result, &outcome.evaluation)
	recordRun(ctx, hist, run, freqs, pairs)
	return outcome, nil
}

func newReferenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reference",
		Short: "Build reference frequency models",
	}
	cmd.AddCommand(newReferenceCorpusCmd())
	cmd.AddCommand(newReferenceWordfreqCmd())
	return cmd
}

func newReferenceCorpusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus <file>",
		Short: "Build a reference model from a text corpus",
		Args:  cobra.ExactArgs(1),
		RunE:  runReferenceCorpusCmd,
	}
	addCipherFlags(cmd)
	cmd.Flags().StringVar(&outPath, "out", "", "reference model output file (default: data dir)")
	return cmd
}

func runReferenceCorpusCmd(cmd *cobra.Command, args []string) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	alphabet, err := cipher.ParseAlphabet(settings.Alphabet)
	if err != nil {
		return err
	}
	text, err := fileio.ReadText(args[0])
	if err != nil {
		return fmt.Errorf("failed to read corpus: %w", err)
	}
	text = cipher.Normalize(text, settings.Uppercase)
	table, err := analyzeText(text, crack.Options{AlphabetOnly: true, Alphabet: alphabet})
	if err != nil {
		return fmt.Errorf("corpus %s: %w", args[0], err)
	}
	target := outPath
	if target == "" {
		target = config.DefaultReferencePath(defaultLang)
	}
	if err := fileio.WriteTable(target, table); err != nil {
		return err
	}
	logErrf("Wrote %s\n", target)
	return report.RenderFrequencyTable(cmd.OutOrStdout(), "Reference Model", table, 10)
}

func newReferenceWordfreqCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wordfreq",
		Short: "Build a reference model from wordfreq word lists",
		Args:  cobra.NoArgs,
		RunE:  runReferenceWordfreqCmd,
	}
	addCipherFlags(cmd)
	cmd.Flags().StringVar(&wordfreqLang, "lang", defaultLang, "wordfreq language code")
	cmd.Flags().StringVar(&outPath, "out", "", "reference model output file (default: data dir)")
	cmd.Flags().IntVar(&wordfreqLimit, "limit", defaultWordLimit, "number of most frequent words to use (0: all)")
	return cmd
}

func runReferenceWordfreqCmd(cmd *cobra.Command, _ []string) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	alphabet, err := cipher.ParseAlphabet(settings.Alphabet)
	if err != nil {
		return err
	}
	if wordfreqLimit < 0 {
		return fmt.Errorf("--limit must be >= 0")
	}
	lang := strings.TrimSpace(strings.ToLower(wordfreqLang))
	if lang == "" {
		return fmt.Errorf("--lang must not be empty")
	}
	target := outPath
	if target == "" {
		target = config.DefaultReferencePath(lang)
	}

	logErrln("Fetching wordfreq metadata...")
	wheel, err := wordfreq.DownloadLatestWheel(context.Background(), config.DefaultWordfreqCacheDir())
	if err != nil {
		return fmt.Errorf("failed to download wordfreq wheel: %w", err)
	}
	if wheel.Cached {
		logErrf("Using cached wheel %s\n", wheel.Filename)
	} else {
		logErrf("Downloaded wheel %s\n", wheel.Filename)
	}
	langs, err := wordfreq.ListLanguages(wheel.Path)
	if err != nil {
		return fmt.Errorf("failed to list languages: %w", err)
	}
	if !containsString(langs, lang) {
		return fmt.Errorf("unknown language %q (available: %s)", lang, strings.Join(langs, ", "))
	}

	logErrf("Counting %s letters...\n", lang)
	table, err := wordfreq.LetterFrequencies(wheel.Path, lang, alphabet, wordfreqLimit)
	if err != nil {
		return err
	}
	if err := fileio.WriteTable(target, table); err != nil {
		return err
	}
	logErrf("Wrote %s\n", target)
	return report.RenderFrequencyTable(cmd.OutOrStdout(), "Reference Model", table, 10)
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyKind, "kind", "", "run kind filter (encrypt, decrypt, crack)")
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", defaultHistoryCap, "limit to last N runs (0: all)")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a recorded attack",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShowCmd,
	}
	show.Flags().BoolVar(&historyInspect, "inspect", false, "open the interactive inspector")
	cmd.AddCommand(show)
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	switch historyKind {
	case "", model.KindEncrypt, model.KindDecrypt, model.KindCrack:
	default:
		return fmt.Errorf("unknown --kind %q", historyKind)
	}
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	since, err := parseSince(historySince)
	if err != nil {
		return err
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)

	runs, err := st.ListRuns(context.Background(), model.HistoryFilter{Kind: historyKind, Since: since, Last: historyLast})
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	return report.RenderHistory(cmd.OutOrStdout(), runs)
}

func runHistoryShowCmd(cmd *cobra.Command, args []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)

	ctx := context.Background()
	run, err := st.GetRun(ctx, args[0])
	if err != nil {
		return err
	}
	freqs, err := st.GetRunFrequencies(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("failed to load frequencies: %w", err)
	}
	pairs, err := st.GetRunMapping(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("failed to load mapping: %w", err)
	}

	out := cmd.OutOrStdout()
	if err := report.RenderHistory(out, []model.Run{run}); err != nil {
		return err
	}
	if run.Kind != model.KindCrack {
		return nil
	}
	result := resultFromHistory(freqs, pairs)
	if err := report.RenderComparison(out, result); err != nil {
		return err
	}
	if !historyInspect {
		return nil
	}
	ciphertext, err := fileio.ReadText(run.InputPath)
	if err != nil {
		logErrf("failed to read %s: %v\n", run.InputPath, err)
	}
	result.Recovered = cipher.Substitute(ciphertext, result.Mapping)
	return runInspector(run.ID, ciphertext, result)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func runInspector(title, ciphertext string, result crack.Result) error {
	program := tea.NewProgram(inspect.NewModel(title, ciphertext, result), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run inspector: %w", err)
	}
	return nil
}

// openHistory opens the run store. A store that cannot be opened disables
// history for this invocation.
func openHistory() (historyRecorder, func()) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		logErrf("history disabled: %v\n", err)
		return nil, func() {}
	}
	return st, func() { closeStore(st) }
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func referenceLoadError(path string, err error) error {
	if !errors.Is(err, fileio.ErrNotFound) {
		return fmt.Errorf("failed to load reference model: %w", err)
	}
	lines := []string{
		fmt.Sprintf("failed to load reference model: %v", err),
		fmt.Sprintf("expected reference model at: %s", path),
		fmt.Sprintf("Build one: subcrack reference wordfreq --lang %s", defaultLang),
		"Or from a corpus: subcrack reference corpus <file>",
	}
	return fmt.Errorf("%s: %w", strings.Join(lines, "\n"), fileio.ErrNotFound)
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func mustMarkRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# subcrack configuration
# Uncomment a value to enable it. CLI flags override config values.

[cipher]
# alphabet = %q   # Cipher alphabet
# uppercase = true          # Upper-case input before processing
# seed = 0                  # Key generator seed (0: random)

[crack]
# reference = %q   # Reference frequency model
# alphabet-only = false     # Analyze only alphabet characters
`,
		cipher.DefaultAlphabet,
		config.DefaultReferencePath(defaultLang),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
