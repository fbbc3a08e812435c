package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/subcrack/internal/crack"
	"github.com/verte-zerg/subcrack/internal/frequency"
	"github.com/verte-zerg/subcrack/internal/model"
)

func writeLines(w io.Writer, title string, lines []string) error {
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderFrequencyTable prints the ranked table, limited to the first limit rows when limit > 0.
func RenderFrequencyTable(w io.Writer, title string, table frequency.Table, limit int) error {
	entries := table.Sorted()
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			CharLabel(e.Char),
			fmt.Sprintf("%.5f", e.Freq),
		})
	}
	lines := formatTable([]string{"Rank", "Char", "Frequency"}, rows, map[int]bool{0: true, 2: true})
	return writeLines(w, title, lines)
}

// RenderComparison prints observed and reference ranks side by side with the chosen image.
func RenderComparison(w io.Writer, result crack.Result) error {
	ranks := crack.Ranks(result)
	rows := make([][]string, 0, len(ranks))
	for i, r := range ranks {
		row := []string{fmt.Sprintf("%d", i+1), "", "", "", "", ""}
		if r.Observed != nil {
			row[1] = CharLabel(r.Observed.Char)
			row[2] = fmt.Sprintf("%.5f", r.Observed.Freq)
			row[5] = "-"
			if r.HasImage {
				row[5] = CharLabel(r.Assigned)
			}
		}
		if r.Reference != nil {
			row[3] = CharLabel(r.Reference.Char)
			row[4] = fmt.Sprintf("%.5f", r.Reference.Freq)
		}
		rows = append(rows, row)
	}
	headers := []string{"Rank", "Cipher", "Observed", "Reference", "Expected", "Mapped To"}
	lines := formatTable(headers, rows, map[int]bool{0: true, 2: true, 4: true})
	return writeLines(w, "Rank Comparison", lines)
}

// RenderMapping prints a mapping ordered by source character.
func RenderMapping(w io.Writer, title string, mapping map[rune]rune) error {
	if len(mapping) == 0 {
		_, err := fmt.Fprintln(w, "Mapping is empty.")
		return err
	}
	pairs := frequency.Mapping(mapping).Pairs()
	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{CharLabel(p[0]), CharLabel(p[1])})
	}
	lines := formatTable([]string{"From", "To"}, rows, nil)
	return writeLines(w, title, lines)
}

// RenderEvaluation prints accuracy metrics against the real key.
func RenderEvaluation(w io.Writer, ev crack.Evaluation) error {
	lines := []string{
		fmt.Sprintf("Mapped: %d of %d characters (%.2f%%)", ev.Mapped, ev.Distinct, ev.Coverage*100),
		fmt.Sprintf("Key accuracy: %d of %d correct (%.2f%%)", ev.Correct, ev.Mapped, ev.KeyAccuracy*100),
	}
	if ev.TextAccuracy >= 0 {
		lines = append(lines, fmt.Sprintf("Text accuracy: %.2f%%", ev.TextAccuracy*100))
	}
	return writeLines(w, "Evaluation", lines)
}

// RenderHistory prints stored runs.
func RenderHistory(w io.Writer, runs []model.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			shortID(r.ID),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Kind,
			fmt.Sprintf("%d", r.TextLen),
			fmt.Sprintf("%d/%d", r.Mapped, r.Mapped+r.Unmapped),
			percent(r.KeyAccuracy),
			percent(r.TextAccuracy),
			r.InputPath,
		})
	}
	headers := []string{"ID", "When", "Kind", "Length", "Mapped", "Key Acc", "Text Acc", "Input"}
	lines := formatTable(headers, rows, map[int]bool{3: true, 4: true, 5: true, 6: true})
	return writeLines(w, "", lines)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func percent(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}

// PreviewText shortens text to at most n runes on a single line.
func PreviewText(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if n <= 0 || len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "…"
}
