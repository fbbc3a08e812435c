package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/verte-zerg/subcrack/internal/frequency"
)

const (
	minBarWidth         = 10
	terminalWidthBackup = 80
	colorReset          = "\x1b[0m"
	barColor            = "\x1b[36m"
)

var barEighths = []rune{' ', '▏', '▎', '▍', '▌', '▋', '▊', '▉', '█'}

// RenderBars draws one horizontal bar per character, scaled to the most
// frequent entry. width <= 0 uses the terminal width.
func RenderBars(w io.Writer, title string, table frequency.Table, width int, forceColor bool) error {
	entries := table.Sorted()
	if len(entries) == 0 {
		return nil
	}
	labelWidth := 0
	for _, e := range entries {
		if lw := runewidth.StringWidth(CharLabel(e.Char)); lw > labelWidth {
			labelWidth = lw
		}
	}
	const valueWidth = 8
	if width <= 0 {
		width = terminalWidth()
	}
	barWidth := BarWidthFor(width, labelWidth, valueWidth)
	useColor := shouldUseColor(w, forceColor)
	maxFreq := entries[0].Freq

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		bar := renderBar(e.Freq, maxFreq, barWidth)
		if useColor {
			bar = barColor + bar + colorReset
		}
		label := runewidth.FillRight(CharLabel(e.Char), labelWidth)
		lines = append(lines, fmt.Sprintf("%s │%s %*.4f", label, bar, valueWidth-1, e.Freq))
	}
	return writeLines(w, title, lines)
}

// BarWidthFor returns the bar area available in a line of totalWidth cells.
func BarWidthFor(totalWidth, labelWidth, valueWidth int) int {
	bar := totalWidth - labelWidth - valueWidth - 3
	if bar < minBarWidth {
		bar = minBarWidth
	}
	return bar
}

func renderBar(v, maxVal float64, width int) string {
	if maxVal <= 0 || width <= 0 {
		return strings.Repeat(" ", width)
	}
	cells := v / maxVal * float64(width)
	full := int(math.Floor(cells))
	if full > width {
		full = width
	}
	rem := int(math.Round((cells - float64(full)) * 8))
	var b strings.Builder
	b.WriteString(strings.Repeat(string(barEighths[8]), full))
	used := full
	if used < width && rem > 0 {
		b.WriteRune(barEighths[rem])
		used++
	}
	b.WriteString(strings.Repeat(" ", width-used))
	return b.String()
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
