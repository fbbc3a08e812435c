package report

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/verte-zerg/subcrack/internal/frequency"
)

func TestRenderBarsScalesToMax(t *testing.T) {
	var buf bytes.Buffer
	table := frequency.Table{'А': 0.5, 'Б': 0.25, ' ': 0.25}
	if err := RenderBars(&buf, "Bars", table, 40, false); err != nil {
		t.Fatalf("RenderBars failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 || lines[0] != "Bars" {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
	barWidth := BarWidthFor(40, utf8.RuneCountInString("<space>"), 8)
	if got := strings.Count(lines[1], "█"); got != barWidth {
		t.Fatalf("expected full bar of %d cells, got %d", barWidth, got)
	}
	if got := strings.Count(lines[2], "█"); got != barWidth/2 {
		t.Fatalf("expected half bar of %d cells, got %d", barWidth/2, got)
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected no color codes for non-terminal writer")
	}
}

func TestBarWidthForMinimum(t *testing.T) {
	if got := BarWidthFor(5, 7, 8); got != minBarWidth {
		t.Fatalf("expected minimum width %d, got %d", minBarWidth, got)
	}
}

func TestRenderBarPartialCell(t *testing.T) {
	bar := renderBar(0.5, 1, 3)
	if bar != "█▌ " {
		t.Fatalf("unexpected bar %q", bar)
	}
}
