// Package inspect provides the Bubble Tea viewer for attack results.
package inspect

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/subcrack/internal/crack"
	"github.com/verte-zerg/subcrack/internal/report"
)

const (
	tabText = iota
	tabFrequencies
	tabMapping
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	resolvedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	unresolvedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	passthroughStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	tableMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea inspector.
type Model struct {
	title      string
	ciphertext []rune
	result     crack.Result

	tabs      []string
	activeTab int
	viewports []viewport.Model
	freqTable table.Model

	width  int
	height int
}

// NewModel builds an inspector for result. ciphertext may be empty when the
// input text is no longer available.
func NewModel(title, ciphertext string, result crack.Result) *Model {
	m := &Model{
		title:      title,
		ciphertext: []rune(ciphertext),
		result:     result,
		tabs:       []string{"Text", "Frequencies", "Mapping"},
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.freqTable = buildFrequencyTable(result, 0, 1)
	m.renderTabContents()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab", "right", "l":
			m.moveTab(1)
			return m, nil
		case "shift+tab", "left", "h":
			m.moveTab(-1)
			return m, nil
		case "1", "2", "3":
			m.setTab(int(msg.String()[0] - '1'))
			return m, nil
		}
		if m.activeTab == tabFrequencies {
			var cmd tea.Cmd
			m.freqTable, cmd = m.freqTable.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	var body string
	if m.activeTab == tabFrequencies {
		body = tableMutedStyle.Render(m.freqTable.View())
	} else {
		body = m.viewports[m.activeTab].View()
	}
	body = fitLines(body, m.width, bodyHeight)
	footer := fitLines(headerStyle.Render("Nav: tab/shift+tab or 1-3  Scroll: up/down/pgup/pgdn  Quit: q"), m.width, 1)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	headerHeight = tabsHeight + 1
	bodyHeight = m.height - headerHeight - 1
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight
}

func (m *Model) updateLayout() {
	_, bodyHeight := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.freqTable.SetWidth(m.width)
	m.freqTable.SetHeight(maxInt(1, bodyHeight-1))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := (m.activeTab + delta + count) % count
	m.setTab(next)
}

func (m *Model) setTab(idx int) {
	if idx < 0 || idx >= len(m.tabs) {
		return
	}
	m.activeTab = idx
	if idx == tabFrequencies {
		m.freqTable.Focus()
	} else {
		m.freqTable.Blur()
	}
}

func (m *Model) renderHeader() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	summary := fmt.Sprintf("%s  mapped=%d  unmapped=%d", m.title, len(m.result.Mapping), len(m.result.Unmapped))
	return tabs + "\n" + headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderTabContents() {
	m.viewports[tabText].SetContent(m.renderText())
	m.viewports[tabMapping].SetContent(m.renderMapping())
}

func (m *Model) renderText() string {
	if len(m.ciphertext) == 0 {
		return "Ciphertext is not available."
	}
	runes := buildStyledRunes(m.ciphertext, m.result.Mapping, m.result.Observed)
	return wrapStyledRunes(runes, m.width)
}

func (m *Model) renderMapping() string {
	var buf bytes.Buffer
	if err := report.RenderMapping(&buf, "Recovered Mapping", m.result.Mapping); err != nil {
		return fmt.Sprintf("Failed to render mapping: %v", err)
	}
	if len(m.result.Unmapped) > 0 {
		labels := make([]string, 0, len(m.result.Unmapped))
		for _, r := range m.result.Unmapped {
			labels = append(labels, report.CharLabel(r))
		}
		buf.WriteString("Unmapped: " + strings.Join(labels, " ") + "\n")
	}
	return strings.TrimRight(buf.String(), "\n")
}

func buildFrequencyTable(result crack.Result, width, height int) table.Model {
	columns := []table.Column{
		{Title: "Rank", Width: 5},
		{Title: "Cipher", Width: 9},
		{Title: "Observed", Width: 9},
		{Title: "Reference", Width: 9},
		{Title: "Expected", Width: 9},
		{Title: "Mapped To", Width: 9},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(frequencyRows(result)),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Bold(true)
	styles.Selected = styles.Cell.Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	t.SetStyles(styles)
	return t
}

func frequencyRows(result crack.Result) []table.Row {
	ranks := crack.Ranks(result)
	rows := make([]table.Row, 0, len(ranks))
	for i, r := range ranks {
		row := table.Row{fmt.Sprintf("%d", i+1), "", "", "", "", ""}
		if r.Observed != nil {
			row[1] = report.CharLabel(r.Observed.Char)
			row[2] = fmt.Sprintf("%.5f", r.Observed.Freq)
			row[5] = "-"
			if r.HasImage {
				row[5] = report.CharLabel(r.Assigned)
			}
		}
		if r.Reference != nil {
			row[3] = report.CharLabel(r.Reference.Char)
			row[4] = fmt.Sprintf("%.5f", r.Reference.Freq)
		}
		rows = append(rows, row)
	}
	return rows
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
