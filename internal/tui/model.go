package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chboard/chboard/internal/engine"
	"github.com/chboard/chboard/internal/report"
)

// entry is one table row in the selector.
type entry struct {
	name     string
	selected bool
	visible  bool // false when filtered out by search
}

// Model is the bubbletea model for the interactive report browser: a
// multi-select over table names with both compression datasets rendered
// below, honoring the selection.
type Model struct {
	eng        *engine.Engine
	legacyText bool

	rep     *report.Report
	entries []entry
	cursor  int

	filterInput textinput.Model
	filtering   bool

	loading bool
	err     error

	width  int
	height int
}

// New creates a report browser that loads its first report on start.
func New(eng *engine.Engine) Model {
	ti := textinput.New()
	ti.Placeholder = "table name"
	ti.CharLimit = 64

	return Model{
		eng:         eng,
		legacyText:  eng.Config().Compat.TextCompression,
		filterInput: ti,
		loading:     true,
		width:       100,
		height:      24,
	}
}

type reportMsg struct {
	rep *report.Report
	err error
}

func loadReport(eng *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		rep, err := eng.Run(context.Background())
		return reportMsg{rep: rep, err: err}
	}
}

func (m Model) Init() tea.Cmd {
	return loadReport(m.eng)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case reportMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.setReport(msg.rep)
		}
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

// setReport installs a fresh report, preserving the previous selection for
// tables that still exist and selecting new ones by default.
func (m *Model) setReport(rep *report.Report) {
	previous := make(map[string]bool, len(m.entries))
	known := m.rep != nil
	for _, e := range m.entries {
		previous[e.name] = e.selected
	}

	m.rep = rep
	names := rep.TableNames()
	m.entries = make([]entry, len(names))
	for i, n := range names {
		sel := true
		if known {
			if was, ok := previous[n]; ok {
				sel = was
			}
		}
		m.entries[i] = entry{name: n, selected: sel, visible: true}
	}
	m.applyFilter()
	if m.cursor >= len(m.entries) {
		m.cursor = 0
	}
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "up", "k":
		m.moveCursor(-1)

	case "down", "j":
		m.moveCursor(1)

	case " ":
		if i, ok := m.currentIndex(); ok {
			m.entries[i].selected = !m.entries[i].selected
		}

	case "a":
		for i := range m.entries {
			m.entries[i].selected = true
		}

	case "n":
		for i := range m.entries {
			m.entries[i].selected = false
		}

	case "/":
		m.filtering = true
		m.filterInput.SetValue("")
		m.filterInput.Focus()
		return m, textinput.Blink

	case "r":
		if !m.loading {
			m.loading = true
			return m, loadReport(m.eng)
		}
	}

	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.filterInput.SetValue("")
		m.applyFilter()
		return m, nil

	case "enter":
		m.filtering = false
		// Keep the filter applied
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *Model) applyFilter() {
	needle := strings.ToLower(m.filterInput.Value())
	for i := range m.entries {
		m.entries[i].visible = needle == "" || strings.Contains(strings.ToLower(m.entries[i].name), needle)
	}
	if len(m.visibleIndexes()) > 0 && m.cursor >= len(m.visibleIndexes()) {
		m.cursor = len(m.visibleIndexes()) - 1
	}
}

func (m Model) visibleIndexes() []int {
	var idxs []int
	for i, e := range m.entries {
		if e.visible {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

func (m *Model) moveCursor(delta int) {
	visible := m.visibleIndexes()
	if len(visible) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(visible) {
		m.cursor = len(visible) - 1
	}
}

func (m Model) currentIndex() (int, bool) {
	visible := m.visibleIndexes()
	if len(visible) == 0 || m.cursor >= len(visible) {
		return 0, false
	}
	return visible[m.cursor], true
}

func (m Model) selectedNames() []string {
	names := []string{}
	for _, e := range m.entries {
		if e.selected {
			names = append(names, e.name)
		}
	}
	return names
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("ClickHouse Compression Analysis") + "\n\n")

	if m.loading {
		b.WriteString(dimStyle.Render("  Running report pipeline...") + "\n")
		return b.String()
	}
	if m.err != nil {
		b.WriteString(errStyle.Render("  Error: "+m.err.Error()) + "\n\n")
		b.WriteString(dimStyle.Render("  r retry · q quit") + "\n")
		return b.String()
	}

	if m.filtering {
		b.WriteString(highlightStyle.Render("  Filter: ") + m.filterInput.View() + "\n\n")
	} else if m.filterInput.Value() != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  Filter: %s (/ to change, esc in filter to clear)", m.filterInput.Value())) + "\n\n")
	}

	visible := m.visibleIndexes()
	if len(visible) == 0 {
		b.WriteString(dimStyle.Render("  No tables match the filter") + "\n")
	}
	for vi, idx := range visible {
		e := m.entries[idx]

		checkbox := "[ ]"
		if e.selected {
			checkbox = selectedStyle.Render("[x]")
		}
		cursor := "  "
		if vi == m.cursor {
			cursor = highlightStyle.Render("> ")
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, checkbox, e.name))
	}
	b.WriteString("\n")

	filtered := m.rep.Filter(m.selectedNames())
	b.WriteString(m.renderLogical(filtered))
	b.WriteString("\n")
	b.WriteString(m.renderPhysical(filtered))

	b.WriteString("\n" + dimStyle.Render("  space toggle · a all · n none · / filter · r refresh · q quit") + "\n")
	return b.String()
}

func (m Model) renderLogical(r *report.Report) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("  Logical Compression") + "\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %-28s %14s %14s %9s %12s", "Table", "Event Count", "Row Count", "Ratio", "Compression")) + "\n")
	for _, row := range r.Logical {
		b.WriteString(fmt.Sprintf("  %-28s %14d %14d %9.4f %11.2f%%\n",
			truncate(row.Table, 28), row.EventCount, row.RowCount, row.Ratio, row.LogicalCompression))
	}
	if len(r.Logical) == 0 {
		b.WriteString(dimStyle.Render("  (no rows)") + "\n")
	}
	return b.String()
}

func (m Model) renderPhysical(r *report.Report) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("  Physical Compression") + "\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %-28s %14s %16s %9s %12s", "Table", "Compressed", "Uncompressed", "Ratio", "Compression")) + "\n")
	for _, row := range r.Physical {
		compression := fmt.Sprintf("%11.2f%%", row.PhysicalCompression)
		if m.legacyText {
			compression = fmt.Sprintf("%12s", report.FormatPercent(row.PhysicalCompression))
		}
		b.WriteString(fmt.Sprintf("  %-28s %14s %16s %9.4f %s\n",
			truncate(row.Table, 28), row.CompressedSize, row.UncompressedSize, row.Ratio, compression))
	}
	if len(r.Physical) == 0 {
		b.WriteString(dimStyle.Render("  (no rows)") + "\n")
	}
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
