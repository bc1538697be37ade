package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"gitlab.com/tinyland/lab/hydro-pulse/pkg/catalog"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/entries"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/widgets"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(widgets.ColorAccent))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(widgets.ColorDim))
	floodStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1E90FF"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(widgets.ColorBorderFocus))
	dirtyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F6AE2D"))
	tickerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5E7EB"))
)

// View renders the current view.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Initializing..."
	}

	var body string
	switch {
	case m.mode == viewSettings:
		body = m.settingsView()
	case m.detail:
		body = m.detailView()
	default:
		body = m.gridView()
	}

	parts := []string{m.headerView(), body, m.tickerView(), m.footerView()}
	return m.zones.Scan(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) headerView() string {
	s := m.core.Summary()
	field := func(label, value string) string {
		if value == "" {
			value = "--"
		}
		return dimStyle.Render(label+" ") + value
	}
	line := strings.Join([]string{
		titleStyle.Render("HYDRO-PULSE"),
		field("Mode", s.Mode),
		field("Next switch", s.Countdown),
		field("Phase", s.PlainType),
		field("Swing", s.SwingState),
	}, dimStyle.Render(" │ "))
	if s.Flooding() {
		line += "  " + floodStyle.Render("≈ FLOODING")
	}
	if conn := m.connectionView(); conn != "" {
		line += "  " + conn
	}
	return ansi.Truncate(line, m.width, "…")
}

func (m Model) connectionView() string {
	names := make([]string, 0, len(m.connected))
	for n := range m.connected {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, n := range names {
		c := widgets.StatusError.Color()
		if m.connected[n] {
			c = widgets.StatusWorking.Color()
		}
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render("●")+" "+n)
	}
	return strings.Join(parts, " ")
}

func (m Model) gridView() string {
	ws := m.core.Widgets()
	if len(ws) == 0 {
		return dimStyle.Render("no widgets")
	}
	l := m.opts.Layout
	cols := max(1, l.Columns)
	if l.CardWidth > 0 {
		cols = max(1, min(l.Columns, m.width/l.CardWidth))
	}

	var rows []string
	for start := 0; start < len(ws); start += cols {
		end := min(start+cols, len(ws))
		cards := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			card := widgets.Card(ws[i], l.CardWidth, i == m.focused)
			cards = append(cards, m.zones.Mark(zoneCard+ws[i].ID, card))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) detailView() string {
	w, ok := m.core.Widget(m.FocusedWidget())
	if !ok {
		return m.gridView()
	}
	return widgets.Detail(w, min(m.width, 60))
}

func (m Model) tickerView() string {
	return tickerStyle.Render(m.core.Ticker().View(m.width))
}

func (m Model) footerView() string {
	bindings := m.keys.DashboardHelp()
	if m.mode == viewSettings {
		bindings = m.keys.SettingsHelp()
	}
	var help string
	if m.showHelp || m.status == "" {
		help = helpLine(bindings)
	}
	status := m.status
	if len(m.saving) > 0 {
		status = m.spinner.View() + " " + status
	}
	return ansi.Truncate(strings.TrimSpace(status+"  "+dimStyle.Render(help)), m.width, "…")
}

func helpLine(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " · ")
}

func (m Model) settingsView() string {
	store := m.core.Store()
	ds := m.devices()

	tabs := make([]string, 0, len(ds))
	for i, d := range ds {
		name := " " + d.Name + " "
		if i == clamp(m.device, len(ds)) {
			name = selectedStyle.Reverse(true).Render(name)
		}
		tabs = append(tabs, m.zones.Mark(zoneDevice+d.ID, name))
	}

	section := "config"
	if m.section == catalog.SectionInternal {
		section = "internal"
	}
	maint := dimStyle.Render("maintenance off")
	if store.MaintenanceEnabled() {
		maint = dirtyStyle.Render("maintenance ON")
	}
	lines := []string{
		strings.Join(tabs, " "),
		dimStyle.Render("section: ") + section + "  " + maint,
		"",
	}

	var keys []string
	for _, e := range m.rows() {
		keys = append(keys, e.Key)
	}
	selected := m.SelectedEntry()
	for _, v := range store.Views(keys) {
		lines = append(lines, m.zones.Mark(zoneEntry+v.Entry.Key, m.entryRow(v, v.Entry.Key == selected)))
	}
	if len(keys) == 0 {
		lines = append(lines, dimStyle.Render("no entries in this section"))
	}
	if m.editing {
		lines = append(lines, "", m.input.View())
	}
	return strings.Join(lines, "\n")
}

func (m Model) entryRow(v entries.View, selected bool) string {
	marker := "  "
	if v.Dirty {
		marker = dirtyStyle.Render("● ")
	}
	label := fmt.Sprintf("%-18s", ansi.Truncate(v.Entry.Label, 18, "…"))
	if selected {
		label = selectedStyle.Render(label)
	}
	value := DraftDisplay(v.Entry, v.State.Draft)
	if v.Entry.Unit != "" {
		value += " " + v.Entry.Unit
	}
	var flags []string
	if v.Locked {
		flags = append(flags, "locked")
	}
	if m.saving[v.Entry.Key] {
		flags = append(flags, m.spinner.View()+" saving")
	}
	row := marker + label + " " + value
	if len(flags) > 0 {
		row += "  " + dimStyle.Render(strings.Join(flags, " "))
	}
	return row
}

// DraftDisplay renders a draft for the settings table.
func DraftDisplay(e catalog.Entry, d entries.Draft) string {
	switch e.Type {
	case catalog.TypeBool:
		if d.Checked {
			return "[x]"
		}
		return "[ ]"
	case catalog.TypeList:
		if d.Text == "" {
			return "(empty)"
		}
		return editText(e.Type, d.Text)
	case catalog.TypeSelect:
		if v, ok := entries.Parse(e.Type, d).(float64); ok && d.Text != "" {
			if label, ok := e.OptionLabel(v); ok {
				return label
			}
		}
	}
	if d.Text == "" {
		return "--"
	}
	return d.Text
}
