package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/hydro-pulse/pkg/catalog"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/entries"
)

// Zone id prefixes for mouse hit testing.
const (
	zoneCard   = "card:"
	zoneDevice = "device:"
	zoneEntry  = "entry:"
)

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}
	if m.editing {
		return m.handleEditKey(msg)
	}
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	if key.Matches(msg, m.keys.Help) {
		m.showHelp = !m.showHelp
		return m, nil
	}
	if m.mode == viewSettings {
		return m.handleSettingsKey(msg)
	}
	return m.handleDashboardKey(msg)
}

func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.detail = false
	case key.Matches(msg, m.keys.Open):
		m.detail = !m.detail
	case key.Matches(msg, m.keys.Next):
		m.CycleFocusForward()
	case key.Matches(msg, m.keys.Prev):
		m.CycleFocusBackward()
	case key.Matches(msg, m.keys.Settings):
		return m.openSettings()
	}
	return m, nil
}

// openSettings switches to the settings view and re-fetches every entry so
// the editor starts from the controller's current values.
func (m Model) openSettings() (tea.Model, tea.Cmd) {
	m.mode = viewSettings
	m.detail = false
	m.status = ""
	return m, FetchAllCmd(m.core.Gateway(), m.core.EntryKeys(), m.opts.RequestTimeout)
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = viewDashboard
	case key.Matches(msg, m.keys.Up):
		m.moveRow(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveRow(1)
	case key.Matches(msg, m.keys.Left):
		m.moveDevice(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveDevice(1)
	case key.Matches(msg, m.keys.Section):
		m.toggleSection()
	case key.Matches(msg, m.keys.Save):
		if k := m.SelectedEntry(); k != "" {
			return m, m.saveKey(k)
		}
	case key.Matches(msg, m.keys.Reset):
		if k := m.SelectedEntry(); k != "" {
			if err := m.core.Reset(k); err != nil {
				m.status = fmt.Sprintf("Reset failed: %v", err)
			} else {
				m.status = "Reset " + k
			}
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, FetchAllCmd(m.core.Gateway(), m.core.EntryKeys(), m.opts.RequestTimeout)
	case key.Matches(msg, m.keys.Edit):
		return m.beginEdit()
	}
	return m, nil
}

// beginEdit edits the selected entry. Booleans toggle and selects step to
// the next option in place; other types open the text editor.
func (m Model) beginEdit() (tea.Model, tea.Cmd) {
	k := m.SelectedEntry()
	if k == "" {
		return m, nil
	}
	store := m.core.Store()
	if store.Locked(k) {
		m.status = "Locked: enable maintenance mode to change internal entries"
		return m, nil
	}
	e, _ := store.Entry(k)
	st, _ := store.State(k)

	switch e.Type {
	case catalog.TypeBool:
		m.recordEdit(k, entries.CheckedDraft(!st.Draft.Checked))
		return m, nil
	case catalog.TypeSelect:
		if len(e.Options) > 0 {
			m.recordEdit(k, entries.TextDraft(nextOption(e, st.Draft.Text)))
			return m, nil
		}
	}

	m.editing = true
	m.input.SetValue(editText(e.Type, st.Draft.Text))
	m.input.CursorEnd()
	return m, m.input.Focus()
}

// recordEdit stores d as the draft of k, reporting failures on the
// status line.
func (m *Model) recordEdit(k string, d entries.Draft) {
	if err := m.core.RecordEdit(k, d); err != nil {
		m.status = fmt.Sprintf("Edit failed: %v", err)
	}
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		k := m.SelectedEntry()
		if e, ok := m.core.Store().Entry(k); ok {
			m.recordEdit(k, entries.TextDraft(draftText(e.Type, m.input.Value())))
		}
		m.editing = false
		m.input.Blur()
		return m, nil
	case tea.KeyEsc:
		m.editing = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// editText converts a draft into single-line editor text. List drafts are
// newline separated; the editor shows them comma separated.
func editText(t catalog.ValueType, draft string) string {
	if t == catalog.TypeList {
		return strings.Join(strings.Split(draft, "\n"), ", ")
	}
	return draft
}

// draftText is the inverse of editText.
func draftText(t catalog.ValueType, text string) string {
	if t == catalog.TypeList {
		return strings.ReplaceAll(text, ",", "\n")
	}
	return text
}

// nextOption returns the option value following current, wrapping around.
func nextOption(e catalog.Entry, current string) string {
	cur, err := strconv.ParseFloat(strings.TrimSpace(current), 64)
	next := e.Options[0].Value
	if err == nil {
		for i, o := range e.Options {
			if o.Value == cur {
				next = e.Options[(i+1)%len(e.Options)].Value
				break
			}
		}
	}
	return strconv.FormatFloat(next, 'f', -1, 64)
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if m.mode == viewDashboard {
		for _, w := range m.core.Widgets() {
			if z := m.zones.Get(zoneCard + w.ID); z != nil && z.InBounds(msg) {
				m.FocusWidget(w.ID)
				m.detail = true
				return m, nil
			}
		}
		return m, nil
	}
	if m.editing {
		return m, nil
	}
	for _, d := range m.devices() {
		if z := m.zones.Get(zoneDevice + d.ID); z != nil && z.InBounds(msg) {
			m.SelectDevice(d.ID)
			return m, nil
		}
	}
	for _, e := range m.rows() {
		if z := m.zones.Get(zoneEntry + e.Key); z != nil && z.InBounds(msg) {
			m.SelectEntry(e.Key)
			return m, nil
		}
	}
	return m, nil
}
