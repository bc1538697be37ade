package app

import "gitlab.com/tinyland/lab/hydro-pulse/pkg/catalog"

// CycleFocusForward moves focus to the next widget, wrapping around to the
// first widget after the last.
func (m *Model) CycleFocusForward() {
	n := len(m.core.Widgets())
	if n == 0 {
		return
	}
	m.focused = (m.focused + 1) % n
}

// CycleFocusBackward moves focus to the previous widget, wrapping around to
// the last widget before the first.
func (m *Model) CycleFocusBackward() {
	n := len(m.core.Widgets())
	if n == 0 {
		return
	}
	m.focused = (m.focused - 1 + n) % n
}

// FocusWidget sets focus to the widget with the given id. Unknown ids leave
// focus unchanged.
func (m *Model) FocusWidget(id string) {
	for i, w := range m.core.Widgets() {
		if w.ID == id {
			m.focused = i
			return
		}
	}
}

// FocusedWidget returns the id of the focused widget.
func (m Model) FocusedWidget() string {
	ws := m.core.Widgets()
	if m.focused < 0 || m.focused >= len(ws) {
		return ""
	}
	return ws[m.focused].ID
}

// devices returns the catalog devices with at least one entry in the
// current section.
func (m Model) devices() []catalog.Device {
	var out []catalog.Device
	for _, d := range m.core.Catalog().Devices {
		for _, e := range d.Entries {
			if e.Section == m.section {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

// rows returns the entries of the selected device in the current section.
func (m Model) rows() []catalog.Entry {
	ds := m.devices()
	if len(ds) == 0 {
		return nil
	}
	d := ds[clamp(m.device, len(ds))]
	var out []catalog.Entry
	for _, e := range d.Entries {
		if e.Section == m.section {
			out = append(out, e)
		}
	}
	return out
}

// SelectedEntry returns the key of the highlighted settings row.
func (m Model) SelectedEntry() string {
	rs := m.rows()
	if len(rs) == 0 {
		return ""
	}
	return rs[clamp(m.row, len(rs))].Key
}

// SelectDevice switches the settings view to the device with the given id.
func (m *Model) SelectDevice(id string) {
	for i, d := range m.devices() {
		if d.ID == id {
			m.device = i
			m.row = 0
			return
		}
	}
}

// SelectEntry highlights the row of key on the current device.
func (m *Model) SelectEntry(key string) {
	for i, e := range m.rows() {
		if e.Key == key {
			m.row = i
			return
		}
	}
}

func (m *Model) moveDevice(delta int) {
	n := len(m.devices())
	if n == 0 {
		return
	}
	m.device = (clamp(m.device, n) + delta + n) % n
	m.row = 0
}

func (m *Model) moveRow(delta int) {
	n := len(m.rows())
	if n == 0 {
		return
	}
	m.row = (clamp(m.row, n) + delta + n) % n
}

func (m *Model) toggleSection() {
	if m.section == catalog.SectionConfig {
		m.section = catalog.SectionInternal
	} else {
		m.section = catalog.SectionConfig
	}
	m.device, m.row = 0, 0
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
