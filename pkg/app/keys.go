package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the key bindings of both views.
type KeyMap struct {
	Quit     key.Binding
	Help     key.Binding
	Next     key.Binding
	Prev     key.Binding
	Open     key.Binding
	Back     key.Binding
	Settings key.Binding

	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Section key.Binding
	Edit    key.Binding
	Save    key.Binding
	Reset   key.Binding
	Refresh key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Next:     key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next widget")),
		Prev:     key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("shift+tab", "prev widget")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Settings: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "settings")),

		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "prev entry")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "next entry")),
		Left:    key.NewBinding(key.WithKeys("left", "[", "shift+tab"), key.WithHelp("←", "prev device")),
		Right:   key.NewBinding(key.WithKeys("right", "]", "tab"), key.WithHelp("→", "next device")),
		Section: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "config/internal")),
		Edit:    key.NewBinding(key.WithKeys("enter", "e", " "), key.WithHelp("enter", "edit")),
		Save:    key.NewBinding(key.WithKeys("w", "ctrl+s"), key.WithHelp("w", "save")),
		Reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Refresh: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload")),
	}
}

// DashboardHelp lists the bindings shown in the dashboard footer.
func (k KeyMap) DashboardHelp() []key.Binding {
	return []key.Binding{k.Next, k.Open, k.Settings, k.Help, k.Quit}
}

// SettingsHelp lists the bindings shown in the settings footer.
func (k KeyMap) SettingsHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Right, k.Section, k.Edit, k.Save, k.Reset, k.Back}
}
