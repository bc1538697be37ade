package config

// Layout is the resolved grid of the dashboard view.
type Layout struct {
	Preset    string
	Columns   int
	CardWidth int
}

// LayoutPreset returns the layout for a named preset. If the name is not
// recognized, the "dashboard" preset is returned.
func LayoutPreset(name string) Layout {
	switch name {
	case "compact":
		return compactPreset()
	case "wall":
		return wallPreset()
	default:
		return dashboardPreset()
	}
}

// Layout resolves the display preset and applies explicit overrides.
func (d DisplayConfig) Layout() Layout {
	l := LayoutPreset(d.Preset)
	if d.Columns > 0 {
		l.Columns = d.Columns
	}
	if d.CardWidth > 0 {
		l.CardWidth = d.CardWidth
	}
	return l
}

// dashboardPreset fits the twelve built-in widgets in three rows on a
// 100-column terminal.
func dashboardPreset() Layout {
	return Layout{Preset: "dashboard", Columns: 4, CardWidth: 24}
}

// compactPreset trades labels for density on small terminals.
func compactPreset() Layout {
	return Layout{Preset: "compact", Columns: 6, CardWidth: 16}
}

// wallPreset uses wide cards for a wall-mounted display.
func wallPreset() Layout {
	return Layout{Preset: "wall", Columns: 3, CardWidth: 34}
}
