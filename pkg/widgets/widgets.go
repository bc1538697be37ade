// Package widgets holds the widget state table of the dashboard: one entry
// per device widget with its last raw telemetry value and status, plus the
// formatting and card rendering used by the TUI.
package widgets

// Card colors.
const (
	// ColorBorderDefault is the muted gray used for unfocused card borders.
	ColorBorderDefault = "#6B7280"

	// ColorBorderFocus is used for the focused card border.
	ColorBorderFocus = "#2DBBD3"

	// ColorAccent is used for titles and values.
	ColorAccent = "#50E3C2"

	// ColorDim is used for de-emphasized text.
	ColorDim = "#9CA3AF"

	colorIdle    = "#6B7280"
	colorWarning = "#F6AE2D"
	colorWorking = "#44E7AE"
	colorError   = "#FF6B6B"
)
