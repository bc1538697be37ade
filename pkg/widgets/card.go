package widgets

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"gitlab.com/tinyland/lab/hydro-pulse/pkg/catalog"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/coerce"
)

// CardHeight is the rendered height of a card including its border.
const CardHeight = 6

// Card renders w as a bordered card of the given outer width.
func Card(w Widget, width int, focused bool) string {
	if width < 8 {
		width = 8
	}
	inner := width - 4 // border + padding

	border := lipgloss.Color(ColorBorderDefault)
	if focused {
		border = lipgloss.Color(ColorBorderFocus)
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccent))
	value := lipgloss.NewStyle().Bold(true)
	status := lipgloss.NewStyle().Foreground(lipgloss.Color(w.Status.Color()))
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDim))

	body := lipgloss.JoinVertical(lipgloss.Left,
		title.Render(ansi.Truncate(w.Name, inner, "…")),
		value.Render(ansi.Truncate(w.DisplayValue(), inner, "…")),
		status.Render("● "+ansi.Truncate(w.Status.Label(), inner-2, "…")),
		dim.Render(ansi.Truncate(w.StatusText, inner, "…")),
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(width - 2).
		Render(body)
}

// Detail renders the expanded view of a single widget.
func Detail(w Widget, width int) string {
	if width < 20 {
		width = 20
	}
	label := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDim)).Width(10)
	row := func(k, v string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, label.Render(k), v)
	}
	statusColor := lipgloss.NewStyle().Foreground(lipgloss.Color(w.Status.Color()))
	rows := []string{
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccent)).Render(w.Name),
		"",
		row("Value", w.DisplayValue()),
		row("Status", statusColor.Render(w.Status.Label())),
		row("Details", w.StatusText),
		row("Key", w.KeyBase),
	}
	chartWidth := max(1, width-6-10)
	if w.Kind == catalog.KindNumeric && w.Unit == "%" && w.HasRaw {
		if f, ok := coerce.Finite(w.Raw); ok {
			rows = append(rows, row("Level", statusColor.Render(Gauge(f/100, chartWidth))))
		}
	}
	if len(w.History) > 1 {
		rows = append(rows, row("Trend", lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccent)).Render(Sparkline(w.History, chartWidth))))
	}
	body := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorderFocus)).
		Padding(1, 2).
		Width(width - 2).
		Render(body)
}
