package ticker

import (
	"math"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Frame is a read-only snapshot of the engine.
type Frame struct {
	Items    []string `json:"items"`
	Queued   int      `json:"queued"`
	Dropped  int      `json:"dropped"`
	Offset   float64  `json:"offset"`
	Viewport int      `json:"viewport"`
	Measured bool     `json:"measured"`
}

// Frame returns a snapshot of the current state.
func (e *Engine) Frame() Frame {
	return Frame{
		Items:    e.Items(),
		Queued:   len(e.queue),
		Dropped:  e.dropped,
		Offset:   e.offset,
		Viewport: e.viewport,
		Measured: e.measured,
	}
}

// View renders the visible part of the track as exactly width cells.
func (e *Engine) View(width int) string {
	if width <= 0 {
		return ""
	}
	if len(e.items) == 0 {
		return strings.Repeat(" ", width)
	}
	track := strings.Join(e.items, e.sep)
	trackWidth := ansi.StringWidth(track)
	pos := int(math.Floor(e.offset))

	var b strings.Builder
	if pos > 0 {
		lead := min(pos, width)
		b.WriteString(strings.Repeat(" ", lead))
		if lead < width {
			b.WriteString(ansi.Cut(track, 0, width-lead))
		}
	} else if -pos < trackWidth {
		b.WriteString(ansi.Cut(track, -pos, -pos+width))
	}
	if pad := width - ansi.StringWidth(b.String()); pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	return b.String()
}
