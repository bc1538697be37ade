package widgets

import (
	"math"
	"strings"
)

// HistoryLen is the number of numeric readings kept per widget.
const HistoryLen = 48

// Block characters for sub-cell gauge precision (8 levels per cell).
var gaugeBlocks = [9]rune{' ', '▏', '▎', '▍', '▌', '▋', '▊', '▉', '█'}

// Sparkline block characters: 8 vertical levels per cell.
var sparkBlocks = [8]rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Gauge renders ratio, clamped to [0, 1], as a bar of width cells with
// sub-cell precision. The bar is uncolored.
func Gauge(ratio float64, width int) string {
	if width <= 0 {
		return ""
	}
	if math.IsNaN(ratio) || ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}

	units := int(math.Round(ratio * float64(width*8)))
	full, partial := units/8, units%8
	empty := width - full
	if partial > 0 {
		empty--
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(string(gaugeBlocks[8]), full))
	if partial > 0 {
		b.WriteRune(gaugeBlocks[partial])
	}
	b.WriteString(strings.Repeat(" ", max(0, empty)))
	return b.String()
}

// Sparkline renders the last width values scaled between their minimum and
// maximum. A flat series renders at mid height.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}

	var b strings.Builder
	for _, v := range values {
		idx := 3
		if hi > lo {
			idx = int(math.Round((v - lo) / (hi - lo) * 7))
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

// appendHistory returns a new slice holding h plus v, capped at HistoryLen.
// Snapshots may share the old slice, so it is never written in place.
func appendHistory(h []float64, v float64) []float64 {
	start := max(0, len(h)+1-HistoryLen)
	out := make([]float64, 0, len(h)-start+1)
	out = append(out, h[start:]...)
	return append(out, v)
}
