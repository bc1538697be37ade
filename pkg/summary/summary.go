// Package summary projects the system summary (pump mode, switch countdown,
// irrigation phase and swing phase) from individual telemetry values.
//
// Every mapper is a pure function of its input value.
package summary

import (
	"fmt"
	"math"
	"strings"

	"gitlab.com/tinyland/lab/hydro-pulse/pkg/coerce"
)

// Field identifies one summary field.
type Field int

const (
	FieldMode Field = iota
	FieldCountdown
	FieldPlainType
	FieldSwingState
)

func (f Field) String() string {
	switch f {
	case FieldMode:
		return "mode"
	case FieldCountdown:
		return "countdown"
	case FieldPlainType:
		return "plainType"
	case FieldSwingState:
		return "swingState"
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// Labels shown for the enumerated summary values.
const (
	LabelFlow     = "FLOW"
	LabelSwing    = "SWING"
	LabelDrip     = "DRIP"
	LabelDraining = "Draining"
	LabelFlooding = "Flooding"
	LabelRefill   = "Refill"
	LabelDrain    = "Drain"

	// NoCountdown is the countdown text for a non-numeric value.
	NoCountdown = "--:--"
)

// Summary is the denormalized system snapshot shown in the header.
type Summary struct {
	Mode       string `json:"mode"`
	Countdown  string `json:"nextSwitchTime"`
	PlainType  string `json:"plainType"`
	SwingState string `json:"swingState"`
}

// Initial returns the summary before any telemetry was seen.
func Initial() Summary {
	return Summary{Countdown: NoCountdown}
}

// Apply returns s with field recomputed from v.
func (s Summary) Apply(field Field, v any) Summary {
	switch field {
	case FieldMode:
		s.Mode = ModeLabel(v)
	case FieldCountdown:
		s.Countdown = FormatCountdown(v)
	case FieldPlainType:
		s.PlainType = PlainTypeLabel(v)
	case FieldSwingState:
		s.SwingState = SwingStateLabel(v)
	}
	return s
}

// Flooding reports whether the irrigation phase label indicates flooding.
func (s Summary) Flooding() bool {
	l := strings.ToLower(s.PlainType)
	return strings.Contains(l, "flood") || strings.Contains(l, "fill")
}

// ModeLabel maps the pump mode 0/1/2 to FLOW/SWING/DRIP.
func ModeLabel(v any) string {
	return enumLabel(v, LabelFlow, LabelSwing, LabelDrip)
}

// PlainTypeLabel maps the irrigation phase 0/1 to Draining/Flooding.
func PlainTypeLabel(v any) string {
	return enumLabel(v, LabelDraining, LabelFlooding)
}

// SwingStateLabel maps the swing phase 0/1 to Refill/Drain.
func SwingStateLabel(v any) string {
	return enumLabel(v, LabelRefill, LabelDrain)
}

// enumLabel returns labels[n] when v reads as the integer n in range, and
// the stringified raw value otherwise.
func enumLabel(v any, labels ...string) string {
	if f, ok := coerce.Finite(v); ok && v != nil && f == math.Trunc(f) && f >= 0 && int(f) < len(labels) {
		return labels[int(f)]
	}
	return coerce.String(v)
}

// maxCountdown caps countdowns so the integer conversion stays in range.
const maxCountdown = 1 << 53

// FormatCountdown formats a number of seconds as MM:SS, flooring and
// clamping to [0, maxCountdown]. Non-finite input yields NoCountdown.
func FormatCountdown(v any) string {
	f, ok := coerce.Finite(v)
	if !ok {
		return NoCountdown
	}
	secs := int64(math.Min(math.Max(0, math.Floor(f)), maxCountdown))
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
