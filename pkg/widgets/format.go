package widgets

import (
	"math"
	"strconv"

	"gitlab.com/tinyland/lab/hydro-pulse/pkg/catalog"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/coerce"
)

// DisplayValue formats the widget's raw value: "--" before the first
// report, ON/OFF for boolean widgets, and numbers with no decimals when
// integral or two otherwise, followed by the unit.
func (w Widget) DisplayValue() string {
	if !w.HasRaw || w.Raw == nil {
		return "--"
	}
	if w.Kind == catalog.KindBoolean {
		if coerce.Truthy(w.Raw) {
			return "ON"
		}
		return "OFF"
	}
	f, ok := coerce.Number(w.Raw)
	if !ok {
		return coerce.String(w.Raw)
	}
	var s string
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		s = strconv.FormatFloat(f, 'f', 0, 64)
	} else {
		s = strconv.FormatFloat(f, 'f', 2, 64)
	}
	if w.Unit != "" {
		return s + " " + w.Unit
	}
	return s
}

// Label returns the human label of a status level.
func (s StatusLevel) Label() string {
	switch s {
	case StatusError:
		return "Error"
	case StatusWorking:
		return "Working"
	case StatusWarning:
		return "Warning"
	}
	return "No data"
}

// Class returns the display tier of a status level: idle, warning,
// working or error. Unknown levels render as idle.
func (s StatusLevel) Class() string {
	switch s {
	case StatusError:
		return "error"
	case StatusWorking:
		return "working"
	case StatusWarning:
		return "warning"
	}
	return "idle"
}

// Color returns the accent color of the status tier.
func (s StatusLevel) Color() string {
	switch s {
	case StatusError:
		return colorError
	case StatusWorking:
		return colorWorking
	case StatusWarning:
		return colorWarning
	}
	return colorIdle
}
