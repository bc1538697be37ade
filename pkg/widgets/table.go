package widgets

import (
	"fmt"
	"math"
	"strings"

	"gitlab.com/tinyland/lab/hydro-pulse/pkg/catalog"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/coerce"
)

// StatusLevel is the severity reported by a device. The defined levels are
// ordered 0..3; any other finite value is kept as reported.
type StatusLevel int

const (
	StatusNone    StatusLevel = 0
	StatusWarning StatusLevel = 1
	StatusWorking StatusLevel = 2
	StatusError   StatusLevel = 3
)

// NoDataText is shown when a device has not reported a status string.
const NoDataText = "no data"

// Widget is the displayed state of one device widget.
type Widget struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	KeyBase    string            `json:"keyBase"`
	Kind       catalog.ValueKind `json:"kind"`
	Unit       string            `json:"unit,omitempty"`
	Raw        any               `json:"raw"`
	HasRaw     bool              `json:"hasRaw"`
	Status     StatusLevel       `json:"status"`
	StatusText string            `json:"statusText"`

	// History holds the last HistoryLen finite readings of numeric widgets.
	History []float64 `json:"history,omitempty"`
}

// Table maps widget key bases to widget state. It is not safe for
// concurrent use; the core owns it from a single goroutine.
type Table struct {
	widgets []Widget
	index   map[string]int
}

// NewTable creates the table from the catalog's widget list. Key bases
// must be unique.
func NewTable(specs []catalog.Widget) (*Table, error) {
	t := &Table{
		widgets: make([]Widget, 0, len(specs)),
		index:   make(map[string]int, len(specs)),
	}
	for _, s := range specs {
		if _, dup := t.index[s.KeyBase]; dup {
			return nil, fmt.Errorf("widgets: %w: key base %q", catalog.ErrDuplicateKey, s.KeyBase)
		}
		t.index[s.KeyBase] = len(t.widgets)
		t.widgets = append(t.widgets, Widget{
			ID:         s.ID,
			Name:       s.Name,
			KeyBase:    s.KeyBase,
			Kind:       s.Kind,
			Unit:       s.Unit,
			StatusText: NoDataText,
		})
	}
	return t, nil
}

// Len returns the number of widgets.
func (t *Table) Len() int { return len(t.widgets) }

// Has reports whether keyBase belongs to a widget.
func (t *Table) Has(keyBase string) bool {
	_, ok := t.index[keyBase]
	return ok
}

// ByKeyBase returns a copy of the widget listening on keyBase.
func (t *Table) ByKeyBase(keyBase string) (Widget, bool) {
	i, ok := t.index[keyBase]
	if !ok {
		return Widget{}, false
	}
	return t.widgets[i], true
}

// ByID returns a copy of the widget with the given id.
func (t *Table) ByID(id string) (Widget, bool) {
	for _, w := range t.widgets {
		if w.ID == id {
			return w, true
		}
	}
	return Widget{}, false
}

// List returns a copy of all widgets in catalog order.
func (t *Table) List() []Widget {
	out := make([]Widget, len(t.widgets))
	copy(out, t.widgets)
	return out
}

// SetValue stores the raw value of the widget on keyBase. It returns false
// when no widget listens on keyBase.
func (t *Table) SetValue(keyBase string, v any) bool {
	return t.update(keyBase, func(w *Widget) {
		w.Raw = v
		w.HasRaw = true
		if w.Kind != catalog.KindNumeric {
			return
		}
		if f, ok := coerce.Finite(v); ok {
			w.History = appendHistory(w.History, f)
		}
	})
}

// SetStatus stores the status level of the widget on keyBase.
func (t *Table) SetStatus(keyBase string, level StatusLevel) bool {
	return t.update(keyBase, func(w *Widget) { w.Status = level })
}

// SetStatusText stores the status string of the widget on keyBase.
func (t *Table) SetStatusText(keyBase, text string) bool {
	return t.update(keyBase, func(w *Widget) { w.StatusText = text })
}

func (t *Table) update(keyBase string, fn func(w *Widget)) bool {
	i, ok := t.index[keyBase]
	if !ok {
		return false
	}
	fn(&t.widgets[i])
	return true
}

// ParseStatus coerces a telemetry status value. Non-finite input is
// StatusNone; finite values are truncated and stored unclamped, saturating
// at the bounds of int.
func ParseStatus(v any) StatusLevel {
	f, ok := coerce.Finite(v)
	if !ok {
		return StatusNone
	}
	switch {
	case f >= -float64(math.MinInt):
		return StatusLevel(math.MaxInt)
	case f <= float64(math.MinInt):
		return StatusLevel(math.MinInt)
	}
	return StatusLevel(math.Trunc(f))
}

// ParseStatusText coerces a telemetry status string, substituting
// NoDataText for blank input.
func ParseStatusText(v any) string {
	s := strings.TrimSpace(coerce.String(v))
	if s == "" {
		return NoDataText
	}
	return s
}
