package entries

import (
	"fmt"
	"math"
	"strings"

	"gitlab.com/tinyland/lab/hydro-pulse/pkg/catalog"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/coerce"
)

// Draft is the editable UI representation of an entry value. Boolean
// entries use Checked; every other type is edited as Text.
type Draft struct {
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// TextDraft is shorthand for a text draft.
func TextDraft(s string) Draft { return Draft{Text: s} }

// CheckedDraft is shorthand for a boolean draft.
func CheckedDraft(b bool) Draft { return Draft{Checked: b} }

// Normalize converts a wire value into the draft shown in the editor.
func Normalize(t catalog.ValueType, v any) Draft {
	switch t {
	case catalog.TypeBool:
		return Draft{Checked: coerce.Truthy(v)}
	case catalog.TypeList:
		switch x := v.(type) {
		case nil:
			return Draft{}
		case string:
			return Draft{Text: x}
		case []string:
			return Draft{Text: strings.Join(x, "\n")}
		case []any:
			items := make([]string, len(x))
			for i, item := range x {
				items[i] = coerce.String(item)
			}
			return Draft{Text: strings.Join(items, "\n")}
		}
		return Draft{Text: coerce.String(v)}
	case catalog.TypeTime:
		if v == nil || v == "" {
			return Draft{}
		}
		f, ok := coerce.Finite(v)
		if !ok {
			return Draft{}
		}
		return Draft{Text: minutesToClock(f)}
	}
	// number, select
	if v == nil {
		return Draft{}
	}
	return Draft{Text: coerce.String(v)}
}

// Parse converts an editor draft into the wire value sent to the gateway.
// Malformed numeric and time input parses as 0.
func Parse(t catalog.ValueType, d Draft) any {
	switch t {
	case catalog.TypeBool:
		return d.Checked
	case catalog.TypeNumber, catalog.TypeSelect:
		f, ok := coerce.Finite(d.Text)
		if !ok {
			return 0.0
		}
		return f
	case catalog.TypeTime:
		return clockToMinutes(d.Text)
	case catalog.TypeList:
		items := []string{}
		for _, line := range strings.Split(d.Text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				items = append(items, line)
			}
		}
		return items
	}
	return d.Text
}

// minutesToClock formats minutes since midnight as HH:MM. Values past a
// day wrap, reduced before the integer conversion.
func minutesToClock(minutes float64) string {
	safe := int64(math.Mod(math.Max(0, math.Floor(minutes)), 24*60))
	h := safe / 60
	m := safe % 60
	return fmt.Sprintf("%02d:%02d", h, m)
}

// clockToMinutes parses HH:MM into minutes since midnight, clamping hours
// to [0,23] and minutes to [0,59]. Anything else is 0.
func clockToMinutes(s string) float64 {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0
	}
	h, okH := coerce.Finite(strings.TrimSpace(parts[0]))
	m, okM := coerce.Finite(strings.TrimSpace(parts[1]))
	if !okH || !okM {
		return 0
	}
	h = math.Min(math.Max(0, math.Floor(h)), 23)
	m = math.Min(math.Max(0, math.Floor(m)), 59)
	return h*60 + m
}
