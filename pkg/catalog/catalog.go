// Package catalog describes the static widget and settings catalog the
// dashboard is built from. A Catalog is configuration data: it is loaded or
// constructed once at startup, validated, and injected into the core.
package catalog

import (
	"errors"
	"fmt"
)

// ErrDuplicateKey is returned when two catalog items share an identifier
// that must be unique (widget id, widget key base, entry key).
var ErrDuplicateKey = errors.New("catalog: duplicate key")

// ValueKind is how a widget's raw value is displayed.
type ValueKind string

const (
	KindBoolean ValueKind = "boolean"
	KindNumeric ValueKind = "numeric"
)

// Section groups settings entries. Entries in SectionInternal are runtime
// state of the controller and may only be written in maintenance mode.
type Section string

const (
	SectionConfig   Section = "config"
	SectionInternal Section = "int"
)

// ValueType selects the normalize/parse rules of a settings entry.
type ValueType string

const (
	TypeBool   ValueType = "bool"
	TypeNumber ValueType = "number"
	TypeList   ValueType = "list"
	TypeSelect ValueType = "select"
	TypeTime   ValueType = "time"
)

// Option is one choice of a select entry.
type Option struct {
	Value float64 `yaml:"value" json:"value"`
	Label string  `yaml:"label" json:"label"`
}

// Entry is the static descriptor of one editable configuration key.
type Entry struct {
	Key     string    `yaml:"key" json:"key"`
	Label   string    `yaml:"label" json:"label"`
	Section Section   `yaml:"section" json:"section"`
	Type    ValueType `yaml:"type" json:"type"`
	Unit    string    `yaml:"unit,omitempty" json:"unit,omitempty"`
	Options []Option  `yaml:"options,omitempty" json:"options,omitempty"`
}

// OptionLabel returns the label of the option whose value equals v.
func (e Entry) OptionLabel(v float64) (string, bool) {
	for _, o := range e.Options {
		if o.Value == v {
			return o.Label, true
		}
	}
	return "", false
}

// Device is a settings page: a named, ordered list of entries.
type Device struct {
	ID      string  `yaml:"id" json:"id"`
	Name    string  `yaml:"name" json:"name"`
	Entries []Entry `yaml:"entries" json:"entries"`
}

// Widget is the static part of a dashboard widget.
type Widget struct {
	ID      string    `yaml:"id" json:"id"`
	Name    string    `yaml:"name" json:"name"`
	KeyBase string    `yaml:"key_base" json:"keyBase"`
	Kind    ValueKind `yaml:"kind" json:"kind"`
	Unit    string    `yaml:"unit,omitempty" json:"unit,omitempty"`
}

// SummaryKeys names the telemetry keys the system summary is projected from.
type SummaryKeys struct {
	Mode       string `yaml:"mode"`
	Countdown  string `yaml:"countdown"`
	PlainType  string `yaml:"plain_type"`
	SwingState string `yaml:"swing_state"`
}

// Catalog is the complete static description of a dashboard.
type Catalog struct {
	// MaintenanceKey is the entry whose truthy confirmed value unlocks
	// saving of SectionInternal entries.
	MaintenanceKey string      `yaml:"maintenance_key"`
	Summary        SummaryKeys `yaml:"summary"`
	Widgets        []Widget    `yaml:"widgets"`
	Devices        []Device    `yaml:"devices"`
}

// Entries returns every entry of every device, in catalog order.
func (c *Catalog) Entries() []Entry {
	var out []Entry
	for _, d := range c.Devices {
		out = append(out, d.Entries...)
	}
	return out
}

// Device returns the device with the given id.
func (c *Catalog) Device(id string) (Device, bool) {
	for _, d := range c.Devices {
		if d.ID == id {
			return d, true
		}
	}
	return Device{}, false
}

// AddWidget appends w after checking it does not collide with an existing
// widget id or key base.
func (c *Catalog) AddWidget(w Widget) error {
	for _, existing := range c.Widgets {
		if existing.ID == w.ID {
			return fmt.Errorf("%w: widget id %q", ErrDuplicateKey, w.ID)
		}
		if existing.KeyBase == w.KeyBase {
			return fmt.Errorf("%w: widget key base %q", ErrDuplicateKey, w.KeyBase)
		}
	}
	c.Widgets = append(c.Widgets, w)
	return nil
}

// Validate checks the uniqueness invariants and that every enumerated field
// holds a known value.
func (c *Catalog) Validate() error {
	ids := make(map[string]bool, len(c.Widgets))
	bases := make(map[string]bool, len(c.Widgets))
	for _, w := range c.Widgets {
		if w.ID == "" || w.KeyBase == "" {
			return fmt.Errorf("catalog: widget %q: id and key_base are required", w.Name)
		}
		if ids[w.ID] {
			return fmt.Errorf("%w: widget id %q", ErrDuplicateKey, w.ID)
		}
		if bases[w.KeyBase] {
			return fmt.Errorf("%w: widget key base %q", ErrDuplicateKey, w.KeyBase)
		}
		ids[w.ID] = true
		bases[w.KeyBase] = true
		switch w.Kind {
		case KindBoolean, KindNumeric:
		default:
			return fmt.Errorf("catalog: widget %q: unknown kind %q", w.ID, w.Kind)
		}
	}

	devices := make(map[string]bool, len(c.Devices))
	keys := make(map[string]bool)
	for _, d := range c.Devices {
		if devices[d.ID] {
			return fmt.Errorf("%w: device id %q", ErrDuplicateKey, d.ID)
		}
		devices[d.ID] = true
		for _, e := range d.Entries {
			if e.Key == "" {
				return fmt.Errorf("catalog: device %q: entry without key", d.ID)
			}
			if keys[e.Key] {
				return fmt.Errorf("%w: entry %q", ErrDuplicateKey, e.Key)
			}
			keys[e.Key] = true
			switch e.Section {
			case SectionConfig, SectionInternal:
			default:
				return fmt.Errorf("catalog: entry %q: unknown section %q", e.Key, e.Section)
			}
			switch e.Type {
			case TypeBool, TypeNumber, TypeList, TypeSelect, TypeTime:
			default:
				return fmt.Errorf("catalog: entry %q: unknown type %q", e.Key, e.Type)
			}
		}
	}
	return nil
}
