package core

import (
	"time"

	"gitlab.com/tinyland/lab/hydro-pulse/pkg/entries"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/summary"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/ticker"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/widgets"
)

// Snapshot is an immutable copy of the core state. It is safe to hand to
// other goroutines.
type Snapshot struct {
	Taken       time.Time        `json:"taken"`
	Widgets     []widgets.Widget `json:"widgets"`
	Summary     summary.Summary  `json:"summary"`
	Flooding    bool             `json:"flooding"`
	Maintenance bool             `json:"maintenance"`
	Entries     []entries.View   `json:"entries"`
	Dirty       int              `json:"dirty"`
	Ticker      ticker.Frame     `json:"ticker"`
	Applied     int              `json:"applied"`
	Dropped     int              `json:"dropped"`
}

// Snapshot copies the current state.
func (c *Core) Snapshot() Snapshot {
	views := c.store.Views(c.store.Keys())
	dirty := 0
	for _, v := range views {
		if v.Dirty {
			dirty++
		}
	}
	return Snapshot{
		Taken:       c.now(),
		Widgets:     c.table.List(),
		Summary:     c.summary,
		Flooding:    c.summary.Flooding(),
		Maintenance: c.store.MaintenanceEnabled(),
		Entries:     views,
		Dirty:       dirty,
		Ticker:      c.ticker.Frame(),
		Applied:     c.applied,
		Dropped:     c.dropped,
	}
}
