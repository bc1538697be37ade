// Package app provides the bubbletea dashboard of hydro-pulse. The model
// owns the reconciliation core: every telemetry update, log line, frame
// tick and gateway completion arrives as a message and is applied inside
// Update, so the core is only ever touched from the bubbletea loop.
package app

import (
	"time"

	"gitlab.com/tinyland/lab/hydro-pulse/pkg/entries"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/sources"
)

// SourceUpdateMsg carries one update from the source runner into the
// bubbletea update loop.
type SourceUpdateMsg struct {
	Update sources.Update
}

// SourcesClosedMsg is sent once the runner's update channel is closed.
type SourcesClosedMsg struct{}

// FrameMsg is sent by the frame clock to step the ticker animation.
type FrameMsg struct {
	Time time.Time
}

// EntryFetchedMsg carries the result of fetching one settings entry.
type EntryFetchedMsg struct {
	Fetched entries.Fetched
}

// SaveDoneMsg carries the outcome of a save executed off the loop.
type SaveDoneMsg struct {
	Outcome entries.Outcome
}
