// Package sources defines the interface, registry and runner for the
// streams that feed the dashboard: the controller's telemetry and log
// websockets and the optional local host metrics poller. Each Source runs
// on its own goroutine and hands Updates to a single channel consumed by
// the goroutine that owns the core.
package sources

import (
	"context"
	"time"

	"gitlab.com/tinyland/lab/hydro-pulse/pkg/telemetry"
)

// Source is a long-running producer of updates. Implementations live in
// sub-packages (e.g. pkg/sources/wsstream) and are registered with the
// Registry at startup.
type Source interface {
	// Name returns a unique identifier for this source (e.g. "telemetry").
	Name() string

	// Run performs one session: it connects, emits updates until the
	// connection fails or ctx is done, and returns. The runner calls Run
	// again after a failure, throttled by the reconnect interval.
	Run(ctx context.Context, emit Emitter) error
}

// Emitter delivers updates from a running source. It returns false once
// the consumer is gone and the source should stop.
type Emitter func(Update) bool

// Kind tags an Update.
type Kind int

const (
	KindTelemetry Kind = iota
	KindLog
	KindStatus
)

func (k Kind) String() string {
	switch k {
	case KindTelemetry:
		return "telemetry"
	case KindLog:
		return "log"
	case KindStatus:
		return "status"
	}
	return "unknown"
}

// Update carries one item from a source goroutine to the consumer.
// Telemetry updates set Event, log updates set Line, status updates report
// a connection change through Connected and Err.
type Update struct {
	Source    string
	Kind      Kind
	Event     telemetry.Event
	Line      string
	Connected bool
	Err       error
	Timestamp time.Time
}

// Telemetry builds a telemetry update.
func Telemetry(source string, ev telemetry.Event) Update {
	return Update{Source: source, Kind: KindTelemetry, Event: ev, Timestamp: time.Now()}
}

// Log builds a log-line update.
func Log(source, line string) Update {
	return Update{Source: source, Kind: KindLog, Line: line, Timestamp: time.Now()}
}

// SourceStatus tracks the runtime state of a single source. The runner
// updates it after every session.
type SourceStatus struct {
	Name          string    `json:"name"`
	Connected     bool      `json:"connected"`
	LastConnected time.Time `json:"lastConnected"`
	LastError     string    `json:"lastError,omitempty"`
	Sessions      int64     `json:"sessions"`
	Errors        int64     `json:"errors"`
	Received      int64     `json:"received"`
}
