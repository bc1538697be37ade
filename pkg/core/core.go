// Package core owns the reconciliation state of the dashboard: the widget
// table, the system summary, the settings entry store and the ticker.
//
// A Core is driven by exactly one goroutine. Telemetry, log lines, frame
// ticks and gateway completions are all applied as discrete calls from that
// goroutine, so no method takes a lock.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gitlab.com/tinyland/lab/hydro-pulse/pkg/catalog"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/entries"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/summary"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/telemetry"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/ticker"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/widgets"
)

// ConnectingMessage seeds the ticker until the log stream delivers.
const ConnectingMessage = "Connecting to telemetry..."

// ErrClosed is returned by operations on a core that has been closed.
var ErrClosed = errors.New("core: closed")

// Option configures a Core.
type Option func(*options)

type options struct {
	gateway   entries.Gateway
	logger    *slog.Logger
	tickerOps []ticker.Option
	noSeed    bool
	now       func() time.Time
}

// WithGateway sets the remote entry gateway.
func WithGateway(gw entries.Gateway) Option {
	return func(o *options) { o.gateway = gw }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTicker passes options to the ticker engine.
func WithTicker(opts ...ticker.Option) Option {
	return func(o *options) { o.tickerOps = append(o.tickerOps, opts...) }
}

// WithoutSeed skips the initial ticker message.
func WithoutSeed() Option {
	return func(o *options) { o.noSeed = true }
}

// WithClock sets the time source used to stamp snapshots.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Core is the single-writer reconciliation state.
type Core struct {
	cat     *catalog.Catalog
	router  *telemetry.Router
	table   *widgets.Table
	summary summary.Summary
	store   *entries.Store
	ticker  *ticker.Engine
	logger  *slog.Logger
	now     func() time.Time

	applied int
	dropped int
	closed  bool
}

// New builds a core from an immutable catalog. It fails when the catalog
// is invalid, including duplicate entry keys.
func New(cat *catalog.Catalog, opts ...Option) (*Core, error) {
	if cat == nil {
		return nil, errors.New("core: nil catalog")
	}
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}

	table, err := widgets.NewTable(cat.Widgets)
	if err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	store, err := entries.New(cat.Entries(),
		entries.WithGateway(o.gateway),
		entries.WithMaintenanceKey(cat.MaintenanceKey),
		entries.WithLogger(o.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}

	c := &Core{
		cat:     cat,
		router:  telemetry.NewRouter(cat.Summary, store.Has),
		table:   table,
		summary: summary.Initial(),
		store:   store,
		ticker:  ticker.New(o.tickerOps...),
		logger:  o.logger,
		now:     o.now,
	}
	if !o.noSeed {
		c.ticker.Enqueue(ConnectingMessage)
	}
	return c, nil
}

// Apply routes one telemetry event and returns the route it took. Events
// for unknown keys or unknown widgets are dropped silently.
func (c *Core) Apply(ev telemetry.Event) telemetry.Route {
	if c.closed {
		return telemetry.Route{Kind: telemetry.RouteDrop}
	}
	route := c.router.Resolve(ev.Key)
	ok := true
	switch route.Kind {
	case telemetry.RouteSummary:
		c.summary = c.summary.Apply(route.Field, ev.Value)
		if route.EntryKey != "" {
			ok = c.store.ApplyConfirmed(route.EntryKey, ev.Value, false) == nil
		}
	case telemetry.RouteWidgetValue:
		ok = c.table.SetValue(route.KeyBase, ev.Value)
	case telemetry.RouteWidgetStatus:
		ok = c.table.SetStatus(route.KeyBase, widgets.ParseStatus(ev.Value))
	case telemetry.RouteWidgetStatusText:
		ok = c.table.SetStatusText(route.KeyBase, widgets.ParseStatusText(ev.Value))
	case telemetry.RouteEntry:
		ok = c.store.ApplyConfirmed(route.EntryKey, ev.Value, false) == nil
	case telemetry.RouteDrop:
		ok = false
	default:
		panic(fmt.Sprintf("core: unhandled route %v", route.Kind))
	}
	if ok {
		c.applied++
	} else {
		c.dropped++
		c.logger.Debug("telemetry dropped", "key", ev.Key, "route", route.Kind)
	}
	return route
}

// Log feeds one log line to the ticker. Blank lines are dropped.
func (c *Core) Log(line string) {
	if c.closed {
		return
	}
	c.ticker.Enqueue(line)
}

// Advance steps the ticker by elapsed wall time.
func (c *Core) Advance(elapsed time.Duration) {
	if c.closed {
		return
	}
	c.ticker.Advance(elapsed.Seconds())
}

// Resize records the ticker viewport width in cells.
func (c *Core) Resize(width int) {
	if c.closed {
		return
	}
	c.ticker.Resize(width)
}

// RecordEdit stores editor input for key.
func (c *Core) RecordEdit(key string, d entries.Draft) error {
	if c.closed {
		return ErrClosed
	}
	return c.store.RecordEdit(key, d)
}

// Reset discards the draft of key.
func (c *Core) Reset(key string) error {
	if c.closed {
		return ErrClosed
	}
	return c.store.Reset(key)
}

// PrepareSave validates and parses the draft of key. The returned Pending
// may be executed on any goroutine; its Outcome must come back through
// CompleteSave.
func (c *Core) PrepareSave(key string) (entries.Pending, error) {
	if c.closed {
		return entries.Pending{}, ErrClosed
	}
	return c.store.PrepareSave(key)
}

// CompleteSave applies a save outcome. Outcomes delivered after Close are
// ignored.
func (c *Core) CompleteSave(o entries.Outcome) error {
	if c.closed {
		c.logger.Debug("save completion after close ignored", "key", o.Key)
		return ErrClosed
	}
	return c.store.CompleteSave(o)
}

// Save runs a full save synchronously on the calling goroutine.
func (c *Core) Save(ctx context.Context, key string) error {
	p, err := c.PrepareSave(key)
	if err != nil {
		return err
	}
	return c.CompleteSave(p.Execute(ctx))
}

// ApplyFetched adopts a fetched entry value, overriding any draft.
func (c *Core) ApplyFetched(f entries.Fetched) error {
	if c.closed {
		return ErrClosed
	}
	return c.store.ApplyFetched(f)
}

// LoadAll fetches every registered entry synchronously.
func (c *Core) LoadAll(ctx context.Context) (int, error) {
	if c.closed {
		return 0, ErrClosed
	}
	return c.store.LoadAll(ctx)
}

// Close tears the core down. Later mutations are ignored.
func (c *Core) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.logger.Debug("core closed", "applied", c.applied, "dropped", c.dropped)
}

// Closed reports whether Close has been called.
func (c *Core) Closed() bool { return c.closed }

// Catalog returns the catalog the core was built from.
func (c *Core) Catalog() *catalog.Catalog { return c.cat }

// Store returns the settings entry store. Callers must stay on the owner
// goroutine.
func (c *Core) Store() *entries.Store { return c.store }

// Widgets returns a copy of the widget table in catalog order.
func (c *Core) Widgets() []widgets.Widget { return c.table.List() }

// Widget returns the widget with the given id.
func (c *Core) Widget(id string) (widgets.Widget, bool) { return c.table.ByID(id) }

// Summary returns the current system summary.
func (c *Core) Summary() summary.Summary { return c.summary }

// Ticker returns the ticker engine. Callers must stay on the owner
// goroutine.
func (c *Core) Ticker() *ticker.Engine { return c.ticker }

// EntryKeys returns every registered entry key, for fan-out fetches.
func (c *Core) EntryKeys() []string { return c.store.Keys() }

// Gateway returns the entry gateway, or nil.
func (c *Core) Gateway() entries.Gateway { return c.store.Gateway() }
