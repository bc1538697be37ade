// Package headless drives the reconciliation core without a terminal. A
// single select loop owns the core: it applies source updates, steps the
// ticker on a frame clock, adopts fetched entries and publishes snapshots.
// Summary changes and log lines are written to the structured log.
package headless

import (
	"context"
	"log/slog"
	"time"

	"gitlab.com/tinyland/lab/hydro-pulse/pkg/core"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/entries"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/sources"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/summary"
)

// Options configures a Loop. Zero values fall back to defaults.
type Options struct {
	// Updates is the source runner's channel; nil runs without sources.
	Updates <-chan sources.Update

	FrameInterval  time.Duration
	RequestTimeout time.Duration

	// Width measures the ticker before the first frame. Default 80.
	Width int

	// LoadOnStart fetches every settings entry when Run starts.
	LoadOnStart bool

	// Publish, if set, receives a snapshot every PublishEvery.
	Publish      func(core.Snapshot)
	PublishEvery time.Duration

	Logger *slog.Logger
}

// Loop is the non-interactive owner of a core.
type Loop struct {
	core *core.Core
	opts Options
	last summary.Summary
}

// New creates a loop around c. The loop becomes the only caller of c.
func New(c *core.Core, opts Options) *Loop {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = 50 * time.Millisecond
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 5 * time.Second
	}
	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.PublishEvery <= 0 {
		opts.PublishEvery = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Loop{core: c, opts: opts, last: c.Summary()}
}

// Run processes events until ctx is done or the update channel closes, then
// closes the core.
func (l *Loop) Run(ctx context.Context) error {
	defer l.core.Close()
	l.core.Resize(l.opts.Width)

	fetched := make(chan entries.Fetched)
	if l.opts.LoadOnStart {
		if gw := l.core.Gateway(); gw != nil {
			go l.fetchAll(ctx, gw, l.core.EntryKeys(), fetched)
		}
	}

	frames := time.NewTicker(l.opts.FrameInterval)
	defer frames.Stop()
	publish := time.NewTicker(l.opts.PublishEvery)
	defer publish.Stop()

	updates := l.opts.Updates
	lastFrame := time.Now()
	l.publish()

	for {
		select {
		case <-ctx.Done():
			l.publish()
			return nil

		case u, ok := <-updates:
			if !ok {
				l.opts.Logger.Info("all sources stopped")
				l.publish()
				return nil
			}
			l.apply(u)

		case f := <-fetched:
			if err := l.core.ApplyFetched(f); err != nil {
				l.opts.Logger.Warn("apply fetched entry", "key", f.Key, "error", err)
			}

		case now := <-frames.C:
			l.core.Advance(now.Sub(lastFrame))
			lastFrame = now

		case <-publish.C:
			l.publish()
		}
	}
}

func (l *Loop) apply(u sources.Update) {
	switch u.Kind {
	case sources.KindTelemetry:
		route := l.core.Apply(u.Event)
		l.opts.Logger.Debug("telemetry", "source", u.Source, "key", u.Event.Key, "route", route.Kind)
		l.logSummary()
	case sources.KindLog:
		l.core.Log(u.Line)
		l.opts.Logger.Info("controller log", "source", u.Source, "line", u.Line)
	case sources.KindStatus:
		if u.Err != nil {
			l.opts.Logger.Warn("source disconnected", "source", u.Source, "error", u.Err)
		} else {
			l.opts.Logger.Info("source status", "source", u.Source, "connected", u.Connected)
		}
	}
}

func (l *Loop) logSummary() {
	s := l.core.Summary()
	if s == l.last {
		return
	}
	l.last = s
	l.opts.Logger.Info("summary",
		"mode", s.Mode,
		"nextSwitch", s.Countdown,
		"phase", s.PlainType,
		"swing", s.SwingState,
		"flooding", s.Flooding(),
	)
}

func (l *Loop) publish() {
	if l.opts.Publish != nil {
		l.opts.Publish(l.core.Snapshot())
	}
}

// fetchAll fetches keys one by one and hands each result to the loop.
func (l *Loop) fetchAll(ctx context.Context, gw entries.Gateway, keys []string, out chan<- entries.Fetched) {
	for _, k := range keys {
		fctx, cancel := context.WithTimeout(ctx, l.opts.RequestTimeout)
		f := entries.FetchEntry(fctx, gw, k)
		cancel()
		select {
		case out <- f:
		case <-ctx.Done():
			return
		}
	}
	l.opts.Logger.Debug("startup load finished", "entries", len(keys))
}
