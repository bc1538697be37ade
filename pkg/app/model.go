package app

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"gitlab.com/tinyland/lab/hydro-pulse/pkg/catalog"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/config"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/core"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/entries"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/sources"
)

type viewMode int

const (
	viewDashboard viewMode = iota
	viewSettings
)

// Options configures a Model. Zero values fall back to defaults.
type Options struct {
	// Updates is the source runner's channel; nil runs without sources.
	Updates <-chan sources.Update

	Layout         config.Layout
	FrameInterval  time.Duration
	RequestTimeout time.Duration

	// LoadOnStart fetches every settings entry from Init.
	LoadOnStart bool

	// Publish, if set, receives a snapshot at most every PublishEvery.
	Publish      func(core.Snapshot)
	PublishEvery time.Duration

	Logger *slog.Logger
}

// Model is the root bubbletea model.
type Model struct {
	core *core.Core
	opts Options
	keys KeyMap

	zones   *zone.Manager
	spinner spinner.Model
	input   textinput.Model

	width, height int
	mode          viewMode
	focused       int
	detail        bool
	showHelp      bool
	quitting      bool

	device  int
	row     int
	section catalog.Section
	editing bool
	saving  map[string]bool
	status  string

	connected   map[string]bool
	lastFrame   time.Time
	lastPublish time.Time
}

// New creates the model around c. The model becomes the only caller of c.
func New(c *core.Core, opts Options) Model {
	if opts.Layout.Columns <= 0 {
		opts.Layout = config.LayoutPreset("dashboard")
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = 50 * time.Millisecond
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 5 * time.Second
	}
	if opts.PublishEvery <= 0 {
		opts.PublishEvery = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot

	in := textinput.New()
	in.Prompt = "› "
	in.CharLimit = 256

	return Model{
		core:      c,
		opts:      opts,
		keys:      DefaultKeyMap(),
		zones:     zone.New(),
		spinner:   spin,
		input:     in,
		section:   catalog.SectionConfig,
		saving:    make(map[string]bool),
		connected: make(map[string]bool),
	}
}

// Init starts the frame clock and the source pump, and fetches every entry
// when LoadOnStart is set.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		FrameCmd(m.opts.FrameInterval),
		WaitForUpdate(m.opts.Updates),
	}
	if m.opts.LoadOnStart {
		cmds = append(cmds, FetchAllCmd(m.core.Gateway(), m.core.EntryKeys(), m.opts.RequestTimeout))
	}
	return tea.Batch(cmds...)
}

// Update applies one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(10, msg.Width/2)
		m.core.Resize(msg.Width)
		return m, nil

	case FrameMsg:
		var elapsed time.Duration
		if !m.lastFrame.IsZero() {
			elapsed = msg.Time.Sub(m.lastFrame)
		}
		m.lastFrame = msg.Time
		m.core.Advance(elapsed)
		m.maybePublish(msg.Time)
		if m.quitting {
			return m, nil
		}
		return m, FrameCmd(m.opts.FrameInterval)

	case SourceUpdateMsg:
		m.applyUpdate(msg.Update)
		return m, WaitForUpdate(m.opts.Updates)

	case SourcesClosedMsg:
		return m, nil

	case EntryFetchedMsg:
		if err := m.core.ApplyFetched(msg.Fetched); err != nil && !errors.Is(err, core.ErrClosed) {
			m.opts.Logger.Warn("apply fetched entry", "key", msg.Fetched.Key, "error", err)
		}
		return m, nil

	case SaveDoneMsg:
		delete(m.saving, msg.Outcome.Key)
		switch err := m.core.CompleteSave(msg.Outcome); {
		case errors.Is(err, core.ErrClosed):
		case err != nil:
			m.status = fmt.Sprintf("Save failed: %s", msg.Outcome.Key)
		default:
			m.status = fmt.Sprintf("Saved %s", msg.Outcome.Key)
		}
		return m, nil

	case spinner.TickMsg:
		if len(m.saving) == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) applyUpdate(u sources.Update) {
	switch u.Kind {
	case sources.KindTelemetry:
		m.core.Apply(u.Event)
	case sources.KindLog:
		m.core.Log(u.Line)
	case sources.KindStatus:
		m.connected[u.Source] = u.Connected
		if u.Err != nil {
			m.opts.Logger.Warn("source disconnected", "source", u.Source, "error", u.Err)
		}
	}
}

func (m *Model) maybePublish(now time.Time) {
	if m.opts.Publish == nil || now.Sub(m.lastPublish) < m.opts.PublishEvery {
		return
	}
	m.lastPublish = now
	m.opts.Publish(m.core.Snapshot())
}

// Close tears the core down; later completions are ignored.
func (m Model) Close() { m.core.Close() }

// Width returns the terminal width.
func (m Model) Width() int { return m.width }

// Height returns the terminal height.
func (m Model) Height() int { return m.height }

// Core returns the owned core. Only for use on the bubbletea goroutine.
func (m Model) Core() *core.Core { return m.core }

// Status returns the last status line message.
func (m Model) Status() string { return m.status }

// Saving reports whether a save of key is in flight.
func (m Model) Saving(key string) bool { return m.saving[key] }

// InSettings reports whether the settings view is shown.
func (m Model) InSettings() bool { return m.mode == viewSettings }

// Editing reports whether the text editor is active.
func (m Model) Editing() bool { return m.editing }

// DetailOpen reports whether the widget detail overlay is shown.
func (m Model) DetailOpen() bool { return m.detail }

// Quitting reports whether quit was requested.
func (m Model) Quitting() bool { return m.quitting }

// saveKey starts an asynchronous save of key.
func (m *Model) saveKey(key string) tea.Cmd {
	if m.saving[key] {
		return nil
	}
	p, err := m.core.PrepareSave(key)
	switch {
	case errors.Is(err, entries.ErrEntryLocked):
		m.status = "Locked: enable maintenance mode to change internal entries"
		return nil
	case errors.Is(err, entries.ErrNoGateway):
		m.status = "No controller configured"
		return nil
	case err != nil:
		m.status = err.Error()
		return nil
	}
	m.saving[key] = true
	m.status = fmt.Sprintf("Saving %s…", key)
	return tea.Batch(SaveCmd(p, m.opts.RequestTimeout), m.spinner.Tick)
}
