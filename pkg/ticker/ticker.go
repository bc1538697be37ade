// Package ticker implements the scrolling message marquee.
//
// The Engine holds the visible items, a bounded overflow queue and the
// horizontal offset of the track, all measured in terminal cells. It has no
// clock of its own: a driver calls Advance with the elapsed time of each
// frame and Resize whenever the viewport width changes.
package ticker

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

const (
	// DefaultSpeed is the scroll speed in cells per second.
	DefaultSpeed = 20.0

	// DefaultQueueLimit bounds the overflow queue.
	DefaultQueueLimit = 200

	// DefaultSeparator is placed between visible items.
	DefaultSeparator = "  •  "
)

// Option configures an Engine.
type Option func(*Engine)

// WithSpeed sets the scroll speed in cells per second. Non-positive values
// are ignored.
func WithSpeed(cellsPerSecond float64) Option {
	return func(e *Engine) {
		if cellsPerSecond > 0 {
			e.speed = cellsPerSecond
		}
	}
}

// WithQueueLimit sets the overflow queue capacity. Non-positive values are
// ignored.
func WithQueueLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.limit = n
		}
	}
}

// WithSeparator sets the text drawn between items.
func WithSeparator(sep string) Option {
	return func(e *Engine) { e.sep = sep }
}

// Engine is the ticker state machine. It is not safe for concurrent use.
type Engine struct {
	items    []string
	queue    []string
	offset   float64
	viewport int
	measured bool

	speed   float64
	limit   int
	sep     string
	dropped int
}

// New creates an idle, unmeasured engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		speed: DefaultSpeed,
		limit: DefaultQueueLimit,
		sep:   DefaultSeparator,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enqueue adds a message. Blank messages are dropped. Until the viewport
// has been measured every message goes to the queue.
func (e *Engine) Enqueue(msg string) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return
	}
	if !e.measured {
		e.push(msg)
		return
	}
	if len(e.items) == 0 && len(e.queue) == 0 {
		e.items = []string{msg}
		e.offset = float64(e.viewport)
		return
	}
	if len(e.queue) == 0 && e.canAppend() {
		e.items = append(e.items, msg)
		return
	}
	e.push(msg)
}

// Advance moves the track left by speed*elapsed cells and recycles it once
// it has scrolled fully off the left edge.
func (e *Engine) Advance(elapsedSeconds float64) {
	if !e.measured {
		return
	}
	if len(e.items) == 0 {
		e.flush()
		if len(e.items) == 0 {
			return
		}
	}
	if elapsedSeconds > 0 {
		e.offset -= e.speed * elapsedSeconds
	}
	e.flush()
	if e.offset+float64(e.TrackWidth()) < 0 {
		e.items = nil
		e.offset = float64(e.viewport)
		e.flush()
	}
}

// Resize records the viewport width. The first measurement, and any resize
// while idle, moves the offset to the right edge; a scrolling track keeps
// its position.
func (e *Engine) Resize(width int) {
	if width < 0 {
		width = 0
	}
	first := !e.measured
	e.viewport = width
	e.measured = true
	if first || len(e.items) == 0 {
		e.offset = float64(width)
	}
}

// Reset clears items and queue and returns the offset to the right edge.
func (e *Engine) Reset() {
	e.items = nil
	e.queue = nil
	e.offset = float64(e.viewport)
}

func (e *Engine) push(msg string) {
	e.queue = append(e.queue, msg)
	if over := len(e.queue) - e.limit; over > 0 {
		e.queue = append(e.queue[:0:0], e.queue[over:]...)
		e.dropped += over
	}
}

// flush appends the whole queue to the items when the track can take it.
func (e *Engine) flush() {
	if len(e.queue) == 0 {
		return
	}
	if len(e.items) > 0 && !e.canAppend() {
		return
	}
	if len(e.items) == 0 {
		e.offset = float64(e.viewport)
	}
	e.items = append(e.items, e.queue...)
	e.queue = nil
}

func (e *Engine) canAppend() bool {
	return e.offset+float64(e.TrackWidth()) >= float64(e.viewport)
}

// TrackWidth is the width in cells of the visible items joined by the
// separator.
func (e *Engine) TrackWidth() int {
	if len(e.items) == 0 {
		return 0
	}
	return ansi.StringWidth(strings.Join(e.items, e.sep))
}

// Idle reports whether nothing is visible.
func (e *Engine) Idle() bool { return len(e.items) == 0 }

// Measured reports whether Resize has been called.
func (e *Engine) Measured() bool { return e.measured }

// Offset returns the horizontal position of the track's left edge.
func (e *Engine) Offset() float64 { return e.offset }

// Items returns a copy of the visible items.
func (e *Engine) Items() []string { return append([]string(nil), e.items...) }

// Queue returns a copy of the queued messages, oldest first.
func (e *Engine) Queue() []string { return append([]string(nil), e.queue...) }

// Dropped returns how many queued messages were evicted on overflow.
func (e *Engine) Dropped() int { return e.dropped }
