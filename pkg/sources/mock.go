package sources

import (
	"context"
	"sync"
	"sync/atomic"

	"gitlab.com/tinyland/lab/hydro-pulse/pkg/telemetry"
)

// MockSource implements Source for testing. Each session emits a connect
// status, then the configured events and lines, and then either returns
// the configured error or blocks until ctx is done.
type MockSource struct {
	name string

	mu     sync.RWMutex
	events []telemetry.Event
	lines  []string
	err    error
	hold   bool

	callCount atomic.Int64

	// RunFunc, if set, replaces the default session behaviour.
	RunFunc func(ctx context.Context, emit Emitter) error
}

// MockSourceOption configures a MockSource.
type MockSourceOption func(*MockSource)

// WithEvents sets the telemetry events emitted per session.
func WithEvents(evs ...telemetry.Event) MockSourceOption {
	return func(m *MockSource) { m.events = evs }
}

// WithLines sets the log lines emitted per session.
func WithLines(lines ...string) MockSourceOption {
	return func(m *MockSource) { m.lines = lines }
}

// WithError makes every session fail with err after emitting.
func WithError(err error) MockSourceOption {
	return func(m *MockSource) { m.err = err }
}

// WithHold keeps each session open until ctx is done.
func WithHold() MockSourceOption {
	return func(m *MockSource) { m.hold = true }
}

// WithRunFunc sets a custom session function.
func WithRunFunc(fn func(ctx context.Context, emit Emitter) error) MockSourceOption {
	return func(m *MockSource) { m.RunFunc = fn }
}

// NewMockSource creates a mock source.
func NewMockSource(name string, opts ...MockSourceOption) *MockSource {
	m := &MockSource{name: name}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the source name.
func (m *MockSource) Name() string { return m.name }

// SetError updates the session error (thread-safe).
func (m *MockSource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Run performs one mock session.
func (m *MockSource) Run(ctx context.Context, emit Emitter) error {
	m.callCount.Add(1)
	if m.RunFunc != nil {
		return m.RunFunc(ctx, emit)
	}

	m.mu.RLock()
	events, lines, err, hold := m.events, m.lines, m.err, m.hold
	m.mu.RUnlock()

	if !emit(Connected(m.name)) {
		return ctx.Err()
	}
	for _, ev := range events {
		if !emit(Telemetry(m.name, ev)) {
			return ctx.Err()
		}
	}
	for _, l := range lines {
		if !emit(Log(m.name, l)) {
			return ctx.Err()
		}
	}
	if err != nil {
		return err
	}
	if hold {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

// CallCount returns how many sessions have run.
func (m *MockSource) CallCount() int64 { return m.callCount.Load() }
