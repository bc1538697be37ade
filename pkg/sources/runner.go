package sources

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultReconnect is the minimum time between two sessions of a source.
const DefaultReconnect = 3 * time.Second

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithReconnect sets the minimum time between sessions of one source.
func WithReconnect(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.reconnect = d
		}
	}
}

// WithBuffer sets the capacity of the updates channel.
func WithBuffer(n int) RunnerOption {
	return func(r *Runner) {
		if n >= 0 {
			r.buffer = n
		}
	}
}

// WithRunnerLogger sets the logger. The default is slog.Default().
func WithRunnerLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// Runner runs every registered source on its own goroutine, restarting
// failed sessions no faster than the reconnect interval, and fans their
// updates into one channel.
type Runner struct {
	reg       *Registry
	reconnect time.Duration
	buffer    int
	logger    *slog.Logger
	out       chan Update
}

// NewRunner creates a runner over the sources in reg.
func NewRunner(reg *Registry, opts ...RunnerOption) *Runner {
	r := &Runner{
		reg:       reg,
		reconnect: DefaultReconnect,
		buffer:    256,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.out = make(chan Update, r.buffer)
	return r
}

// Updates returns the channel updates are delivered on. It is closed when
// Run returns.
func (r *Runner) Updates() <-chan Update { return r.out }

// Run blocks until ctx is done and every source goroutine has returned.
// It must be called once.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.out)

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range r.reg.List() {
		src, ok := r.reg.Get(name)
		if !ok {
			continue
		}
		g.Go(func() error {
			r.loop(ctx, src)
			return nil
		})
	}
	return g.Wait()
}

func (r *Runner) loop(ctx context.Context, src Source) {
	name := src.Name()
	limiter := rate.NewLimiter(rate.Every(r.reconnect), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		r.reg.updateStatus(name, func(s *SourceStatus) { s.Sessions++ })

		err := src.Run(ctx, r.emitter(ctx, name))
		if ctx.Err() != nil {
			r.reg.updateStatus(name, func(s *SourceStatus) { s.Connected = false })
			return
		}
		if err == nil {
			err = errors.New("session ended")
		}
		r.logger.Warn("source session ended", "source", name, "error", err)
		r.reg.updateStatus(name, func(s *SourceStatus) {
			s.Connected = false
			s.Errors++
			s.LastError = err.Error()
		})
		if !r.send(ctx, Update{Source: name, Kind: KindStatus, Err: err, Timestamp: time.Now()}) {
			return
		}
	}
}

func (r *Runner) emitter(ctx context.Context, name string) Emitter {
	return func(u Update) bool {
		u.Source = name
		if u.Timestamp.IsZero() {
			u.Timestamp = time.Now()
		}
		r.reg.updateStatus(name, func(s *SourceStatus) {
			switch u.Kind {
			case KindStatus:
				s.Connected = u.Connected
				if u.Connected {
					s.LastConnected = u.Timestamp
				}
				if u.Err != nil {
					s.LastError = u.Err.Error()
				}
			default:
				s.Received++
			}
		})
		return r.send(ctx, u)
	}
}

func (r *Runner) send(ctx context.Context, u Update) bool {
	select {
	case r.out <- u:
		return true
	case <-ctx.Done():
		return false
	}
}

// Connected builds the status update a source emits once its session is
// established.
func Connected(source string) Update {
	return Update{Source: source, Kind: KindStatus, Connected: true, Timestamp: time.Now()}
}
