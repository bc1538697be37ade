// Package httpapi serves the latest published dashboard snapshot over a
// read-only HTTP API and optionally mirrors it to a state file.
//
// The owner goroutine hands snapshots to Publish; handlers only ever read
// the most recent one, so they never touch the core.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"gitlab.com/tinyland/lab/hydro-pulse/pkg/core"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/sources"
)

// Option configures a Server.
type Option func(*Server)

// WithRegistry exposes the statuses of reg under /api/sources.
func WithRegistry(reg *sources.Registry) Option {
	return func(s *Server) { s.reg = reg }
}

// WithStateFile mirrors every published snapshot to path.
func WithStateFile(path string) Option {
	return func(s *Server) { s.stateFile = path }
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// Server holds the latest snapshot and serves it.
type Server struct {
	latest    atomic.Pointer[core.Snapshot]
	published chan struct{}
	started   time.Time

	reg       *sources.Registry
	stateFile string
	version   string
	logger    *slog.Logger
}

// New creates a server with no snapshot yet.
func New(opts ...Option) *Server {
	s := &Server{
		published: make(chan struct{}, 1),
		started:   time.Now(),
		version:   "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Publish replaces the latest snapshot. It never blocks.
func (s *Server) Publish(snap core.Snapshot) {
	s.latest.Store(&snap)
	select {
	case s.published <- struct{}{}:
	default:
	}
}

// Latest returns the most recent snapshot, if any was published.
func (s *Server) Latest() (core.Snapshot, bool) {
	p := s.latest.Load()
	if p == nil {
		return core.Snapshot{}, false
	}
	return *p, true
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/sources", s.handleSources)
		r.Get("/widgets/{id}", s.handleWidget)
	})
	return r
}

// Run serves the API on addr, when non-empty, and writes the state file,
// when configured, until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	errc := make(chan error, 1)
	var srv *http.Server
	if addr != "" {
		srv = &http.Server{
			Addr:              addr,
			Handler:           s.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			s.logger.Info("snapshot api listening", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			if srv != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					s.logger.Warn("snapshot api shutdown", "error", err)
				}
			}
			return nil
		case err := <-errc:
			return err
		case <-s.published:
			if s.stateFile == "" {
				continue
			}
			if snap, ok := s.Latest(); ok {
				if err := WriteStateFile(s.stateFile, &snap); err != nil {
					s.logger.Warn("write state file", "path", s.stateFile, "error", err)
				}
			}
		}
	}
}
