// Package wsstream provides sources that read the controller's websocket
// streams: JSON telemetry frames from /ws/telemetry and raw text log lines
// from /ws/logs.
package wsstream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"

	"gitlab.com/tinyland/lab/hydro-pulse/pkg/sources"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/telemetry"
)

// Default stream paths on the controller.
const (
	TelemetryPath = "/ws/telemetry"
	LogsPath      = "/ws/logs"
)

// Mode selects how frames are decoded.
type Mode int

const (
	// ModeTelemetry decodes JSON telemetry frames.
	ModeTelemetry Mode = iota
	// ModeLogs treats every frame as log text.
	ModeLogs
)

// Config controls a Stream.
type Config struct {
	// Name is the source name; defaults to "telemetry" or "logs".
	Name string

	// URL is the ws:// or wss:// endpoint.
	URL string

	Mode Mode

	// DialTimeout bounds the handshake (default 5s).
	DialTimeout time.Duration

	// ReadLimit bounds a single frame in bytes (default 64 KiB).
	ReadLimit int64

	Logger *slog.Logger
}

// Stream is a websocket-backed sources.Source.
type Stream struct {
	cfg Config
}

// New creates a stream. Zero-value fields in cfg are replaced with
// defaults.
func New(cfg Config) (*Stream, error) {
	if cfg.URL == "" {
		return nil, errors.New("wsstream: url is required")
	}
	if cfg.Name == "" {
		cfg.Name = "telemetry"
		if cfg.Mode == ModeLogs {
			cfg.Name = "logs"
		}
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.ReadLimit <= 0 {
		cfg.ReadLimit = 64 << 10
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Stream{cfg: cfg}, nil
}

// Name returns the source name.
func (s *Stream) Name() string { return s.cfg.Name }

// Run dials the endpoint and emits decoded frames until the connection
// closes or ctx is done.
func (s *Stream) Run(ctx context.Context, emit sources.Emitter) error {
	dctx, cancel := context.WithTimeout(ctx, s.cfg.DialTimeout)
	conn, _, err := websocket.Dial(dctx, s.cfg.URL, nil)
	cancel()
	if err != nil {
		return fmt.Errorf("wsstream: dial %s: %w", s.cfg.URL, err)
	}
	defer conn.CloseNow()
	conn.SetReadLimit(s.cfg.ReadLimit)

	s.cfg.Logger.Info("stream connected", "source", s.cfg.Name, "url", s.cfg.URL)
	if !emit(sources.Connected(s.cfg.Name)) {
		return ctx.Err()
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				conn.Close(websocket.StatusNormalClosure, "")
				return ctx.Err()
			}
			return fmt.Errorf("wsstream: read %s: %w", s.cfg.Name, err)
		}
		if !s.dispatch(data, emit) {
			return ctx.Err()
		}
	}
}

func (s *Stream) dispatch(data []byte, emit sources.Emitter) bool {
	switch s.cfg.Mode {
	case ModeLogs:
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if !emit(sources.Log(s.cfg.Name, line)) {
				return false
			}
		}
		return true
	default:
		ev, err := telemetry.DecodeFrame(data)
		if err != nil {
			s.cfg.Logger.Debug("telemetry frame dropped", "source", s.cfg.Name, "error", err)
			return true
		}
		return emit(sources.Telemetry(s.cfg.Name, ev))
	}
}

// URL turns the controller's HTTP base URL into the websocket URL of path.
func URL(baseURL, path string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("wsstream: parse base url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("wsstream: unsupported scheme %q", u.Scheme)
	}
	u.Path += path
	return u.String(), nil
}
