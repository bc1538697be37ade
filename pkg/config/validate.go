package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// Validate reports every problem in cfg, joined.
func (c *Config) Validate() error {
	var errs []error

	if _, err := ParseLevel(c.General.LogLevel); err != nil {
		errs = append(errs, err)
	}

	u, err := url.Parse(c.Server.URL)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("server.url: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("server.url: scheme must be http or https, got %q", u.Scheme))
	case u.Host == "":
		errs = append(errs, fmt.Errorf("server.url: missing host"))
	}
	for name, p := range map[string]string{
		"server.telemetry_path": c.Server.TelemetryPath,
		"server.logs_path":      c.Server.LogsPath,
	} {
		if !strings.HasPrefix(p, "/") {
			errs = append(errs, fmt.Errorf("%s: must start with /, got %q", name, p))
		}
	}

	if c.Ticker.Speed <= 0 {
		errs = append(errs, fmt.Errorf("ticker.speed: must be positive, got %v", c.Ticker.Speed))
	}
	if c.Ticker.FrameInterval.Duration <= 0 {
		errs = append(errs, errors.New("ticker.frame_interval: must be positive"))
	}
	if c.Ticker.QueueLimit <= 0 {
		errs = append(errs, fmt.Errorf("ticker.queue_limit: must be positive, got %d", c.Ticker.QueueLimit))
	}
	if c.Ticker.Width <= 0 {
		errs = append(errs, fmt.Errorf("ticker.width: must be positive, got %d", c.Ticker.Width))
	}

	switch c.Display.Preset {
	case "dashboard", "compact", "wall":
	default:
		errs = append(errs, fmt.Errorf("display.preset: unknown preset %q", c.Display.Preset))
	}

	if c.Host.Enabled {
		if c.Host.KeyBase == "" {
			errs = append(errs, errors.New("host.key_base: required when host is enabled"))
		}
		if c.Host.WarnPercent >= c.Host.ErrorPercent {
			errs = append(errs, fmt.Errorf("host: warn_percent (%v) must be below error_percent (%v)",
				c.Host.WarnPercent, c.Host.ErrorPercent))
		}
	}

	return errors.Join(errs...)
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("general.log_level: %w", err)
	}
	return l, nil
}
