package config

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Load reads configuration from the standard config path.
// Search order:
//  1. $XDG_CONFIG_HOME/hydro-pulse/config.toml
//  2. ~/.config/hydro-pulse/config.toml
//
// If no file exists, returns DefaultConfig() with environment overrides.
func Load() (*Config, error) {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFromFile(p)
		}
	}
	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromFile reads configuration from a specific file path. A missing
// file yields the defaults.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader reads configuration from an io.Reader. Keys not present
// keep their defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	logFile := filepath.Join(xdgStateHome(home), "hydro-pulse", "hydro-pulse.log")

	return &Config{
		General: GeneralConfig{
			LogLevel:    "info",
			LogFile:     logFile,
			LoadOnStart: true,
		},
		Server: ServerConfig{
			URL:            "http://localhost:8080",
			TelemetryPath:  "/ws/telemetry",
			LogsPath:       "/ws/logs",
			RequestTimeout: Duration{5 * time.Second},
			Reconnect:      Duration{3 * time.Second},
		},
		Ticker: TickerConfig{
			Speed:         20,
			FrameInterval: Duration{50 * time.Millisecond},
			QueueLimit:    200,
			Separator:     "  •  ",
			Width:         80,
		},
		Display: DisplayConfig{
			Preset: "dashboard",
		},
		Host: HostConfig{
			Enabled:      false,
			Interval:     Duration{5 * time.Second},
			KeyBase:      "host",
			Mount:        "/",
			WarnPercent:  80,
			ErrorPercent: 95,
		},
		Snapshot: SnapshotConfig{
			Interval: Duration{time.Second},
		},
	}
}

// applyEnvOverrides checks environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HYDRO_SERVER"); v != "" {
		cfg.Server.URL = v
	}
	if v := os.Getenv("HYDRO_CATALOG"); v != "" {
		cfg.General.Catalog = v
	}
	if v := os.Getenv("HYDRO_LOG_LEVEL"); v != "" {
		cfg.General.LogLevel = v
	}
}

// configSearchPaths returns the ordered list of config file paths to try.
func configSearchPaths() []string {
	home, _ := os.UserHomeDir()
	var paths []string

	xdg := xdgConfigHome(home)
	paths = append(paths, filepath.Join(xdg, "hydro-pulse", "config.toml"))

	// If XDG_CONFIG_HOME was explicitly set, also try the fallback default.
	defaultXDG := filepath.Join(home, ".config")
	if xdg != defaultXDG {
		paths = append(paths, filepath.Join(defaultXDG, "hydro-pulse", "config.toml"))
	}

	return paths
}

// xdgConfigHome returns XDG_CONFIG_HOME or ~/.config as fallback.
func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}

// xdgStateHome returns XDG_STATE_HOME or ~/.local/state as fallback.
func xdgStateHome(home string) string {
	if v := os.Getenv("XDG_STATE_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".local", "state")
}
