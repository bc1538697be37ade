package config

// Config is the top-level hydro-pulse configuration.
type Config struct {
	General  GeneralConfig  `toml:"general"`
	Server   ServerConfig   `toml:"server"`
	Ticker   TickerConfig   `toml:"ticker"`
	Display  DisplayConfig  `toml:"display"`
	Host     HostConfig     `toml:"host"`
	Snapshot SnapshotConfig `toml:"snapshot"`
}

// GeneralConfig holds process-wide settings.
type GeneralConfig struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// LogFile receives logs while the TUI owns the terminal.
	LogFile string `toml:"log_file"`

	// Catalog is an optional YAML catalog replacing the built-in one.
	Catalog string `toml:"catalog"`

	// LoadOnStart fetches every settings entry at startup.
	LoadOnStart bool `toml:"load_on_start"`
}

// ServerConfig locates the controller.
type ServerConfig struct {
	// URL is the controller's HTTP base URL.
	URL string `toml:"url"`

	TelemetryPath string `toml:"telemetry_path"`
	LogsPath      string `toml:"logs_path"`

	// RequestTimeout bounds every entry fetch and store.
	RequestTimeout Duration `toml:"request_timeout"`

	// Reconnect is the minimum time between two connection attempts of a
	// stream.
	Reconnect Duration `toml:"reconnect"`
}

// TickerConfig tunes the message marquee.
type TickerConfig struct {
	// Speed is in terminal cells per second.
	Speed float64 `toml:"speed"`

	// FrameInterval is the animation step.
	FrameInterval Duration `toml:"frame_interval"`

	QueueLimit int    `toml:"queue_limit"`
	Separator  string `toml:"separator"`

	// Width is the ticker line width in cells when running headless.
	Width int `toml:"width"`
}

// DisplayConfig selects the dashboard layout.
type DisplayConfig struct {
	// Preset is one of dashboard, compact, wall.
	Preset string `toml:"preset"`

	// Columns and CardWidth override the preset when non-zero.
	Columns   int `toml:"columns"`
	CardWidth int `toml:"card_width"`

	// NoColor forces the ASCII color profile.
	NoColor bool `toml:"no_color"`
}

// HostConfig controls the local host metrics widget.
type HostConfig struct {
	Enabled      bool     `toml:"enabled"`
	Interval     Duration `toml:"interval"`
	KeyBase      string   `toml:"key_base"`
	Mount        string   `toml:"mount"`
	WarnPercent  float64  `toml:"warn_percent"`
	ErrorPercent float64  `toml:"error_percent"`
}

// SnapshotConfig controls the read-only snapshot HTTP API.
type SnapshotConfig struct {
	// Addr is the listen address; empty disables the API.
	Addr string `toml:"addr"`

	// Interval is how often a fresh snapshot is published.
	Interval Duration `toml:"interval"`

	// File, if set, receives every published snapshot as JSON.
	File string `toml:"file"`
}
