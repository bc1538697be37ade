// hydro-pulse is a terminal dashboard for a hydroponics controller.
//
// It follows the controller's telemetry and log websockets, shows device
// widgets, a system summary bar and a scrolling log ticker, and edits the
// controller's settings entries over its HTTP entry API. Without a terminal
// it runs headless and writes summary changes and log lines to the log.
//
// Usage:
//
//	hydro-pulse [flags]
//
// Flags:
//
//	-config string         Path to configuration file (default: ~/.config/hydro-pulse/config.toml)
//	-catalog string        YAML widget and settings catalog (default: built-in)
//	-server string         Controller base URL, e.g. http://192.168.4.1
//	-headless              Run without the TUI even on a terminal
//	-snapshot-addr string  Serve the read-only snapshot API on this address
//	-no-color              Disable colors
//	-verbose               Enable verbose logging
//	-version               Print version and exit
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/sync/errgroup"

	"gitlab.com/tinyland/lab/hydro-pulse/pkg/app"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/catalog"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/config"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/core"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/gateway"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/headless"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/httpapi"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/sources"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/sources/hostmetrics"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/sources/wsstream"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/ticker"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	var (
		configPath   = flag.String("config", "", "Path to configuration file")
		catalogPath  = flag.String("catalog", "", "YAML widget and settings catalog")
		serverURL    = flag.String("server", "", "Controller base URL")
		runHeadless  = flag.Bool("headless", false, "Run without the TUI")
		snapshotAddr = flag.String("snapshot-addr", "", "Listen address of the snapshot API")
		noColor      = flag.Bool("no-color", false, "Disable colors")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
		showVersion  = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("hydro-pulse %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *catalogPath != "" {
		cfg.General.Catalog = *catalogPath
	}
	if *serverURL != "" {
		cfg.Server.URL = *serverURL
	}
	if *snapshotAddr != "" {
		cfg.Snapshot.Addr = *snapshotAddr
	}
	if *noColor {
		cfg.Display.NoColor = true
	}
	if *verbose {
		cfg.General.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	useTUI := !*runHeadless && isTerminal(os.Stdout)

	logger, closeLog, err := setupLogger(cfg.General, useTUI)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()
	slog.SetDefault(logger)

	if err := run(cfg, useTUI, logger); err != nil {
		logger.Error("hydro-pulse failed", "error", err)
		closeLog()
		fmt.Fprintf(os.Stderr, "hydro-pulse: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, useTUI bool, logger *slog.Logger) error {
	cat, err := catalog.LoadFile(cfg.General.Catalog)
	if err != nil {
		return err
	}

	gw, err := gateway.New(cfg.Server.URL,
		gateway.WithTimeout(cfg.Server.RequestTimeout.Duration),
		gateway.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	reg := sources.NewRegistry()
	if err := registerStreams(reg, cfg.Server, logger); err != nil {
		return err
	}
	if cfg.Host.Enabled {
		host := hostmetrics.New(hostmetrics.Config{
			Interval:     cfg.Host.Interval.Duration,
			KeyBase:      cfg.Host.KeyBase,
			Mount:        cfg.Host.Mount,
			WarnPercent:  cfg.Host.WarnPercent,
			ErrorPercent: cfg.Host.ErrorPercent,
		})
		if err := cat.AddWidget(host.Widget()); err != nil {
			return fmt.Errorf("host widget: %w", err)
		}
		if err := reg.Register(host); err != nil {
			return err
		}
	}

	c, err := core.New(cat,
		core.WithGateway(gw),
		core.WithLogger(logger),
		core.WithTicker(
			ticker.WithSpeed(cfg.Ticker.Speed),
			ticker.WithQueueLimit(cfg.Ticker.QueueLimit),
			ticker.WithSeparator(cfg.Ticker.Separator),
		),
	)
	if err != nil {
		return err
	}

	// Setup context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			logger.Info("received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	runner := sources.NewRunner(reg,
		sources.WithReconnect(cfg.Server.Reconnect.Duration),
		sources.WithRunnerLogger(logger),
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return runner.Run(gctx) })

	var publish func(core.Snapshot)
	if cfg.Snapshot.Addr != "" || cfg.Snapshot.File != "" {
		api := httpapi.New(
			httpapi.WithRegistry(reg),
			httpapi.WithStateFile(cfg.Snapshot.File),
			httpapi.WithVersion(version),
			httpapi.WithLogger(logger),
		)
		publish = api.Publish
		g.Go(func() error { return api.Run(gctx, cfg.Snapshot.Addr) })
	}

	logger.Info("starting hydro-pulse",
		"server", cfg.Server.URL,
		"tui", useTUI,
		"sources", reg.List(),
		"widgets", len(cat.Widgets),
		"entries", len(cat.Entries()),
	)

	var runErr error
	if useTUI {
		runErr = runTUI(gctx, c, runner, cfg, publish, logger)
	} else {
		runErr = headless.New(c, headless.Options{
			Updates:        runner.Updates(),
			FrameInterval:  cfg.Ticker.FrameInterval.Duration,
			RequestTimeout: cfg.Server.RequestTimeout.Duration,
			Width:          cfg.Ticker.Width,
			LoadOnStart:    cfg.General.LoadOnStart,
			Publish:        publish,
			PublishEvery:   cfg.Snapshot.Interval.Duration,
			Logger:         logger,
		}).Run(gctx)
	}
	cancel()
	if err := g.Wait(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func runTUI(ctx context.Context, c *core.Core, runner *sources.Runner, cfg *config.Config, publish func(core.Snapshot), logger *slog.Logger) error {
	if cfg.Display.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	model := app.New(c, app.Options{
		Updates:        runner.Updates(),
		Layout:         cfg.Display.Layout(),
		FrameInterval:  cfg.Ticker.FrameInterval.Duration,
		RequestTimeout: cfg.Server.RequestTimeout.Duration,
		LoadOnStart:    cfg.General.LoadOnStart,
		Publish:        publish,
		PublishEvery:   cfg.Snapshot.Interval.Duration,
		Logger:         logger,
	})
	defer model.Close()

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// registerStreams adds the telemetry and log websockets of the controller.
func registerStreams(reg *sources.Registry, sc config.ServerConfig, logger *slog.Logger) error {
	for _, s := range []struct {
		path string
		mode wsstream.Mode
	}{
		{sc.TelemetryPath, wsstream.ModeTelemetry},
		{sc.LogsPath, wsstream.ModeLogs},
	} {
		u, err := wsstream.URL(sc.URL, s.path)
		if err != nil {
			return err
		}
		stream, err := wsstream.New(wsstream.Config{URL: u, Mode: s.mode, Logger: logger})
		if err != nil {
			return err
		}
		if err := reg.Register(stream); err != nil {
			return err
		}
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromFile(path)
}

// setupLogger logs to stderr and the log file when headless, and only to
// the log file while the TUI owns the terminal.
func setupLogger(gc config.GeneralConfig, useTUI bool) (*slog.Logger, func(), error) {
	level, err := config.ParseLevel(gc.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	if gc.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(gc.LogFile), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(gc.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		closeFn = func() { f.Close() }
		if useTUI {
			w = f
		} else {
			w = io.MultiWriter(os.Stderr, f)
		}
	} else if useTUI {
		w = io.Discard
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, closeFn, nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
