// Package hostmetrics provides a source that reports the health of the
// machine running the dashboard as an ordinary widget. It uses gopsutil to
// read CPU, memory, disk and load, and emits them under the widget's key
// base as .telem.value, .telem.status and .telem.statusStr.
package hostmetrics

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"

	"gitlab.com/tinyland/lab/hydro-pulse/pkg/catalog"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/sources"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/telemetry"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/widgets"
)

// Config controls the host metrics source.
type Config struct {
	// Interval is the polling rate (default 5s).
	Interval time.Duration

	// KeyBase is the telemetry namespace of the host widget (default "host").
	KeyBase string

	// Mount is the filesystem whose usage is reported (default "/").
	Mount string

	// WarnPercent and ErrorPercent are the usage thresholds, applied to the
	// busiest of CPU, memory and disk (defaults 80 and 95).
	WarnPercent  float64
	ErrorPercent float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:     5 * time.Second,
		KeyBase:      "host",
		Mount:        "/",
		WarnPercent:  80,
		ErrorPercent: 95,
	}
}

// Metrics is one reading of the host.
type Metrics struct {
	CPUPercent  float64       `json:"cpu_percent"`
	MemPercent  float64       `json:"mem_percent"`
	DiskPercent float64       `json:"disk_percent"`
	Load1       float64       `json:"load1"`
	Uptime      time.Duration `json:"uptime"`
	Timestamp   time.Time     `json:"timestamp"`
}

// Source polls the host and emits its readings as telemetry.
type Source struct {
	cfg   Config
	probe func(ctx context.Context) (Metrics, error)
}

// New creates a Source. Zero-value fields in cfg are replaced with
// defaults.
func New(cfg Config) *Source {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.KeyBase == "" {
		cfg.KeyBase = def.KeyBase
	}
	if cfg.Mount == "" {
		cfg.Mount = def.Mount
	}
	if cfg.WarnPercent <= 0 {
		cfg.WarnPercent = def.WarnPercent
	}
	if cfg.ErrorPercent <= 0 {
		cfg.ErrorPercent = def.ErrorPercent
	}
	s := &Source{cfg: cfg}
	s.probe = s.Collect
	return s
}

// Name returns the source name.
func (s *Source) Name() string { return "host" }

// Widget returns the catalog widget the readings are routed to.
func (s *Source) Widget() catalog.Widget {
	return catalog.Widget{
		ID:      s.cfg.KeyBase,
		Name:    "Host",
		KeyBase: s.cfg.KeyBase,
		Kind:    catalog.KindNumeric,
		Unit:    "%",
	}
}

// Run emits one reading per interval until ctx is done. It returns an error
// when a reading fails completely, so the runner can back off.
func (s *Source) Run(ctx context.Context, emit sources.Emitter) error {
	if !emit(sources.Connected(s.Name())) {
		return ctx.Err()
	}
	t := time.NewTicker(s.cfg.Interval)
	defer t.Stop()
	for {
		m, err := s.probe(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil && m.Timestamp.IsZero() {
			return err
		}
		for _, ev := range s.Events(m) {
			if !emit(sources.Telemetry(s.Name(), ev)) {
				return ctx.Err()
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

// Events converts a reading into the widget's telemetry events.
func (s *Source) Events(m Metrics) []telemetry.Event {
	busiest := max(m.CPUPercent, m.MemPercent, m.DiskPercent)
	status := widgets.StatusWorking
	switch {
	case busiest >= s.cfg.ErrorPercent:
		status = widgets.StatusError
	case busiest >= s.cfg.WarnPercent:
		status = widgets.StatusWarning
	}
	base := s.cfg.KeyBase
	return []telemetry.Event{
		{Key: base + telemetry.SuffixValue, Value: round2(m.CPUPercent)},
		{Key: base + telemetry.SuffixStatus, Value: float64(status)},
		{Key: base + telemetry.SuffixStatusText, Value: fmt.Sprintf(
			"cpu %.0f%% mem %.0f%% disk %.0f%% load %.2f",
			m.CPUPercent, m.MemPercent, m.DiskPercent, m.Load1)},
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// Collect reads the host. Individual failures are tolerated; an error is
// returned with a zero Timestamp only when every reading failed.
func (s *Source) Collect(ctx context.Context) (Metrics, error) {
	select {
	case <-ctx.Done():
		return Metrics{}, ctx.Err()
	default:
	}

	var m Metrics
	var errs []string

	if total, err := cpu.PercentWithContext(ctx, 0, false); err != nil {
		errs = append(errs, fmt.Sprintf("cpu: %v", err))
	} else if len(total) > 0 {
		m.CPUPercent = total[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		errs = append(errs, fmt.Sprintf("memory: %v", err))
	} else {
		m.MemPercent = vm.UsedPercent
	}
	if usage, err := disk.UsageWithContext(ctx, s.cfg.Mount); err != nil {
		errs = append(errs, fmt.Sprintf("disk: %v", err))
	} else {
		m.DiskPercent = usage.UsedPercent
	}
	if avg, err := load.AvgWithContext(ctx); err != nil {
		errs = append(errs, fmt.Sprintf("load: %v", err))
	} else {
		m.Load1 = avg.Load1
	}
	if secs, err := host.UptimeWithContext(ctx); err != nil {
		errs = append(errs, fmt.Sprintf("uptime: %v", err))
	} else {
		m.Uptime = time.Duration(secs) * time.Second
	}

	if len(errs) == 5 {
		return Metrics{}, fmt.Errorf("hostmetrics: all readings failed: %s", strings.Join(errs, "; "))
	}
	m.Timestamp = time.Now()
	if len(errs) > 0 {
		return m, fmt.Errorf("hostmetrics: partial errors: %s", strings.Join(errs, "; "))
	}
	return m, nil
}
