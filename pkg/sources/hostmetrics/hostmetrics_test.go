package hostmetrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"gitlab.com/tinyland/lab/hydro-pulse/pkg/sources"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/telemetry"
)

func TestDefaults(t *testing.T) {
	s := New(Config{})
	if s.cfg != DefaultConfig() {
		t.Errorf("cfg = %+v, want defaults", s.cfg)
	}
	if s.Name() != "host" {
		t.Errorf("Name = %q", s.Name())
	}
	w := s.Widget()
	if w.KeyBase != "host" || w.ID != "host" || w.Unit != "%" {
		t.Errorf("Widget = %+v", w)
	}
}

func TestEvents(t *testing.T) {
	s := New(Config{KeyBase: "pi"})
	tests := []struct {
		name   string
		m      Metrics
		status float64
	}{
		{"idle host", Metrics{CPUPercent: 12.345, MemPercent: 40, DiskPercent: 10}, 2},
		{"memory pressure", Metrics{CPUPercent: 5, MemPercent: 85, DiskPercent: 10}, 1},
		{"disk full", Metrics{CPUPercent: 5, MemPercent: 40, DiskPercent: 99}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evs := s.Events(tt.m)
			if len(evs) != 3 {
				t.Fatalf("got %d events", len(evs))
			}
			if evs[0].Key != "pi.telem.value" || evs[1].Key != "pi.telem.status" || evs[2].Key != "pi.telem.statusStr" {
				t.Errorf("keys = %q, %q, %q", evs[0].Key, evs[1].Key, evs[2].Key)
			}
			if evs[1].Value != tt.status {
				t.Errorf("status = %v, want %v", evs[1].Value, tt.status)
			}
		})
	}
	evs := s.Events(Metrics{CPUPercent: 12.25, MemPercent: 40, DiskPercent: 10, Load1: 0.5})
	want := []telemetry.Event{
		{Key: "pi.telem.value", Value: 12.25},
		{Key: "pi.telem.status", Value: 2.0},
		{Key: "pi.telem.statusStr", Value: "cpu 12% mem 40% disk 10% load 0.50"},
	}
	if diff := cmp.Diff(want, evs); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestRunEmitsReadings(t *testing.T) {
	s := New(Config{Interval: 10 * time.Millisecond})
	s.probe = func(context.Context) (Metrics, error) {
		return Metrics{CPUPercent: 50, Timestamp: time.Now()}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	var got []sources.Update
	err := s.Run(ctx, func(u sources.Update) bool {
		got = append(got, u)
		if len(got) == 7 {
			cancel()
		}
		return true
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
	if got[0].Kind != sources.KindStatus || !got[0].Connected {
		t.Errorf("first update = %+v", got[0])
	}
	if got[1].Event.Key != "host.telem.value" || got[4].Event.Key != "host.telem.value" {
		t.Errorf("readings not repeated: %+v", got)
	}
}

func TestRunFailsWhenProbeFails(t *testing.T) {
	s := New(Config{})
	s.probe = func(context.Context) (Metrics, error) {
		return Metrics{}, errors.New("no /proc")
	}
	err := s.Run(context.Background(), func(sources.Update) bool { return true })
	if err == nil || err.Error() != "no /proc" {
		t.Errorf("Run = %v", err)
	}
}

// --- Integration test (runs on the actual host) ---

func TestCollectOnHost(t *testing.T) {
	s := New(DefaultConfig())
	m, err := s.Collect(context.Background())
	if m.Timestamp.IsZero() {
		t.Skipf("host metrics unavailable: %v", err)
	}
	if m.CPUPercent < 0 || m.CPUPercent > 100 || m.MemPercent < 0 || m.MemPercent > 100 {
		t.Errorf("metrics out of range: %+v", m)
	}
}
