package sources

import (
	"context"
	"errors"
	"testing"
	"time"

	"gitlab.com/tinyland/lab/hydro-pulse/pkg/telemetry"
)

// --- Registry Tests ---

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(NewMockSource("telemetry")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	got, ok := r.Get("telemetry")
	if !ok || got.Name() != "telemetry" {
		t.Fatalf("Get = %v, %v", got, ok)
	}
	st, ok := r.Status("telemetry")
	if !ok || st.Connected || st.Sessions != 0 {
		t.Errorf("initial status = %+v", st)
	}
}

func TestRegistryDuplicateNameError(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(NewMockSource("dup"))
	if err := r.Register(NewMockSource("dup")); err == nil {
		t.Fatal("second Register should fail for a duplicate name")
	}
}

func TestRegistryListSorted(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(NewMockSource("telemetry"))
	_ = r.Register(NewMockSource("host"))
	_ = r.Register(NewMockSource("logs"))

	names := r.List()
	if len(names) != 3 || names[0] != "host" || names[1] != "logs" || names[2] != "telemetry" {
		t.Errorf("List = %v", names)
	}
	all := r.AllStatus()
	if len(all) != 3 || all[0].Name != "host" {
		t.Errorf("AllStatus = %+v", all)
	}
	if _, ok := r.Status("does-not-exist"); ok {
		t.Error("Status of unknown source reported ok")
	}
}

// --- Runner Tests ---

func collect(t *testing.T, ch <-chan Update, n int) []Update {
	t.Helper()
	var out []Update
	timeout := time.After(2 * time.Second)
	for len(out) < n {
		select {
		case u, ok := <-ch:
			if !ok {
				t.Fatalf("channel closed after %d updates, want %d", len(out), n)
			}
			out = append(out, u)
		case <-timeout:
			t.Fatalf("timed out after %d updates, want %d", len(out), n)
		}
	}
	return out
}

func TestRunnerDeliversInOrder(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(NewMockSource("telemetry",
		WithEvents(
			telemetry.Event{Key: "pump.telem.value", Value: true},
			telemetry.Event{Key: "pump.telem.status", Value: 2.0},
		),
		WithLines("pump on"),
		WithHold(),
	))

	runner := NewRunner(reg, WithBuffer(0))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	got := collect(t, runner.Updates(), 4)
	if got[0].Kind != KindStatus || !got[0].Connected {
		t.Errorf("first update = %+v, want connect status", got[0])
	}
	if got[1].Event.Key != "pump.telem.value" || got[2].Event.Key != "pump.telem.status" {
		t.Errorf("telemetry out of order: %+v, %+v", got[1].Event, got[2].Event)
	}
	if got[3].Kind != KindLog || got[3].Line != "pump on" {
		t.Errorf("log update = %+v", got[3])
	}
	for _, u := range got {
		if u.Source != "telemetry" || u.Timestamp.IsZero() {
			t.Errorf("update not stamped: %+v", u)
		}
	}

	st, _ := reg.Status("telemetry")
	if !st.Connected || st.Received != 3 || st.Sessions != 1 {
		t.Errorf("status = %+v", st)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if _, ok := <-runner.Updates(); ok {
		t.Error("updates channel not closed")
	}
	if st, _ := reg.Status("telemetry"); st.Connected {
		t.Error("source still marked connected after shutdown")
	}
}

func TestRunnerReconnectsAfterFailure(t *testing.T) {
	reg := NewRegistry()
	src := NewMockSource("logs", WithError(errors.New("connection reset")))
	_ = reg.Register(src)

	runner := NewRunner(reg, WithReconnect(10*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = runner.Run(ctx) }()

	// connect, failure status, connect, failure status
	got := collect(t, runner.Updates(), 4)
	if got[1].Kind != KindStatus || got[1].Err == nil || got[1].Connected {
		t.Errorf("expected failure status, got %+v", got[1])
	}
	if src.CallCount() < 2 {
		t.Errorf("CallCount = %d, want at least 2 sessions", src.CallCount())
	}
	st, _ := reg.Status("logs")
	if st.Errors < 1 || st.LastError != "connection reset" {
		t.Errorf("status = %+v", st)
	}
}

func TestRunnerThrottlesReconnects(t *testing.T) {
	reg := NewRegistry()
	src := NewMockSource("flaky", WithError(errors.New("refused")))
	_ = reg.Register(src)

	runner := NewRunner(reg, WithReconnect(time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	go func() {
		for range runner.Updates() {
		}
	}()
	_ = runner.Run(ctx)

	if n := src.CallCount(); n != 1 {
		t.Errorf("CallCount = %d, want 1 within the reconnect interval", n)
	}
}

func TestKindString(t *testing.T) {
	if KindLog.String() != "log" || Kind(9).String() != "unknown" {
		t.Error("unexpected Kind strings")
	}
}
