package entries

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"gitlab.com/tinyland/lab/hydro-pulse/pkg/catalog"
)

const maintenanceKey = "system.config.maintance"

func newTestStore(t *testing.T, gw Gateway) *Store {
	t.Helper()
	s, err := New(catalog.Default().Entries(),
		WithGateway(gw),
		WithMaintenanceKey(maintenanceKey),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func mustState(t *testing.T, s *Store, key string) State {
	t.Helper()
	st, ok := s.State(key)
	if !ok {
		t.Fatalf("State(%q) missing", key)
	}
	return st
}

func TestNewStartsClean(t *testing.T) {
	s := newTestStore(t, nil)
	for _, key := range s.Keys() {
		st := mustState(t, s, key)
		if st.Dirty() || st.HasConfirmed {
			t.Errorf("%s initial state = %+v", key, st)
		}
	}
}

func TestNewDuplicateKeyFails(t *testing.T) {
	entries := []catalog.Entry{
		{Key: "a.config.x", Type: catalog.TypeNumber, Section: catalog.SectionConfig},
		{Key: "a.config.x", Type: catalog.TypeBool, Section: catalog.SectionConfig},
	}
	if _, err := New(entries); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("New = %v, want ErrDuplicateKey", err)
	}
}

func TestRegisterAgainstExisting(t *testing.T) {
	s := newTestStore(t, nil)
	err := s.Register([]catalog.Entry{{Key: "pump.config.onTime", Type: catalog.TypeNumber}})
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("Register = %v, want ErrDuplicateKey", err)
	}
}

func TestApplyConfirmedCleanSyncsDraft(t *testing.T) {
	s := newTestStore(t, nil)
	for _, v := range []any{10.0, 45.0, "12", nil} {
		if err := s.ApplyConfirmed("pump.config.onTime", v, false); err != nil {
			t.Fatal(err)
		}
		st := mustState(t, s, "pump.config.onTime")
		if st.Dirty() {
			t.Fatalf("entry became dirty after unforced update")
		}
		if want := Normalize(catalog.TypeNumber, v); st.Draft != want {
			t.Errorf("draft after %v = %+v, want %+v", v, st.Draft, want)
		}
	}
}

func TestApplyConfirmedDirtyKeepsDraft(t *testing.T) {
	s := newTestStore(t, nil)
	_ = s.ApplyConfirmed("pump.config.onTime", 30.0, false)
	_ = s.RecordEdit("pump.config.onTime", TextDraft("45"))

	_ = s.ApplyConfirmed("pump.config.onTime", 31.0, false)

	st := mustState(t, s, "pump.config.onTime")
	if !st.Dirty() {
		t.Error("unforced update cleared the dirty flag")
	}
	if st.Draft != TextDraft("45") {
		t.Errorf("draft = %+v, want user input kept", st.Draft)
	}
	if st.Confirmed != 31.0 {
		t.Errorf("confirmed = %v, want 31", st.Confirmed)
	}
}

func TestApplyConfirmedForceOverridesDraft(t *testing.T) {
	s := newTestStore(t, nil)
	_ = s.RecordEdit("lamp.config.onTime", TextDraft("08:00"))
	_ = s.ApplyConfirmed("lamp.config.onTime", 420.0, true)

	st := mustState(t, s, "lamp.config.onTime")
	if st.Dirty() || st.Draft != TextDraft("07:00") {
		t.Errorf("state after forced update = %+v", st)
	}
}

func TestUnknownKeys(t *testing.T) {
	s := newTestStore(t, nil)
	if err := s.ApplyConfirmed("nope", 1.0, false); !errors.Is(err, ErrUnknownEntry) {
		t.Errorf("ApplyConfirmed = %v", err)
	}
	if err := s.RecordEdit("nope", TextDraft("1")); !errors.Is(err, ErrUnknownEntry) {
		t.Errorf("RecordEdit = %v", err)
	}
	if err := s.Reset("nope"); !errors.Is(err, ErrUnknownEntry) {
		t.Errorf("Reset = %v", err)
	}
	if _, err := s.PrepareSave("nope"); !errors.Is(err, ErrUnknownEntry) {
		t.Errorf("PrepareSave = %v", err)
	}
}

func TestResetRestoresConfirmed(t *testing.T) {
	s := newTestStore(t, nil)
	_ = s.ApplyConfirmed("bridge.config.mac", []any{"aa", "bb"}, false)
	_ = s.RecordEdit("bridge.config.mac", TextDraft("zz"))
	if err := s.Reset("bridge.config.mac"); err != nil {
		t.Fatal(err)
	}
	st := mustState(t, s, "bridge.config.mac")
	if st.Dirty() || st.Draft != TextDraft("aa\nbb") {
		t.Errorf("state after reset = %+v", st)
	}
}

func TestSaveSuccessAdoptsRefetch(t *testing.T) {
	gw := NewMockGateway(map[string]any{"pump.config.onTime": 30.0})
	s := newTestStore(t, gw)
	_ = s.ApplyConfirmed("pump.config.onTime", 30.0, false)
	_ = s.RecordEdit("pump.config.onTime", TextDraft("45"))

	if err := s.Save(context.Background(), "pump.config.onTime"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	want := []StoreCall{{Key: "pump.config.onTime", Value: 45.0}}
	if diff := cmp.Diff(want, gw.Stores()); diff != "" {
		t.Errorf("store calls (-want +got):\n%s", diff)
	}
	st := mustState(t, s, "pump.config.onTime")
	if st.Dirty() || st.Confirmed != 45.0 || st.Draft != TextDraft("45") {
		t.Errorf("state after save = %+v", st)
	}
}

func TestSaveRefetchAbsentFallsBackToSent(t *testing.T) {
	gw := NewMockGateway(nil)
	gw.FetchOverride = func(string) (any, bool) { return nil, false }
	s := newTestStore(t, gw)
	_ = s.RecordEdit("lamp.config.offTime", TextDraft("21:15"))

	if err := s.Save(context.Background(), "lamp.config.offTime"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	st := mustState(t, s, "lamp.config.offTime")
	if st.Dirty() || st.Confirmed != 21*60+15.0 || st.Draft != TextDraft("21:15") {
		t.Errorf("state after save = %+v", st)
	}
}

func TestSaveRefetchDiffersWins(t *testing.T) {
	gw := NewMockGateway(nil)
	gw.FetchOverride = func(string) (any, bool) { return 60.0, true }
	s := newTestStore(t, gw)
	_ = s.RecordEdit("pump.config.offTime", TextDraft("999"))

	if err := s.Save(context.Background(), "pump.config.offTime"); err != nil {
		t.Fatal(err)
	}
	st := mustState(t, s, "pump.config.offTime")
	if st.Confirmed != 60.0 || st.Draft != TextDraft("60") || st.Dirty() {
		t.Errorf("state = %+v, want controller's value adopted", st)
	}
}

func TestSaveFailureKeepsDirtyDraft(t *testing.T) {
	gw := NewMockGateway(nil)
	gw.StoreErr = errors.New("connection refused")
	s := newTestStore(t, gw)
	_ = s.ApplyConfirmed("pump.config.onTime", 30.0, false)
	_ = s.RecordEdit("pump.config.onTime", TextDraft("45"))

	err := s.Save(context.Background(), "pump.config.onTime")
	if !errors.Is(err, gw.StoreErr) {
		t.Fatalf("Save = %v, want wrapped store error", err)
	}
	st := mustState(t, s, "pump.config.onTime")
	if !st.Dirty() || st.Draft != TextDraft("45") || st.Confirmed != 30.0 {
		t.Errorf("state after failed save = %+v", st)
	}
	if len(gw.Fetches()) != 0 {
		t.Errorf("failed store should not re-fetch, fetched %v", gw.Fetches())
	}
}

func TestSaveLockedOutsideMaintenance(t *testing.T) {
	gw := NewMockGateway(nil)
	s := newTestStore(t, gw)
	_ = s.RecordEdit("pump.int.desiredState", CheckedDraft(true))

	err := s.Save(context.Background(), "pump.int.desiredState")
	if !errors.Is(err, ErrEntryLocked) {
		t.Fatalf("Save = %v, want ErrEntryLocked", err)
	}
	if len(gw.Stores()) != 0 {
		t.Error("locked save reached the gateway")
	}
	if st := mustState(t, s, "pump.int.desiredState"); !st.Dirty() {
		t.Error("locked save changed the entry")
	}

	// Reset stays available while locked.
	if err := s.Reset("pump.int.desiredState"); err != nil {
		t.Fatalf("Reset on locked entry: %v", err)
	}

	_ = s.ApplyConfirmed(maintenanceKey, true, false)
	_ = s.RecordEdit("pump.int.desiredState", CheckedDraft(true))
	if err := s.Save(context.Background(), "pump.int.desiredState"); err != nil {
		t.Fatalf("Save in maintenance mode: %v", err)
	}
	if got := gw.Stores(); len(got) != 1 || got[0].Value != true {
		t.Errorf("store calls = %+v", got)
	}
}

func TestConfigEntriesNeverLock(t *testing.T) {
	s := newTestStore(t, nil)
	if s.Locked("pump.config.onTime") {
		t.Error("config entry reported locked")
	}
	if !s.Locked("pump.int.plainType") {
		t.Error("internal entry not locked outside maintenance")
	}
}

func TestSaveWithoutGateway(t *testing.T) {
	s := newTestStore(t, nil)
	if err := s.Save(context.Background(), "pump.config.onTime"); !errors.Is(err, ErrNoGateway) {
		t.Fatalf("Save = %v, want ErrNoGateway", err)
	}
}

func TestTelemetryDuringSaveDoesNotOutliveRefetch(t *testing.T) {
	gw := NewMockGateway(nil)
	s := newTestStore(t, gw)
	_ = s.RecordEdit("pump.config.onTime", TextDraft("45"))

	p, err := s.PrepareSave("pump.config.onTime")
	if err != nil {
		t.Fatal(err)
	}
	outcome := p.Execute(context.Background())

	// Telemetry lands between the store and its completion.
	_ = s.ApplyConfirmed("pump.config.onTime", 44.0, false)
	if st := mustState(t, s, "pump.config.onTime"); st.Draft != TextDraft("45") {
		t.Fatalf("telemetry clobbered pending draft: %+v", st)
	}

	if err := s.CompleteSave(outcome); err != nil {
		t.Fatal(err)
	}
	st := mustState(t, s, "pump.config.onTime")
	if st.Confirmed != 45.0 || st.Dirty() {
		t.Errorf("state after completion = %+v, want re-fetched 45 clean", st)
	}
}

func TestLoadAll(t *testing.T) {
	gw := NewMockGateway(map[string]any{
		"pump.config.onTime":  30.0,
		"lamp.config.onTime":  420.0,
		"pump.config.enabled": nil,
	})
	s := newTestStore(t, gw)
	_ = s.RecordEdit("pump.config.onTime", TextDraft("99"))

	n, err := s.LoadAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("LoadAll loaded %d, want 2", n)
	}
	if st := mustState(t, s, "pump.config.onTime"); st.Dirty() || st.Draft != TextDraft("30") {
		t.Errorf("startup load should override drafts: %+v", st)
	}
	if st := mustState(t, s, "pump.config.enabled"); st.HasConfirmed {
		t.Errorf("null value should count as absent: %+v", st)
	}
	if got := len(gw.Fetches()); got != len(s.Keys()) {
		t.Errorf("fetched %d keys, want %d", got, len(s.Keys()))
	}
}

func TestViews(t *testing.T) {
	s := newTestStore(t, nil)
	_ = s.RecordEdit("pump.config.onTime", TextDraft("5"))
	views := s.Views([]string{"pump.config.onTime", "missing", "pump.int.plainType"})
	if len(views) != 2 {
		t.Fatalf("Views len = %d, want 2", len(views))
	}
	if !views[0].Dirty || views[0].Locked {
		t.Errorf("view[0] = %+v", views[0])
	}
	if views[1].Dirty || !views[1].Locked {
		t.Errorf("view[1] = %+v", views[1])
	}
}
