package app

import (
	"math"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"gitlab.com/tinyland/lab/hydro-pulse/pkg/catalog"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/core"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/entries"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/sources"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/telemetry"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

// helper to create a model around the built-in catalog.
func newTestModel(t *testing.T, gw entries.Gateway, opts Options) Model {
	t.Helper()
	var copts []core.Option
	if gw != nil {
		copts = append(copts, core.WithGateway(gw))
	}
	c, err := core.New(catalog.Default(), copts...)
	if err != nil {
		t.Fatalf("core.New: %v", err)
	}
	return New(c, opts)
}

// helper to send a message through Update and return the updated model.
func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// runUntil executes cmd, expanding batches, and returns the first message
// accepted by match.
func runUntil(t *testing.T, cmd tea.Cmd, match func(tea.Msg) bool) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c == nil {
				continue
			}
			if got := c(); match(got) {
				return got
			}
		}
		t.Fatal("no command in batch produced the expected message")
	}
	if !match(msg) {
		t.Fatalf("unexpected message %T", msg)
	}
	return msg
}

func isSaveDone(msg tea.Msg) bool {
	_, ok := msg.(SaveDoneMsg)
	return ok
}

func TestViewBeforeResize(t *testing.T) {
	m := newTestModel(t, nil, Options{})
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View() = %q, want Initializing...", got)
	}
}

func TestWindowSizeMeasuresTicker(t *testing.T) {
	m := newTestModel(t, nil, Options{})
	m, _ = update(m, tea.WindowSizeMsg{Width: 120, Height: 40})

	if m.Width() != 120 || m.Height() != 40 {
		t.Errorf("size = %dx%d, want 120x40", m.Width(), m.Height())
	}
	tk := m.Core().Ticker()
	if !tk.Measured() {
		t.Fatal("ticker not measured after resize")
	}
	if items := tk.Items(); len(items) != 1 || items[0] != core.ConnectingMessage {
		t.Errorf("ticker items = %v, want the connecting message", items)
	}
}

func TestViewRendersHeaderAndCards(t *testing.T) {
	m := newTestModel(t, nil, Options{})
	m, _ = update(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = update(m, SourceUpdateMsg{Update: sources.Telemetry("ws", telemetry.Event{Key: "pump.config.mode", Value: 1.0})})

	v := m.View()
	for _, want := range []string{"HYDRO-PULSE", "SWING", "Pump", "Temp"} {
		if !strings.Contains(v, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestTabCyclesFocus(t *testing.T) {
	m := newTestModel(t, nil, Options{})
	if m.FocusedWidget() != "pump" {
		t.Fatalf("initial focus = %q, want pump", m.FocusedWidget())
	}
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.FocusedWidget() != "lamp" {
		t.Errorf("after Tab focus = %q, want lamp", m.FocusedWidget())
	}
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.FocusedWidget() != "reserve" {
		t.Errorf("after wrapping back focus = %q, want reserve", m.FocusedWidget())
	}
}

func TestEnterTogglesDetail(t *testing.T) {
	m := newTestModel(t, nil, Options{})
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.DetailOpen() {
		t.Fatal("expected detail overlay after Enter")
	}
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.DetailOpen() {
		t.Error("expected detail overlay closed after Esc")
	}
}

func TestSourceUpdates(t *testing.T) {
	m := newTestModel(t, nil, Options{})

	m, _ = update(m, SourceUpdateMsg{Update: sources.Telemetry("ws", telemetry.Event{Key: "temperature.telem.value", Value: 21.5})})
	w, _ := m.Core().Widget("temp")
	if w.DisplayValue() != "21.50 °C" {
		t.Errorf("temp = %q, want 21.50 °C", w.DisplayValue())
	}

	m, _ = update(m, SourceUpdateMsg{Update: sources.Update{Source: "ws", Kind: sources.KindStatus, Connected: true}})
	if !m.connected["ws"] {
		t.Error("expected ws marked connected")
	}

	m, _ = update(m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m, _ = update(m, SourceUpdateMsg{Update: sources.Log("logs", "pump started")})
	q := append(m.Core().Ticker().Items(), m.Core().Ticker().Queue()...)
	if !strings.Contains(strings.Join(q, "|"), "pump started") {
		t.Errorf("log line not in ticker: %v", q)
	}
}

func TestFrameAdvancesTicker(t *testing.T) {
	m := newTestModel(t, nil, Options{})
	m, _ = update(m, tea.WindowSizeMsg{Width: 80, Height: 24})

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m, cmd := update(m, FrameMsg{Time: t0})
	if cmd == nil {
		t.Fatal("expected the next frame to be scheduled")
	}
	start := m.Core().Ticker().Offset()
	m, _ = update(m, FrameMsg{Time: t0.Add(time.Second)})

	if got := m.Core().Ticker().Offset(); math.Abs(start-got-20) > 1e-9 {
		t.Errorf("offset moved %v cells in 1s, want 20", start-got)
	}
}

func TestFramePublishesSnapshots(t *testing.T) {
	var published int
	m := newTestModel(t, nil, Options{
		Publish:      func(core.Snapshot) { published++ },
		PublishEvery: time.Second,
	})

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, d := range []time.Duration{0, 500 * time.Millisecond, time.Second, 1500 * time.Millisecond} {
		m, _ = update(m, FrameMsg{Time: t0.Add(d)})
	}
	if published != 2 {
		t.Errorf("published %d snapshots, want 2", published)
	}
}

func TestSettingsToggleAndSave(t *testing.T) {
	gw := entries.NewMockGateway(map[string]any{"pump.config.enabled": false})
	m := newTestModel(t, gw, Options{})
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 30})

	m, cmd := update(m, keyRunes("s"))
	if !m.InSettings() {
		t.Fatal("expected settings view")
	}
	if cmd == nil {
		t.Fatal("opening settings should fetch entries")
	}
	if m.SelectedEntry() != "pump.config.enabled" {
		t.Fatalf("selected = %q, want pump.config.enabled", m.SelectedEntry())
	}

	m, _ = update(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	st, _ := m.Core().Store().State("pump.config.enabled")
	if !st.Dirty() || !st.Draft.Checked {
		t.Fatalf("after toggle state = %+v, want dirty and checked", st)
	}

	m, cmd = update(m, keyRunes("w"))
	if !m.Saving("pump.config.enabled") {
		t.Fatal("expected save in flight")
	}
	done := runUntil(t, cmd, isSaveDone)
	m, _ = update(m, done)

	if m.Saving("pump.config.enabled") {
		t.Error("save still marked in flight")
	}
	if m.Status() != "Saved pump.config.enabled" {
		t.Errorf("status = %q", m.Status())
	}
	stores := gw.Stores()
	if len(stores) != 1 || stores[0].Value != true {
		t.Errorf("stores = %+v, want one store of true", stores)
	}
	st, _ = m.Core().Store().State("pump.config.enabled")
	if st.Dirty() || st.Confirmed != true {
		t.Errorf("after save state = %+v, want clean and confirmed true", st)
	}
}

func TestSettingsSelectCycles(t *testing.T) {
	m := newTestModel(t, nil, Options{})
	m, _ = update(m, keyRunes("s"))
	m, _ = update(m, keyRunes("j"))
	if m.SelectedEntry() != "pump.config.mode" {
		t.Fatalf("selected = %q, want pump.config.mode", m.SelectedEntry())
	}
	want := []string{"0", "1", "2", "0"}
	for _, w := range want {
		m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})
		st, _ := m.Core().Store().State("pump.config.mode")
		if st.Draft.Text != w {
			t.Errorf("draft = %q, want %q", st.Draft.Text, w)
		}
	}
	if m.Editing() {
		t.Error("select entries should not open the text editor")
	}
}

func TestSettingsTextEdit(t *testing.T) {
	m := newTestModel(t, nil, Options{})
	m, _ = update(m, keyRunes("s"))
	m, _ = update(m, keyRunes("j"))
	m, _ = update(m, keyRunes("j"))
	if m.SelectedEntry() != "pump.config.onTime" {
		t.Fatalf("selected = %q, want pump.config.onTime", m.SelectedEntry())
	}

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Editing() {
		t.Fatal("expected text editor")
	}
	m, _ = update(m, keyRunes("45"))
	m, _ = update(m, keyRunes("q"))
	if !m.Editing() || m.Quitting() {
		t.Fatal("q while editing must be typed, not quit")
	}
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyBackspace})
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.Editing() {
		t.Error("editor still open after Enter")
	}
	st, _ := m.Core().Store().State("pump.config.onTime")
	if st.Draft.Text != "45" || !st.Dirty() {
		t.Errorf("state = %+v, want dirty draft 45", st)
	}

	m, _ = update(m, keyRunes("r"))
	st, _ = m.Core().Store().State("pump.config.onTime")
	if st.Dirty() {
		t.Error("reset should clear the dirty flag")
	}
}

func TestListEditorUsesCommas(t *testing.T) {
	if got := editText(catalog.TypeList, "aa\nbb"); got != "aa, bb" {
		t.Errorf("editText = %q", got)
	}
	if got := draftText(catalog.TypeList, "aa, bb"); got != "aa\n bb" {
		t.Errorf("draftText = %q", got)
	}
	if got := entries.Parse(catalog.TypeList, entries.TextDraft(draftText(catalog.TypeList, "aa, bb,"))); len(got.([]string)) != 2 {
		t.Errorf("parsed list = %v, want 2 items", got)
	}
}

func TestInternalEntriesLocked(t *testing.T) {
	gw := entries.NewMockGateway(nil)
	m := newTestModel(t, gw, Options{})
	m, _ = update(m, keyRunes("s"))
	m, _ = update(m, keyRunes("i"))
	if m.SelectedEntry() != "pump.int.plainType" {
		t.Fatalf("selected = %q, want pump.int.plainType", m.SelectedEntry())
	}

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.HasPrefix(m.Status(), "Locked") {
		t.Errorf("status = %q, want Locked...", m.Status())
	}
	m, cmd := update(m, keyRunes("w"))
	if cmd != nil || m.Saving("pump.int.plainType") {
		t.Error("locked entry must not be saved")
	}
	if len(gw.Stores()) != 0 {
		t.Errorf("unexpected stores %+v", gw.Stores())
	}
}

func TestSaveDoneAfterCloseIgnored(t *testing.T) {
	m := newTestModel(t, entries.NewMockGateway(nil), Options{})
	m.Close()
	m, _ = update(m, SaveDoneMsg{Outcome: entries.Outcome{Key: "pump.config.onTime", Sent: 45.0}})
	if strings.HasPrefix(m.Status(), "Saved") {
		t.Errorf("status = %q after close", m.Status())
	}
}

func TestEditFailureShownInStatus(t *testing.T) {
	m := newTestModel(t, entries.NewMockGateway(nil), Options{})
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(m, keyRunes("s"))
	if m.SelectedEntry() != "pump.config.enabled" {
		t.Fatalf("selected = %q", m.SelectedEntry())
	}

	m.Close()
	m, _ = update(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if !strings.HasPrefix(m.Status(), "Edit failed") || !strings.Contains(m.Status(), core.ErrClosed.Error()) {
		t.Errorf("status = %q, want the edit failure", m.Status())
	}
	if st, _ := m.Core().Store().State("pump.config.enabled"); st.Dirty() {
		t.Error("closed core recorded the edit")
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, nil, Options{})
	m, _ = update(m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m, cmd := update(m, keyRunes("q"))
	if !m.Quitting() || cmd == nil {
		t.Fatal("expected quit")
	}
	if m.View() != "" {
		t.Error("View() should be empty while quitting")
	}
}

func TestDraftDisplay(t *testing.T) {
	mode := catalog.Entry{Type: catalog.TypeSelect, Options: []catalog.Option{{Value: 1, Label: "SWING"}}}
	tests := []struct {
		name  string
		entry catalog.Entry
		draft entries.Draft
		want  string
	}{
		{"bool on", catalog.Entry{Type: catalog.TypeBool}, entries.CheckedDraft(true), "[x]"},
		{"bool off", catalog.Entry{Type: catalog.TypeBool}, entries.CheckedDraft(false), "[ ]"},
		{"select label", mode, entries.TextDraft("1"), "SWING"},
		{"select unknown", mode, entries.TextDraft("7"), "7"},
		{"list", catalog.Entry{Type: catalog.TypeList}, entries.TextDraft("a\nb"), "a, b"},
		{"empty list", catalog.Entry{Type: catalog.TypeList}, entries.TextDraft(""), "(empty)"},
		{"empty number", catalog.Entry{Type: catalog.TypeNumber}, entries.TextDraft(""), "--"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DraftDisplay(tt.entry, tt.draft); got != tt.want {
				t.Errorf("DraftDisplay = %q, want %q", got, tt.want)
			}
		})
	}
}
