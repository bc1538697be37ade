package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/hydro-pulse/pkg/entries"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/sources"
)

// FrameCmd returns a bubbletea Cmd that sends a FrameMsg after the given
// duration. This drives the ticker animation.
func FrameCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return FrameMsg{Time: t}
	})
}

// WaitForUpdate returns a Cmd that blocks until the next source update
// arrives on ch. The model re-issues it after every update.
func WaitForUpdate(ch <-chan sources.Update) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return SourcesClosedMsg{}
		}
		return SourceUpdateMsg{Update: u}
	}
}

// FetchEntryCmd returns a Cmd that fetches key through gw in a goroutine
// and delivers the result as an EntryFetchedMsg.
func FetchEntryCmd(gw entries.Gateway, key string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return EntryFetchedMsg{Fetched: entries.FetchEntry(ctx, gw, key)}
	}
}

// FetchAllCmd fetches every key concurrently.
func FetchAllCmd(gw entries.Gateway, keys []string, timeout time.Duration) tea.Cmd {
	if gw == nil || len(keys) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, len(keys))
	for i, k := range keys {
		cmds[i] = FetchEntryCmd(gw, k, timeout)
	}
	return tea.Batch(cmds...)
}

// SaveCmd executes a prepared save in a goroutine and delivers the outcome
// as a SaveDoneMsg.
func SaveCmd(p entries.Pending, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return SaveDoneMsg{Outcome: p.Execute(ctx)}
	}
}
