// Package entries keeps the confirmed value, editor draft and dirty flag of
// every registered settings entry, and saves drafts through a Gateway.
//
// A Store is owned by a single goroutine. Gateway round trips are the only
// blocking work; asynchronous drivers split Save into PrepareSave (owner),
// Pending.Execute (any goroutine) and CompleteSave (owner) so that the store
// itself is never touched off the owner goroutine.
package entries

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gitlab.com/tinyland/lab/hydro-pulse/pkg/catalog"
	"gitlab.com/tinyland/lab/hydro-pulse/pkg/coerce"
)

var (
	// ErrUnknownEntry is returned for keys that were never registered.
	ErrUnknownEntry = errors.New("entries: unknown entry")

	// ErrEntryLocked is returned when saving a runtime-internal entry while
	// maintenance mode is off.
	ErrEntryLocked = errors.New("entries: entry locked outside maintenance mode")

	// ErrNoGateway is returned by Save when the store has no gateway.
	ErrNoGateway = errors.New("entries: no gateway configured")

	// ErrDuplicateKey is returned by Register for a key registered twice.
	ErrDuplicateKey = catalog.ErrDuplicateKey
)

// Gateway is the remote key/value store the controller exposes.
type Gateway interface {
	// Fetch returns the current value of key. ok is false when the key is
	// missing, null, or the request failed.
	Fetch(ctx context.Context, key string) (value any, ok bool)

	// Store writes value under key.
	Store(ctx context.Context, key string, value any) error
}

// Option configures a Store.
type Option func(*Store)

// WithGateway sets the gateway used by Save and LoadAll.
func WithGateway(gw Gateway) Option {
	return func(s *Store) { s.gw = gw }
}

// WithMaintenanceKey sets the entry whose truthy confirmed value unlocks
// saving of runtime-internal entries.
func WithMaintenanceKey(key string) Option {
	return func(s *Store) { s.maintenanceKey = key }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Store is the value/draft/dirty store for settings entries.
type Store struct {
	defs           map[string]catalog.Entry
	states         map[string]*State
	order          []string
	maintenanceKey string
	gw             Gateway
	logger         *slog.Logger
}

// New creates a store and registers entries. It fails on duplicate keys.
func New(entries []catalog.Entry, opts ...Option) (*Store, error) {
	s := &Store{
		defs:   make(map[string]catalog.Entry, len(entries)),
		states: make(map[string]*State, len(entries)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if err := s.Register(entries); err != nil {
		return nil, err
	}
	return s, nil
}

// Register adds entries to the index. Nothing is registered if any key is
// already known or repeated within entries.
func (s *Store) Register(entries []catalog.Entry) error {
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if _, dup := s.defs[e.Key]; dup || seen[e.Key] {
			return fmt.Errorf("entries: %w: %q", ErrDuplicateKey, e.Key)
		}
		seen[e.Key] = true
	}
	for _, e := range entries {
		s.defs[e.Key] = e
		s.states[e.Key] = newState(e.Type)
		s.order = append(s.order, e.Key)
	}
	return nil
}

// Has reports whether key is a registered entry.
func (s *Store) Has(key string) bool {
	_, ok := s.defs[key]
	return ok
}

// Keys returns the registered keys in registration order.
func (s *Store) Keys() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Entry returns the descriptor of key.
func (s *Store) Entry(key string) (catalog.Entry, bool) {
	e, ok := s.defs[key]
	return e, ok
}

// State returns a copy of the runtime state of key.
func (s *Store) State(key string) (State, bool) {
	st, ok := s.states[key]
	if !ok {
		return State{}, false
	}
	return *st, true
}

// MaintenanceEnabled reports whether the maintenance entry is confirmed on.
func (s *Store) MaintenanceEnabled() bool {
	st, ok := s.states[s.maintenanceKey]
	return ok && coerce.Truthy(st.Confirmed)
}

// Locked reports whether saving key is currently refused. Only
// runtime-internal entries lock, and only outside maintenance mode.
func (s *Store) Locked(key string) bool {
	e, ok := s.defs[key]
	return ok && e.Section == catalog.SectionInternal && !s.MaintenanceEnabled()
}

// ApplyConfirmed records value as confirmed by the controller. The draft is
// recomputed when force is set or the entry is clean; a dirty draft is
// otherwise left untouched.
func (s *Store) ApplyConfirmed(key string, value any, force bool) error {
	st, ok := s.states[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEntry, key)
	}
	st.serverUpdate(s.defs[key].Type, value, force)
	return nil
}

// RecordEdit stores editor input as the draft of key and marks it dirty.
func (s *Store) RecordEdit(key string, d Draft) error {
	st, ok := s.states[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEntry, key)
	}
	st.userEdit(d)
	return nil
}

// Reset discards the draft of key. It is allowed on locked entries.
func (s *Store) Reset(key string) error {
	st, ok := s.states[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEntry, key)
	}
	st.reset(s.defs[key].Type)
	return nil
}

// View is an entry descriptor together with its state, for rendering.
type View struct {
	Entry  catalog.Entry `json:"entry"`
	State  State         `json:"state"`
	Dirty  bool          `json:"dirty"`
	Locked bool          `json:"locked"`
}

// Views returns views of the given keys, skipping unknown ones.
func (s *Store) Views(keys []string) []View {
	out := make([]View, 0, len(keys))
	for _, k := range keys {
		st, ok := s.states[k]
		if !ok {
			continue
		}
		out = append(out, View{
			Entry:  s.defs[k],
			State:  *st,
			Dirty:  st.Dirty(),
			Locked: s.Locked(k),
		})
	}
	return out
}
