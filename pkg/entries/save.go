package entries

import (
	"context"
	"fmt"
)

// Pending is a save that has been validated and parsed on the owner
// goroutine and is ready to be sent. Execute does not touch the Store.
type Pending struct {
	Key   string
	Value any
	gw    Gateway
}

// Outcome is the result of executing a Pending save.
type Outcome struct {
	Key      string
	Sent     any
	Fresh    any
	HasFresh bool
	Err      error
}

// PrepareSave parses the draft of key into its wire value. It returns
// ErrEntryLocked for runtime-internal entries outside maintenance mode.
func (s *Store) PrepareSave(key string) (Pending, error) {
	st, ok := s.states[key]
	if !ok {
		return Pending{}, fmt.Errorf("%w: %q", ErrUnknownEntry, key)
	}
	if s.Locked(key) {
		return Pending{}, fmt.Errorf("%w: %q", ErrEntryLocked, key)
	}
	if s.gw == nil {
		return Pending{}, ErrNoGateway
	}
	return Pending{
		Key:   key,
		Value: Parse(s.defs[key].Type, st.Draft),
		gw:    s.gw,
	}, nil
}

// Execute stores the value and, on success, re-fetches the key so the
// controller's own reading of the value can be adopted.
func (p Pending) Execute(ctx context.Context) Outcome {
	o := Outcome{Key: p.Key, Sent: p.Value}
	if err := p.gw.Store(ctx, p.Key, p.Value); err != nil {
		o.Err = err
		return o
	}
	if fresh, ok := p.gw.Fetch(ctx, p.Key); ok && fresh != nil {
		o.Fresh = fresh
		o.HasFresh = true
	}
	return o
}

// CompleteSave applies an Outcome. A failed store leaves the entry as it
// is, draft and dirty flag included, and returns the failure. A successful
// store adopts the re-fetched value, or the sent value when the re-fetch
// came back empty, and clears the dirty flag.
func (s *Store) CompleteSave(o Outcome) error {
	st, ok := s.states[o.Key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEntry, o.Key)
	}
	if o.Err != nil {
		s.logger.Warn("entry save failed", "key", o.Key, "error", o.Err)
		return fmt.Errorf("entries: store %q: %w", o.Key, o.Err)
	}
	v := o.Sent
	if o.HasFresh {
		v = o.Fresh
	}
	st.saveSucceeded(s.defs[o.Key].Type, v)
	s.logger.Debug("entry saved", "key", o.Key, "value", v, "refetched", o.HasFresh)
	return nil
}

// Save runs PrepareSave, Execute and CompleteSave in sequence. It is meant
// for callers that may block the owner goroutine for the round trip.
func (s *Store) Save(ctx context.Context, key string) error {
	p, err := s.PrepareSave(key)
	if err != nil {
		return err
	}
	return s.CompleteSave(p.Execute(ctx))
}

// Fetched is the result of fetching one entry.
type Fetched struct {
	Key   string
	Value any
	OK    bool
}

// FetchEntry fetches key through gw. It does not touch any Store.
func FetchEntry(ctx context.Context, gw Gateway, key string) Fetched {
	v, ok := gw.Fetch(ctx, key)
	return Fetched{Key: key, Value: v, OK: ok && v != nil}
}

// ApplyFetched adopts a fetched value as confirmed, overriding any draft.
// Missing values are ignored.
func (s *Store) ApplyFetched(f Fetched) error {
	if !f.OK {
		return nil
	}
	return s.ApplyConfirmed(f.Key, f.Value, true)
}

// Gateway returns the gateway the store saves through, or nil.
func (s *Store) Gateway() Gateway { return s.gw }

// LoadAll fetches every registered entry and applies the values found. It
// returns how many entries received a value.
func (s *Store) LoadAll(ctx context.Context) (int, error) {
	if s.gw == nil {
		return 0, ErrNoGateway
	}
	n := 0
	for _, key := range s.order {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		f := FetchEntry(ctx, s.gw, key)
		if f.OK {
			if err := s.ApplyFetched(f); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}
