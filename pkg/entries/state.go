package entries

import "gitlab.com/tinyland/lab/hydro-pulse/pkg/catalog"

// Phase is the edit state of an entry.
type Phase int

const (
	// Clean entries show the normalized confirmed value.
	Clean Phase = iota
	// Dirty entries hold a user-authored draft that has not been saved.
	Dirty
)

func (p Phase) String() string {
	if p == Dirty {
		return "dirty"
	}
	return "clean"
}

// State is the runtime state of one entry.
//
// Invariant: when Phase is Clean, Draft == Normalize(type, Confirmed).
type State struct {
	Confirmed    any   `json:"confirmed"`
	HasConfirmed bool  `json:"hasConfirmed"`
	Draft        Draft `json:"draft"`
	Phase        Phase `json:"-"`
}

// Dirty reports whether the draft holds unsaved user input.
func (s State) Dirty() bool { return s.Phase == Dirty }

func newState(t catalog.ValueType) *State {
	return &State{Draft: Normalize(t, nil)}
}

// serverUpdate records a value confirmed by the controller. A dirty draft
// survives unless force is set.
func (s *State) serverUpdate(t catalog.ValueType, v any, force bool) {
	s.Confirmed = v
	s.HasConfirmed = true
	if force || s.Phase == Clean {
		s.Draft = Normalize(t, v)
		s.Phase = Clean
	}
}

// userEdit stores raw editor input without validation.
func (s *State) userEdit(d Draft) {
	s.Draft = d
	s.Phase = Dirty
}

// saveSucceeded adopts the value the controller confirmed after a store.
func (s *State) saveSucceeded(t catalog.ValueType, v any) {
	s.serverUpdate(t, v, true)
}

// reset discards the draft in favour of the confirmed value.
func (s *State) reset(t catalog.ValueType) {
	s.Draft = Normalize(t, s.Confirmed)
	s.Phase = Clean
}
