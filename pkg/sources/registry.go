package sources

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages a set of named sources. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sources  map[string]Source
	statuses map[string]*SourceStatus
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sources:  make(map[string]Source),
		statuses: make(map[string]*SourceStatus),
	}
}

// Register adds a source. It returns an error if a source with the same
// name is already registered.
func (r *Registry) Register(s Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	if _, exists := r.sources[name]; exists {
		return fmt.Errorf("source %q already registered", name)
	}
	r.sources[name] = s
	r.statuses[name] = &SourceStatus{Name: name}
	return nil
}

// Get returns the source with the given name.
func (r *Registry) Get(name string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sources[name]
	return s, ok
}

// List returns the registered names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Status returns a copy of the status of the named source.
func (r *Registry) Status(name string) (SourceStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.statuses[name]
	if !ok {
		return SourceStatus{}, false
	}
	return *s, true
}

// AllStatus returns a copy of every status, sorted by name.
func (r *Registry) AllStatus() []SourceStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]SourceStatus, 0, len(r.statuses))
	for _, s := range r.statuses {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// updateStatus applies fn to the status of name. Caller must not hold the
// lock.
func (r *Registry) updateStatus(name string, fn func(s *SourceStatus)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.statuses[name]; ok {
		fn(s)
	}
}
