package entries

import (
	"context"
	"sync"
)

// MockGateway implements Gateway over an in-memory map. It records every
// Store call and can be told to fail stores or to answer fetches with a
// different value than the one stored.
type MockGateway struct {
	mu      sync.Mutex
	values  map[string]any
	stores  []StoreCall
	fetches []string

	// StoreErr, if set, is returned by Store and nothing is written.
	StoreErr error

	// FetchOverride, if set, replaces the answer to Fetch.
	FetchOverride func(key string) (any, bool)
}

// StoreCall is one recorded Store invocation.
type StoreCall struct {
	Key   string
	Value any
}

// NewMockGateway returns a gateway seeded with values.
func NewMockGateway(values map[string]any) *MockGateway {
	m := &MockGateway{values: make(map[string]any, len(values))}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

// Fetch returns the stored value of key.
func (m *MockGateway) Fetch(_ context.Context, key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches = append(m.fetches, key)
	if m.FetchOverride != nil {
		return m.FetchOverride(key)
	}
	v, ok := m.values[key]
	return v, ok
}

// Store records the call and writes value unless StoreErr is set.
func (m *MockGateway) Store(_ context.Context, key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stores = append(m.stores, StoreCall{Key: key, Value: value})
	if m.StoreErr != nil {
		return m.StoreErr
	}
	m.values[key] = value
	return nil
}

// Set replaces the stored value of key.
func (m *MockGateway) Set(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Stores returns a copy of the recorded Store calls.
func (m *MockGateway) Stores() []StoreCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]StoreCall, len(m.stores))
	copy(out, m.stores)
	return out
}

// Fetches returns the keys fetched so far.
func (m *MockGateway) Fetches() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.fetches))
	copy(out, m.fetches)
	return out
}
