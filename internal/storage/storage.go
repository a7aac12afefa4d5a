// Package storage provides durable persistence for the store snapshot.
//
// The unit of durability is one serialized blob under one fixed key. The
// Adapter interface is abstracted so the engine can run against SQLite in
// production and an in-memory adapter in tests.
package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Load when no snapshot has been saved yet.
var ErrNotFound = errors.New("storage: snapshot not found")

// Adapter persists the full snapshot blob.
type Adapter interface {
	// Load returns the last saved snapshot, or ErrNotFound if none exists.
	Load(ctx context.Context) ([]byte, error)
	// Save replaces the stored snapshot with blob.
	Save(ctx context.Context, blob []byte) error
	// Close releases underlying resources.
	Close() error
}

// Memory is an in-memory Adapter for tests and ephemeral runs.
// LoadErr and SaveErr, when set, are returned by the corresponding call —
// this is the fault-injection point for persistence-failure tests.
type Memory struct {
	mu      sync.Mutex
	blob    []byte
	saves   int
	LoadErr error
	SaveErr error
}

// NewMemory creates an empty in-memory adapter.
func NewMemory() *Memory {
	return &Memory{}
}

// Load implements Adapter.
func (m *Memory) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.blob == nil {
		return nil, ErrNotFound
	}
	out := make([]byte, len(m.blob))
	copy(out, m.blob)
	return out, nil
}

// Save implements Adapter.
func (m *Memory) Save(ctx context.Context, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.blob = make([]byte, len(blob))
	copy(m.blob, blob)
	m.saves++
	return nil
}

// Close implements Adapter.
func (m *Memory) Close() error { return nil }

// Seed sets the stored blob directly, as if a prior process had saved it.
func (m *Memory) Seed(blob []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blob = append([]byte(nil), blob...)
}

// Saves reports how many successful Save calls have happened.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Blob returns a copy of the currently stored blob, or nil.
func (m *Memory) Blob() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.blob == nil {
		return nil
	}
	return append([]byte(nil), m.blob...)
}
