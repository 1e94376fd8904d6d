// Package storage provides the persistence collaborator: a key-value blob
// store with last-write-wins semantics. The engine reads a whole blob on
// load and writes a whole blob on every mutation; there are no deltas and
// no transactions.
package storage

import "sync"

// KV is the narrow persistence contract the engine depends on.
type KV interface {
	// Load returns the blob stored under key, with ok reporting whether
	// the key exists.
	Load(key string) (value []byte, ok bool, err error)
	// Save stores value under key, replacing any previous blob.
	Save(key string, value []byte) error
}

// Memory is an in-process KV used in tests and as the degraded mode when no
// database is reachable.
type Memory struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

// Load implements KV.
func (m *Memory) Load(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.blobs[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, true, nil
}

// Save implements KV.
func (m *Memory) Save(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	m.blobs[key] = cp
	return nil
}
