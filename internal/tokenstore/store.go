// Package tokenstore persists the single bearer token the client holds.
//
// A [Store] keeps at most one token under a well-known key. Absence is reported as
// [shared.ErrNoToken] so callers can tell "logged out" from a storage failure.
package tokenstore

import (
	"sync"

	"github.com/desertthunder/vidgen/internal/shared"
)

// DefaultKey is the well-known name the token is stored under.
const DefaultKey = "token"

// Store reads and writes the persisted bearer token.
type Store interface {
	// Get returns the token or [shared.ErrNoToken].
	Get() (string, error)
	// Set replaces any existing token.
	Set(token string) error
	// Delete removes the token. Deleting an absent token is not an error.
	Delete() error
}

// MemoryStore is a process-local [Store].
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore returns an empty [MemoryStore], optionally seeded with token.
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (m *MemoryStore) Get() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token == "" {
		return "", shared.ErrNoToken
	}
	return m.token, nil
}

func (m *MemoryStore) Set(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
