package credential

import (
	"context"
	"errors"
	"sync"
)

// DefaultKey is the fixed storage key the token lives under.
const DefaultKey = "token"

// ErrUnavailable wraps backend failures (I/O, network).
var ErrUnavailable = errors.New("credential store unavailable")

// Store persists at most one opaque bearer token.
type Store interface {
	// Get returns the token and true, or "" and false when none is stored.
	Get(ctx context.Context) (string, bool, error)
	// Set stores token, replacing any previous one. An empty token clears.
	Set(ctx context.Context, token string) error
	// Clear removes the token. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore returns a MemoryStore seeded with token ("" for empty).
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (m *MemoryStore) Get(context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.token != "", nil
}

func (m *MemoryStore) Set(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
