package httpclient

import (
	"context"
	"strings"
	"sync"
)

// MemoryTokenStore keeps the token in process memory.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryTokenStore returns a store seeded with token (may be empty).
func NewMemoryTokenStore(token string) *MemoryTokenStore {
	return &MemoryTokenStore{token: strings.TrimSpace(token)}
}

func (m *MemoryTokenStore) Token(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *MemoryTokenStore) SetToken(_ context.Context, token string) error {
	m.mu.Lock()
	m.token = strings.TrimSpace(token)
	m.mu.Unlock()
	return nil
}

func (m *MemoryTokenStore) ClearToken(context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	return nil
}

type noTokenStore struct{}

func (noTokenStore) Token(context.Context) (string, error) { return "", nil }
func (noTokenStore) ClearToken(context.Context) error      { return nil }
