// Package revocation keeps the ids (jti) of signed-out access tokens until
// the tokens would have expired anyway.
package revocation

import (
	"context"
	"sync"
	"time"
)

// List records revoked token ids.
type List interface {
	// Revoke marks jti as revoked until the given time. Past times are a no-op.
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	Close() error
}

// MemoryList is an in-process List for single-instance deployments and tests.
type MemoryList struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryList() *MemoryList {
	return &MemoryList{entries: make(map[string]time.Time), now: time.Now}
}

func (m *MemoryList) Revoke(_ context.Context, jti string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if !until.After(now) {
		return nil
	}
	m.entries[jti] = until

	for k, exp := range m.entries {
		if !exp.After(now) {
			delete(m.entries, k)
		}
	}
	return nil
}

func (m *MemoryList) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.entries[jti]
	if !ok {
		return false, nil
	}
	if !exp.After(m.now()) {
		delete(m.entries, jti)
		return false, nil
	}
	return true, nil
}

func (m *MemoryList) Close() error { return nil }
