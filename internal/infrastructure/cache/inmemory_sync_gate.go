package cache

import (
	"context"
	"sync"
	"time"

	"github.com/storesync/backend/internal/application/reconcile"
)

// gateEntry represents a held gate key with expiration
type gateEntry struct {
	expiresAt time.Time
}

// InMemorySyncGate implements the per-item reconciliation gate with an
// in-memory map. This is suitable for single-instance deployments and
// testing.
type InMemorySyncGate struct {
	mu      sync.Mutex
	entries map[string]gateEntry
}

var _ reconcile.Gate = (*InMemorySyncGate)(nil)

// NewInMemorySyncGate creates a new in-memory sync gate
func NewInMemorySyncGate() *InMemorySyncGate {
	return &InMemorySyncGate{
		entries: make(map[string]gateEntry),
	}
}

// Acquire claims the gate for a key. Returns false when the key is held and
// not yet expired. Expired claims are overwritten.
func (g *InMemorySyncGate) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if e, exists := g.entries[key]; exists {
		if time.Now().Before(e.expiresAt) {
			return false, nil // Held by another caller
		}
		// Entry exists but expired, will be overwritten
	}

	g.entries[key] = gateEntry{
		expiresAt: time.Now().Add(ttl),
	}
	return true, nil
}

// Release frees the gate for a key. Releasing an unheld key is a no-op.
func (g *InMemorySyncGate) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.entries, key)
	return nil
}
