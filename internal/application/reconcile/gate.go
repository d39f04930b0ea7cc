package reconcile

import (
	"context"
	"errors"
	"time"
)

// ErrSyncInProgress indicates another worker currently holds the gate for
// the same item. The caller retries later; nothing was pushed.
var ErrSyncInProgress = errors.New("reconcile: item sync already in progress")

// Gate serializes reconciliation per item across workers and instances.
// Acquire returns false when another holder already owns the key; the TTL
// bounds how long a crashed holder can block the item.
type Gate interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
