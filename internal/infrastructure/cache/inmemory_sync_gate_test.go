package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemorySyncGate_AcquireAndRelease(t *testing.T) {
	gate := NewInMemorySyncGate()
	ctx := context.Background()

	acquired, err := gate.Acquire(ctx, "item:ITEM-001", time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)

	// Second acquisition of the held key must fail
	acquired, err = gate.Acquire(ctx, "item:ITEM-001", time.Minute)
	require.NoError(t, err)
	assert.False(t, acquired)

	// A different key is independent
	acquired, err = gate.Acquire(ctx, "item:ITEM-002", time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)

	require.NoError(t, gate.Release(ctx, "item:ITEM-001"))
	acquired, err = gate.Acquire(ctx, "item:ITEM-001", time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestInMemorySyncGate_ExpiredClaimIsReclaimable(t *testing.T) {
	gate := NewInMemorySyncGate()
	ctx := context.Background()

	acquired, err := gate.Acquire(ctx, "item:ITEM-001", time.Nanosecond)
	require.NoError(t, err)
	require.True(t, acquired)

	time.Sleep(time.Millisecond)

	acquired, err = gate.Acquire(ctx, "item:ITEM-001", time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired, "expired claim must not block")
}

func TestInMemorySyncGate_ReleaseUnheldKeyIsNoop(t *testing.T) {
	gate := NewInMemorySyncGate()
	assert.NoError(t, gate.Release(context.Background(), "item:GHOST"))
}
