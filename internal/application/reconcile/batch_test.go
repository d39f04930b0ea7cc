package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storesync/backend/internal/domain/sync"
)

func newBatchRig() (*rig, *BatchService) {
	r := newRig(sync.DefaultPolicy())
	batch := NewBatchService(r.rec, r.items, r.servers, r.links, nil)
	return r, batch
}

// heldGate refuses every acquisition, simulating a concurrent holder
type heldGate struct{}

func (heldGate) Acquire(context.Context, string, time.Duration) (bool, error) { return false, nil }
func (heldGate) Release(context.Context, string) error                        { return nil }

func TestBatch_GateContentionFailsItem(t *testing.T) {
	r, batch := newBatchRig()
	r.addItem(standardItem())
	batch.WithGate(heldGate{}, time.Minute)

	err := batch.RunItem(context.Background(), "ITEM-001")

	assert.ErrorIs(t, err, ErrSyncInProgress)
	assert.Zero(t, r.gateway.createCalls)
}

func TestBatch_NeverAbortsOnItemFailure(t *testing.T) {
	r, batch := newBatchRig()
	r.addItem(standardItem())

	result := batch.Run(context.Background(), []string{"GHOST", "ITEM-001"})

	assert.Equal(t, []string{"ITEM-001"}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "GHOST", result.Failed[0].ItemCode)
	assert.NotEmpty(t, result.Failed[0].Error)
	assert.Equal(t, 1, r.gateway.createCalls)
}

func TestBatch_TargetsLinkedServersOnly(t *testing.T) {
	r, batch := newBatchRig()
	r.addItem(standardItem())

	// A second enabled server the item is not enrolled on
	other := &sync.Server{
		ID:         uuid.New(),
		Scope:      "other",
		BaseURL:    "https://other.example.com",
		EnableSync: true,
	}
	r.servers.m[other.ID] = other

	link := sync.NewLink("ITEM-001", r.server.ID)
	r.links.m[link.ID] = link

	require.NoError(t, batch.RunItem(context.Background(), "ITEM-001"))

	links, err := r.links.ListByItem(context.Background(), "ITEM-001")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, r.server.ID, links[0].ServerID)
}

func TestBatch_SyncModifiedSince(t *testing.T) {
	r, batch := newBatchRig()
	item := standardItem()
	item.Modified = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	r.addItem(item)

	stale := standardItem()
	stale.Code = "ITEM-OLD"
	stale.Modified = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	r.addItem(stale)

	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	result, next, err := batch.SyncModifiedSince(context.Background(), since, 0)

	require.NoError(t, err)
	assert.Equal(t, []string{"ITEM-001"}, result.Succeeded)
	assert.Empty(t, result.Failed)
	assert.Equal(t, item.Modified, next)
}

func TestBatch_ForceResyncClearsMarkers(t *testing.T) {
	r, batch := newBatchRig()
	r.addItem(standardItem())

	// First pass creates and records a marker
	require.NoError(t, batch.RunItem(context.Background(), "ITEM-001"))
	links, err := r.links.ListByItem(context.Background(), "ITEM-001")
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.NotEmpty(t, links[0].LastSyncMarker)

	require.NoError(t, batch.ForceResync(context.Background(), "ITEM-001"))

	links, err = r.links.ListByItem(context.Background(), "ITEM-001")
	require.NoError(t, err)
	assert.NotEmpty(t, links[0].LastSyncMarker, "resync must restore the marker")
	assert.Equal(t, 1, r.gateway.createCalls)
}
