package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/sync"
)

// setupSyncTestDB creates an in-memory SQLite database for testing
func setupSyncTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// Create sync_servers table
	err = db.Exec(`
		CREATE TABLE sync_servers (
			id TEXT PRIMARY KEY,
			scope TEXT NOT NULL UNIQUE,
			base_url TEXT NOT NULL,
			consumer_key TEXT NOT NULL,
			consumer_secret TEXT NOT NULL,
			enable_sync INTEGER NOT NULL DEFAULT 0,
			enable_image_sync INTEGER NOT NULL DEFAULT 0,
			enable_price_list_sync INTEGER NOT NULL DEFAULT 0,
			price_list TEXT,
			field_map TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`).Error
	require.NoError(t, err)

	// Create sync_links table
	err = db.Exec(`
		CREATE TABLE sync_links (
			id TEXT PRIMARY KEY,
			item_code TEXT NOT NULL,
			server_id TEXT NOT NULL,
			remote_id TEXT,
			enabled INTEGER NOT NULL DEFAULT 1,
			last_sync_marker TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE(item_code, server_id)
		)
	`).Error
	require.NoError(t, err)

	return db
}

func TestGormServerRepository_SaveAndGetByScope(t *testing.T) {
	db := setupSyncTestDB(t)
	repo := NewGormServerRepository(db)
	ctx := context.Background()

	server := &sync.Server{
		ID:             uuid.New(),
		Scope:          "shop",
		BaseURL:        "https://shop.example.com",
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
		EnableSync:     true,
		PriceList:      "Standard Selling",
		FieldMap: []sync.FieldMapping{
			{LocalField: "item_name", RemotePath: "name"},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, repo.Save(ctx, server))

	retrieved, err := repo.GetByScope(ctx, "shop")
	require.NoError(t, err)
	assert.Equal(t, server.ID, retrieved.ID)
	assert.Equal(t, "https://shop.example.com", retrieved.BaseURL)
	require.Len(t, retrieved.FieldMap, 1)
	assert.Equal(t, "item_name", retrieved.FieldMap[0].LocalField)

	_, err = repo.GetByScope(ctx, "ghost")
	assert.ErrorIs(t, err, sync.ErrServerNotFound)
}

func TestGormServerRepository_SaveRejectsInvalidScope(t *testing.T) {
	db := setupSyncTestDB(t)
	repo := NewGormServerRepository(db)

	err := repo.Save(context.Background(), &sync.Server{
		ID:      uuid.New(),
		Scope:   "bad:scope",
		BaseURL: "https://x.example.com",
	})
	assert.ErrorIs(t, err, sync.ErrInvalidRecordID)
}

func TestGormServerRepository_ListEnabledOnly(t *testing.T) {
	db := setupSyncTestDB(t)
	repo := NewGormServerRepository(db)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, repo.Save(ctx, &sync.Server{
		ID: uuid.New(), Scope: "on", BaseURL: "https://on.example.com",
		EnableSync: true, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, repo.Save(ctx, &sync.Server{
		ID: uuid.New(), Scope: "off", BaseURL: "https://off.example.com",
		CreatedAt: now, UpdatedAt: now,
	}))

	all, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	enabled, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, "on", enabled[0].Scope)
}

func TestGormLinkRepository_FindByItemAndServer(t *testing.T) {
	db := setupSyncTestDB(t)
	repo := NewGormLinkRepository(db)
	ctx := context.Background()

	serverID := uuid.New()
	link := sync.NewLink("ITEM-001", serverID)
	require.NoError(t, repo.Save(ctx, link))

	found, ok, err := repo.FindByItemAndServer(ctx, "ITEM-001", serverID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, link.ID, found.ID)

	_, ok, err = repo.FindByItemAndServer(ctx, "GHOST", serverID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGormLinkRepository_FindByRemote(t *testing.T) {
	db := setupSyncTestDB(t)
	repo := NewGormLinkRepository(db)
	ctx := context.Background()

	serverID := uuid.New()
	link := sync.NewLink("ITEM-001", serverID)
	require.NoError(t, link.BindRemote("42"))
	require.NoError(t, repo.Save(ctx, link))

	found, ok, err := repo.FindByRemote(ctx, serverID, "42")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ITEM-001", found.ItemCode)

	// An empty remote ID must never match unbound links
	_, ok, err = repo.FindByRemote(ctx, serverID, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGormLinkRepository_RecordMarkerLeavesUpdatedAt(t *testing.T) {
	db := setupSyncTestDB(t)
	repo := NewGormLinkRepository(db)
	ctx := context.Background()

	link := sync.NewLink("ITEM-001", uuid.New())
	link.UpdatedAt = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, link))

	require.NoError(t, repo.RecordMarker(ctx, link.ID, "2024-06-01T12:00:00Z"))

	retrieved, err := repo.Get(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01T12:00:00Z", retrieved.LastSyncMarker)
	assert.WithinDuration(t, link.UpdatedAt, retrieved.UpdatedAt, time.Second,
		"marker writes must not advance the audit timestamp")

	require.NoError(t, repo.ClearMarker(ctx, link.ID))
	retrieved, err = repo.Get(ctx, link.ID)
	require.NoError(t, err)
	assert.Empty(t, retrieved.LastSyncMarker)
}

func TestGormLinkRepository_FindBoundByItems(t *testing.T) {
	db := setupSyncTestDB(t)
	repo := NewGormLinkRepository(db)
	ctx := context.Background()

	serverID := uuid.New()

	bound := sync.NewLink("ITEM-001", serverID)
	require.NoError(t, bound.BindRemote("42"))
	require.NoError(t, repo.Save(ctx, bound))

	unbound := sync.NewLink("ITEM-002", serverID)
	require.NoError(t, repo.Save(ctx, unbound))

	result, err := repo.FindBoundByItems(ctx, serverID, []string{"ITEM-001", "ITEM-002", "ITEM-003"})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "42", result["ITEM-001"].RemoteID)
}

func TestGormLinkRepository_ListBound(t *testing.T) {
	db := setupSyncTestDB(t)
	repo := NewGormLinkRepository(db)
	ctx := context.Background()

	serverID := uuid.New()
	for _, code := range []string{"ITEM-001", "ITEM-002", "ITEM-003"} {
		link := sync.NewLink(code, serverID)
		require.NoError(t, link.BindRemote("9"+code[len(code)-1:]))
		require.NoError(t, repo.Save(ctx, link))
	}
	require.NoError(t, repo.Save(ctx, sync.NewLink("ITEM-UNBOUND", serverID)))

	links, err := repo.ListBound(ctx, serverID, 2)
	require.NoError(t, err)
	assert.Len(t, links, 2)
	for _, l := range links {
		assert.NotEmpty(t, l.RemoteID)
	}
}

func TestGormLinkRepository_GetNotFound(t *testing.T) {
	db := setupSyncTestDB(t)
	repo := NewGormLinkRepository(db)

	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, sync.ErrLinkNotFound)
}
