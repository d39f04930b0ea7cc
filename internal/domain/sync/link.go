package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Link Entity
// ---------------------------------------------------------------------------

// Link associates a local item with its product on one storefront server.
// There is at most one link per (item, server) pair. It is created lazily on
// the first successful push and carries the last-sync marker used for
// incremental polling.
type Link struct {
	// ID is the unique identifier of this link
	ID uuid.UUID
	// ItemCode is the local item's code
	ItemCode string
	// ServerID identifies the storefront server
	ServerID uuid.UUID
	// RemoteID is the product ID on the storefront; empty until first push
	RemoteID string
	// Enabled indicates this link participates in synchronization
	Enabled bool
	// LastSyncMarker is an opaque value, typically the remote record's
	// last-modified timestamp, advanced only after a fully successful
	// reconciliation. An empty marker forces a full re-push.
	LastSyncMarker string
	// CreatedAt is when this link was created
	CreatedAt time.Time
	// UpdatedAt is when this link was last updated through the aggregate
	// (marker writes deliberately bypass it)
	UpdatedAt time.Time
}

// NewLink creates an unbound link for an item on a server
func NewLink(itemCode string, serverID uuid.UUID) *Link {
	now := time.Now()
	return &Link{
		ID:        uuid.New(),
		ItemCode:  itemCode,
		ServerID:  serverID,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// BindRemote records the remote product ID on the link. Rebinding an
// already-bound link to a different remote product is refused.
func (l *Link) BindRemote(remoteID string) error {
	if l.RemoteID != "" && l.RemoteID != remoteID {
		return ErrRemoteIDRebind
	}
	l.RemoteID = remoteID
	l.UpdatedAt = time.Now()
	return nil
}

// Unbind detaches the link from its remote product, e.g. when the product
// was deleted on the storefront and must be recreated. The marker is blanked
// so the next pass treats the pair as fully stale.
func (l *Link) Unbind() {
	l.RemoteID = ""
	l.LastSyncMarker = ""
	l.UpdatedAt = time.Now()
}

// Bound reports whether the link has a remote product ID
func (l *Link) Bound() bool {
	return l.RemoteID != ""
}

// ---------------------------------------------------------------------------
// LinkRepository
// ---------------------------------------------------------------------------

// LinkRepository persists sync links. RecordMarker and ClearMarker are
// side-channel writes: they are idempotent, last-write-wins, and must not
// advance the link's UpdatedAt audit field.
type LinkRepository interface {
	// Get returns the link with the given ID, or ErrLinkNotFound
	Get(ctx context.Context, id uuid.UUID) (*Link, error)

	// FindByItemAndServer returns the link for an (item, server) pair.
	// The second return value is false when no link exists.
	FindByItemAndServer(ctx context.Context, itemCode string, serverID uuid.UUID) (*Link, bool, error)

	// FindByRemote returns the link bound to a remote product ID on a
	// server. The second return value is false when no link references it.
	FindByRemote(ctx context.Context, serverID uuid.UUID, remoteID string) (*Link, bool, error)

	// ListByItem returns all links of an item across servers
	ListByItem(ctx context.Context, itemCode string) ([]Link, error)

	// ListBound returns up to limit links that have a remote ID on the
	// given server, in random order. Used for cold-start recommendation
	// sampling.
	ListBound(ctx context.Context, serverID uuid.UUID, limit int) ([]Link, error)

	// FindBoundByItems returns the links with a remote ID for the given
	// item codes on a server, keyed by item code.
	FindBoundByItems(ctx context.Context, serverID uuid.UUID, itemCodes []string) (map[string]Link, error)

	// Save creates or updates a link
	Save(ctx context.Context, link *Link) error

	// RecordMarker sets the last-sync marker without touching UpdatedAt
	RecordMarker(ctx context.Context, linkID uuid.UUID, marker string) error

	// ClearMarker blanks the last-sync marker without touching UpdatedAt,
	// forcing the next reconciliation to treat the pair as fully stale
	ClearMarker(ctx context.Context, linkID uuid.UUID) error
}
