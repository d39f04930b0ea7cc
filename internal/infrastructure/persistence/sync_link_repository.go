package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/sync"
	"github.com/storesync/backend/internal/infrastructure/persistence/models"
)

// GormLinkRepository implements sync.LinkRepository using GORM
type GormLinkRepository struct {
	db *gorm.DB
}

var _ sync.LinkRepository = (*GormLinkRepository)(nil)

// NewGormLinkRepository creates a new GORM-based link repository
func NewGormLinkRepository(db *gorm.DB) *GormLinkRepository {
	return &GormLinkRepository{db: db}
}

// Get returns the link with the given ID
func (r *GormLinkRepository) Get(ctx context.Context, id uuid.UUID) (*sync.Link, error) {
	var model models.SyncLinkModel
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sync.ErrLinkNotFound
		}
		return nil, err
	}

	return model.ToDomain(), nil
}

// FindByItemAndServer returns the link for an (item, server) pair
func (r *GormLinkRepository) FindByItemAndServer(ctx context.Context, itemCode string, serverID uuid.UUID) (*sync.Link, bool, error) {
	var model models.SyncLinkModel
	err := r.db.WithContext(ctx).
		Where("item_code = ? AND server_id = ?", itemCode, serverID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return model.ToDomain(), true, nil
}

// FindByRemote returns the link bound to a remote product ID on a server
func (r *GormLinkRepository) FindByRemote(ctx context.Context, serverID uuid.UUID, remoteID string) (*sync.Link, bool, error) {
	if remoteID == "" {
		return nil, false, nil
	}

	var model models.SyncLinkModel
	err := r.db.WithContext(ctx).
		Where("server_id = ? AND remote_id = ?", serverID, remoteID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return model.ToDomain(), true, nil
}

// ListByItem returns all links of an item across servers
func (r *GormLinkRepository) ListByItem(ctx context.Context, itemCode string) ([]sync.Link, error) {
	var rows []models.SyncLinkModel
	err := r.db.WithContext(ctx).
		Where("item_code = ?", itemCode).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return toDomainLinks(rows), nil
}

// ListBound returns up to limit bound links on a server in random order
func (r *GormLinkRepository) ListBound(ctx context.Context, serverID uuid.UUID, limit int) ([]sync.Link, error) {
	query := r.db.WithContext(ctx).
		Where("server_id = ? AND remote_id <> ''", serverID).
		Order("RANDOM()")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.SyncLinkModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	return toDomainLinks(rows), nil
}

// FindBoundByItems returns the bound links for the given item codes on a
// server, keyed by item code.
func (r *GormLinkRepository) FindBoundByItems(ctx context.Context, serverID uuid.UUID, itemCodes []string) (map[string]sync.Link, error) {
	result := make(map[string]sync.Link, len(itemCodes))
	if len(itemCodes) == 0 {
		return result, nil
	}

	var rows []models.SyncLinkModel
	err := r.db.WithContext(ctx).
		Where("server_id = ? AND remote_id <> '' AND item_code IN ?", serverID, itemCodes).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for i := range rows {
		result[rows[i].ItemCode] = *rows[i].ToDomain()
	}
	return result, nil
}

// Save creates or updates a link
func (r *GormLinkRepository) Save(ctx context.Context, link *sync.Link) error {
	var model models.SyncLinkModel
	model.FromDomain(link)
	return r.db.WithContext(ctx).Save(&model).Error
}

// RecordMarker sets the last-sync marker. UpdateColumn bypasses GORM's
// UpdatedAt tracking, keeping marker writes off the audit trail.
func (r *GormLinkRepository) RecordMarker(ctx context.Context, linkID uuid.UUID, marker string) error {
	return r.db.WithContext(ctx).
		Model(&models.SyncLinkModel{}).
		Where("id = ?", linkID).
		UpdateColumn("last_sync_marker", marker).Error
}

// ClearMarker blanks the last-sync marker without touching UpdatedAt
func (r *GormLinkRepository) ClearMarker(ctx context.Context, linkID uuid.UUID) error {
	return r.RecordMarker(ctx, linkID, "")
}

func toDomainLinks(rows []models.SyncLinkModel) []sync.Link {
	links := make([]sync.Link, 0, len(rows))
	for i := range rows {
		links = append(links, *rows[i].ToDomain())
	}
	return links
}
