package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/sync"
	"github.com/storesync/backend/internal/infrastructure/persistence/models"
)

// GormServerRepository implements sync.ServerRepository using GORM
type GormServerRepository struct {
	db *gorm.DB
}

var _ sync.ServerRepository = (*GormServerRepository)(nil)

// NewGormServerRepository creates a new GORM-based server repository
func NewGormServerRepository(db *gorm.DB) *GormServerRepository {
	return &GormServerRepository{db: db}
}

// Get returns the server with the given ID
func (r *GormServerRepository) Get(ctx context.Context, id uuid.UUID) (*sync.Server, error) {
	var model models.ServerModel
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sync.ErrServerNotFound
		}
		return nil, err
	}

	return model.ToDomain(), nil
}

// GetByScope returns the server with the given scope
func (r *GormServerRepository) GetByScope(ctx context.Context, scope string) (*sync.Server, error) {
	var model models.ServerModel
	err := r.db.WithContext(ctx).
		Where("scope = ?", scope).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sync.ErrServerNotFound
		}
		return nil, err
	}

	return model.ToDomain(), nil
}

// List returns all servers, optionally restricted to sync-enabled ones
func (r *GormServerRepository) List(ctx context.Context, enabledOnly bool) ([]sync.Server, error) {
	query := r.db.WithContext(ctx).Model(&models.ServerModel{})
	if enabledOnly {
		query = query.Where("enable_sync = ?", true)
	}

	var rows []models.ServerModel
	if err := query.Order("scope ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	servers := make([]sync.Server, 0, len(rows))
	for i := range rows {
		servers = append(servers, *rows[i].ToDomain())
	}
	return servers, nil
}

// Save creates or updates a server
func (r *GormServerRepository) Save(ctx context.Context, server *sync.Server) error {
	if err := server.Validate(); err != nil {
		return err
	}

	var model models.ServerModel
	model.FromDomain(server)
	return r.db.WithContext(ctx).Save(&model).Error
}
