package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/infrastructure/persistence/models"
)

// GormBundleRepository implements catalog.BundleRepository using GORM
type GormBundleRepository struct {
	db *gorm.DB
}

var _ catalog.BundleRepository = (*GormBundleRepository)(nil)

// NewGormBundleRepository creates a new GORM-based bundle repository
func NewGormBundleRepository(db *gorm.DB) *GormBundleRepository {
	return &GormBundleRepository{db: db}
}

// GetByParent returns the bundle definition for the given parent item code
func (r *GormBundleRepository) GetByParent(ctx context.Context, parentCode string) (*catalog.BundleDefinition, error) {
	var model models.BundleDefinitionModel
	err := r.db.WithContext(ctx).
		Where("parent_code = ?", parentCode).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrBundleNotFound
		}
		return nil, err
	}

	return model.ToDomain(), nil
}

// ExistsByParent reports whether a bundle definition exists for the code
func (r *GormBundleRepository) ExistsByParent(ctx context.Context, parentCode string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BundleDefinitionModel{}).
		Where("parent_code = ?", parentCode).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a bundle definition
func (r *GormBundleRepository) Save(ctx context.Context, def *catalog.BundleDefinition) error {
	var model models.BundleDefinitionModel
	model.FromDomain(def)
	return r.db.WithContext(ctx).Save(&model).Error
}
