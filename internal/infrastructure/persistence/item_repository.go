package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/infrastructure/persistence/models"
)

// GormItemRepository implements catalog.ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

var _ catalog.ItemRepository = (*GormItemRepository)(nil)

// NewGormItemRepository creates a new GORM-based item repository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// Get returns the item with the given code
func (r *GormItemRepository) Get(ctx context.Context, code string) (*catalog.Item, error) {
	if code == "" {
		return nil, catalog.ErrItemInvalidCode
	}

	var model models.ItemModel
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrItemNotFound
		}
		return nil, err
	}

	return model.ToDomain(), nil
}

// List returns items matching the filter, oldest modification first so
// callers can carry a watermark across pages.
func (r *GormItemRepository) List(ctx context.Context, filter catalog.ItemFilter) ([]catalog.Item, error) {
	query := r.db.WithContext(ctx).Model(&models.ItemModel{})

	if len(filter.Codes) > 0 {
		query = query.Where("code IN ?", filter.Codes)
	}
	if filter.ModifiedSince != nil {
		query = query.Where("modified > ?", *filter.ModifiedSince)
	}
	query = query.Order("modified ASC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []models.ItemModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]catalog.Item, 0, len(rows))
	for i := range rows {
		items = append(items, *rows[i].ToDomain())
	}
	return items, nil
}

// Save creates or updates an item
func (r *GormItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	if item.Code == "" {
		return catalog.ErrItemInvalidCode
	}

	var model models.ItemModel
	model.FromDomain(item)
	return r.db.WithContext(ctx).Save(&model).Error
}
