package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/infrastructure/persistence/models"
)

// GormSalesHistoryRepository implements catalog.SalesHistoryRepository
// using GORM.
type GormSalesHistoryRepository struct {
	db *gorm.DB
}

var _ catalog.SalesHistoryRepository = (*GormSalesHistoryRepository)(nil)

// NewGormSalesHistoryRepository creates a new GORM-based sales history
// repository.
func NewGormSalesHistoryRepository(db *gorm.DB) *GormSalesHistoryRepository {
	return &GormSalesHistoryRepository{db: db}
}

// RecentInvoicesForItem returns the distinct invoice IDs of the most recent
// transactions containing the given item, newest first.
func (r *GormSalesHistoryRepository) RecentInvoicesForItem(ctx context.Context, itemCode string, limit int) ([]string, error) {
	var invoiceIDs []string
	query := r.db.WithContext(ctx).
		Model(&models.SalesLineModel{}).
		Where("item_code = ?", itemCode).
		Group("invoice_id").
		Order("MAX(modified) DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Pluck("invoice_id", &invoiceIDs).Error; err != nil {
		return nil, err
	}
	return invoiceIDs, nil
}

// LinesForInvoices returns all lines on the given invoices excluding the
// given item code, in stored order.
func (r *GormSalesHistoryRepository) LinesForInvoices(ctx context.Context, invoiceIDs []string, excludeItemCode string) ([]catalog.SalesLine, error) {
	if len(invoiceIDs) == 0 {
		return nil, nil
	}

	var rows []models.SalesLineModel
	err := r.db.WithContext(ctx).
		Where("invoice_id IN ?", invoiceIDs).
		Where("item_code <> ?", excludeItemCode).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	lines := make([]catalog.SalesLine, 0, len(rows))
	for i := range rows {
		lines = append(lines, rows[i].ToDomain())
	}
	return lines, nil
}

// Record appends invoice lines to the history
func (r *GormSalesHistoryRepository) Record(ctx context.Context, lines []catalog.SalesLine) error {
	if len(lines) == 0 {
		return nil
	}

	rows := make([]models.SalesLineModel, 0, len(lines))
	for _, line := range lines {
		var model models.SalesLineModel
		model.FromDomain(line)
		rows = append(rows, model)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}
