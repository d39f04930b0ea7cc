package models

import (
	"time"

	"github.com/storesync/backend/internal/domain/catalog"
)

// SalesLineModel is the persistence model for a single invoice line. Lines
// are written by the order intake path and read by the recommendation
// builder's co-occurrence queries.
type SalesLineModel struct {
	ID        int64     `gorm:"primary_key;auto_increment"`
	InvoiceID string    `gorm:"type:varchar(140);not null;index:idx_sales_lines_invoice,priority:1"`
	ItemCode  string    `gorm:"type:varchar(140);not null;index:idx_sales_lines_item,priority:1"`
	Modified  time.Time `gorm:"not null;index:idx_sales_lines_modified"`
}

// TableName returns the table name for GORM
func (SalesLineModel) TableName() string {
	return "sales_lines"
}

// ToDomain converts the persistence model to a domain SalesLine.
func (m *SalesLineModel) ToDomain() catalog.SalesLine {
	return catalog.SalesLine{
		InvoiceID: m.InvoiceID,
		ItemCode:  m.ItemCode,
		Modified:  m.Modified,
	}
}

// FromDomain populates the persistence model from a domain SalesLine.
func (m *SalesLineModel) FromDomain(line catalog.SalesLine) {
	m.InvoiceID = line.InvoiceID
	m.ItemCode = line.ItemCode
	m.Modified = line.Modified
}

// TranslationModel is the persistence model for one source → translated
// text row. Source text is the lookup key.
type TranslationModel struct {
	SourceText     string `gorm:"type:varchar(255);primary_key"`
	TranslatedText string `gorm:"type:varchar(255);not null"`
}

// TableName returns the table name for GORM
func (TranslationModel) TableName() string {
	return "translations"
}
