package models

import (
	"encoding/json"
	"time"

	"github.com/storesync/backend/internal/domain/catalog"
)

// ItemModel is the persistence model for the catalog Item aggregate. Child
// collections (prices, stock bins, attributes, compatibility rows) are
// stored as JSON documents on the row; the engine always loads items whole.
type ItemModel struct {
	Code                  string    `gorm:"type:varchar(140);primary_key"`
	Name                  string    `gorm:"type:varchar(255);not null"`
	PricesJSON            string    `gorm:"type:jsonb;column:prices"`
	StockBinsJSON         string    `gorm:"type:jsonb;column:stock_bins"`
	AttributesJSON        string    `gorm:"type:jsonb;column:attributes"`
	CompatibilityJSON     string    `gorm:"type:jsonb;column:compatibility"`
	IsBundle              bool      `gorm:"not null;default:false"`
	HasVariants           bool      `gorm:"not null;default:false"`
	VariantAttributesJSON string    `gorm:"type:jsonb;column:variant_attributes"`
	Category              string    `gorm:"type:varchar(140)"`
	SubCategory           string    `gorm:"type:varchar(140)"`
	OfferCategoriesJSON   string    `gorm:"type:jsonb;column:offer_categories"`
	ImageURLsJSON         string    `gorm:"type:jsonb;column:image_urls"`
	ShippingClass         string    `gorm:"type:varchar(140)"`
	DisableSync           bool      `gorm:"not null;default:false"`
	DisableSyncOutOfStock bool      `gorm:"not null;default:false"`
	Modified              time.Time `gorm:"not null;index:idx_items_modified"`
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "items"
}

// ToDomain converts the persistence model to a domain Item aggregate.
func (m *ItemModel) ToDomain() *catalog.Item {
	item := &catalog.Item{
		Code:                  m.Code,
		Name:                  m.Name,
		IsBundle:              m.IsBundle,
		HasVariants:           m.HasVariants,
		Category:              m.Category,
		SubCategory:           m.SubCategory,
		ShippingClass:         m.ShippingClass,
		DisableSync:           m.DisableSync,
		DisableSyncOutOfStock: m.DisableSyncOutOfStock,
		Modified:              m.Modified,
	}

	unmarshalColumn(m.PricesJSON, &item.Prices)
	unmarshalColumn(m.StockBinsJSON, &item.StockBins)
	unmarshalColumn(m.AttributesJSON, &item.Attributes)
	unmarshalColumn(m.CompatibilityJSON, &item.Compatibility)
	unmarshalColumn(m.VariantAttributesJSON, &item.VariantAttributes)
	unmarshalColumn(m.OfferCategoriesJSON, &item.OfferCategories)
	unmarshalColumn(m.ImageURLsJSON, &item.ImageURLs)

	return item
}

// FromDomain populates the persistence model from a domain Item aggregate.
func (m *ItemModel) FromDomain(item *catalog.Item) {
	m.Code = item.Code
	m.Name = item.Name
	m.IsBundle = item.IsBundle
	m.HasVariants = item.HasVariants
	m.Category = item.Category
	m.SubCategory = item.SubCategory
	m.ShippingClass = item.ShippingClass
	m.DisableSync = item.DisableSync
	m.DisableSyncOutOfStock = item.DisableSyncOutOfStock
	m.Modified = item.Modified

	m.PricesJSON = marshalColumn(item.Prices)
	m.StockBinsJSON = marshalColumn(item.StockBins)
	m.AttributesJSON = marshalColumn(item.Attributes)
	m.CompatibilityJSON = marshalColumn(item.Compatibility)
	m.VariantAttributesJSON = marshalColumn(item.VariantAttributes)
	m.OfferCategoriesJSON = marshalColumn(item.OfferCategories)
	m.ImageURLsJSON = marshalColumn(item.ImageURLs)
}

// marshalColumn serializes a child collection into its JSON column value
func marshalColumn(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	s := string(raw)
	if s == "null" {
		return "[]"
	}
	return s
}

// unmarshalColumn parses a JSON column into the target collection,
// tolerating empty and legacy-null values.
func unmarshalColumn(raw string, target any) {
	if raw == "" || raw == "null" {
		return
	}
	_ = json.Unmarshal([]byte(raw), target)
}
