package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrItemNotFound indicates the requested item does not exist
	ErrItemNotFound = errors.New("catalog: item not found")
	// ErrItemInvalidCode indicates an empty or malformed item code
	ErrItemInvalidCode = errors.New("catalog: invalid item code")
)

// ---------------------------------------------------------------------------
// Item Aggregate
// ---------------------------------------------------------------------------

// Item is the local side of a synchronized catalog entry. The item code is
// the natural key; every child collection hangs off it.
type Item struct {
	// Code is the unique item code (natural key)
	Code string
	// Name is the display name, possibly mixed-script
	Name string
	// Prices holds the per-price-list rates for this item
	Prices []PriceEntry
	// StockBins holds per-warehouse actual quantities
	StockBins []StockBin
	// Attributes holds the storefront-visible attribute rows
	Attributes []AttributeRow
	// Compatibility holds vehicle compatibility rows (spare parts)
	Compatibility []CompatibilityRow
	// IsBundle indicates this item is a composite of other items
	IsBundle bool
	// HasVariants indicates this item is a variable product template
	HasVariants bool
	// VariantAttributes lists the attribute names that drive variants
	VariantAttributes []VariantAttribute
	// Category is the main category name
	Category string
	// SubCategory is the optional sub-category name, nested under Category
	SubCategory string
	// OfferCategories lists promotional category names
	OfferCategories []string
	// ImageURLs holds storefront image URLs, first one is the main image
	ImageURLs []string
	// ShippingClass is the storefront shipping class slug, optional
	ShippingClass string
	// DisableSync excludes the item from synchronization entirely
	DisableSync bool
	// DisableSyncOutOfStock excludes the item while it has no stock
	DisableSyncOutOfStock bool
	// Modified is the last local modification timestamp
	Modified time.Time
}

// PriceEntry is a single price-list rate for an item
type PriceEntry struct {
	// PriceList is the price list name, e.g. "Standard Selling"
	PriceList string
	// Rate is the unit rate on that list
	Rate decimal.Decimal
	// ValidUpto bounds the rate's validity; nil means open-ended
	ValidUpto *time.Time
}

// StockBin is the actual quantity of an item in one warehouse
type StockBin struct {
	Warehouse string
	ActualQty decimal.Decimal
}

// AttributeRow is one storefront attribute of an item
type AttributeRow struct {
	// Name is the raw attribute name, translated before push
	Name string
	// Values is the raw comma-separated value string
	Values string
	// Visible controls storefront visibility
	Visible bool
}

// VariantAttribute names an attribute that drives product variants,
// together with its allowed values.
type VariantAttribute struct {
	Name    string
	Options []string
}

// CompatibilityRow is one vehicle compatibility entry of a spare part
type CompatibilityRow struct {
	// Brand is the raw vehicle brand, translated before push
	Brand string
	// Model is the raw vehicle model, translated before push
	Model string
	// Years is the free-text year specification, e.g. "14-17, 2020"
	Years string
	// Fuel is the fuel variant, pushed as-is
	Fuel string
	// EngineSize is the engine displacement, pushed as-is
	EngineSize string
}

// PriceOn returns the currently valid rate on the given price list.
// The second return value is false when no valid entry exists.
func (i *Item) PriceOn(priceList string, now time.Time) (decimal.Decimal, bool) {
	for _, p := range i.Prices {
		if p.PriceList != priceList {
			continue
		}
		if p.ValidUpto != nil && !p.ValidUpto.After(now) {
			continue
		}
		return p.Rate, true
	}
	return decimal.Zero, false
}

// TotalStock sums the actual quantity over all bins
func (i *Item) TotalStock() decimal.Decimal {
	total := decimal.Zero
	for _, b := range i.StockBins {
		total = total.Add(b.ActualQty)
	}
	return total
}

// SyncEligible reports whether the item may be pushed at all given its own
// flags and its currently valid selling price. Ineligible items are skipped,
// not failed. An empty priceList disables the price check.
func (i *Item) SyncEligible(priceList string, now time.Time) bool {
	if i.DisableSync {
		return false
	}
	if i.DisableSyncOutOfStock && !i.TotalStock().IsPositive() {
		return false
	}
	if priceList == "" {
		return true
	}
	rate, ok := i.PriceOn(priceList, now)
	return ok && rate.IsPositive()
}

// ---------------------------------------------------------------------------
// Repository Interfaces
// ---------------------------------------------------------------------------

// ItemFilter defines filter criteria for listing items
type ItemFilter struct {
	// Codes restricts the result to the given item codes (optional)
	Codes []string
	// ModifiedSince restricts to items modified after the given time (optional)
	ModifiedSince *time.Time
	// Limit caps the number of returned items; 0 means no cap
	Limit int
}

// ItemRepository provides access to local items. The reconciliation engine
// only ever talks to this narrow interface, never to a concrete store.
type ItemRepository interface {
	// Get returns the item with the given code, or ErrItemNotFound
	Get(ctx context.Context, code string) (*Item, error)

	// List returns items matching the filter
	List(ctx context.Context, filter ItemFilter) ([]Item, error)

	// Save creates or updates an item
	Save(ctx context.Context, item *Item) error
}
