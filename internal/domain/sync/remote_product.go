package sync

import (
	"encoding/json"
	"time"
)

// ---------------------------------------------------------------------------
// RemoteProduct Value Object
// ---------------------------------------------------------------------------

// ProductType is the storefront's product type discriminator
type ProductType string

const (
	// ProductTypeSimple is a plain single product
	ProductTypeSimple ProductType = "simple"
	// ProductTypeVariable is a product template with variants
	ProductTypeVariable ProductType = "variable"
	// ProductTypeVariation is one variant of a variable product
	ProductTypeVariation ProductType = "variation"
	// ProductTypeBundle is a composite product enumerating member products
	ProductTypeBundle ProductType = "woosb"
)

// RemoteProduct is the storefront-side product as materialized from the
// remote API for one reconciliation pass. It is never cached beyond the
// pass that fetched it.
type RemoteProduct struct {
	// ID is the product ID on the storefront, as a string
	ID string `json:"id"`
	// Scope is the owning server's scope; together with ID it forms the
	// combined record identity
	Scope string `json:"-"`
	// Type is the product type discriminator
	Type ProductType `json:"type"`
	// Name is the storefront product name
	Name string `json:"name"`
	// SKU mirrors the local item code
	SKU string `json:"sku"`
	// RegularPrice is the listed price, kept as the API's string form
	RegularPrice string `json:"regular_price"`
	// Status is the publication status, e.g. "publish"
	Status string `json:"status"`
	// ParentID is the parent product for variations, zero otherwise
	ParentID int64 `json:"parent_id,omitempty"`
	// Attributes holds the storefront attribute rows
	Attributes []RemoteAttribute `json:"attributes"`
	// Images holds the product images, first one is the main image
	Images []RemoteImage `json:"images"`
	// Categories references the assigned storefront categories
	Categories []RemoteCategoryRef `json:"categories"`
	// MetaData holds arbitrary key/value metadata rows
	MetaData []MetaEntry `json:"meta_data"`
	// ManageStock indicates the storefront tracks stock for this product
	ManageStock bool `json:"manage_stock"`
	// StockQuantity is the storefront's tracked quantity
	StockQuantity int64 `json:"stock_quantity"`
	// StockStatus is "instock", "outofstock" or "onbackorder"
	StockStatus string `json:"stock_status"`
	// Backorders is the backorder policy, e.g. "no" or "notify"
	Backorders string `json:"backorders"`
	// ShippingClass is the shipping class slug
	ShippingClass string `json:"shipping_class"`
	// Description is the long product description
	Description string `json:"description"`
	// DateModified is the remote last-modified timestamp
	DateModified time.Time `json:"date_modified"`
}

// RemoteAttribute is one storefront attribute of a product
type RemoteAttribute struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Visible   bool     `json:"visible"`
	Variation bool     `json:"variation"`
	Options   []string `json:"options"`
}

// RemoteImage is one product image reference
type RemoteImage struct {
	Src string `json:"src"`
}

// RemoteCategoryRef references an assigned category by ID
type RemoteCategoryRef struct {
	ID int64 `json:"id"`
}

// MetaEntry is one metadata key/value row
type MetaEntry struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// RemoteCategory is a storefront category as returned by the category API
type RemoteCategory struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Parent int64  `json:"parent"`
}

// RecordID returns the combined identity "<scope>:<id>" of the product
func (p *RemoteProduct) RecordID() string {
	return FormatRecordID(p.Scope, p.ID)
}

// Tree returns the product as a mutable semi-structured tree suitable for
// path-expression addressing. Changes to the tree do not propagate back to
// the struct; callers push changed subtrees through the gateway instead.
func (p *RemoteProduct) Tree() (map[string]any, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}
