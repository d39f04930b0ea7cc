package storefront

import (
	"strconv"
	"time"

	"github.com/storesync/backend/internal/domain/sync"
)

// wooTimeLayout is the zone-less timestamp format of the storefront API;
// GMT fields are always UTC.
const wooTimeLayout = "2006-01-02T15:04:05"

// wooProduct is the wire shape of a storefront product
type wooProduct struct {
	ID              int64            `json:"id"`
	Type            string           `json:"type"`
	Name            string           `json:"name"`
	SKU             string           `json:"sku"`
	RegularPrice    string           `json:"regular_price"`
	Status          string           `json:"status"`
	ParentID        int64            `json:"parent_id"`
	ManageStock     bool             `json:"manage_stock"`
	StockQuantity   *int64           `json:"stock_quantity"`
	StockStatus     string           `json:"stock_status"`
	Backorders      string           `json:"backorders"`
	ShippingClass   string           `json:"shipping_class"`
	Description     string           `json:"description"`
	DateModifiedGMT string           `json:"date_modified_gmt"`
	Attributes      []wooAttribute   `json:"attributes"`
	Images          []wooImage       `json:"images"`
	Categories      []wooCategoryRef `json:"categories"`
	MetaData        []wooMeta        `json:"meta_data"`
}

// wooAttribute is one product attribute row on the wire
type wooAttribute struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Visible   bool     `json:"visible"`
	Variation bool     `json:"variation"`
	Options   []string `json:"options"`
}

// wooImage is one product image on the wire
type wooImage struct {
	Src string `json:"src"`
}

// wooCategoryRef references an assigned category on the wire
type wooCategoryRef struct {
	ID int64 `json:"id"`
}

// wooMeta is one metadata row on the wire
type wooMeta struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// wooCategory is a category or taxonomy term on the wire
type wooCategory struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Parent int64  `json:"parent"`
}

// wooError is the storefront API error envelope
type wooError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// toDomain converts a wire product to the domain representation
func (p *wooProduct) toDomain(scope string) *sync.RemoteProduct {
	product := &sync.RemoteProduct{
		ID:            strconv.FormatInt(p.ID, 10),
		Scope:         scope,
		Type:          sync.ProductType(p.Type),
		Name:          p.Name,
		SKU:           p.SKU,
		RegularPrice:  p.RegularPrice,
		Status:        p.Status,
		ParentID:      p.ParentID,
		ManageStock:   p.ManageStock,
		StockStatus:   p.StockStatus,
		Backorders:    p.Backorders,
		ShippingClass: p.ShippingClass,
		Description:   p.Description,
		DateModified:  parseWooTime(p.DateModifiedGMT),
	}
	if p.StockQuantity != nil {
		product.StockQuantity = *p.StockQuantity
	}
	for _, a := range p.Attributes {
		product.Attributes = append(product.Attributes, sync.RemoteAttribute{
			ID:        a.ID,
			Name:      a.Name,
			Visible:   a.Visible,
			Variation: a.Variation,
			Options:   a.Options,
		})
	}
	for _, img := range p.Images {
		product.Images = append(product.Images, sync.RemoteImage{Src: img.Src})
	}
	for _, ref := range p.Categories {
		product.Categories = append(product.Categories, sync.RemoteCategoryRef{ID: ref.ID})
	}
	for _, m := range p.MetaData {
		product.MetaData = append(product.MetaData, sync.MetaEntry{Key: m.Key, Value: m.Value})
	}
	return product
}

// toDomain converts a wire category to the domain representation
func (c *wooCategory) toDomain() sync.RemoteCategory {
	return sync.RemoteCategory{
		ID:     c.ID,
		Name:   c.Name,
		Slug:   c.Slug,
		Parent: c.Parent,
	}
}

// parseWooTime parses the zone-less GMT timestamp; RFC3339 is accepted as a
// fallback. A blank or malformed value yields the zero time.
func parseWooTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.ParseInLocation(wooTimeLayout, raw, time.UTC); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC()
	}
	return time.Time{}
}
