package reconcile

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/sync"
)

// Stateful in-memory fakes for engine-level tests. Unlike the mock.Mock
// doubles these simulate real storefront behaviour: sparse updates merge
// into the stored product and bump its modification timestamp, which the
// idempotence tests depend on.

type memItems struct {
	m map[string]*catalog.Item
}

func newMemItems() *memItems { return &memItems{m: make(map[string]*catalog.Item)} }

func (r *memItems) Get(_ context.Context, code string) (*catalog.Item, error) {
	if item, ok := r.m[code]; ok {
		return item, nil
	}
	return nil, catalog.ErrItemNotFound
}

func (r *memItems) List(_ context.Context, filter catalog.ItemFilter) ([]catalog.Item, error) {
	var out []catalog.Item
	for _, item := range r.m {
		if filter.ModifiedSince != nil && !item.Modified.After(*filter.ModifiedSince) {
			continue
		}
		out = append(out, *item)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *memItems) Save(_ context.Context, item *catalog.Item) error {
	r.m[item.Code] = item
	return nil
}

type memBundles struct {
	m map[string]*catalog.BundleDefinition
}

func newMemBundles() *memBundles { return &memBundles{m: make(map[string]*catalog.BundleDefinition)} }

func (r *memBundles) GetByParent(_ context.Context, parentCode string) (*catalog.BundleDefinition, error) {
	if def, ok := r.m[parentCode]; ok {
		return def, nil
	}
	return nil, catalog.ErrBundleNotFound
}

func (r *memBundles) ExistsByParent(_ context.Context, parentCode string) (bool, error) {
	_, ok := r.m[parentCode]
	return ok, nil
}

type memSales struct{}

func (memSales) RecentInvoicesForItem(context.Context, string, int) ([]string, error) {
	return nil, nil
}

func (memSales) LinesForInvoices(context.Context, []string, string) ([]catalog.SalesLine, error) {
	return nil, nil
}

type memTranslations struct {
	m map[string]string
}

func (r *memTranslations) Lookup(_ context.Context, sourceText string) (string, bool, error) {
	if r == nil || r.m == nil {
		return "", false, nil
	}
	translated, ok := r.m[sourceText]
	return translated, ok, nil
}

type memServers struct {
	m map[uuid.UUID]*sync.Server
}

func newMemServers() *memServers { return &memServers{m: make(map[uuid.UUID]*sync.Server)} }

func (r *memServers) Get(_ context.Context, id uuid.UUID) (*sync.Server, error) {
	if server, ok := r.m[id]; ok {
		return server, nil
	}
	return nil, sync.ErrServerNotFound
}

func (r *memServers) GetByScope(_ context.Context, scope string) (*sync.Server, error) {
	for _, server := range r.m {
		if server.Scope == scope {
			return server, nil
		}
	}
	return nil, sync.ErrServerNotFound
}

func (r *memServers) List(_ context.Context, enabledOnly bool) ([]sync.Server, error) {
	var out []sync.Server
	for _, server := range r.m {
		if enabledOnly && !server.EnableSync {
			continue
		}
		out = append(out, *server)
	}
	return out, nil
}

func (r *memServers) Save(_ context.Context, server *sync.Server) error {
	r.m[server.ID] = server
	return nil
}

type memLinks struct {
	m            map[uuid.UUID]*sync.Link
	markerWrites int
}

func newMemLinks() *memLinks { return &memLinks{m: make(map[uuid.UUID]*sync.Link)} }

func (r *memLinks) Get(_ context.Context, id uuid.UUID) (*sync.Link, error) {
	if link, ok := r.m[id]; ok {
		return link, nil
	}
	return nil, sync.ErrLinkNotFound
}

func (r *memLinks) FindByItemAndServer(_ context.Context, itemCode string, serverID uuid.UUID) (*sync.Link, bool, error) {
	for _, link := range r.m {
		if link.ItemCode == itemCode && link.ServerID == serverID {
			return link, true, nil
		}
	}
	return nil, false, nil
}

func (r *memLinks) FindByRemote(_ context.Context, serverID uuid.UUID, remoteID string) (*sync.Link, bool, error) {
	for _, link := range r.m {
		if link.ServerID == serverID && link.RemoteID == remoteID {
			return link, true, nil
		}
	}
	return nil, false, nil
}

func (r *memLinks) ListByItem(_ context.Context, itemCode string) ([]sync.Link, error) {
	var out []sync.Link
	for _, link := range r.m {
		if link.ItemCode == itemCode {
			out = append(out, *link)
		}
	}
	return out, nil
}

func (r *memLinks) ListBound(_ context.Context, serverID uuid.UUID, limit int) ([]sync.Link, error) {
	var out []sync.Link
	for _, link := range r.m {
		if link.ServerID == serverID && link.Bound() {
			out = append(out, *link)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *memLinks) FindBoundByItems(_ context.Context, serverID uuid.UUID, itemCodes []string) (map[string]sync.Link, error) {
	out := make(map[string]sync.Link)
	for _, code := range itemCodes {
		for _, link := range r.m {
			if link.ServerID == serverID && link.ItemCode == code && link.Bound() {
				out[code] = *link
				break
			}
		}
	}
	return out, nil
}

func (r *memLinks) Save(_ context.Context, link *sync.Link) error {
	r.m[link.ID] = link
	return nil
}

func (r *memLinks) RecordMarker(_ context.Context, linkID uuid.UUID, marker string) error {
	link, ok := r.m[linkID]
	if !ok {
		return sync.ErrLinkNotFound
	}
	link.LastSyncMarker = marker
	r.markerWrites++
	return nil
}

func (r *memLinks) ClearMarker(_ context.Context, linkID uuid.UUID) error {
	link, ok := r.m[linkID]
	if !ok {
		return sync.ErrLinkNotFound
	}
	link.LastSyncMarker = ""
	return nil
}

// fakeGateway simulates the storefront catalog API
type fakeGateway struct {
	products   map[string]*sync.RemoteProduct
	categories []sync.RemoteCategory
	offers     []sync.RemoteCategory

	nextProductID  int
	nextCategoryID int64
	createCalls    int
	updateCalls    int
	clock          time.Time
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		products:       make(map[string]*sync.RemoteProduct),
		nextProductID:  100,
		nextCategoryID: 10,
		clock:          time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (g *fakeGateway) tick() time.Time {
	g.clock = g.clock.Add(time.Second)
	return g.clock
}

func (g *fakeGateway) GetProduct(_ context.Context, _ *sync.Server, remoteID string) (*sync.RemoteProduct, bool, error) {
	product, ok := g.products[remoteID]
	if !ok {
		return nil, false, nil
	}
	return cloneProduct(product), true, nil
}

func (g *fakeGateway) CreateProduct(_ context.Context, _ *sync.Server, payload map[string]any) (*sync.RemoteProduct, error) {
	g.createCalls++
	product := &sync.RemoteProduct{
		ID:   strconv.Itoa(g.nextProductID),
		Type: sync.ProductTypeSimple,
	}
	g.nextProductID++
	applyProductFields(product, payload)
	product.DateModified = g.tick()
	g.products[product.ID] = product
	return cloneProduct(product), nil
}

func (g *fakeGateway) UpdateProduct(_ context.Context, _ *sync.Server, remoteID string, fields map[string]any) (*sync.RemoteProduct, error) {
	g.updateCalls++
	product, ok := g.products[remoteID]
	if !ok {
		return nil, sync.ErrRemoteRequestFailed
	}
	applyProductFields(product, fields)
	product.DateModified = g.tick()
	return cloneProduct(product), nil
}

func (g *fakeGateway) ListCategories(_ context.Context, _ *sync.Server, search string) ([]sync.RemoteCategory, error) {
	var out []sync.RemoteCategory
	for _, cat := range g.categories {
		if search == "" || containsFold(cat.Name, search) {
			out = append(out, cat)
		}
	}
	return out, nil
}

func (g *fakeGateway) CreateCategory(_ context.Context, _ *sync.Server, name string, parentID int64) (*sync.RemoteCategory, error) {
	cat := sync.RemoteCategory{
		ID:     g.nextCategoryID,
		Name:   name,
		Slug:   Slugify(name),
		Parent: parentID,
	}
	g.nextCategoryID++
	g.categories = append(g.categories, cat)
	return &cat, nil
}

func (g *fakeGateway) ListOfferCategories(_ context.Context, _ *sync.Server, search string) ([]sync.RemoteCategory, error) {
	var out []sync.RemoteCategory
	for _, term := range g.offers {
		if search == "" || containsFold(term.Name, search) {
			out = append(out, term)
		}
	}
	return out, nil
}

func containsFold(haystack, needle string) bool {
	h := []rune(haystack)
	n := []rune(needle)
	if len(n) == 0 {
		return true
	}
	for i := 0; i+len(n) <= len(h); i++ {
		match := true
		for j := range n {
			hr, nr := h[i+j], n[j]
			if hr >= 'A' && hr <= 'Z' {
				hr += 'a' - 'A'
			}
			if nr >= 'A' && nr <= 'Z' {
				nr += 'a' - 'A'
			}
			if hr != nr {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func cloneProduct(p *sync.RemoteProduct) *sync.RemoteProduct {
	c := *p
	c.Attributes = append([]sync.RemoteAttribute(nil), p.Attributes...)
	c.Images = append([]sync.RemoteImage(nil), p.Images...)
	c.Categories = append([]sync.RemoteCategoryRef(nil), p.Categories...)
	c.MetaData = append([]sync.MetaEntry(nil), p.MetaData...)
	return &c
}

// applyProductFields merges a sparse payload into a stored product the way
// the storefront would.
func applyProductFields(p *sync.RemoteProduct, fields map[string]any) {
	for key, value := range fields {
		switch key {
		case "name":
			p.Name = value.(string)
		case "sku":
			p.SKU = value.(string)
		case "type":
			p.Type = sync.ProductType(value.(string))
		case "status":
			p.Status = value.(string)
		case "regular_price":
			p.RegularPrice = value.(string)
		case "description":
			p.Description = value.(string)
		case "shipping_class":
			p.ShippingClass = value.(string)
		case "stock_status":
			p.StockStatus = value.(string)
		case "backorders":
			p.Backorders = value.(string)
		case "manage_stock":
			p.ManageStock = value.(bool)
		case "stock_quantity":
			p.StockQuantity = value.(int64)
		case "images":
			p.Images = nil
			for _, raw := range value.([]any) {
				p.Images = append(p.Images, sync.RemoteImage{
					Src: raw.(map[string]any)["src"].(string),
				})
			}
		case "categories":
			p.Categories = nil
			for _, raw := range value.([]any) {
				p.Categories = append(p.Categories, sync.RemoteCategoryRef{
					ID: raw.(map[string]any)["id"].(int64),
				})
			}
		case "attributes":
			p.Attributes = nil
			for _, raw := range value.([]any) {
				row := raw.(map[string]any)
				attr := sync.RemoteAttribute{Name: row["name"].(string)}
				if v, ok := row["visible"].(bool); ok {
					attr.Visible = v
				}
				if v, ok := row["variation"].(bool); ok {
					attr.Variation = v
				}
				switch opts := row["options"].(type) {
				case []string:
					attr.Options = append(attr.Options, opts...)
				case []any:
					for _, o := range opts {
						attr.Options = append(attr.Options, o.(string))
					}
				}
				p.Attributes = append(p.Attributes, attr)
			}
		case "meta_data":
			for _, raw := range value.([]any) {
				row := raw.(map[string]any)
				upsertMeta(p, row["key"].(string), row["value"])
			}
		}
	}
}

func upsertMeta(p *sync.RemoteProduct, key string, value any) {
	for i := range p.MetaData {
		if p.MetaData[i].Key == key {
			p.MetaData[i].Value = value
			return
		}
	}
	p.MetaData = append(p.MetaData, sync.MetaEntry{Key: key, Value: value})
}
