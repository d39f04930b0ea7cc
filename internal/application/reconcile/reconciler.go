package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/sync"
	"github.com/storesync/backend/internal/pathmap"
)

// ErrBundleChildrenUnlinked indicates a bundle whose children all lack a
// remote product, so no composite payload can be built.
var ErrBundleChildrenUnlinked = errors.New("reconcile: bundle has no remotely linked children")

// ---------------------------------------------------------------------------
// Request / Result
// ---------------------------------------------------------------------------

// Outcome is the terminal branch a reconciliation pass took
type Outcome string

const (
	OutcomeCreatedRemote Outcome = "CREATED_REMOTE"
	OutcomeCreatedLocal  Outcome = "CREATED_LOCAL"
	OutcomeUpdated       Outcome = "UPDATED"
	OutcomePulled        Outcome = "PULLED"
	OutcomeSkipped       Outcome = "SKIPPED"
)

// Request names the starting identity of one reconciliation. Exactly one of
// ItemCode and RemoteRecordID must be set; ServerID selects the target
// server when starting from the local side.
type Request struct {
	// ItemCode starts the pass from a local item
	ItemCode string
	// RemoteRecordID starts the pass from a combined "<scope>:<id>" identity
	RemoteRecordID string
	// ServerID is the target server for a local-start pass
	ServerID uuid.UUID
}

// Result summarizes one finished reconciliation pass
type Result struct {
	// ItemCode is the local identity the pass settled on, if any
	ItemCode string
	// RecordID is the combined remote identity after the pass, if bound
	RecordID string
	// Outcome is the terminal branch taken
	Outcome Outcome
	// Dirty reports whether any remote or local write was issued
	Dirty bool
	// SkippedGroups counts field groups that failed and were skipped;
	// nonzero holds back the sync marker so the next pass re-pushes
	SkippedGroups int
	// Marker is the recorded sync marker, empty when not advanced
	Marker string
}

// ---------------------------------------------------------------------------
// Reconciler
// ---------------------------------------------------------------------------

// Options bundles the collaborator set of a Reconciler
type Options struct {
	Items        catalog.ItemRepository
	Bundles      catalog.BundleRepository
	Sales        catalog.SalesHistoryRepository
	Translations catalog.TranslationRepository
	Servers      sync.ServerRepository
	Links        sync.LinkRepository
	Gateway      sync.StorefrontGateway
	Policy       sync.Policy
	BranchNamer  BranchNamer
	Logger       *zap.Logger
}

// Reconciler drives the per-item reconciliation state machine: resolve the
// counterpart identity, decide create/update/skip, run the derived
// attribute builders and the field mapper, push through the gateway, and
// advance the sync marker.
type Reconciler struct {
	items        catalog.ItemRepository
	bundles      catalog.BundleRepository
	translations catalog.TranslationRepository
	servers      sync.ServerRepository
	links        sync.LinkRepository
	gateway      sync.StorefrontGateway
	policy       sync.Policy

	compat    *CompatibilityBuilder
	stock     *StockAggregator
	recommend *RecommendationBuilder
	mapper    FieldMapper

	logger *zap.Logger
	now    func() time.Time
}

// NewReconciler creates a Reconciler from its collaborators. A zero Policy
// falls back to the deployed one-directional default.
func NewReconciler(opts Options) *Reconciler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Policy == (sync.Policy{}) {
		opts.Policy = sync.DefaultPolicy()
	}
	return &Reconciler{
		items:        opts.Items,
		bundles:      opts.Bundles,
		translations: opts.Translations,
		servers:      opts.Servers,
		links:        opts.Links,
		gateway:      opts.Gateway,
		policy:       opts.Policy,
		compat:       NewCompatibilityBuilder(opts.Items, opts.Bundles, opts.Translations, opts.Logger),
		stock:        NewStockAggregator(opts.BranchNamer),
		recommend:    NewRecommendationBuilder(opts.Sales, opts.Links),
		logger:       opts.Logger,
		now:          time.Now,
	}
}

// Reconcile runs one pass for the identity named by the request
func (r *Reconciler) Reconcile(ctx context.Context, req Request) (*Result, error) {
	if (req.ItemCode == "") == (req.RemoteRecordID == "") {
		return nil, sync.ErrInvalidInput
	}
	if req.RemoteRecordID != "" {
		return r.reconcileFromRemote(ctx, req.RemoteRecordID)
	}
	return r.reconcileFromLocal(ctx, req.ItemCode, req.ServerID)
}

// reconcileFromLocal resolves the remote counterpart of a local item on one
// server and takes the create or update branch.
func (r *Reconciler) reconcileFromLocal(ctx context.Context, itemCode string, serverID uuid.UUID) (*Result, error) {
	server, err := r.servers.Get(ctx, serverID)
	if err != nil {
		return nil, err
	}
	if !server.EnableSync {
		return nil, sync.ErrSyncDisabled
	}

	item, err := r.items.Get(ctx, itemCode)
	if err != nil {
		return nil, err
	}
	if !item.SyncEligible(r.eligibilityPriceList(server), r.now()) {
		r.logger.Debug("item not eligible for sync, skipping", zap.String("item_code", item.Code))
		return &Result{ItemCode: item.Code, Outcome: OutcomeSkipped}, nil
	}

	link, found, err := r.links.FindByItemAndServer(ctx, item.Code, server.ID)
	if err != nil {
		return nil, err
	}
	if !found {
		link = sync.NewLink(item.Code, server.ID)
	}
	if !link.Enabled {
		return &Result{ItemCode: item.Code, Outcome: OutcomeSkipped}, nil
	}

	if link.Bound() {
		product, foundRemote, err := r.gateway.GetProduct(ctx, server, link.RemoteID)
		if err != nil {
			return nil, err
		}
		if foundRemote {
			return r.update(ctx, server, item, link, product, false)
		}
		r.logger.Warn("linked remote product missing, recreating",
			zap.String("item_code", item.Code),
			zap.String("remote_id", link.RemoteID),
		)
		link.Unbind()
	}
	return r.createRemote(ctx, server, item, link)
}

// reconcileFromRemote resolves the local counterpart of a remote record and
// takes the update or (policy-gated) local-creation branch.
func (r *Reconciler) reconcileFromRemote(ctx context.Context, recordID string) (*Result, error) {
	scope, remoteID, err := sync.ParseRecordID(recordID)
	if err != nil {
		return nil, err
	}
	server, err := r.servers.GetByScope(ctx, scope)
	if err != nil {
		return nil, err
	}
	if !server.EnableSync {
		return nil, sync.ErrSyncDisabled
	}

	link, found, err := r.links.FindByRemote(ctx, server.ID, remoteID)
	if err != nil {
		return nil, err
	}
	if !found {
		if !r.policy.CreateLocalFromRemote {
			r.logger.Debug("unmatched remote product ignored by policy",
				zap.String("record_id", recordID))
			return &Result{RecordID: recordID, Outcome: OutcomeSkipped}, nil
		}
		return r.createLocal(ctx, server, remoteID)
	}

	item, err := r.items.Get(ctx, link.ItemCode)
	if err != nil {
		return nil, err
	}
	product, foundRemote, err := r.gateway.GetProduct(ctx, server, remoteID)
	if err != nil {
		return nil, err
	}
	if !foundRemote {
		link.Unbind()
		return r.createRemote(ctx, server, item, link)
	}
	return r.update(ctx, server, item, link, product, false)
}

// eligibilityPriceList returns the price list that gates eligibility, or ""
// when price sync is off for the server.
func (r *Reconciler) eligibilityPriceList(server *sync.Server) string {
	if !server.EnablePriceListSync {
		return ""
	}
	return server.PriceList
}

// ---------------------------------------------------------------------------
// Create branches
// ---------------------------------------------------------------------------

// createRemote creates the storefront product, binds the link, then runs
// the full update pipeline against the fresh record.
func (r *Reconciler) createRemote(ctx context.Context, server *sync.Server, item *catalog.Item, link *sync.Link) (*Result, error) {
	payload, err := r.createPayload(ctx, server, item)
	if err != nil {
		return nil, err
	}

	product, err := r.gateway.CreateProduct(ctx, server, payload)
	if err != nil {
		return nil, err
	}
	product.Scope = server.Scope

	if err := link.BindRemote(product.ID); err != nil {
		return nil, err
	}
	if err := r.links.Save(ctx, link); err != nil {
		return nil, err
	}

	result, err := r.update(ctx, server, item, link, product, true)
	if err != nil {
		return nil, err
	}
	result.Outcome = OutcomeCreatedRemote
	result.Dirty = true
	return result, nil
}

// createPayload builds the creation payload, special-casing bundles into
// the composite product type.
func (r *Reconciler) createPayload(ctx context.Context, server *sync.Server, item *catalog.Item) (map[string]any, error) {
	if item.IsBundle {
		return r.bundlePayload(ctx, server, item)
	}

	payload := map[string]any{
		"name":   CleanProductName(item.Name),
		"sku":    item.Code,
		"status": "publish",
		"type":   string(sync.ProductTypeSimple),
	}
	if item.HasVariants {
		payload["type"] = string(sync.ProductTypeVariable)
		attrs := make([]any, 0, len(item.VariantAttributes))
		for _, va := range item.VariantAttributes {
			attrs = append(attrs, map[string]any{
				"name":      va.Name,
				"visible":   true,
				"variation": true,
				"options":   va.Options,
			})
		}
		payload["attributes"] = attrs
	}
	if server.EnablePriceListSync {
		if rate, ok := item.PriceOn(server.PriceList, r.now()); ok {
			payload["regular_price"] = rate.String()
		}
	}
	return payload, nil
}

// bundlePayload enumerates the bundle children's remote identities into the
// composite product payload. Children without a remote product are skipped;
// a bundle with none at all cannot be created.
func (r *Reconciler) bundlePayload(ctx context.Context, server *sync.Server, item *catalog.Item) (map[string]any, error) {
	def, err := r.bundles.GetByParent(ctx, item.Code)
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(def.Children))
	for _, child := range def.Children {
		codes = append(codes, child.ItemCode)
	}
	bound, err := r.links.FindBoundByItems(ctx, server.ID, codes)
	if err != nil {
		return nil, err
	}

	members := make(map[string]any, len(def.Children))
	idx := 0
	for _, child := range def.Children {
		childLink, ok := bound[child.ItemCode]
		if !ok {
			r.logger.Warn("bundle child has no remote product, skipping",
				zap.String("bundle", item.Code),
				zap.String("child", child.ItemCode),
			)
			continue
		}
		members[fmt.Sprintf("k%d", idx)] = map[string]any{
			"id":  childLink.RemoteID,
			"sku": child.ItemCode,
			"qty": child.Qty,
			"min": "",
			"max": "",
		}
		idx++
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrBundleChildrenUnlinked, item.Code)
	}

	name := def.Description
	if name == "" {
		name = CleanProductName(item.Name)
	}
	return map[string]any{
		"name":   name,
		"sku":    item.Code,
		"status": "publish",
		"type":   string(sync.ProductTypeBundle),
		"meta_data": []any{
			map[string]any{"key": "woosb_ids", "value": members},
			map[string]any{"key": "adv_badge", "value": "combo"},
		},
	}, nil
}

// createLocal materializes a minimal local item from an unmatched remote
// product. Reachable only with Policy.CreateLocalFromRemote, which is off
// in the deployed configuration.
func (r *Reconciler) createLocal(ctx context.Context, server *sync.Server, remoteID string) (*Result, error) {
	product, found, err := r.gateway.GetProduct(ctx, server, remoteID)
	if err != nil {
		return nil, err
	}
	if !found {
		return &Result{RecordID: sync.FormatRecordID(server.Scope, remoteID), Outcome: OutcomeSkipped}, nil
	}
	product.Scope = server.Scope

	code := product.SKU
	if code == "" {
		code = product.RecordID()
	}
	item := &catalog.Item{
		Code:     code,
		Name:     product.Name,
		Modified: r.now(),
	}
	for _, img := range product.Images {
		item.ImageURLs = append(item.ImageURLs, img.Src)
	}
	if err := r.items.Save(ctx, item); err != nil {
		return nil, err
	}

	link := sync.NewLink(item.Code, server.ID)
	if err := link.BindRemote(product.ID); err != nil {
		return nil, err
	}
	if err := r.links.Save(ctx, link); err != nil {
		return nil, err
	}

	marker := markerOf(product)
	if marker != "" {
		if err := r.links.RecordMarker(ctx, link.ID, marker); err != nil {
			return nil, err
		}
	}
	return &Result{
		ItemCode: item.Code,
		RecordID: product.RecordID(),
		Outcome:  OutcomeCreatedLocal,
		Dirty:    true,
		Marker:   marker,
	}, nil
}

// ---------------------------------------------------------------------------
// Update branch
// ---------------------------------------------------------------------------

// update pushes the local item onto an existing remote product, one field
// group at a time. A group's failure is logged and skipped without aborting
// the remaining groups; any skipped group holds back the marker so the next
// pass retries everything. Under the timestamp-wins policy a strictly newer
// remote record is pulled onto the local item instead.
func (r *Reconciler) update(ctx context.Context, server *sync.Server, item *catalog.Item, link *sync.Link, product *sync.RemoteProduct, isNew bool) (*Result, error) {
	product.Scope = server.Scope

	if r.policy.Direction == sync.DirectionTimestampWins && r.remoteNewer(item, link, product) {
		return r.pullRemote(ctx, server, item, link, product)
	}

	result := &Result{
		ItemCode: item.Code,
		RecordID: product.RecordID(),
		Outcome:  OutcomeUpdated,
	}
	log := r.logger.With(
		zap.String("item_code", item.Code),
		zap.String("record_id", result.RecordID),
	)

	displayName, err := r.displayName(ctx, item)
	if err != nil {
		return nil, err
	}

	// Core group: name, sku and the configured field map. Mapping faults
	// against an established record are fatal, not isolated.
	tree, err := product.Tree()
	if err != nil {
		return nil, err
	}
	changedKeys, _, err := r.mapper.Apply(item, server.FieldMap, tree, isNew)
	if err != nil {
		return nil, err
	}
	core := make(map[string]any, len(changedKeys)+2)
	for _, key := range changedKeys {
		core[key] = tree[key]
	}
	// The derived display name owns "name", overriding any raw mapping
	if product.Name != displayName {
		core["name"] = displayName
	} else {
		delete(core, "name")
	}
	if product.SKU != item.Code {
		core["sku"] = item.Code
	}
	if len(core) > 0 {
		product = r.pushGroup(ctx, log, server, link, "core", core, product, result)
	}

	// Compatibility metadata and the derived description
	entries, err := r.compat.Build(ctx, item)
	if err != nil {
		log.Warn("compatibility builder failed, block skipped", zap.Error(err))
		result.SkippedGroups++
		entries = nil
	} else {
		if len(entries) > 0 {
			if meta := CompatibilityMeta(entries); !metaUpToDate(product, meta) {
				product = r.pushGroup(ctx, log, server, link, "compatibility", metaFields(meta), product, result)
			}
			if desc := Description(displayName, entries); product.Description != desc {
				product = r.pushGroup(ctx, log, server, link, "description",
					map[string]any{"description": desc}, product, result)
			}
		}
		spare := []sync.MetaEntry{{Key: "mark_spare_part", Value: sparePartFlag(entries)}}
		if !metaUpToDate(product, spare) {
			product = r.pushGroup(ctx, log, server, link, "spare_part", metaFields(spare), product, result)
		}
	}

	// Stock: status, tracked quantity and per-branch metadata
	summary := r.stock.Build(item)
	if r.stockStale(product, summary) {
		fields := metaFields(summary.MetaEntries())
		fields["manage_stock"] = true
		fields["stock_quantity"] = summary.TotalQty
		fields["stock_status"] = summary.Status
		fields["backorders"] = summary.Backorders
		product = r.pushGroup(ctx, log, server, link, "stock", fields, product, result)
	}

	// Price from the configured list, gated per server
	if server.EnablePriceListSync {
		if rate, ok := item.PriceOn(server.PriceList, r.now()); ok {
			if want := rate.String(); product.RegularPrice != want {
				product = r.pushGroup(ctx, log, server, link, "price",
					map[string]any{"regular_price": want}, product, result)
			}
		}
	}

	// Images, gated per server
	if server.EnableImageSync && len(item.ImageURLs) > 0 && imagesStale(product, item.ImageURLs) {
		rows := make([]any, 0, len(item.ImageURLs))
		for _, src := range item.ImageURLs {
			rows = append(rows, map[string]any{"src": src})
		}
		product = r.pushGroup(ctx, log, server, link, "images",
			map[string]any{"images": rows}, product, result)
	}

	// Shipping class
	if item.ShippingClass != "" && product.ShippingClass != item.ShippingClass {
		product = r.pushGroup(ctx, log, server, link, "shipping_class",
			map[string]any{"shipping_class": item.ShippingClass}, product, result)
	}

	// Translated attribute rows (non-variant attributes)
	if rows := r.attributeRows(ctx, item); len(rows) > 0 && attributesStale(product, rows) {
		payload := make([]any, 0, len(rows))
		for _, row := range rows {
			payload = append(payload, map[string]any{
				"name":    row.Name,
				"visible": row.Visible,
				"options": row.Options,
			})
		}
		product = r.pushGroup(ctx, log, server, link, "attributes",
			map[string]any{"attributes": payload}, product, result)
	}

	// Categories through the per-pass get-or-create resolver
	if ids, err := r.resolveCategories(ctx, server, item); err != nil {
		log.Warn("category resolution failed, block skipped", zap.Error(err))
		result.SkippedGroups++
	} else if len(ids) > 0 && categoriesStale(product, ids) {
		refs := make([]any, 0, len(ids))
		for _, id := range ids {
			refs = append(refs, map[string]any{"id": id})
		}
		product = r.pushGroup(ctx, log, server, link, "categories",
			map[string]any{"categories": refs}, product, result)
	}

	// Offer categories are resolved only, never created
	if ids, err := r.resolveOfferCategories(ctx, server, item, log); err != nil {
		log.Warn("offer category resolution failed, block skipped", zap.Error(err))
		result.SkippedGroups++
	} else if len(ids) > 0 {
		offers := []sync.MetaEntry{{Key: "offer_categories", Value: ids}}
		if !metaUpToDate(product, offers) {
			product = r.pushGroup(ctx, log, server, link, "offer_categories", metaFields(offers), product, result)
		}
	}

	// Bought-together recommendations
	if ids, err := r.recommend.Build(ctx, server.ID, item.Code); err != nil {
		log.Warn("recommendation builder failed, block skipped", zap.Error(err))
		result.SkippedGroups++
	} else if len(ids) > 0 {
		together := []sync.MetaEntry{{Key: "bought_together", Value: ids}}
		if !metaUpToDate(product, together) {
			product = r.pushGroup(ctx, log, server, link, "bought_together", metaFields(together), product, result)
		}
	}

	if result.SkippedGroups == 0 {
		marker := markerOf(product)
		if marker != "" && marker != link.LastSyncMarker {
			if err := r.links.RecordMarker(ctx, link.ID, marker); err != nil {
				return nil, err
			}
			link.LastSyncMarker = marker
		}
		result.Marker = link.LastSyncMarker
	}
	return result, nil
}

// pushGroup pushes one field group and returns the refreshed product. On
// failure the current product is kept, the group is counted as skipped and
// the pass continues.
func (r *Reconciler) pushGroup(
	ctx context.Context,
	log *zap.Logger,
	server *sync.Server,
	link *sync.Link,
	group string,
	fields map[string]any,
	current *sync.RemoteProduct,
	result *Result,
) *sync.RemoteProduct {
	updated, err := r.gateway.UpdateProduct(ctx, server, link.RemoteID, fields)
	if err != nil {
		log.Warn("field group push failed", zap.String("group", group), zap.Error(err))
		result.SkippedGroups++
		return current
	}
	result.Dirty = true
	updated.Scope = server.Scope
	return updated
}

// pullRemote applies the remote record onto the local item. Reachable only
// under the timestamp-wins direction; the deployed policy never takes it.
func (r *Reconciler) pullRemote(ctx context.Context, server *sync.Server, item *catalog.Item, link *sync.Link, product *sync.RemoteProduct) (*Result, error) {
	changed := false
	if product.Name != "" && product.Name != item.Name {
		item.Name = product.Name
		changed = true
	}

	tree, err := product.Tree()
	if err != nil {
		return nil, err
	}
	for _, m := range server.FieldMap {
		path, err := pathmap.Parse(m.RemotePath)
		if err != nil {
			return nil, err
		}
		matches := path.Find(tree)
		if len(matches) == 0 {
			continue
		}
		current, err := localFieldValue(item, m.LocalField)
		if err != nil {
			return nil, err
		}
		if valuesEqual(current, matches[0].Value) {
			continue
		}
		if localFieldAssign(item, m.LocalField, matches[0].Value) {
			changed = true
		}
	}

	if changed {
		item.Modified = r.now()
		if err := r.items.Save(ctx, item); err != nil {
			return nil, err
		}
	}

	marker := markerOf(product)
	if marker != "" && marker != link.LastSyncMarker {
		if err := r.links.RecordMarker(ctx, link.ID, marker); err != nil {
			return nil, err
		}
		link.LastSyncMarker = marker
	}
	return &Result{
		ItemCode: item.Code,
		RecordID: product.RecordID(),
		Outcome:  OutcomePulled,
		Dirty:    changed,
		Marker:   link.LastSyncMarker,
	}, nil
}

// remoteNewer reports whether the remote record changed since the last
// recorded marker and is newer than the local item.
func (r *Reconciler) remoteNewer(item *catalog.Item, link *sync.Link, product *sync.RemoteProduct) bool {
	marker := markerOf(product)
	if marker == "" || marker == link.LastSyncMarker {
		return false
	}
	return product.DateModified.After(item.Modified)
}

// ---------------------------------------------------------------------------
// Update helpers
// ---------------------------------------------------------------------------

// displayName is the storefront name: the cleaned item name, overridden by
// the bundle description when one exists.
func (r *Reconciler) displayName(ctx context.Context, item *catalog.Item) (string, error) {
	if item.IsBundle {
		def, err := r.bundles.GetByParent(ctx, item.Code)
		if err == nil && def.Description != "" {
			return def.Description, nil
		}
		if err != nil && !errors.Is(err, catalog.ErrBundleNotFound) {
			return "", err
		}
	}
	return CleanProductName(item.Name), nil
}

// attributeRow is one translated attribute ready for push
type attributeRow struct {
	Name    string
	Visible bool
	Options []string
}

// attributeRows translates the item's attribute names and splits the raw
// comma-separated values.
func (r *Reconciler) attributeRows(ctx context.Context, item *catalog.Item) []attributeRow {
	rows := make([]attributeRow, 0, len(item.Attributes))
	for _, attr := range item.Attributes {
		options := splitOptions(attr.Values)
		if len(options) == 0 {
			continue
		}
		rows = append(rows, attributeRow{
			Name:    translateText(ctx, r.translations, r.logger, attr.Name),
			Visible: attr.Visible,
			Options: options,
		})
	}
	return rows
}

// resolveCategories maps the item's main and sub category to deduplicated
// storefront IDs via one per-pass resolver.
func (r *Reconciler) resolveCategories(ctx context.Context, server *sync.Server, item *catalog.Item) ([]int64, error) {
	if item.Category == "" {
		return nil, nil
	}
	resolver := NewCategoryResolver(r.gateway, server)

	var ids []int64
	mainID, err := resolver.Resolve(ctx, item.Category, 0)
	if err != nil {
		return nil, err
	}
	ids = append(ids, mainID)

	if item.SubCategory != "" {
		subID, err := resolver.Resolve(ctx, item.SubCategory, mainID)
		if err != nil {
			return nil, err
		}
		ids = append(ids, subID)
	}
	return dedupeIDs(ids), nil
}

// resolveOfferCategories matches the item's promotional category names
// against existing storefront terms. Unmatched names are logged and
// dropped; manual creation is expected.
func (r *Reconciler) resolveOfferCategories(ctx context.Context, server *sync.Server, item *catalog.Item, log *zap.Logger) ([]int64, error) {
	var ids []int64
	for _, name := range item.OfferCategories {
		terms, err := r.gateway.ListOfferCategories(ctx, server, name)
		if err != nil {
			return nil, err
		}
		matched := false
		slug := Slugify(name)
		for _, term := range terms {
			if strings.EqualFold(term.Name, name) || term.Slug == slug {
				ids = append(ids, term.ID)
				matched = true
				break
			}
		}
		if !matched {
			log.Debug("offer category not found on storefront", zap.String("name", name))
		}
	}
	return dedupeIDs(ids), nil
}

// ---------------------------------------------------------------------------
// Staleness checks
// ---------------------------------------------------------------------------

// stockStale compares the aggregated summary with the remote stock fields
// and branch metadata.
func (r *Reconciler) stockStale(product *sync.RemoteProduct, summary StockSummary) bool {
	if !product.ManageStock ||
		product.StockQuantity != summary.TotalQty ||
		product.StockStatus != summary.Status ||
		product.Backorders != summary.Backorders {
		return true
	}
	return !metaUpToDate(product, summary.MetaEntries())
}

// imagesStale reports whether the remote image list differs from the local
// URLs in content or order.
func imagesStale(product *sync.RemoteProduct, urls []string) bool {
	if len(product.Images) != len(urls) {
		return true
	}
	for i, img := range product.Images {
		if img.Src != urls[i] {
			return true
		}
	}
	return false
}

// attributesStale reports whether any pushed attribute row differs from the
// remote attributes by name, visibility or options.
func attributesStale(product *sync.RemoteProduct, rows []attributeRow) bool {
	remote := make(map[string]sync.RemoteAttribute, len(product.Attributes))
	for _, a := range product.Attributes {
		remote[a.Name] = a
	}
	for _, row := range rows {
		current, ok := remote[row.Name]
		if !ok || current.Visible != row.Visible || len(current.Options) != len(row.Options) {
			return true
		}
		for i, opt := range row.Options {
			if current.Options[i] != opt {
				return true
			}
		}
	}
	return false
}

// categoriesStale reports whether the remote category assignment differs
// from the resolved ID set.
func categoriesStale(product *sync.RemoteProduct, ids []int64) bool {
	if len(product.Categories) != len(ids) {
		return true
	}
	assigned := make(map[int64]struct{}, len(product.Categories))
	for _, ref := range product.Categories {
		assigned[ref.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := assigned[id]; !ok {
			return true
		}
	}
	return false
}

// metaUpToDate reports whether every entry is already present on the remote
// product with an equal value.
func metaUpToDate(product *sync.RemoteProduct, entries []sync.MetaEntry) bool {
	current := make(map[string]string, len(product.MetaData))
	for _, m := range product.MetaData {
		current[m.Key] = fmt.Sprintf("%v", m.Value)
	}
	for _, e := range entries {
		v, ok := current[e.Key]
		if !ok || v != fmt.Sprintf("%v", e.Value) {
			return false
		}
	}
	return true
}

// metaFields wraps metadata entries into a sparse update payload
func metaFields(entries []sync.MetaEntry) map[string]any {
	rows := make([]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, map[string]any{"key": e.Key, "value": e.Value})
	}
	return map[string]any{"meta_data": rows}
}

// sparePartFlag marks items carrying compatibility metadata as spare parts
func sparePartFlag(entries []CompatibilityEntry) string {
	if len(entries) > 0 {
		return "1"
	}
	return "0"
}

// markerOf renders the remote last-modified timestamp as the opaque sync
// marker; empty when the storefront supplied none.
func markerOf(product *sync.RemoteProduct) string {
	if product.DateModified.IsZero() {
		return ""
	}
	return product.DateModified.UTC().Format(time.RFC3339)
}
