package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/sync"
)

// compatMetaPrefix keys the index-keyed compatibility metadata rows
const compatMetaPrefix = "add_compactable_details"

// CompatibilityEntry is one resolved vehicle compatibility row, translated
// and with the year specification expanded, ready for projection.
type CompatibilityEntry struct {
	Brand      string
	Model      string
	Years      string
	Fuel       string
	EngineSize string
}

// CompatibilityBuilder resolves an item's compatibility rows, inheriting
// from bundle children when the bundle itself has none.
type CompatibilityBuilder struct {
	items        catalog.ItemRepository
	bundles      catalog.BundleRepository
	translations catalog.TranslationRepository
	logger       *zap.Logger
}

// NewCompatibilityBuilder creates a CompatibilityBuilder
func NewCompatibilityBuilder(
	items catalog.ItemRepository,
	bundles catalog.BundleRepository,
	translations catalog.TranslationRepository,
	logger *zap.Logger,
) *CompatibilityBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompatibilityBuilder{
		items:        items,
		bundles:      bundles,
		translations: translations,
		logger:       logger,
	}
}

// Build returns the item's compatibility entries in source-row order. A
// bundle item without rows of its own gets the union of its children's
// rows, in child order; a bundle with its own rows uses only those.
func (b *CompatibilityBuilder) Build(ctx context.Context, item *catalog.Item) ([]CompatibilityEntry, error) {
	rows := item.Compatibility
	if item.IsBundle && len(rows) == 0 {
		inherited, err := b.inheritedRows(ctx, item.Code)
		if err != nil {
			return nil, err
		}
		rows = inherited
	}

	entries := make([]CompatibilityEntry, 0, len(rows))
	for _, row := range rows {
		years, skipped := ExpandYears(row.Years)
		if len(skipped) > 0 {
			b.logger.Warn("unparsable year tokens skipped",
				zap.String("item_code", item.Code),
				zap.Strings("tokens", skipped),
			)
		}
		entries = append(entries, CompatibilityEntry{
			Brand:      translateText(ctx, b.translations, b.logger, row.Brand),
			Model:      translateText(ctx, b.translations, b.logger, row.Model),
			Years:      strings.Join(years, ", "),
			Fuel:       row.Fuel,
			EngineSize: row.EngineSize,
		})
	}
	return entries, nil
}

// inheritedRows collects the union of the bundle children's compatibility
// rows, in child definition order.
func (b *CompatibilityBuilder) inheritedRows(ctx context.Context, parentCode string) ([]catalog.CompatibilityRow, error) {
	def, err := b.bundles.GetByParent(ctx, parentCode)
	if errors.Is(err, catalog.ErrBundleNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rows []catalog.CompatibilityRow
	for _, child := range def.Children {
		childItem, err := b.items.Get(ctx, child.ItemCode)
		if errors.Is(err, catalog.ErrItemNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, childItem.Compatibility...)
	}
	return rows, nil
}

// CompatibilityMeta flattens the entries into index-keyed metadata rows
// plus the row count. An empty entry list produces no metadata at all.
func CompatibilityMeta(entries []CompatibilityEntry) []sync.MetaEntry {
	if len(entries) == 0 {
		return nil
	}
	meta := make([]sync.MetaEntry, 0, len(entries)*5+1)
	for i, e := range entries {
		meta = append(meta,
			sync.MetaEntry{Key: fmt.Sprintf("%s_%d_brand", compatMetaPrefix, i), Value: e.Brand},
			sync.MetaEntry{Key: fmt.Sprintf("%s_%d_model", compatMetaPrefix, i), Value: e.Model},
			sync.MetaEntry{Key: fmt.Sprintf("%s_%d_years", compatMetaPrefix, i), Value: e.Years},
			sync.MetaEntry{Key: fmt.Sprintf("%s_%d_variant", compatMetaPrefix, i), Value: e.Fuel},
			sync.MetaEntry{Key: fmt.Sprintf("%s_%d_engine_size", compatMetaPrefix, i), Value: e.EngineSize},
		)
	}
	meta = append(meta, sync.MetaEntry{Key: compatMetaPrefix, Value: int64(len(entries))})
	return meta
}

// Description composes the long product description from the display name
// and the resolved compatibility entries.
func Description(name string, entries []CompatibilityEntry) string {
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, name)
	for _, e := range entries {
		line := fmt.Sprintf("Brand - %s... Model - %s", e.Brand, e.Model)
		if e.Years != "" {
			line += "... - " + e.Years
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// translateText resolves free text through the translation table, falling
// back to the source text when no row exists or the lookup fails.
func translateText(ctx context.Context, repo catalog.TranslationRepository, logger *zap.Logger, text string) string {
	if text == "" || repo == nil {
		return text
	}
	translated, ok, err := repo.Lookup(ctx, text)
	if err != nil {
		logger.Warn("translation lookup failed", zap.String("source", text), zap.Error(err))
		return text
	}
	if !ok {
		return text
	}
	return translated
}
