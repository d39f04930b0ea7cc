package reconcile

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/sync"
)

const (
	// recentInvoiceWindow caps how many recent transactions feed the
	// co-occurrence ranking
	recentInvoiceWindow = 1000
	// recommendationCount is the number of "bought together" products pushed
	recommendationCount = 3
)

// RecommendationBuilder ranks products bought together with an item by
// co-occurrence on recent sales transactions.
type RecommendationBuilder struct {
	sales catalog.SalesHistoryRepository
	links sync.LinkRepository
}

// NewRecommendationBuilder creates a RecommendationBuilder
func NewRecommendationBuilder(sales catalog.SalesHistoryRepository, links sync.LinkRepository) *RecommendationBuilder {
	return &RecommendationBuilder{sales: sales, links: links}
}

// Build returns up to three remote product IDs of the items most frequently
// co-occurring with itemCode, ties broken by first-encountered order. Items
// without a bound link on the server are dropped from the ranking. With no
// usable history it falls back to random bound links so the field is never
// left empty while any linked item exists.
func (b *RecommendationBuilder) Build(ctx context.Context, serverID uuid.UUID, itemCode string) ([]string, error) {
	ranked, err := b.rankedCodes(ctx, itemCode)
	if err != nil {
		return nil, err
	}

	if len(ranked) > 0 {
		bound, err := b.links.FindBoundByItems(ctx, serverID, ranked)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, recommendationCount)
		for _, code := range ranked {
			link, ok := bound[code]
			if !ok {
				continue
			}
			ids = append(ids, link.RemoteID)
			if len(ids) == recommendationCount {
				break
			}
		}
		if len(ids) > 0 {
			return ids, nil
		}
	}

	return b.randomFallback(ctx, serverID, itemCode)
}

// rankedCodes returns co-occurring item codes ordered by descending
// frequency, ties by first encounter in stored line order.
func (b *RecommendationBuilder) rankedCodes(ctx context.Context, itemCode string) ([]string, error) {
	invoices, err := b.sales.RecentInvoicesForItem(ctx, itemCode, recentInvoiceWindow)
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, nil
	}

	lines, err := b.sales.LinesForInvoices(ctx, invoices, itemCode)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(lines))
	var order []string
	for _, line := range lines {
		if counts[line.ItemCode] == 0 {
			order = append(order, line.ItemCode)
		}
		counts[line.ItemCode]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	return order, nil
}

// randomFallback samples bound links from the whole catalog, excluding the
// item itself (cold-start policy).
func (b *RecommendationBuilder) randomFallback(ctx context.Context, serverID uuid.UUID, itemCode string) ([]string, error) {
	sample, err := b.links.ListBound(ctx, serverID, recommendationCount+1)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, recommendationCount)
	for _, link := range sample {
		if link.ItemCode == itemCode {
			continue
		}
		ids = append(ids, link.RemoteID)
		if len(ids) == recommendationCount {
			break
		}
	}
	return ids, nil
}
