package reconcile

import (
	"fmt"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/sync"
)

// Storefront stock status values
const (
	StockStatusInStock     = "instock"
	StockStatusOnBackorder = "onbackorder"

	// backordersNotify asks the storefront to accept backorders and notify
	// the customer; pushed alongside the stock status.
	backordersNotify = "notify"
)

// BranchStock is the positive quantity of one warehouse bucketed by branch
type BranchStock struct {
	Branch string
	Qty    int64
}

// StockSummary is the aggregated stock view of one item
type StockSummary struct {
	// Branches holds the positive-quantity branches in bin order
	Branches []BranchStock
	// TotalQty is the summed quantity over all bins, including zero bins
	TotalQty int64
	// Status is "instock" when any stock exists, "onbackorder" otherwise
	Status string
	// Backorders is the backorder policy pushed with the status
	Backorders string
}

// StockAggregator buckets per-warehouse bin quantities into storefront
// branch metadata.
type StockAggregator struct {
	namer BranchNamer
}

// NewStockAggregator creates a StockAggregator with the given branch
// transform; nil falls back to the deployed default.
func NewStockAggregator(namer BranchNamer) *StockAggregator {
	if namer == nil {
		namer = DefaultBranchNamer()
	}
	return &StockAggregator{namer: namer}
}

// Build aggregates the item's stock bins. Zero-quantity bins contribute to
// the total (trivially) but produce no branch entry.
func (a *StockAggregator) Build(item *catalog.Item) StockSummary {
	summary := StockSummary{Backorders: backordersNotify}
	for _, bin := range item.StockBins {
		qty := bin.ActualQty.IntPart()
		summary.TotalQty += qty
		if qty <= 0 {
			continue
		}
		summary.Branches = append(summary.Branches, BranchStock{
			Branch: a.namer(bin.Warehouse),
			Qty:    qty,
		})
	}
	if summary.TotalQty > 0 {
		summary.Status = StockStatusInStock
	} else {
		summary.Status = StockStatusOnBackorder
	}
	return summary
}

// MetaEntries renders the branch rows as index-keyed metadata plus the row
// count. Indices follow bin order; a reordered source overwrites previous
// indices rather than appending.
func (s StockSummary) MetaEntries() []sync.MetaEntry {
	entries := make([]sync.MetaEntry, 0, len(s.Branches)*2+1)
	for i, b := range s.Branches {
		entries = append(entries,
			sync.MetaEntry{Key: fmt.Sprintf("branch_stock_%d_branch", i), Value: b.Branch},
			sync.MetaEntry{Key: fmt.Sprintf("branch_stock_%d_stock_qty", i), Value: b.Qty},
		)
	}
	entries = append(entries, sync.MetaEntry{Key: "branch_stock", Value: int64(len(s.Branches))})
	return entries
}
