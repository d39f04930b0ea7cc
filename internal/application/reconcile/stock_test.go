package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storesync/backend/internal/domain/catalog"
)

func TestStockAggregator_ExcludesZeroBins(t *testing.T) {
	item := &catalog.Item{
		Code: "ITEM-001",
		StockBins: []catalog.StockBin{
			{Warehouse: "Main Warehouse - ame", ActualQty: decimal.NewFromInt(5)},
			{Warehouse: "Branch B - ame", ActualQty: decimal.Zero},
		},
	}

	summary := NewStockAggregator(nil).Build(item)

	require.Len(t, summary.Branches, 1)
	assert.Equal(t, BranchStock{Branch: "main-branch", Qty: 5}, summary.Branches[0])
	assert.Equal(t, int64(5), summary.TotalQty)
	assert.Equal(t, StockStatusInStock, summary.Status)
}

func TestStockAggregator_NoStockIsBackorder(t *testing.T) {
	item := &catalog.Item{
		Code: "ITEM-002",
		StockBins: []catalog.StockBin{
			{Warehouse: "Main Warehouse - ame", ActualQty: decimal.Zero},
		},
	}

	summary := NewStockAggregator(nil).Build(item)

	assert.Empty(t, summary.Branches)
	assert.Equal(t, StockStatusOnBackorder, summary.Status)
	assert.Equal(t, "notify", summary.Backorders)
}

func TestStockSummary_MetaEntries(t *testing.T) {
	summary := StockSummary{
		Branches: []BranchStock{
			{Branch: "main-branch", Qty: 5},
			{Branch: "east-branch", Qty: 2},
		},
	}

	entries := summary.MetaEntries()

	require.Len(t, entries, 5)
	assert.Equal(t, "branch_stock_0_branch", entries[0].Key)
	assert.Equal(t, "main-branch", entries[0].Value)
	assert.Equal(t, "branch_stock_1_stock_qty", entries[3].Key)
	assert.Equal(t, int64(2), entries[3].Value)
	assert.Equal(t, "branch_stock", entries[4].Key)
	assert.Equal(t, int64(2), entries[4].Value)
}
