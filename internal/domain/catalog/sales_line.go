package catalog

import (
	"context"
	"time"
)

// SalesLine is a single invoice line referencing an item. The recommendation
// builder only needs the invoice grouping and the item code, so the shape is
// deliberately minimal.
type SalesLine struct {
	// InvoiceID groups lines belonging to the same sales transaction
	InvoiceID string
	// ItemCode is the sold item's code
	ItemCode string
	// Modified orders lines by recency
	Modified time.Time
}

// SalesHistoryRepository exposes the sales transaction history needed for
// co-occurrence ranking.
type SalesHistoryRepository interface {
	// RecentInvoicesForItem returns the distinct invoice IDs of the most
	// recent transactions containing the given item, newest first, capped
	// at limit.
	RecentInvoicesForItem(ctx context.Context, itemCode string, limit int) ([]string, error)

	// LinesForInvoices returns all lines on the given invoices excluding
	// the given item code, in stored order.
	LinesForInvoices(ctx context.Context, invoiceIDs []string, excludeItemCode string) ([]SalesLine, error)
}
