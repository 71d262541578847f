package spapi

import (
	"context"
	"time"
)

// Gateway is the marketplace surface the domain services consume. The
// concrete Client satisfies it; tests substitute stubs.
type Gateway interface {
	MarketplaceID() string
	ListOrders(ctx context.Context, input ListOrdersInput, pageDelay time.Duration) ([]Order, error)
	ListOrderItems(ctx context.Context, orderID string) ([]OrderItem, error)
	GetCatalogItem(ctx context.Context, asin string) (*CatalogInfo, error)
	ListInventorySummaries(ctx context.Context, pageDelay time.Duration) ([]InventorySummary, error)
	FetchListingsReport(ctx context.Context, opts ReportOptions) ([]ListingRow, error)
}

var _ Gateway = (*Client)(nil)
