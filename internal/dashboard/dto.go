package dashboard

import (
	"time"

	"github.com/angelmondragon/sellerpulse-backend/internal/analytics"
)

// KPI is one headline figure with its prior-window comparison.
type KPI struct {
	Value     float64 `json:"value"`
	Previous  float64 `json:"previous"`
	Change    float64 `json:"change"`
	Trend     string  `json:"trend"`
	Formatted string  `json:"formatted,omitempty"`
}

// KPISet holds the four headline figures.
type KPISet struct {
	Revenue       KPI `json:"revenue"`
	Orders        KPI `json:"orders"`
	UnitsSold     KPI `json:"unitsSold"`
	AvgOrderValue KPI `json:"avgOrderValue"`
}

// ChartPoint is one bucket of the revenue trend series.
type ChartPoint struct {
	Bucket  string  `json:"bucket"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

// StatusCount is one slice of the order status distribution.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// ProductInfo is the catalog metadata attached to a recent order.
type ProductInfo struct {
	ASIN     string `json:"asin"`
	Title    string `json:"title,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// RecentOrder is one row of the recent orders table.
type RecentOrder struct {
	OrderID        string       `json:"orderId"`
	PurchaseDate   string       `json:"purchaseDate"`
	Status         string       `json:"status"`
	Total          float64      `json:"total"`
	FormattedTotal string       `json:"formattedTotal"`
	ItemCount      int          `json:"itemCount"`
	Product        *ProductInfo `json:"product,omitempty"`
}

// InventorySnapshot is the stock widget on the dashboard.
type InventorySnapshot struct {
	TotalSKUs  int `json:"totalSkus"`
	InStock    int `json:"inStock"`
	LowStock   int `json:"lowStock"`
	OutOfStock int `json:"outOfStock"`
}

// Result is the cached dashboard payload for one period.
type Result struct {
	Period       string                 `json:"period"`
	Granularity  analytics.Granularity  `json:"granularity"`
	Window       analytics.PeriodWindow `json:"window"`
	Metrics      analytics.Metrics      `json:"metrics"`
	KPIs         KPISet                 `json:"kpis"`
	RevenueChart []ChartPoint           `json:"revenueChart"`
	OrderStatus  []StatusCount          `json:"orderStatus"`
	RecentOrders []RecentOrder          `json:"recentOrders"`
	Inventory    InventorySnapshot      `json:"inventory"`
	FetchedAt    time.Time              `json:"fetchedAt"`
}
