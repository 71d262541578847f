package inventory

import "time"

// Stock status labels for the inventory view.
const (
	StockIn  = "in-stock"
	StockLow = "low-stock"
	StockOut = "out-of-stock"
)

// Fulfillment channels after merging the two sources.
const (
	ChannelFBA      = "FBA"
	ChannelMerchant = "Merchant"
)

// Fulfillment filters accepted by the listing.
const (
	FilterAll      = "all"
	FilterFBA      = "fba"
	FilterMerchant = "merchant"
)

// Item is one SKU's merged stock view: the listings report supplies the
// catalog side (name, price, listed quantity) and the fulfillment network
// supplies the quantity breakdown when the SKU is FBA.
type Item struct {
	SKU           string  `json:"sku"`
	ASIN          string  `json:"asin,omitempty"`
	Name          string  `json:"name,omitempty"`
	Price         float64 `json:"price"`
	Stock         int     `json:"stock"`
	MaxStock      int     `json:"maxStock"`
	Fulfillable   int     `json:"fulfillable"`
	Inbound       int     `json:"inbound"`
	Reserved      int     `json:"reserved"`
	Unfulfillable int     `json:"unfulfillable"`
	Channel       string  `json:"channel"`
	Status        string  `json:"status"`
}

// Stats summarize the merged listing.
type Stats struct {
	TotalSKUs  int     `json:"totalSkus"`
	InStock    int     `json:"inStock"`
	LowStock   int     `json:"lowStock"`
	OutOfStock int     `json:"outOfStock"`
	TotalUnits int     `json:"totalUnits"`
	TotalValue float64 `json:"totalValue"`
}

// Result is the cached payload of the inventory view. Partial marks a
// response built from only one of the two sources; Warnings carry the
// human-readable reasons.
type Result struct {
	Items     []Item    `json:"items"`
	Stats     Stats     `json:"stats"`
	Filter    string    `json:"filter"`
	Partial   bool      `json:"partial"`
	Warnings  []string  `json:"warnings,omitempty"`
	FetchedAt time.Time `json:"fetchedAt"`
}
