package spapi

// Money is an amount-and-currency pair as the marketplace sends it. The
// amount stays a string on the wire; aggregation coerces it once.
type Money struct {
	Amount       string `json:"Amount"`
	CurrencyCode string `json:"CurrencyCode"`
}

// Address is the subset of the shipping address used for display.
type Address struct {
	City          string `json:"City,omitempty"`
	StateOrRegion string `json:"StateOrRegion,omitempty"`
	PostalCode    string `json:"PostalCode,omitempty"`
	CountryCode   string `json:"CountryCode,omitempty"`
}

// Order is a marketplace order as returned by the orders listing.
type Order struct {
	AmazonOrderID          string   `json:"AmazonOrderId"`
	PurchaseDate           string   `json:"PurchaseDate"`
	LastUpdateDate         string   `json:"LastUpdateDate,omitempty"`
	OrderStatus            string   `json:"OrderStatus"`
	EasyShipShipmentStatus string   `json:"EasyShipShipmentStatus,omitempty"`
	FulfillmentChannel     string   `json:"FulfillmentChannel,omitempty"`
	SalesChannel           string   `json:"SalesChannel,omitempty"`
	OrderTotal             *Money   `json:"OrderTotal,omitempty"`
	NumberOfItemsShipped   int      `json:"NumberOfItemsShipped"`
	NumberOfItemsUnshipped int      `json:"NumberOfItemsUnshipped"`
	ShipmentServiceLevel   string   `json:"ShipmentServiceLevelCategory,omitempty"`
	IsPrime                bool     `json:"IsPrime,omitempty"`
	MarketplaceID          string   `json:"MarketplaceId,omitempty"`
	ShippingAddress        *Address `json:"ShippingAddress,omitempty"`
}

// OrderItem is a line item on an order.
type OrderItem struct {
	OrderItemID     string `json:"OrderItemId"`
	ASIN            string `json:"ASIN"`
	SellerSKU       string `json:"SellerSKU,omitempty"`
	Title           string `json:"Title,omitempty"`
	QuantityOrdered int    `json:"QuantityOrdered"`
	QuantityShipped int    `json:"QuantityShipped,omitempty"`
	ItemPrice       *Money `json:"ItemPrice,omitempty"`
}

// CatalogInfo is the distilled catalog record kept per ASIN.
type CatalogInfo struct {
	ASIN     string `json:"asin"`
	Title    string `json:"title,omitempty"`
	Brand    string `json:"brand,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// ReservedQuantity breaks down stock reserved by the fulfillment network.
type ReservedQuantity struct {
	TotalReservedQuantity int `json:"totalReservedQuantity"`
}

// UnfulfillableQuantity is stock the network cannot ship.
type UnfulfillableQuantity struct {
	TotalUnfulfillableQuantity int `json:"totalUnfulfillableQuantity"`
}

// InventoryDetails holds the per-state quantity breakdown of a summary.
type InventoryDetails struct {
	FulfillableQuantity      int                    `json:"fulfillableQuantity"`
	InboundWorkingQuantity   int                    `json:"inboundWorkingQuantity"`
	InboundShippedQuantity   int                    `json:"inboundShippedQuantity"`
	InboundReceivingQuantity int                    `json:"inboundReceivingQuantity"`
	ReservedQuantity         *ReservedQuantity      `json:"reservedQuantity,omitempty"`
	UnfulfillableQuantity    *UnfulfillableQuantity `json:"unfulfillableQuantity,omitempty"`
}

// InventorySummary is one SKU's stock position in the fulfillment network.
type InventorySummary struct {
	ASIN            string            `json:"asin"`
	FNSKU           string            `json:"fnSku,omitempty"`
	SellerSKU       string            `json:"sellerSku"`
	Condition       string            `json:"condition,omitempty"`
	ProductName     string            `json:"productName,omitempty"`
	TotalQuantity   int               `json:"totalQuantity"`
	LastUpdatedTime string            `json:"lastUpdatedTime,omitempty"`
	Details         *InventoryDetails `json:"inventoryDetails,omitempty"`
}

// ListingRow is one row of the merchant listings report.
type ListingRow struct {
	SellerSKU string `json:"sellerSku"`
	ASIN      string `json:"asin"`
	ItemName  string `json:"itemName,omitempty"`
	Price     string `json:"price,omitempty"`
	Quantity  int    `json:"quantity"`
	Status    string `json:"status,omitempty"`
	OpenDate  string `json:"openDate,omitempty"`
}
