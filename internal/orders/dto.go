package orders

import (
	"time"

	"github.com/angelmondragon/sellerpulse-backend/internal/analytics"
	"github.com/angelmondragon/sellerpulse-backend/internal/spapi"
)

// DisplayStatus is the single status shown per order, collapsed from the
// primary status and the shipment sub-status by priority: a cancellation
// wins over everything, then delivery, then return, then shipment.
type DisplayStatus string

const (
	DisplayCancelled  DisplayStatus = "Cancelled"
	DisplayDelivered  DisplayStatus = "Delivered"
	DisplayReturned   DisplayStatus = "Returned"
	DisplayShipped    DisplayStatus = "Shipped"
	DisplayProcessing DisplayStatus = "Processing"
	DisplayPending    DisplayStatus = "Pending"
)

// MapDisplayStatus collapses an order's statuses into the display label.
func MapDisplayStatus(order spapi.Order) DisplayStatus {
	switch {
	case order.OrderStatus == analytics.StatusCanceled:
		return DisplayCancelled
	case order.EasyShipShipmentStatus == analytics.ShipmentDelivered:
		return DisplayDelivered
	case order.EasyShipShipmentStatus == analytics.ShipmentReturningToSeller,
		order.EasyShipShipmentStatus == analytics.ShipmentReturnedToSeller:
		return DisplayReturned
	case order.OrderStatus == analytics.StatusShipped:
		return DisplayShipped
	case order.OrderStatus == analytics.StatusUnshipped:
		return DisplayProcessing
	default:
		return DisplayPending
	}
}

// EnrichedOrder is one order with its display status and, for the enriched
// prefix of the listing, its line items.
type EnrichedOrder struct {
	OrderID            string            `json:"orderId"`
	PurchaseDate       string            `json:"purchaseDate"`
	Status             DisplayStatus     `json:"status"`
	OrderStatus        string            `json:"orderStatus"`
	ShipmentStatus     string            `json:"shipmentStatus,omitempty"`
	FulfillmentChannel string            `json:"fulfillmentChannel,omitempty"`
	Total              float64           `json:"total"`
	Currency           string            `json:"currency,omitempty"`
	City               string            `json:"city,omitempty"`
	State              string            `json:"state,omitempty"`
	Items              []spapi.OrderItem `json:"items"`
	ItemsEnriched      bool              `json:"itemsEnriched"`
}

// Meta describes how the listing was produced.
type Meta struct {
	Days          int       `json:"days"`
	Limit         int       `json:"limit"`
	TotalCount    int       `json:"totalCount"`
	EnrichedCount int       `json:"enrichedCount"`
	FailedItems   int       `json:"failedItems,omitempty"`
	FetchedAt     time.Time `json:"fetchedAt"`
}

// Result is the cached payload of the orders listing.
type Result struct {
	Orders []EnrichedOrder   `json:"orders"`
	Stats  analytics.Metrics `json:"stats"`
	Meta   Meta              `json:"meta"`
}
