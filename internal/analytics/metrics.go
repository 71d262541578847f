package analytics

import (
	"math"
	"time"

	"github.com/angelmondragon/sellerpulse-backend/internal/spapi"
	"github.com/angelmondragon/sellerpulse-backend/pkg/money"
)

// Primary order statuses as the marketplace reports them.
const (
	StatusPending   = "Pending"
	StatusUnshipped = "Unshipped"
	StatusShipped   = "Shipped"
	StatusCanceled  = "Canceled"
)

// Easy Ship sub-statuses feeding the delivered and returned buckets.
const (
	ShipmentDelivered         = "Delivered"
	ShipmentReturningToSeller = "ReturningToSeller"
	ShipmentReturnedToSeller  = "ReturnedToSeller"
)

// Metrics is the single-pass aggregate over a window of orders.
//
// Pending, shipped, and canceled partition the orders by primary status.
// Delivered and returned are counted from the shipment sub-status
// independently of that partition, so a shipped order that was delivered
// appears in both shippedOrders and deliveredOrders. The three route
// views all rely on this dual classification; do not fold the buckets
// together.
type Metrics struct {
	TotalRevenue    float64 `json:"totalRevenue"`
	TotalOrders     int     `json:"totalOrders"`
	UnitsSold       int     `json:"unitsSold"`
	PendingOrders   int     `json:"pendingOrders"`
	ShippedOrders   int     `json:"shippedOrders"`
	CanceledOrders  int     `json:"canceledOrders"`
	DeliveredOrders int     `json:"deliveredOrders"`
	ReturnedOrders  int     `json:"returnedOrders"`
	AvgOrderValue   float64 `json:"avgOrderValue"`
	ReturnRate      float64 `json:"returnRate"`
	CancelRate      float64 `json:"cancelRate"`
	GrossProfit     float64 `json:"grossProfit"`
}

// Compute aggregates orders into metrics using the configured gross-margin
// estimate. Unparseable amounts coerce to zero instead of skewing or
// failing the aggregate.
func Compute(orders []spapi.Order, grossMargin float64) Metrics {
	var m Metrics
	m.TotalOrders = len(orders)

	for _, order := range orders {
		if order.OrderTotal != nil {
			m.TotalRevenue += money.CoerceFloat(order.OrderTotal.Amount)
		}
		m.UnitsSold += order.NumberOfItemsShipped + order.NumberOfItemsUnshipped

		switch order.OrderStatus {
		case StatusPending, StatusUnshipped:
			m.PendingOrders++
		case StatusShipped:
			m.ShippedOrders++
		case StatusCanceled:
			m.CanceledOrders++
		}

		switch order.EasyShipShipmentStatus {
		case ShipmentDelivered:
			m.DeliveredOrders++
		case ShipmentReturningToSeller, ShipmentReturnedToSeller:
			m.ReturnedOrders++
		}
	}

	if m.TotalOrders > 0 {
		m.AvgOrderValue = m.TotalRevenue / float64(m.TotalOrders)
		m.ReturnRate = math.Round(float64(m.ReturnedOrders) / float64(m.TotalOrders) * 100)
		m.CancelRate = math.Round(float64(m.CanceledOrders) / float64(m.TotalOrders) * 100)
	}
	m.GrossProfit = m.TotalRevenue * grossMargin
	return m
}

// PctChange is the rounded percent change between two values. A zero
// previous value yields 100 when the current value grew from nothing and 0
// otherwise, avoiding a divide-by-zero while still signaling growth.
func PctChange(curr, prev float64) float64 {
	if prev == 0 {
		if curr > 0 {
			return 100
		}
		return 0
	}
	return math.Round((curr - prev) / prev * 100)
}

// Trend labels the direction of a change.
func Trend(curr, prev float64) string {
	switch {
	case curr > prev:
		return "up"
	case curr < prev:
		return "down"
	default:
		return "flat"
	}
}

// PurchaseTime parses an order's purchase date; the zero time marks an
// unparseable value so callers can exclude the order from window filters.
func PurchaseTime(order spapi.Order) time.Time {
	parsed, err := time.Parse(time.RFC3339, order.PurchaseDate)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

// SplitByCutoff divides a double-length fetch into the current window
// (purchase at or after the cutoff) and the previous one. Orders with
// unparseable purchase dates land in neither.
func SplitByCutoff(orders []spapi.Order, cutoff time.Time) (current, previous []spapi.Order) {
	for _, order := range orders {
		at := PurchaseTime(order)
		if at.IsZero() {
			continue
		}
		if at.Before(cutoff) {
			previous = append(previous, order)
		} else {
			current = append(current, order)
		}
	}
	return current, previous
}
