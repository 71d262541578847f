package analytics

import (
	"testing"
	"time"

	"github.com/angelmondragon/sellerpulse-backend/internal/spapi"
)

func order(id, status, easyShip, total string) spapi.Order {
	o := spapi.Order{
		AmazonOrderID:          id,
		OrderStatus:            status,
		EasyShipShipmentStatus: easyShip,
	}
	if total != "" {
		o.OrderTotal = &spapi.Money{Amount: total, CurrencyCode: "INR"}
	}
	return o
}

func TestComputeThreeOrderScenario(t *testing.T) {
	orders := []spapi.Order{
		order("1", "Shipped", "Delivered", "₹100"),
		order("2", "Unshipped", "", "200"),
		order("3", "Canceled", "", "300"),
	}

	m := Compute(orders, 0.30)

	if m.TotalRevenue != 600 {
		t.Fatalf("totalRevenue = %v, want 600", m.TotalRevenue)
	}
	if m.TotalOrders != 3 {
		t.Fatalf("totalOrders = %d, want 3", m.TotalOrders)
	}
	if m.ShippedOrders != 1 || m.PendingOrders != 1 || m.CanceledOrders != 1 {
		t.Fatalf("buckets = shipped %d, pending %d, canceled %d", m.ShippedOrders, m.PendingOrders, m.CanceledOrders)
	}
	if m.DeliveredOrders != 1 {
		t.Fatalf("deliveredOrders = %d, want 1", m.DeliveredOrders)
	}
	if m.AvgOrderValue != 200 {
		t.Fatalf("avgOrderValue = %v, want 200", m.AvgOrderValue)
	}
	if m.CancelRate != 33 {
		t.Fatalf("cancelRate = %v, want 33", m.CancelRate)
	}
	if m.GrossProfit != 180 {
		t.Fatalf("grossProfit = %v, want 180", m.GrossProfit)
	}
}

func TestComputeEmpty(t *testing.T) {
	m := Compute(nil, 0.30)
	if m != (Metrics{}) {
		t.Fatalf("empty input must yield the zero aggregate, got %+v", m)
	}
}

// A shipped order that was delivered counts in both buckets; the delivered
// tally never subtracts from the primary partition.
func TestComputeDualClassification(t *testing.T) {
	orders := []spapi.Order{
		order("1", "Shipped", "Delivered", "100"),
		order("2", "Shipped", "ReturnedToSeller", "100"),
	}
	m := Compute(orders, 0.30)

	if m.ShippedOrders != 2 {
		t.Fatalf("shippedOrders = %d, want 2", m.ShippedOrders)
	}
	if m.DeliveredOrders != 1 || m.ReturnedOrders != 1 {
		t.Fatalf("delivered = %d, returned = %d", m.DeliveredOrders, m.ReturnedOrders)
	}
	if m.ReturnRate != 50 {
		t.Fatalf("returnRate = %v, want 50", m.ReturnRate)
	}
}

func TestComputeUnitsSold(t *testing.T) {
	orders := []spapi.Order{
		{AmazonOrderID: "1", OrderStatus: "Shipped", NumberOfItemsShipped: 2, NumberOfItemsUnshipped: 1},
		{AmazonOrderID: "2", OrderStatus: "Pending", NumberOfItemsUnshipped: 3},
	}
	if m := Compute(orders, 0.30); m.UnitsSold != 6 {
		t.Fatalf("unitsSold = %d, want 6", m.UnitsSold)
	}
}

func TestPctChange(t *testing.T) {
	tests := []struct {
		curr, prev, want float64
	}{
		{100, 0, 100},
		{0, 0, 0},
		{150, 100, 50},
		{50, 100, -50},
		{100, 300, -67},
	}
	for _, tt := range tests {
		if got := PctChange(tt.curr, tt.prev); got != tt.want {
			t.Fatalf("PctChange(%v, %v) = %v, want %v", tt.curr, tt.prev, got, tt.want)
		}
	}
}

func TestTrend(t *testing.T) {
	if got := Trend(2, 1); got != "up" {
		t.Fatalf("Trend(2,1) = %q", got)
	}
	if got := Trend(1, 2); got != "down" {
		t.Fatalf("Trend(1,2) = %q", got)
	}
	if got := Trend(1, 1); got != "flat" {
		t.Fatalf("Trend(1,1) = %q", got)
	}
}

func TestSplitByCutoff(t *testing.T) {
	cutoff := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	orders := []spapi.Order{
		{AmazonOrderID: "old", PurchaseDate: "2025-05-30T10:00:00Z"},
		{AmazonOrderID: "new", PurchaseDate: "2025-06-02T10:00:00Z"},
		{AmazonOrderID: "edge", PurchaseDate: "2025-06-01T00:00:00Z"},
		{AmazonOrderID: "bad", PurchaseDate: "not-a-date"},
	}

	current, previous := SplitByCutoff(orders, cutoff)
	if len(current) != 2 || len(previous) != 1 {
		t.Fatalf("current = %d, previous = %d", len(current), len(previous))
	}
	if current[1].AmazonOrderID != "edge" {
		t.Fatal("an order exactly at the cutoff belongs to the current window")
	}
}
