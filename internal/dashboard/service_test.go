package dashboard

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/angelmondragon/sellerpulse-backend/internal/analytics"
	"github.com/angelmondragon/sellerpulse-backend/internal/spapi"
	"github.com/angelmondragon/sellerpulse-backend/pkg/cache"
	pkgerrors "github.com/angelmondragon/sellerpulse-backend/pkg/errors"
	"github.com/angelmondragon/sellerpulse-backend/pkg/types"
)

type stubGateway struct {
	orders       []spapi.Order
	ordersErr    error
	items        map[string][]spapi.OrderItem
	summaries    []spapi.InventorySummary
	summariesErr error
	listCalls    atomic.Int64
}

func (s *stubGateway) ListOrders(context.Context, spapi.ListOrdersInput, time.Duration) ([]spapi.Order, error) {
	s.listCalls.Add(1)
	if s.ordersErr != nil {
		return nil, s.ordersErr
	}
	return s.orders, nil
}

func (s *stubGateway) ListOrderItems(_ context.Context, orderID string) ([]spapi.OrderItem, error) {
	return s.items[orderID], nil
}

func (s *stubGateway) ListInventorySummaries(context.Context, time.Duration) ([]spapi.InventorySummary, error) {
	if s.summariesErr != nil {
		return nil, s.summariesErr
	}
	return s.summaries, nil
}

type stubCatalog struct {
	infos map[string]spapi.CatalogInfo
}

func (s *stubCatalog) GetMany(_ context.Context, asins []string) map[string]spapi.CatalogInfo {
	out := make(map[string]spapi.CatalogInfo)
	for _, asin := range asins {
		if info, ok := s.infos[asin]; ok {
			out[asin] = info
		}
	}
	return out
}

func dayOrder(id string, at time.Time, status, total string) spapi.Order {
	return spapi.Order{
		AmazonOrderID: id,
		PurchaseDate:  at.UTC().Format(time.RFC3339),
		OrderStatus:   status,
		OrderTotal:    &spapi.Money{Amount: total, CurrencyCode: "INR"},
	}
}

func newTestService(t *testing.T, gateway *stubGateway, cat *stubCatalog, now time.Time) (Service, *cache.Cache) {
	t.Helper()
	if cat == nil {
		cat = &stubCatalog{}
	}
	store := cache.New(cache.Params{})
	svc, err := NewService(ServiceParams{
		Gateway:      gateway,
		Catalog:      cat,
		Cache:        store,
		TTL:          5 * time.Minute,
		Timezone:     "Asia/Kolkata",
		SafetyBuffer: 3 * time.Minute,
		GrossMargin:  0.30,
		Now:          func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, store
}

func TestGetBuildsPeriodPayload(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	gateway := &stubGateway{
		orders: []spapi.Order{
			dayOrder("curr-1", now.Add(-24*time.Hour), "Shipped", "300"),
			dayOrder("curr-2", now.Add(-48*time.Hour), "Pending", "100"),
			dayOrder("prev-1", now.Add(-8*24*time.Hour), "Shipped", "100"),
		},
		items: map[string][]spapi.OrderItem{
			"curr-1": {{OrderItemID: "i1", ASIN: "B0A", Title: "Fallback"}},
		},
		summaries: []spapi.InventorySummary{
			{SellerSKU: "S1", Details: &spapi.InventoryDetails{FulfillableQuantity: 3}},
			{SellerSKU: "S2", Details: &spapi.InventoryDetails{FulfillableQuantity: 40}},
		},
	}
	cat := &stubCatalog{infos: map[string]spapi.CatalogInfo{
		"B0A": {ASIN: "B0A", Title: "Steel Bottle", ImageURL: "https://img/1.jpg"},
	}}
	svc, _ := newTestService(t, gateway, cat, now)

	result, source, err := svc.Get(context.Background(), GetInput{Period: "7d"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if source != types.SourceAPI {
		t.Fatalf("source = %s, want api", source)
	}
	if result.Metrics.TotalOrders != 2 || result.Metrics.TotalRevenue != 400 {
		t.Fatalf("current metrics = %+v", result.Metrics)
	}
	if result.KPIs.Revenue.Previous != 100 {
		t.Fatalf("previous revenue = %v, want 100", result.KPIs.Revenue.Previous)
	}
	if result.KPIs.Revenue.Change != 300 || result.KPIs.Revenue.Trend != "up" {
		t.Fatalf("revenue kpi = %+v", result.KPIs.Revenue)
	}
	if result.KPIs.Revenue.Formatted != "₹400" {
		t.Fatalf("formatted revenue = %q", result.KPIs.Revenue.Formatted)
	}
	if result.Granularity != analytics.GranularityDaily {
		t.Fatalf("granularity = %s", result.Granularity)
	}
	if len(result.RevenueChart) != 2 {
		t.Fatalf("chart buckets = %d, want 2", len(result.RevenueChart))
	}
	if result.Inventory.LowStock != 1 || result.Inventory.InStock != 1 {
		t.Fatalf("inventory snapshot = %+v", result.Inventory)
	}
	if len(result.RecentOrders) != 2 {
		t.Fatalf("recent orders = %d, want 2", len(result.RecentOrders))
	}
	first := result.RecentOrders[0]
	if first.OrderID != "curr-1" {
		t.Fatal("recent orders must sort newest first")
	}
	if first.Product == nil || first.Product.Title != "Steel Bottle" {
		t.Fatalf("catalog enrichment = %+v", first.Product)
	}
	if first.FormattedTotal != "₹300" {
		t.Fatalf("formatted total = %q", first.FormattedTotal)
	}
}

func TestGetTodayWindowExcludesGapOrders(t *testing.T) {
	loc := analytics.LoadLocation("Asia/Kolkata")
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, loc)
	midnight := time.Date(2025, 6, 15, 0, 0, 0, 0, loc)

	gateway := &stubGateway{orders: []spapi.Order{
		// 09:00 today: current window.
		dayOrder("today", midnight.Add(9*time.Hour), "Shipped", "100"),
		// 08:00 yesterday: inside the previous partial window.
		dayOrder("yesterday", midnight.Add(-24*time.Hour).Add(8*time.Hour), "Shipped", "50"),
		// 20:00 yesterday: after the previous window closed; neither side.
		dayOrder("gap", midnight.Add(-4*time.Hour), "Shipped", "999"),
	}}
	svc, _ := newTestService(t, gateway, nil, now)

	result, _, err := svc.Get(context.Background(), GetInput{Period: PeriodToday})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if result.Metrics.TotalRevenue != 100 {
		t.Fatalf("current revenue = %v, want 100", result.Metrics.TotalRevenue)
	}
	if result.KPIs.Revenue.Previous != 50 {
		t.Fatalf("previous revenue = %v, want 50", result.KPIs.Revenue.Previous)
	}
	if result.Window.PreviousEnd.Sub(result.Window.PreviousStart) != result.Window.Duration() {
		t.Fatal("comparison windows must have equal length")
	}
}

func TestGetRejectsUnknownPeriod(t *testing.T) {
	svc, _ := newTestService(t, &stubGateway{}, nil, time.Now())

	_, _, err := svc.Get(context.Background(), GetInput{Period: "2w"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("err = %v, want VALIDATION_ERROR", err)
	}
}

func TestGetServesFreshCacheWithoutGateway(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	gateway := &stubGateway{}
	svc, _ := newTestService(t, gateway, nil, now)
	ctx := context.Background()

	if _, _, err := svc.Get(ctx, GetInput{Period: "7d"}); err != nil {
		t.Fatalf("warm-up: %v", err)
	}
	_, source, err := svc.Get(ctx, GetInput{Period: "7d"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if source != types.SourceCache {
		t.Fatalf("source = %s, want cache", source)
	}
	if gateway.listCalls.Load() != 1 {
		t.Fatalf("gateway calls = %d, want no call on cache hit", gateway.listCalls.Load())
	}
}

func TestGetStaleFallbackOnUpstreamOutage(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	gateway := &stubGateway{ordersErr: errors.New("gateway down")}
	svc, store := newTestService(t, gateway, nil, now)
	ctx := context.Background()

	seeded := Result{Period: "7d", Metrics: analytics.Metrics{TotalOrders: 9}}
	if err := store.Set(ctx, periodKey("7d"), seeded, -time.Second); err != nil {
		t.Fatalf("seed: %v", err)
	}

	result, source, err := svc.Get(ctx, GetInput{Period: "7d"})
	if err == nil {
		t.Fatal("stale fallback must carry the upstream error")
	}
	if source != types.SourceStaleCache {
		t.Fatalf("source = %s, want stale-cache", source)
	}
	if result.Metrics.TotalOrders != 9 {
		t.Fatalf("stale payload = %+v", result)
	}
}

func TestGetUnavailableWithoutAnyData(t *testing.T) {
	gateway := &stubGateway{summariesErr: errors.New("gateway down")}
	svc, _ := newTestService(t, gateway, nil, time.Now())

	result, _, err := svc.Get(context.Background(), GetInput{Period: "7d"})
	if result != nil {
		t.Fatalf("result = %+v, want nil", result)
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnavailable {
		t.Fatalf("err = %v, want DATA_UNAVAILABLE", err)
	}
}
