package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/angelmondragon/sellerpulse-backend/internal/analytics"
	"github.com/angelmondragon/sellerpulse-backend/internal/catalog"
	"github.com/angelmondragon/sellerpulse-backend/internal/orders"
	"github.com/angelmondragon/sellerpulse-backend/internal/spapi"
	"github.com/angelmondragon/sellerpulse-backend/pkg/cache"
	pkgerrors "github.com/angelmondragon/sellerpulse-backend/pkg/errors"
	"github.com/angelmondragon/sellerpulse-backend/pkg/fetch"
	"github.com/angelmondragon/sellerpulse-backend/pkg/logger"
	"github.com/angelmondragon/sellerpulse-backend/pkg/money"
	"github.com/angelmondragon/sellerpulse-backend/pkg/types"
	"golang.org/x/sync/errgroup"
)

const cacheSchemaVersion = "v1"

// PeriodToday is the partial-day period with the midnight-anchored window.
const PeriodToday = "today"

// Stock widget threshold, matching the inventory view's default.
const defaultLowStock = 10

// GetInput selects the dashboard period.
type GetInput struct {
	Period       string
	ForceRefresh bool
}

// Service produces the dashboard payload.
type Service interface {
	Get(ctx context.Context, input GetInput) (*Result, types.Source, error)
	Periods() []string
}

type dashboardGateway interface {
	ListOrders(ctx context.Context, input spapi.ListOrdersInput, pageDelay time.Duration) ([]spapi.Order, error)
	ListOrderItems(ctx context.Context, orderID string) ([]spapi.OrderItem, error)
	ListInventorySummaries(ctx context.Context, pageDelay time.Duration) ([]spapi.InventorySummary, error)
}

// ServiceParams configure the dashboard service.
type ServiceParams struct {
	Gateway           dashboardGateway
	Catalog           catalog.Service
	Cache             *cache.Cache
	Logger            *logger.Logger
	TTL               time.Duration
	Timezone          string
	SafetyBuffer      time.Duration
	GrossMargin       float64
	DefaultPeriod     string
	RecentOrdersLimit int
	ItemsConcurrency  int
	ItemsDelay        time.Duration
	PageDelay         time.Duration
	Now               func() time.Time
}

type service struct {
	gateway       dashboardGateway
	catalog       catalog.Service
	cache         *cache.Cache
	logg          *logger.Logger
	ttl           time.Duration
	loc           *time.Location
	safetyBuffer  time.Duration
	grossMargin   float64
	defaultPeriod string
	recentLimit   int
	itemsPool     fetch.Pool
	pageDelay     time.Duration
	now           func() time.Time
}

// NewService constructs a dashboard service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Gateway == nil {
		return nil, fmt.Errorf("gateway required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if params.Cache == nil {
		return nil, fmt.Errorf("cache required")
	}
	if params.TTL <= 0 {
		return nil, fmt.Errorf("dashboard ttl required")
	}
	safetyBuffer := params.SafetyBuffer
	if safetyBuffer <= 0 {
		safetyBuffer = 3 * time.Minute
	}
	defaultPeriod := params.DefaultPeriod
	if defaultPeriod == "" {
		defaultPeriod = "30d"
	}
	recentLimit := params.RecentOrdersLimit
	if recentLimit <= 0 {
		recentLimit = 15
	}
	concurrency := params.ItemsConcurrency
	if concurrency <= 0 {
		concurrency = 6
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		gateway:       params.Gateway,
		catalog:       params.Catalog,
		cache:         params.Cache,
		logg:          params.Logger,
		ttl:           params.TTL,
		loc:           analytics.LoadLocation(params.Timezone),
		safetyBuffer:  safetyBuffer,
		grossMargin:   params.GrossMargin,
		defaultPeriod: defaultPeriod,
		recentLimit:   recentLimit,
		itemsPool:     fetch.Pool{Concurrency: concurrency, Delay: params.ItemsDelay},
		pageDelay:     params.PageDelay,
		now:           now,
	}, nil
}

// Periods lists the period labels the dashboard accepts.
func (s *service) Periods() []string {
	return []string{PeriodToday, "1d", "7d", "30d", "90d", "1y"}
}

func periodKey(period string) cache.Key {
	return cache.NewKey("dashboard", cacheSchemaVersion, period)
}

// Get serves the dashboard cache-first with the stale fallback shared by
// every read route.
func (s *service) Get(ctx context.Context, input GetInput) (*Result, types.Source, error) {
	period := input.Period
	if period == "" {
		period = s.defaultPeriod
	}
	days := 1
	if period != PeriodToday {
		resolved, ok := analytics.PeriodDays(period)
		if !ok {
			return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "unknown period").
				WithDetails(map[string]any{"period": input.Period, "allowed": s.Periods()})
		}
		days = resolved
	}
	key := periodKey(period)

	if !input.ForceRefresh {
		if cached, ok := cache.Get[Result](ctx, s.cache, key); ok {
			return &cached, types.SourceCache, nil
		}
	}

	result, err := s.buildLive(ctx, period, days)
	if err == nil {
		if cacheErr := s.cache.Set(ctx, key, result, s.ttl); cacheErr != nil && s.logg != nil {
			s.logg.Error(ctx, "dashboard cache write failed", cacheErr)
		}
		return result, types.SourceAPI, nil
	}

	if s.logg != nil {
		s.logg.Error(s.logg.WithPeriod(ctx, period), "live dashboard build failed; trying stale cache", err)
	}
	if stale, ok := cache.GetStale[Result](ctx, s.cache, key); ok {
		return &stale, types.SourceStaleCache, err
	}
	return nil, "", pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "dashboard unavailable")
}

func (s *service) buildLive(ctx context.Context, period string, days int) (*Result, error) {
	now := s.now()

	var window analytics.PeriodWindow
	if period == PeriodToday {
		window = analytics.TodayWindow(now, s.loc, s.safetyBuffer)
	} else {
		window = analytics.RollingWindow(now, days)
	}

	var (
		fetched   []spapi.Order
		summaries []spapi.InventorySummary
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		listInput := spapi.ListOrdersInput{CreatedAfter: window.PreviousStart}
		if period == PeriodToday {
			listInput.CreatedBefore = window.CurrentEnd
		}
		result, err := s.gateway.ListOrders(groupCtx, listInput, s.pageDelay)
		if err != nil {
			return err
		}
		fetched = result
		return nil
	})
	group.Go(func() error {
		result, err := s.gateway.ListInventorySummaries(groupCtx, s.pageDelay)
		if err != nil {
			return err
		}
		summaries = result
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	current, previous := splitByWindow(fetched, window)
	currentMetrics := analytics.Compute(current, s.grossMargin)
	previousMetrics := analytics.Compute(previous, s.grossMargin)

	granularity := analytics.GranularityFor(days)
	result := &Result{
		Period:       period,
		Granularity:  granularity,
		Window:       window,
		Metrics:      currentMetrics,
		KPIs:         buildKPIs(currentMetrics, previousMetrics),
		RevenueChart: s.buildChart(current, granularity),
		OrderStatus:  buildStatusDistribution(currentMetrics),
		RecentOrders: s.buildRecentOrders(ctx, current),
		Inventory:    buildInventorySnapshot(summaries),
		FetchedAt:    now.UTC(),
	}
	return result, nil
}

// splitByWindow assigns each fetched order to its comparison window. For
// the today period the two windows do not tile the fetch range, so orders
// between yesterday's partial end and midnight belong to neither.
func splitByWindow(fetched []spapi.Order, window analytics.PeriodWindow) (current, previous []spapi.Order) {
	for _, order := range fetched {
		at := analytics.PurchaseTime(order)
		if at.IsZero() {
			continue
		}
		switch {
		case !at.Before(window.CurrentStart) && !at.After(window.CurrentEnd):
			current = append(current, order)
		case !at.Before(window.PreviousStart) && at.Before(window.PreviousEnd):
			previous = append(previous, order)
		}
	}
	return current, previous
}

func buildKPIs(curr, prev analytics.Metrics) KPISet {
	return KPISet{
		Revenue: KPI{
			Value:     curr.TotalRevenue,
			Previous:  prev.TotalRevenue,
			Change:    analytics.PctChange(curr.TotalRevenue, prev.TotalRevenue),
			Trend:     analytics.Trend(curr.TotalRevenue, prev.TotalRevenue),
			Formatted: money.FormatINR(curr.TotalRevenue),
		},
		Orders: KPI{
			Value:    float64(curr.TotalOrders),
			Previous: float64(prev.TotalOrders),
			Change:   analytics.PctChange(float64(curr.TotalOrders), float64(prev.TotalOrders)),
			Trend:    analytics.Trend(float64(curr.TotalOrders), float64(prev.TotalOrders)),
		},
		UnitsSold: KPI{
			Value:    float64(curr.UnitsSold),
			Previous: float64(prev.UnitsSold),
			Change:   analytics.PctChange(float64(curr.UnitsSold), float64(prev.UnitsSold)),
			Trend:    analytics.Trend(float64(curr.UnitsSold), float64(prev.UnitsSold)),
		},
		AvgOrderValue: KPI{
			Value:     curr.AvgOrderValue,
			Previous:  prev.AvgOrderValue,
			Change:    analytics.PctChange(curr.AvgOrderValue, prev.AvgOrderValue),
			Trend:     analytics.Trend(curr.AvgOrderValue, prev.AvgOrderValue),
			Formatted: money.FormatINR(curr.AvgOrderValue),
		},
	}
}

func (s *service) buildChart(current []spapi.Order, granularity analytics.Granularity) []ChartPoint {
	buckets := make(map[string]*ChartPoint)
	for _, order := range current {
		at := analytics.PurchaseTime(order)
		if at.IsZero() {
			continue
		}
		bucket := analytics.BucketKey(at, granularity, s.loc)
		point, ok := buckets[bucket]
		if !ok {
			point = &ChartPoint{Bucket: bucket}
			buckets[bucket] = point
		}
		if order.OrderTotal != nil {
			point.Revenue += money.CoerceFloat(order.OrderTotal.Amount)
		}
		point.Orders++
	}

	series := make([]ChartPoint, 0, len(buckets))
	for _, point := range buckets {
		series = append(series, *point)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Bucket < series[j].Bucket })
	return series
}

func buildStatusDistribution(m analytics.Metrics) []StatusCount {
	return []StatusCount{
		{Status: "pending", Count: m.PendingOrders},
		{Status: "shipped", Count: m.ShippedOrders},
		{Status: "delivered", Count: m.DeliveredOrders},
		{Status: "canceled", Count: m.CanceledOrders},
		{Status: "returned", Count: m.ReturnedOrders},
	}
}

// buildRecentOrders takes the newest orders and decorates them with line
// item counts and catalog metadata. Every enrichment failure degrades to a
// bare row; the table itself always renders.
func (s *service) buildRecentOrders(ctx context.Context, current []spapi.Order) []RecentOrder {
	sorted := make([]spapi.Order, len(current))
	copy(sorted, current)
	sort.SliceStable(sorted, func(i, j int) bool {
		return analytics.PurchaseTime(sorted[i]).After(analytics.PurchaseTime(sorted[j]))
	})
	if len(sorted) > s.recentLimit {
		sorted = sorted[:s.recentLimit]
	}

	ids := make([]string, 0, len(sorted))
	for _, order := range sorted {
		ids = append(ids, order.AmazonOrderID)
	}
	itemsByOrder := fetch.Map(ctx, s.itemsPool, ids, s.gateway.ListOrderItems)

	var asins []string
	for _, outcome := range itemsByOrder {
		if outcome.Err != nil {
			continue
		}
		for _, item := range outcome.Value {
			asins = append(asins, item.ASIN)
		}
	}
	catalogInfo := map[string]spapi.CatalogInfo{}
	if len(asins) > 0 {
		catalogInfo = s.catalog.GetMany(ctx, asins)
	}

	recent := make([]RecentOrder, 0, len(sorted))
	for _, order := range sorted {
		row := RecentOrder{
			OrderID:      order.AmazonOrderID,
			PurchaseDate: order.PurchaseDate,
			Status:       string(orders.MapDisplayStatus(order)),
		}
		if order.OrderTotal != nil {
			row.Total = money.CoerceFloat(order.OrderTotal.Amount)
		}
		row.FormattedTotal = money.FormatINR(row.Total)

		if outcome, ok := itemsByOrder[order.AmazonOrderID]; ok && outcome.Err == nil {
			row.ItemCount = len(outcome.Value)
			if len(outcome.Value) > 0 {
				first := outcome.Value[0]
				product := &ProductInfo{ASIN: first.ASIN, Title: first.Title}
				if info, ok := catalogInfo[first.ASIN]; ok {
					if info.Title != "" {
						product.Title = info.Title
					}
					product.ImageURL = info.ImageURL
				}
				row.Product = product
			}
		}
		recent = append(recent, row)
	}
	return recent
}

func buildInventorySnapshot(summaries []spapi.InventorySummary) InventorySnapshot {
	var snapshot InventorySnapshot
	for _, summary := range summaries {
		stock := summary.TotalQuantity
		if summary.Details != nil {
			stock = summary.Details.FulfillableQuantity
		}
		snapshot.TotalSKUs++
		switch {
		case stock <= 0:
			snapshot.OutOfStock++
		case stock < defaultLowStock:
			snapshot.LowStock++
		default:
			snapshot.InStock++
		}
	}
	return snapshot
}
