package orders

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/angelmondragon/sellerpulse-backend/internal/analytics"
	"github.com/angelmondragon/sellerpulse-backend/internal/spapi"
	"github.com/angelmondragon/sellerpulse-backend/pkg/cache"
	pkgerrors "github.com/angelmondragon/sellerpulse-backend/pkg/errors"
	"github.com/angelmondragon/sellerpulse-backend/pkg/fetch"
	"github.com/angelmondragon/sellerpulse-backend/pkg/logger"
	"github.com/angelmondragon/sellerpulse-backend/pkg/money"
	"github.com/angelmondragon/sellerpulse-backend/pkg/types"
)

// Schema version of the cached listing payload. Bump on shape changes.
const cacheSchemaVersion = "v2"

// ListInput bounds an orders listing request.
type ListInput struct {
	Days         int
	Limit        int
	ForceRefresh bool
}

// Service produces the enriched orders listing.
type Service interface {
	List(ctx context.Context, input ListInput) (*Result, types.Source, error)
}

type orderLister interface {
	ListOrders(ctx context.Context, input spapi.ListOrdersInput, pageDelay time.Duration) ([]spapi.Order, error)
	ListOrderItems(ctx context.Context, orderID string) ([]spapi.OrderItem, error)
}

// ServiceParams configure the orders service.
type ServiceParams struct {
	Gateway     orderLister
	Cache       *cache.Cache
	Logger      *logger.Logger
	TTL         time.Duration
	GrossMargin float64
	Concurrency int
	ItemDelay   time.Duration
	PageDelay   time.Duration
	EnrichLimit int
	Now         func() time.Time
}

type service struct {
	gateway     orderLister
	cache       *cache.Cache
	logg        *logger.Logger
	ttl         time.Duration
	grossMargin float64
	pool        fetch.Pool
	pageDelay   time.Duration
	enrichLimit int
	now         func() time.Time
}

// NewService constructs an orders service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Gateway == nil {
		return nil, fmt.Errorf("gateway required")
	}
	if params.Cache == nil {
		return nil, fmt.Errorf("cache required")
	}
	if params.TTL <= 0 {
		return nil, fmt.Errorf("orders ttl required")
	}
	concurrency := params.Concurrency
	if concurrency <= 0 {
		concurrency = 6
	}
	enrichLimit := params.EnrichLimit
	if enrichLimit <= 0 {
		enrichLimit = 200
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		gateway:     params.Gateway,
		cache:       params.Cache,
		logg:        params.Logger,
		ttl:         params.TTL,
		grossMargin: params.GrossMargin,
		pool:        fetch.Pool{Concurrency: concurrency, Delay: params.ItemDelay},
		pageDelay:   params.PageDelay,
		enrichLimit: enrichLimit,
		now:         now,
	}, nil
}

func listKey(days, limit int) cache.Key {
	return cache.NewKey("orders_enriched", cacheSchemaVersion, strconv.Itoa(days)+"d", strconv.Itoa(limit))
}

// List serves the enriched listing cache-first, falling back to stale data
// when the marketplace is down. Only a request with neither live data nor
// any cached payload fails.
func (s *service) List(ctx context.Context, input ListInput) (*Result, types.Source, error) {
	if input.Days <= 0 {
		input.Days = 30
	}
	if input.Limit <= 0 || input.Limit > s.enrichLimit {
		input.Limit = s.enrichLimit
	}
	key := listKey(input.Days, input.Limit)

	if !input.ForceRefresh {
		if cached, ok := cache.Get[Result](ctx, s.cache, key); ok {
			return &cached, types.SourceCache, nil
		}
	}

	result, err := s.buildLive(ctx, input)
	if err == nil {
		if cacheErr := s.cache.Set(ctx, key, result, s.ttl); cacheErr != nil && s.logg != nil {
			s.logg.Error(ctx, "orders cache write failed", cacheErr)
		}
		return result, types.SourceAPI, nil
	}

	if s.logg != nil {
		s.logg.Error(ctx, "live orders fetch failed; trying stale cache", err)
	}
	if stale, ok := cache.GetStale[Result](ctx, s.cache, key); ok {
		return &stale, types.SourceStaleCache, err
	}
	return nil, "", pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "orders unavailable")
}

func (s *service) buildLive(ctx context.Context, input ListInput) (*Result, error) {
	fetchedAt := s.now()
	raw, err := s.gateway.ListOrders(ctx, spapi.ListOrdersInput{
		CreatedAfter: fetchedAt.Add(-time.Duration(input.Days) * 24 * time.Hour),
	}, s.pageDelay)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(raw, func(i, j int) bool {
		return analytics.PurchaseTime(raw[i]).After(analytics.PurchaseTime(raw[j]))
	})

	enrichCount := len(raw)
	if enrichCount > input.Limit {
		enrichCount = input.Limit
	}
	ids := make([]string, 0, enrichCount)
	for _, order := range raw[:enrichCount] {
		ids = append(ids, order.AmazonOrderID)
	}

	itemsByOrder := fetch.Map(ctx, s.pool, ids, s.gateway.ListOrderItems)

	failedItems := 0
	enriched := make([]EnrichedOrder, 0, len(raw))
	for i, order := range raw {
		view := EnrichedOrder{
			OrderID:            order.AmazonOrderID,
			PurchaseDate:       order.PurchaseDate,
			Status:             MapDisplayStatus(order),
			OrderStatus:        order.OrderStatus,
			ShipmentStatus:     order.EasyShipShipmentStatus,
			FulfillmentChannel: order.FulfillmentChannel,
			Items:              []spapi.OrderItem{},
		}
		if order.OrderTotal != nil {
			view.Total = money.CoerceFloat(order.OrderTotal.Amount)
			view.Currency = order.OrderTotal.CurrencyCode
		}
		if order.ShippingAddress != nil {
			view.City = order.ShippingAddress.City
			view.State = order.ShippingAddress.StateOrRegion
		}
		if i < enrichCount {
			view.ItemsEnriched = true
			if outcome, ok := itemsByOrder[order.AmazonOrderID]; ok {
				if outcome.Err != nil {
					// The order still ships with empty items; one bad
					// enrichment must not sink the listing.
					failedItems++
					view.ItemsEnriched = false
				} else if outcome.Value != nil {
					view.Items = outcome.Value
				}
			}
		}
		enriched = append(enriched, view)
	}

	return &Result{
		Orders: enriched,
		Stats:  analytics.Compute(raw, s.grossMargin),
		Meta: Meta{
			Days:          input.Days,
			Limit:         input.Limit,
			TotalCount:    len(raw),
			EnrichedCount: enrichCount,
			FailedItems:   failedItems,
			FetchedAt:     fetchedAt.UTC(),
		},
	}, nil
}
