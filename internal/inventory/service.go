package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/angelmondragon/sellerpulse-backend/internal/spapi"
	"github.com/angelmondragon/sellerpulse-backend/pkg/cache"
	pkgerrors "github.com/angelmondragon/sellerpulse-backend/pkg/errors"
	"github.com/angelmondragon/sellerpulse-backend/pkg/logger"
	"github.com/angelmondragon/sellerpulse-backend/pkg/money"
	"github.com/angelmondragon/sellerpulse-backend/pkg/types"
	"go.uber.org/multierr"
)

const cacheSchemaVersion = "v1"

// A listing becomes low-stock below this many fulfillable units.
const defaultLowStockThreshold = 10

// The stock gauge needs a ceiling even for thin listings.
const minStockCeiling = 50

// GetInput bounds an inventory request.
type GetInput struct {
	Filter       string
	ForceRefresh bool
}

// Service produces the merged inventory view.
type Service interface {
	Get(ctx context.Context, input GetInput) (*Result, types.Source, error)
}

type inventorySource interface {
	ListInventorySummaries(ctx context.Context, pageDelay time.Duration) ([]spapi.InventorySummary, error)
	FetchListingsReport(ctx context.Context, opts spapi.ReportOptions) ([]spapi.ListingRow, error)
}

// ServiceParams configure the inventory service.
type ServiceParams struct {
	Gateway           inventorySource
	Cache             *cache.Cache
	Logger            *logger.Logger
	TTL               time.Duration
	ListingsTTL       time.Duration
	PageDelay         time.Duration
	ReportOptions     spapi.ReportOptions
	LowStockThreshold int
	Now               func() time.Time
}

type service struct {
	gateway     inventorySource
	cache       *cache.Cache
	logg        *logger.Logger
	ttl         time.Duration
	listingsTTL time.Duration
	pageDelay   time.Duration
	reportOpts  spapi.ReportOptions
	lowStock    int
	now         func() time.Time
}

// NewService constructs an inventory service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Gateway == nil {
		return nil, fmt.Errorf("gateway required")
	}
	if params.Cache == nil {
		return nil, fmt.Errorf("cache required")
	}
	if params.TTL <= 0 {
		return nil, fmt.Errorf("inventory ttl required")
	}
	if params.ListingsTTL <= 0 {
		return nil, fmt.Errorf("listings ttl required")
	}
	lowStock := params.LowStockThreshold
	if lowStock <= 0 {
		lowStock = defaultLowStockThreshold
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
		listingsTTL: params.ListingsTTL,
		pageDelay:   params.PageDelay,
		reportOpts:  params.ReportOptions,
		lowStock:    lowStock,
		now:         now,
	}, nil
}

func viewKey(filter string) cache.Key {
	return cache.NewKey("inventory", cacheSchemaVersion, filter)
}

func listingsKey() cache.Key {
	return cache.NewKey("listings_report", cacheSchemaVersion)
}

// Get serves the merged view cache-first. One failing source degrades to a
// partial response with a warning; only both sources failing together
// triggers the stale fallback.
func (s *service) Get(ctx context.Context, input GetInput) (*Result, types.Source, error) {
	filter := input.Filter
	switch filter {
	case FilterFBA, FilterMerchant:
	default:
		filter = FilterAll
	}
	key := viewKey(filter)

	if !input.ForceRefresh {
		if cached, ok := cache.Get[Result](ctx, s.cache, key); ok {
			return &cached, types.SourceCache, nil
		}
	}

	result, err := s.buildLive(ctx, filter)
	if err == nil {
		if cacheErr := s.cache.Set(ctx, key, result, s.ttl); cacheErr != nil && s.logg != nil {
			s.logg.Error(ctx, "inventory cache write failed", cacheErr)
		}
		return result, types.SourceAPI, nil
	}

	if s.logg != nil {
		s.logg.Error(ctx, "live inventory fetch failed; trying stale cache", err)
	}
	if stale, ok := cache.GetStale[Result](ctx, s.cache, key); ok {
		return &stale, types.SourceStaleCache, err
	}
	return nil, "", pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "inventory unavailable")
}

func (s *service) buildLive(ctx context.Context, filter string) (*Result, error) {
	listings, listingsErr := s.getListings(ctx)
	summaries, summariesErr := s.gateway.ListInventorySummaries(ctx, s.pageDelay)

	if listingsErr != nil && summariesErr != nil {
		return nil, multierr.Combine(listingsErr, summariesErr)
	}

	result := s.merge(listings, summaries, filter)
	if listingsErr != nil {
		result.Partial = true
		result.Warnings = append(result.Warnings, "listings report unavailable: "+listingsErr.Error())
	}
	if summariesErr != nil {
		result.Partial = true
		result.Warnings = append(result.Warnings, "fulfillment inventory unavailable: "+summariesErr.Error())
	}
	return result, nil
}

// getListings serves the parsed report from cache when fresh and runs the
// report pipeline otherwise. Nothing is cached on a pipeline failure, so a
// timed-out run can never leave a partial snapshot behind.
func (s *service) getListings(ctx context.Context) ([]spapi.ListingRow, error) {
	if rows, ok := cache.Get[[]spapi.ListingRow](ctx, s.cache, listingsKey()); ok {
		return rows, nil
	}
	rows, err := s.gateway.FetchListingsReport(ctx, s.reportOpts)
	if err != nil {
		return nil, err
	}
	if cacheErr := s.cache.Set(ctx, listingsKey(), rows, s.listingsTTL); cacheErr != nil && s.logg != nil {
		s.logg.Error(ctx, "listings cache write failed", cacheErr)
	}
	return rows, nil
}

func (s *service) merge(listings []spapi.ListingRow, summaries []spapi.InventorySummary, filter string) *Result {
	bySKU := make(map[string]*Item)

	for _, row := range listings {
		item := &Item{
			SKU:     row.SellerSKU,
			ASIN:    row.ASIN,
			Name:    row.ItemName,
			Price:   money.CoerceFloat(row.Price),
			Stock:   row.Quantity,
			Channel: ChannelMerchant,
		}
		bySKU[row.SellerSKU] = item
	}

	for _, summary := range summaries {
		item, ok := bySKU[summary.SellerSKU]
		if !ok {
			item = &Item{SKU: summary.SellerSKU, ASIN: summary.ASIN}
			bySKU[summary.SellerSKU] = item
		}
		item.Channel = ChannelFBA
		if item.Name == "" {
			item.Name = summary.ProductName
		}
		if item.ASIN == "" {
			item.ASIN = summary.ASIN
		}
		if summary.Details != nil {
			item.Fulfillable = summary.Details.FulfillableQuantity
			item.Inbound = summary.Details.InboundWorkingQuantity +
				summary.Details.InboundShippedQuantity +
				summary.Details.InboundReceivingQuantity
			if summary.Details.ReservedQuantity != nil {
				item.Reserved = summary.Details.ReservedQuantity.TotalReservedQuantity
			}
			if summary.Details.UnfulfillableQuantity != nil {
				item.Unfulfillable = summary.Details.UnfulfillableQuantity.TotalUnfulfillableQuantity
			}
			item.Stock = summary.Details.FulfillableQuantity
		} else {
			item.Stock = summary.TotalQuantity
		}
	}

	items := make([]Item, 0, len(bySKU))
	var stats Stats
	for _, item := range bySKU {
		if filter == FilterFBA && item.Channel != ChannelFBA {
			continue
		}
		if filter == FilterMerchant && item.Channel != ChannelMerchant {
			continue
		}

		switch {
		case item.Stock <= 0:
			item.Status = StockOut
			stats.OutOfStock++
		case item.Stock < s.lowStock:
			item.Status = StockLow
			stats.LowStock++
		default:
			item.Status = StockIn
			stats.InStock++
		}
		item.MaxStock = item.Stock
		if item.MaxStock < minStockCeiling {
			item.MaxStock = minStockCeiling
		}

		stats.TotalSKUs++
		stats.TotalUnits += item.Stock
		stats.TotalValue += item.Price * float64(item.Stock)
		items = append(items, *item)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].SKU < items[j].SKU })

	return &Result{
		Items:     items,
		Stats:     stats,
		Filter:    filter,
		FetchedAt: s.now().UTC(),
	}
}
