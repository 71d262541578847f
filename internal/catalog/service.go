package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/sellerpulse-backend/internal/spapi"
	"github.com/angelmondragon/sellerpulse-backend/pkg/cache"
	"github.com/angelmondragon/sellerpulse-backend/pkg/fetch"
	"github.com/angelmondragon/sellerpulse-backend/pkg/logger"
)

const cacheSchemaVersion = "v1"

// Service resolves catalog metadata for ASINs, serving from the merged
// per-marketplace cache record and fetching only what is missing.
type Service interface {
	GetMany(ctx context.Context, asins []string) map[string]spapi.CatalogInfo
}

type itemFetcher interface {
	MarketplaceID() string
	GetCatalogItem(ctx context.Context, asin string) (*spapi.CatalogInfo, error)
}

// ServiceParams configure the catalog service.
type ServiceParams struct {
	Gateway     itemFetcher
	Cache       *cache.Cache
	Logger      *logger.Logger
	TTL         time.Duration
	Concurrency int
	Delay       time.Duration
	MaxASINs    int
}

type service struct {
	gateway  itemFetcher
	cache    *cache.Cache
	logg     *logger.Logger
	ttl      time.Duration
	pool     fetch.Pool
	maxASINs int
}

// NewService constructs a catalog service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Gateway == nil {
		return nil, fmt.Errorf("gateway required")
	}
	if params.Cache == nil {
		return nil, fmt.Errorf("cache required")
	}
	if params.TTL <= 0 {
		return nil, fmt.Errorf("catalog ttl required")
	}
	concurrency := params.Concurrency
	if concurrency <= 0 {
		concurrency = 2
	}
	maxASINs := params.MaxASINs
	if maxASINs <= 0 {
		maxASINs = 150
	}
	return &service{
		gateway:  params.Gateway,
		cache:    params.Cache,
		logg:     params.Logger,
		ttl:      params.TTL,
		pool:     fetch.Pool{Concurrency: concurrency, Delay: params.Delay},
		maxASINs: maxASINs,
	}, nil
}

func (s *service) cacheKey() cache.Key {
	return cache.NewKey("catalog", cacheSchemaVersion, s.gateway.MarketplaceID())
}

// GetMany returns whatever catalog metadata it can: the fresh merged record
// first, then a bounded fan-out for the rest. Once the record's TTL lapses
// every ASIN is refetched; a lookup failure falls back to that ASIN's expired
// value when one exists, and previously learned records always survive a bad
// batch.
func (s *service) GetMany(ctx context.Context, asins []string) map[string]spapi.CatalogInfo {
	unique := dedupe(asins)
	if len(unique) > s.maxASINs {
		unique = unique[:s.maxASINs]
	}

	known, _ := cache.Get[map[string]spapi.CatalogInfo](ctx, s.cache, s.cacheKey())
	result := make(map[string]spapi.CatalogInfo, len(unique))
	var missing []string
	for _, asin := range unique {
		if info, ok := known[asin]; ok {
			result[asin] = info
			continue
		}
		missing = append(missing, asin)
	}
	if len(missing) == 0 {
		return result
	}

	stale, _ := cache.GetStale[map[string]spapi.CatalogInfo](ctx, s.cache, s.cacheKey())
	fetched := fetch.Map(ctx, s.pool, missing, func(ctx context.Context, asin string) (spapi.CatalogInfo, error) {
		info, err := s.gateway.GetCatalogItem(ctx, asin)
		if err != nil {
			return spapi.CatalogInfo{}, err
		}
		return *info, nil
	})

	learned := make(map[string]spapi.CatalogInfo)
	for asin, outcome := range fetched {
		if outcome.Err != nil {
			if s.logg != nil {
				s.logg.Warn(s.logg.WithField(ctx, "asin", asin), "catalog lookup failed; continuing without metadata")
			}
			if info, ok := stale[asin]; ok {
				result[asin] = info
			}
			continue
		}
		learned[asin] = outcome.Value
		result[asin] = outcome.Value
	}

	if len(learned) > 0 {
		if err := cache.MergeTyped(ctx, s.cache, s.cacheKey(), learned, s.ttl); err != nil && s.logg != nil {
			s.logg.Error(ctx, "catalog cache merge failed", err)
		}
	}
	return result
}

func dedupe(asins []string) []string {
	seen := make(map[string]struct{}, len(asins))
	out := make([]string, 0, len(asins))
	for _, asin := range asins {
		if asin == "" {
			continue
		}
		if _, ok := seen[asin]; ok {
			continue
		}
		seen[asin] = struct{}{}
		out = append(out, asin)
	}
	return out
}
