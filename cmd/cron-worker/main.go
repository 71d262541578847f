package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/sellerpulse-backend/internal/catalog"
	"github.com/angelmondragon/sellerpulse-backend/internal/cron"
	"github.com/angelmondragon/sellerpulse-backend/internal/dashboard"
	"github.com/angelmondragon/sellerpulse-backend/internal/inventory"
	"github.com/angelmondragon/sellerpulse-backend/internal/orders"
	"github.com/angelmondragon/sellerpulse-backend/internal/spapi"
	"github.com/angelmondragon/sellerpulse-backend/pkg/cache"
	"github.com/angelmondragon/sellerpulse-backend/pkg/config"
	"github.com/angelmondragon/sellerpulse-backend/pkg/logger"
	"github.com/angelmondragon/sellerpulse-backend/pkg/metrics"
	"github.com/angelmondragon/sellerpulse-backend/pkg/redis"
)

const lockKeyFormat = "sp:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	store, lock, err := newStoreAndLock(context.Background(), cfg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap cache store", err)
		os.Exit(1)
	}
	if cfg.Cache.Driver == config.CacheDriverMemory {
		logg.Warn(context.Background(), "memory cache driver warms only this process; api instances cannot read it")
	}

	cacheClient := cache.New(cache.Params{
		Store:   store,
		Logger:  logg,
		Metrics: metrics.NewCacheMetrics(prometheus.DefaultRegisterer),
	})
	defer func() {
		if err := cacheClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing cache store", err)
		}
	}()

	tokens, err := spapi.NewTokenProvider(spapi.TokenProviderParams{
		TokenURL:     cfg.SPAPI.TokenURL,
		ClientID:     cfg.SPAPI.ClientID,
		ClientSecret: cfg.SPAPI.ClientSecret,
		RefreshToken: cfg.SPAPI.RefreshToken,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create token provider", err)
		os.Exit(1)
	}

	gateway, err := spapi.NewClient(spapi.ClientParams{
		HTTPClient:    &http.Client{Timeout: cfg.SPAPI.HTTPTimeout},
		Endpoint:      cfg.SPAPI.Endpoint,
		MarketplaceID: cfg.SPAPI.MarketplaceID,
		Tokens:        tokens,
		Logger:        logg,
		Metrics:       metrics.NewUpstreamMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create marketplace client", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Gateway:     gateway,
		Cache:       cacheClient,
		Logger:      logg,
		TTL:         cfg.Cache.CatalogTTL,
		Concurrency: cfg.Enrichment.CatalogConcurrency,
		Delay:       cfg.Enrichment.CatalogDelay,
		MaxASINs:    cfg.Enrichment.CatalogMaxASINs,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Gateway:     gateway,
		Cache:       cacheClient,
		Logger:      logg,
		TTL:         cfg.Cache.OrdersTTL,
		GrossMargin: cfg.Dashboard.GrossMargin,
		Concurrency: cfg.Enrichment.ItemsConcurrency,
		ItemDelay:   cfg.Enrichment.ItemsDelay,
		PageDelay:   cfg.SPAPI.PageDelay,
		EnrichLimit: cfg.Enrichment.OrderEnrichLimit,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(inventory.ServiceParams{
		Gateway:     gateway,
		Cache:       cacheClient,
		Logger:      logg,
		TTL:         cfg.Cache.InventoryTTL,
		ListingsTTL: cfg.Cache.ListingsTTL,
		PageDelay:   cfg.SPAPI.PageDelay,
		ReportOptions: spapi.ReportOptions{
			PollInterval:    cfg.Report.PollInterval,
			MaxWait:         cfg.Report.MaxWait,
			DownloadTimeout: cfg.Report.DownloadTimeout,
		},
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(dashboard.ServiceParams{
		Gateway:           gateway,
		Catalog:           catalogService,
		Cache:             cacheClient,
		Logger:            logg,
		TTL:               cfg.Cache.DashboardTTL,
		Timezone:          cfg.Dashboard.Timezone,
		SafetyBuffer:      cfg.Dashboard.SafetyBuffer,
		GrossMargin:       cfg.Dashboard.GrossMargin,
		DefaultPeriod:     cfg.Dashboard.DefaultPeriod,
		RecentOrdersLimit: cfg.Dashboard.RecentOrdersLimit,
		ItemsConcurrency:  cfg.Enrichment.ItemsConcurrency,
		ItemsDelay:        cfg.Enrichment.ItemsDelay,
		PageDelay:         cfg.SPAPI.PageDelay,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}

	dashboardJob, err := cron.NewDashboardWarmJob(cron.DashboardWarmJobParams{
		Logger:    logg,
		Dashboard: dashboardService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard warm job", err)
		os.Exit(1)
	}
	ordersJob, err := cron.NewOrdersWarmJob(cron.OrdersWarmJobParams{
		Logger: logg,
		Orders: ordersService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders warm job", err)
		os.Exit(1)
	}
	inventoryJob, err := cron.NewInventoryRefreshJob(cron.InventoryRefreshJobParams{
		Logger:    logg,
		Inventory: inventoryService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory refresh job", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(dashboardJob, ordersJob, inventoryJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"interval": cfg.Cron.Interval.String(),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

// newStoreAndLock wires the persistent cache tier and the run lock. Only
// the redis driver supports cross-instance locking; the other drivers run
// single-instance with a no-op lock.
func newStoreAndLock(ctx context.Context, cfg *config.Config) (cache.Store, cron.Lock, error) {
	switch cfg.Cache.Driver {
	case config.CacheDriverRedis:
		opts, err := redis.Options(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		store, err := cache.NewRedisStore(ctx, opts, cfg.Cache.RedisRetention)
		if err != nil {
			return nil, nil, err
		}
		lock, err := cron.NewRedisLock(goredis.NewClient(opts), lockKey(cfg.App.Env), 0)
		if err != nil {
			return nil, nil, err
		}
		return store, lock, nil
	case config.CacheDriverMemory:
		return nil, cron.NopLock{}, nil
	default:
		store, err := cache.NewSQLiteStore(cfg.Cache.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, cron.NopLock{}, nil
	}
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
