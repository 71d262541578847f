package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/sellerpulse-backend/api/routes"
	"github.com/angelmondragon/sellerpulse-backend/internal/catalog"
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

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	store, err := newStore(context.Background(), cfg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap cache store", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	cacheClient := cache.New(cache.Params{
		Store:   store,
		Logger:  logg,
		Metrics: metrics.NewCacheMetrics(registry),
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
		Metrics:       metrics.NewUpstreamMetrics(registry),
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

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":   cfg.App.Env,
		"addr":  addr,
		"cache": cfg.Cache.Driver,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, cacheClient, registry,
			dashboardService, ordersService, inventoryService),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-shutdownCtx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "error draining api server", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shutting down gracefully")
}

// newStore picks the persistent cache tier. The memory driver returns nil
// so the cache runs on its in-process mirror alone.
func newStore(ctx context.Context, cfg *config.Config) (cache.Store, error) {
	switch cfg.Cache.Driver {
	case config.CacheDriverRedis:
		opts, err := redis.Options(cfg.Redis)
		if err != nil {
			return nil, err
		}
		return cache.NewRedisStore(ctx, opts, cfg.Cache.RedisRetention)
	case config.CacheDriverMemory:
		return nil, nil
	default:
		return cache.NewSQLiteStore(cfg.Cache.SQLitePath)
	}
}
