package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App        AppConfig
	Cache      CacheConfig
	Redis      RedisConfig
	SPAPI      SPAPIConfig
	Dashboard  DashboardConfig
	Enrichment EnrichmentConfig
	Report     ReportConfig
	Cron       CronConfig
}

var validate = validator.New()

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if cfg.Cache.Driver == CacheDriverRedis && cfg.Redis.URL == "" && cfg.Redis.Address == "" {
		return nil, fmt.Errorf("cache driver %q requires %s or %s", CacheDriverRedis, EnvRedisURL, EnvRedisAddr)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SELLERPULSE_APP_ENV" required:"true"`
	Port         string `envconfig:"SELLERPULSE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SELLERPULSE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SELLERPULSE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type CacheConfig struct {
	Driver     string `envconfig:"SELLERPULSE_CACHE_DRIVER" default:"sqlite" validate:"oneof=sqlite redis memory"`
	SQLitePath string `envconfig:"SELLERPULSE_CACHE_SQLITE_PATH" default:".cache/sellerpulse.db"`

	// Redis entries are retained past their TTL so stale reads keep working.
	RedisRetention time.Duration `envconfig:"SELLERPULSE_CACHE_REDIS_RETENTION" default:"168h"`

	DashboardTTL time.Duration `envconfig:"SELLERPULSE_CACHE_DASHBOARD_TTL" default:"5m"`
	OrdersTTL    time.Duration `envconfig:"SELLERPULSE_CACHE_ORDERS_TTL" default:"5m"`
	InventoryTTL time.Duration `envconfig:"SELLERPULSE_CACHE_INVENTORY_TTL" default:"10m"`
	CatalogTTL   time.Duration `envconfig:"SELLERPULSE_CACHE_CATALOG_TTL" default:"168h"`
	ListingsTTL  time.Duration `envconfig:"SELLERPULSE_CACHE_LISTINGS_TTL" default:"24h"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SELLERPULSE_REDIS_URL"`
	Address      string        `envconfig:"SELLERPULSE_REDIS_ADDR"`
	Password     string        `envconfig:"SELLERPULSE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SELLERPULSE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SELLERPULSE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SELLERPULSE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SELLERPULSE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SELLERPULSE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SELLERPULSE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type SPAPIConfig struct {
	Endpoint      string        `envconfig:"SELLERPULSE_SPAPI_ENDPOINT" default:"https://sellingpartnerapi-eu.amazon.com"`
	TokenURL      string        `envconfig:"SELLERPULSE_SPAPI_TOKEN_URL" default:"https://api.amazon.com/auth/o2/token"`
	MarketplaceID string        `envconfig:"SELLERPULSE_SPAPI_MARKETPLACE_ID" default:"A21TJRUUN4KGV"`
	ClientID      string        `envconfig:"SELLERPULSE_LWA_CLIENT_ID" required:"true"`
	ClientSecret  string        `envconfig:"SELLERPULSE_LWA_CLIENT_SECRET" required:"true"`
	RefreshToken  string        `envconfig:"SELLERPULSE_LWA_REFRESH_TOKEN" required:"true"`
	HTTPTimeout   time.Duration `envconfig:"SELLERPULSE_SPAPI_HTTP_TIMEOUT" default:"30s"`
	MaxPageSize   int           `envconfig:"SELLERPULSE_SPAPI_MAX_PAGE_SIZE" default:"100" validate:"gte=1,lte=100"`
	PageDelay     time.Duration `envconfig:"SELLERPULSE_SPAPI_PAGE_DELAY" default:"200ms"`
}

type DashboardConfig struct {
	Timezone          string        `envconfig:"SELLERPULSE_MARKETPLACE_TIMEZONE" default:"Asia/Kolkata"`
	SafetyBuffer      time.Duration `envconfig:"SELLERPULSE_WINDOW_SAFETY_BUFFER" default:"3m"`
	GrossMargin       float64       `envconfig:"SELLERPULSE_GROSS_MARGIN" default:"0.30" validate:"gte=0,lte=1"`
	DefaultPeriod     string        `envconfig:"SELLERPULSE_DEFAULT_PERIOD" default:"30d" validate:"oneof=1d 7d 30d 90d 1y"`
	RecentOrdersLimit int           `envconfig:"SELLERPULSE_RECENT_ORDERS_LIMIT" default:"15" validate:"gte=1"`
}

type EnrichmentConfig struct {
	ItemsConcurrency int           `envconfig:"SELLERPULSE_ITEMS_CONCURRENCY" default:"6" validate:"gte=1,lte=10"`
	ItemsDelay       time.Duration `envconfig:"SELLERPULSE_ITEMS_DELAY" default:"120ms"`
	OrderEnrichLimit int           `envconfig:"SELLERPULSE_ORDER_ENRICH_LIMIT" default:"200" validate:"gte=1,lte=500"`

	CatalogConcurrency int           `envconfig:"SELLERPULSE_CATALOG_CONCURRENCY" default:"2" validate:"gte=1,lte=10"`
	CatalogDelay       time.Duration `envconfig:"SELLERPULSE_CATALOG_DELAY" default:"200ms"`
	CatalogMaxASINs    int           `envconfig:"SELLERPULSE_CATALOG_MAX_ASINS" default:"150" validate:"gte=1"`
}

type ReportConfig struct {
	PollInterval    time.Duration `envconfig:"SELLERPULSE_REPORT_POLL_INTERVAL" default:"10s"`
	MaxWait         time.Duration `envconfig:"SELLERPULSE_REPORT_MAX_WAIT" default:"5m"`
	DownloadTimeout time.Duration `envconfig:"SELLERPULSE_REPORT_DOWNLOAD_TIMEOUT" default:"60s"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"SELLERPULSE_CRON_INTERVAL" default:"1h"`
}
