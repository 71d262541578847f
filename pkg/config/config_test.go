package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}

	if cfg.Cache.Driver != CacheDriverSQLite {
		t.Fatalf("expected sqlite cache driver by default, got %q", cfg.Cache.Driver)
	}

	if got := cfg.Cache.DashboardTTL; got != 5*time.Minute {
		t.Fatalf("expected dashboard TTL 5m, got %v", got)
	}

	if got := cfg.Cache.CatalogTTL; got != 168*time.Hour {
		t.Fatalf("expected catalog TTL 7d, got %v", got)
	}

	if cfg.Dashboard.Timezone != "Asia/Kolkata" {
		t.Fatalf("unexpected default timezone %q", cfg.Dashboard.Timezone)
	}

	if cfg.Dashboard.GrossMargin != 0.30 {
		t.Fatalf("unexpected default margin %v", cfg.Dashboard.GrossMargin)
	}

	if cfg.Report.PollInterval != 10*time.Second {
		t.Fatalf("unexpected report poll interval %v", cfg.Report.PollInterval)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvLWARefreshToken); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvLWARefreshToken, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RejectsUnknownCacheDriver(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCacheDriver, "memcached")

	if _, err := Load(); err == nil {
		t.Fatal("expected unknown cache driver to return an error")
	}
}

func TestLoad_RedisDriverRequiresAddress(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCacheDriver, CacheDriverRedis)

	if _, err := Load(); err == nil {
		t.Fatal("expected redis driver without address to return an error")
	}

	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	if _, err := Load(); err != nil {
		t.Fatalf("expected redis driver with url to load, got %v", err)
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvLWAClientID, "amzn1.application-oa2-client.test")
	t.Setenv(EnvLWAClientSecret, "secret")
	t.Setenv(EnvLWARefreshToken, "Atzr|refresh")
	os.Unsetenv(EnvCacheDriver)
	os.Unsetenv(EnvRedisURL)
	os.Unsetenv(EnvRedisAddr)
}
