package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/sellerpulse-backend/internal/dashboard"
	"github.com/angelmondragon/sellerpulse-backend/internal/inventory"
	"github.com/angelmondragon/sellerpulse-backend/internal/orders"
	"github.com/angelmondragon/sellerpulse-backend/pkg/cache"
	"github.com/angelmondragon/sellerpulse-backend/pkg/config"
	"github.com/angelmondragon/sellerpulse-backend/pkg/logger"
	"github.com/angelmondragon/sellerpulse-backend/pkg/types"
)

type stubDashboard struct{}

func (stubDashboard) Get(ctx context.Context, input dashboard.GetInput) (*dashboard.Result, types.Source, error) {
	return &dashboard.Result{Period: input.Period}, types.SourceAPI, nil
}

func (stubDashboard) Periods() []string {
	return []string{"today", "1d", "7d", "30d", "90d", "1y"}
}

type stubOrders struct{}

func (stubOrders) List(ctx context.Context, input orders.ListInput) (*orders.Result, types.Source, error) {
	return &orders.Result{}, types.SourceCache, nil
}

type stubInventory struct{}

func (stubInventory) Get(ctx context.Context, input inventory.GetInput) (*inventory.Result, types.Source, error) {
	return &inventory.Result{Filter: input.Filter}, types.SourceAPI, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "test"
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	store := cache.New(cache.Params{Logger: logg})
	return NewRouter(cfg, logg, store, prometheus.NewRegistry(), stubDashboard{}, stubOrders{}, stubInventory{})
}

func TestRouterRoutes(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/health/live", http.StatusOK},
		{http.MethodGet, "/health/ready", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/dashboard?period=7d", http.StatusOK},
		{http.MethodGet, "/api/dashboard/periods", http.StatusOK},
		{http.MethodGet, "/api/orders", http.StatusOK},
		{http.MethodGet, "/api/inventory", http.StatusOK},
		{http.MethodGet, "/api/platforms", http.StatusOK},
		{http.MethodPost, "/api/cache/clear", http.StatusOK},
		{http.MethodGet, "/api/cache/clear", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
	}

	for _, tc := range tests {
		r := httptest.NewRequest(tc.method, tc.path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)

		if w.Code != tc.status {
			t.Fatalf("%s %s returned %d, expected %d", tc.method, tc.path, w.Code, tc.status)
		}
	}
}

func TestRouterSetsRequestID(t *testing.T) {
	router := newTestRouter(t)

	r := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if got := w.Header().Get("X-Request-Id"); got == "" {
		t.Fatal("expected a request id header on every response")
	}
}
