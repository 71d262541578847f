package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/sellerpulse-backend/api/controllers"
	"github.com/angelmondragon/sellerpulse-backend/api/middleware"
	"github.com/angelmondragon/sellerpulse-backend/api/responses"
	"github.com/angelmondragon/sellerpulse-backend/internal/dashboard"
	"github.com/angelmondragon/sellerpulse-backend/internal/inventory"
	"github.com/angelmondragon/sellerpulse-backend/internal/orders"
	"github.com/angelmondragon/sellerpulse-backend/pkg/cache"
	"github.com/angelmondragon/sellerpulse-backend/pkg/config"
	"github.com/angelmondragon/sellerpulse-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	store *cache.Cache,
	registry *prometheus.Registry,
	dashboardService dashboard.Service,
	ordersService orders.Service,
	inventoryService inventory.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", controllers.Dashboard(dashboardService, logg))
		r.Get("/dashboard/periods", func(w http.ResponseWriter, req *http.Request) {
			responses.WriteSuccess(w, map[string]any{"periods": dashboardService.Periods()})
		})
		r.Get("/orders", controllers.Orders(ordersService, logg))
		r.Get("/inventory", controllers.Inventory(inventoryService, logg))
		r.Get("/platforms", controllers.Platforms(cfg))
		r.Post("/cache/clear", controllers.CacheClear(store, logg))
	})

	return r
}
