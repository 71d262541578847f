package controllers

import (
	"net/http"

	"github.com/angelmondragon/sellerpulse-backend/api/responses"
	"github.com/angelmondragon/sellerpulse-backend/pkg/cache"
	pkgerrors "github.com/angelmondragon/sellerpulse-backend/pkg/errors"
	"github.com/angelmondragon/sellerpulse-backend/pkg/logger"
)

// CacheClear drops every cached payload so the next reads hit the
// marketplace again.
func CacheClear(store *cache.Cache, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cache unavailable"))
			return
		}
		store.Clear(r.Context())
		if logg != nil {
			logg.Info(r.Context(), "cache cleared by request")
		}
		responses.WriteSuccess(w, map[string]bool{"cleared": true})
	}
}
