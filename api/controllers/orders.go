package controllers

import (
	"net/http"

	"github.com/angelmondragon/sellerpulse-backend/api/responses"
	"github.com/angelmondragon/sellerpulse-backend/api/validators"
	"github.com/angelmondragon/sellerpulse-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/sellerpulse-backend/pkg/errors"
	"github.com/angelmondragon/sellerpulse-backend/pkg/logger"
)

// Orders serves the enriched orders listing.
func Orders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		days, err := validators.ParseQueryInt(r, "days", 30, 1, 365)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 500)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, source, err := svc.List(r.Context(), orders.ListInput{
			Days:         days,
			Limit:        limit,
			ForceRefresh: validators.ParseQueryBool(r, "refresh"),
		})
		if result == nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSourced(w, result, source, err)
	}
}
