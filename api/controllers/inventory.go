package controllers

import (
	"net/http"

	"github.com/angelmondragon/sellerpulse-backend/api/responses"
	"github.com/angelmondragon/sellerpulse-backend/api/validators"
	"github.com/angelmondragon/sellerpulse-backend/internal/inventory"
	pkgerrors "github.com/angelmondragon/sellerpulse-backend/pkg/errors"
	"github.com/angelmondragon/sellerpulse-backend/pkg/logger"
)

// Inventory serves the merged stock view.
func Inventory(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		filter, err := validators.ParseQueryEnum(r, "filter", inventory.FilterAll,
			inventory.FilterAll, inventory.FilterFBA, inventory.FilterMerchant)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, source, err := svc.Get(r.Context(), inventory.GetInput{
			Filter:       filter,
			ForceRefresh: validators.ParseQueryBool(r, "refresh"),
		})
		if result == nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSourced(w, result, source, err)
	}
}
