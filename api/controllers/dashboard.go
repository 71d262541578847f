package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/sellerpulse-backend/api/responses"
	"github.com/angelmondragon/sellerpulse-backend/api/validators"
	"github.com/angelmondragon/sellerpulse-backend/internal/dashboard"
	pkgerrors "github.com/angelmondragon/sellerpulse-backend/pkg/errors"
	"github.com/angelmondragon/sellerpulse-backend/pkg/logger"
)

// Dashboard serves the period KPI payload.
func Dashboard(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}

		input := dashboard.GetInput{
			Period:       strings.TrimSpace(r.URL.Query().Get("period")),
			ForceRefresh: validators.ParseQueryBool(r, "refresh"),
		}

		result, source, err := svc.Get(r.Context(), input)
		if result == nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSourced(w, result, source, err)
	}
}
