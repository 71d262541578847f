package controllers

import (
	"net/http"

	"github.com/angelmondragon/sellerpulse-backend/api/responses"
	"github.com/angelmondragon/sellerpulse-backend/pkg/config"
)

// PlatformStatus is the connection state of one marketplace integration.
type PlatformStatus struct {
	Platform      string `json:"platform"`
	Connected     bool   `json:"connected"`
	MarketplaceID string `json:"marketplaceId,omitempty"`
	Endpoint      string `json:"endpoint,omitempty"`
}

// Platforms reports which marketplace integrations are configured.
func Platforms(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		amazon := PlatformStatus{
			Platform:      "amazon",
			Connected:     cfg.SPAPI.RefreshToken != "" && cfg.SPAPI.ClientID != "",
			MarketplaceID: cfg.SPAPI.MarketplaceID,
			Endpoint:      cfg.SPAPI.Endpoint,
		}
		responses.WriteSuccess(w, map[string]any{
			"platforms": []PlatformStatus{amazon},
		})
	}
}
