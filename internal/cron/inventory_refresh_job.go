package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/sellerpulse-backend/internal/inventory"
	"github.com/angelmondragon/sellerpulse-backend/pkg/logger"
	"github.com/angelmondragon/sellerpulse-backend/pkg/types"
)

type inventoryRefresher interface {
	Get(ctx context.Context, input inventory.GetInput) (*inventory.Result, types.Source, error)
}

type InventoryRefreshJobParams struct {
	Logger    *logger.Logger
	Inventory inventoryRefresher
}

func NewInventoryRefreshJob(params InventoryRefreshJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	return &inventoryRefreshJob{
		logg:      params.Logger,
		inventory: params.Inventory,
	}, nil
}

type inventoryRefreshJob struct {
	logg      *logger.Logger
	inventory inventoryRefresher
}

func (j *inventoryRefreshJob) Name() string { return "inventory-refresh" }

// Run rebuilds the merged stock view, which also renews the listings
// report cache before its 24h TTL lapses.
func (j *inventoryRefreshJob) Run(ctx context.Context) error {
	result, _, err := j.inventory.Get(ctx, inventory.GetInput{
		Filter:       inventory.FilterAll,
		ForceRefresh: true,
	})
	if err != nil && result == nil {
		return fmt.Errorf("inventory refresh: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"sku_total": result.Stats.TotalSKUs,
		"partial":   result.Partial,
	})
	j.logg.Info(logCtx, "inventory refresh complete")
	return nil
}
