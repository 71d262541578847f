package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/sellerpulse-backend/internal/orders"
	"github.com/angelmondragon/sellerpulse-backend/pkg/logger"
	"github.com/angelmondragon/sellerpulse-backend/pkg/types"
)

type ordersWarmer interface {
	List(ctx context.Context, input orders.ListInput) (*orders.Result, types.Source, error)
}

type OrdersWarmJobParams struct {
	Logger *logger.Logger
	Orders ordersWarmer
	Days   int
	Limit  int
}

func NewOrdersWarmJob(params OrdersWarmJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	return &ordersWarmJob{
		logg:   params.Logger,
		orders: params.Orders,
		days:   params.Days,
		limit:  params.Limit,
	}, nil
}

type ordersWarmJob struct {
	logg   *logger.Logger
	orders ordersWarmer
	days   int
	limit  int
}

func (j *ordersWarmJob) Name() string { return "orders-warm" }

func (j *ordersWarmJob) Run(ctx context.Context) error {
	result, _, err := j.orders.List(ctx, orders.ListInput{
		Days:         j.days,
		Limit:        j.limit,
		ForceRefresh: true,
	})
	if err != nil {
		return fmt.Errorf("orders warm: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"orders_total":    result.Meta.TotalCount,
		"orders_enriched": result.Meta.EnrichedCount,
	})
	j.logg.Info(logCtx, "orders warm complete")
	return nil
}
