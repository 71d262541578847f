package cron

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/angelmondragon/sellerpulse-backend/internal/dashboard"
	"github.com/angelmondragon/sellerpulse-backend/pkg/logger"
	"github.com/angelmondragon/sellerpulse-backend/pkg/types"
)

type dashboardWarmer interface {
	Get(ctx context.Context, input dashboard.GetInput) (*dashboard.Result, types.Source, error)
	Periods() []string
}

type DashboardWarmJobParams struct {
	Logger    *logger.Logger
	Dashboard dashboardWarmer

	// Periods overrides the service's full period list when only a
	// subset should stay warm.
	Periods []string
}

func NewDashboardWarmJob(params DashboardWarmJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Dashboard == nil {
		return nil, fmt.Errorf("dashboard service required")
	}
	periods := params.Periods
	if len(periods) == 0 {
		periods = params.Dashboard.Periods()
	}
	return &dashboardWarmJob{
		logg:      params.Logger,
		dashboard: params.Dashboard,
		periods:   periods,
	}, nil
}

type dashboardWarmJob struct {
	logg      *logger.Logger
	dashboard dashboardWarmer
	periods   []string
}

func (j *dashboardWarmJob) Name() string { return "dashboard-warm" }

// Run rebuilds the dashboard payload for every configured period so
// interactive requests land on a warm cache. A failed period does not
// stop the remaining ones.
func (j *dashboardWarmJob) Run(ctx context.Context) error {
	var errs error
	warmed := 0
	for _, period := range j.periods {
		_, _, err := j.dashboard.Get(ctx, dashboard.GetInput{Period: period, ForceRefresh: true})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("period %s: %w", period, err))
			continue
		}
		warmed++
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"periods_total":  len(j.periods),
		"periods_warmed": warmed,
	})
	j.logg.Info(logCtx, "dashboard warm complete")
	if errs != nil {
		return fmt.Errorf("dashboard warm: %w", errs)
	}
	return nil
}
