package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/sellerpulse-backend/internal/dashboard"
	"github.com/angelmondragon/sellerpulse-backend/internal/inventory"
	"github.com/angelmondragon/sellerpulse-backend/internal/orders"
	"github.com/angelmondragon/sellerpulse-backend/pkg/types"
)

type stubDashboardWarmer struct {
	periods   []string
	refreshed []string
	failOn    string
}

func (s *stubDashboardWarmer) Get(ctx context.Context, input dashboard.GetInput) (*dashboard.Result, types.Source, error) {
	if !input.ForceRefresh {
		return nil, "", errors.New("warm jobs must force a refresh")
	}
	if input.Period == s.failOn {
		return nil, "", errors.New("upstream down")
	}
	s.refreshed = append(s.refreshed, input.Period)
	return &dashboard.Result{Period: input.Period}, types.SourceAPI, nil
}

func (s *stubDashboardWarmer) Periods() []string { return s.periods }

func TestDashboardWarmJobRefreshesEveryPeriod(t *testing.T) {
	warmer := &stubDashboardWarmer{periods: []string{"today", "7d", "30d"}}
	job, err := NewDashboardWarmJob(DashboardWarmJobParams{
		Logger:    cronTestLogger(),
		Dashboard: warmer,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(warmer.refreshed) != 3 {
		t.Fatalf("expected 3 refreshed periods, got %v", warmer.refreshed)
	}
}

func TestDashboardWarmJobContinuesPastFailedPeriod(t *testing.T) {
	warmer := &stubDashboardWarmer{periods: []string{"today", "7d", "30d"}, failOn: "7d"}
	job, err := NewDashboardWarmJob(DashboardWarmJobParams{
		Logger:    cronTestLogger(),
		Dashboard: warmer,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected the failed period to surface")
	}
	if len(warmer.refreshed) != 2 {
		t.Fatalf("remaining periods should still warm, got %v", warmer.refreshed)
	}
}

func TestDashboardWarmJobHonorsPeriodOverride(t *testing.T) {
	warmer := &stubDashboardWarmer{periods: []string{"today", "7d", "30d"}}
	job, err := NewDashboardWarmJob(DashboardWarmJobParams{
		Logger:    cronTestLogger(),
		Dashboard: warmer,
		Periods:   []string{"today"},
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(warmer.refreshed) != 1 || warmer.refreshed[0] != "today" {
		t.Fatalf("expected only the override period, got %v", warmer.refreshed)
	}
}

type stubOrdersWarmer struct {
	input orders.ListInput
	err   error
}

func (s *stubOrdersWarmer) List(ctx context.Context, input orders.ListInput) (*orders.Result, types.Source, error) {
	s.input = input
	if s.err != nil {
		return nil, "", s.err
	}
	return &orders.Result{}, types.SourceAPI, nil
}

func TestOrdersWarmJobForcesRefresh(t *testing.T) {
	warmer := &stubOrdersWarmer{}
	job, err := NewOrdersWarmJob(OrdersWarmJobParams{
		Logger: cronTestLogger(),
		Orders: warmer,
		Days:   30,
		Limit:  50,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !warmer.input.ForceRefresh || warmer.input.Days != 30 || warmer.input.Limit != 50 {
		t.Fatalf("unexpected input %+v", warmer.input)
	}
}

func TestOrdersWarmJobSurfacesFailure(t *testing.T) {
	job, err := NewOrdersWarmJob(OrdersWarmJobParams{
		Logger: cronTestLogger(),
		Orders: &stubOrdersWarmer{err: errors.New("throttled")},
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected the warm failure to surface")
	}
}

type stubInventoryRefresher struct {
	input  inventory.GetInput
	result *inventory.Result
	err    error
}

func (s *stubInventoryRefresher) Get(ctx context.Context, input inventory.GetInput) (*inventory.Result, types.Source, error) {
	s.input = input
	return s.result, types.SourceAPI, s.err
}

func TestInventoryRefreshJobForcesRefresh(t *testing.T) {
	refresher := &stubInventoryRefresher{result: &inventory.Result{}}
	job, err := NewInventoryRefreshJob(InventoryRefreshJobParams{
		Logger:    cronTestLogger(),
		Inventory: refresher,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !refresher.input.ForceRefresh || refresher.input.Filter != inventory.FilterAll {
		t.Fatalf("unexpected input %+v", refresher.input)
	}
}

func TestInventoryRefreshJobToleratesPartialResult(t *testing.T) {
	refresher := &stubInventoryRefresher{
		result: &inventory.Result{Partial: true},
		err:    errors.New("listings report failed"),
	}
	job, err := NewInventoryRefreshJob(InventoryRefreshJobParams{
		Logger:    cronTestLogger(),
		Inventory: refresher,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("a partial refresh is still a refresh: %v", err)
	}
}

func TestInventoryRefreshJobFailsWithNoData(t *testing.T) {
	job, err := NewInventoryRefreshJob(InventoryRefreshJobParams{
		Logger:    cronTestLogger(),
		Inventory: &stubInventoryRefresher{err: errors.New("everything down")},
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected failure when no data at all")
	}
}
