package usecase

import (
	"context"
	"fmt"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/port"
)

// DashboardSummary aggregates the registry for the reporting endpoint.
type DashboardSummary struct {
	FarmsByState     []port.StateCount
	CropDistribution []port.CropCount
	LandUse          port.LandUse
}

// DashboardService serves registry aggregations over active rows.
type DashboardService struct {
	dashboard port.DashboardRepository
}

// NewDashboardService constructs DashboardService.
func NewDashboardService(dashboard port.DashboardRepository) *DashboardService {
	return &DashboardService{dashboard: dashboard}
}

// Summary gathers all dashboard aggregations in one call.
func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	states, err := s.dashboard.FarmsByState(ctx)
	if err != nil {
		return nil, fmt.Errorf("farms by state: %w", err)
	}

	crops, err := s.dashboard.CropDistribution(ctx)
	if err != nil {
		return nil, fmt.Errorf("crop distribution: %w", err)
	}

	landUse, err := s.dashboard.LandUse(ctx)
	if err != nil {
		return nil, fmt.Errorf("land use: %w", err)
	}

	return &DashboardSummary{
		FarmsByState:     states,
		CropDistribution: crops,
		LandUse:          landUse,
	}, nil
}
