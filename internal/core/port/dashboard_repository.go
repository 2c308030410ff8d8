package port

import "context"

// StateCount is a farm count aggregated per state.
type StateCount struct {
	State string
	Count int
}

// CropCount is a planted-crop count aggregated per crop name.
type CropCount struct {
	Crop  string
	Count int
}

// LandUse sums farm areas across all active farms.
type LandUse struct {
	TotalArea      float64
	ArableArea     float64
	VegetationArea float64
}

// DashboardRepository serves the aggregation queries behind the dashboard
// endpoint. All aggregations ignore soft-deleted rows.
type DashboardRepository interface {
	FarmsByState(ctx context.Context) ([]StateCount, error)
	CropDistribution(ctx context.Context) ([]CropCount, error)
	LandUse(ctx context.Context) (LandUse, error)
}
