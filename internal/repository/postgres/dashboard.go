package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/port"
)

// DashboardRepository answers the aggregation queries of the dashboard.
type DashboardRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewDashboardRepository wires a PostgreSQL-backed dashboard repository.
func NewDashboardRepository(exec pgExecutor) *DashboardRepository {
	repo := &DashboardRepository{
		exec:    exec,
		builder: newBuilder(),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// FarmsByState counts active farms grouped by state, largest first.
func (r *DashboardRepository) FarmsByState(ctx context.Context) ([]port.StateCount, error) {
	stmt, args, err := r.builder.
		Select("state", "COUNT(*)").
		From("agro.farms").
		Where(squirrel.Eq{"is_deleted": false}).
		GroupBy("state").
		OrderBy("COUNT(*) DESC", "state ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build farms by state sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("farms by state: %w", err)
	}
	defer rows.Close()

	var counts []port.StateCount
	for rows.Next() {
		var sc port.StateCount
		if err := rows.Scan(&sc.State, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan state count: %w", err)
		}
		counts = append(counts, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate state counts: %w", err)
	}

	return counts, nil
}

// CropDistribution counts active planted crops grouped by crop name. Rows
// whose harvest or farm is soft-deleted are excluded as well.
func (r *DashboardRepository) CropDistribution(ctx context.Context) ([]port.CropCount, error) {
	stmt, args, err := r.builder.
		Select("c.name", "COUNT(*)").
		From("agro.planted_crops pc").
		Join("agro.crops c ON c.id = pc.crop_id").
		Join("agro.harvests h ON h.id = pc.harvest_id").
		Join("agro.farms f ON f.id = h.farm_id").
		Where(squirrel.Eq{
			"pc.is_deleted": false,
			"c.is_deleted":  false,
			"h.is_deleted":  false,
			"f.is_deleted":  false,
		}).
		GroupBy("c.name").
		OrderBy("COUNT(*) DESC", "c.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build crop distribution sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("crop distribution: %w", err)
	}
	defer rows.Close()

	var counts []port.CropCount
	for rows.Next() {
		var cc port.CropCount
		if err := rows.Scan(&cc.Crop, &cc.Count); err != nil {
			return nil, fmt.Errorf("scan crop count: %w", err)
		}
		counts = append(counts, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate crop counts: %w", err)
	}

	return counts, nil
}

// LandUse sums the area columns across active farms.
func (r *DashboardRepository) LandUse(ctx context.Context) (port.LandUse, error) {
	stmt, args, err := r.builder.
		Select(
			"COALESCE(SUM(total_area), 0)",
			"COALESCE(SUM(arable_area), 0)",
			"COALESCE(SUM(vegetation_area), 0)",
		).
		From("agro.farms").
		Where(squirrel.Eq{"is_deleted": false}).
		ToSql()
	if err != nil {
		return port.LandUse{}, fmt.Errorf("build land use sql: %w", err)
	}

	var use port.LandUse
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&use.TotalArea,
		&use.ArableArea,
		&use.VegetationArea,
	); err != nil {
		return port.LandUse{}, fmt.Errorf("land use: %w", err)
	}

	return use, nil
}

var _ port.DashboardRepository = (*DashboardRepository)(nil)
