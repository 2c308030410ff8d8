package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/domain"
	"github.com/KevinRuanSoares/serasa-test-api/internal/core/port"
	"github.com/KevinRuanSoares/serasa-test-api/internal/repository"
)

var harvestColumns = []string{
	"h.id",
	"h.year",
	"h.farm_id",
	"f.name AS farm_name",
	"h.is_deleted",
	"h.created_at",
	"h.updated_at",
}

var harvestOrderColumns = map[string]string{
	"year":       "h.year",
	"farm":       "f.name",
	"created_at": "h.created_at",
	"updated_at": "h.updated_at",
}

// HarvestRepository implements port.HarvestRepository using PostgreSQL.
type HarvestRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewHarvestRepository wires a PostgreSQL-backed harvest repository.
func NewHarvestRepository(exec pgExecutor) *HarvestRepository {
	repo := &HarvestRepository{
		exec:    exec,
		builder: newBuilder(),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// Create inserts a new harvest row.
func (r *HarvestRepository) Create(ctx context.Context, harvest domain.Harvest) error {
	stmt, args, err := r.builder.Insert("agro.harvests").
		Columns("id", "year", "farm_id", "is_deleted", "created_at", "updated_at").
		Values(
			harvest.ID,
			harvest.Year,
			harvest.FarmID,
			harvest.IsDeleted,
			harvest.CreatedAt,
			harvest.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert harvest sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert harvest: %w", err)
	}

	return nil
}

func (r *HarvestRepository) selectHarvests() squirrel.SelectBuilder {
	return r.builder.
		Select(harvestColumns...).
		From("agro.harvests h").
		Join("agro.farms f ON f.id = h.farm_id").
		Where(squirrel.Eq{"h.is_deleted": false})
}

// GetByID retrieves a non-deleted harvest with its farm name.
func (r *HarvestRepository) GetByID(ctx context.Context, id string) (*domain.Harvest, error) {
	stmt, args, err := r.selectHarvests().
		Where(squirrel.Eq{"h.id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select harvest sql: %w", err)
	}

	harvest, err := scanHarvest(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan harvest: %w", err)
	}

	return harvest, nil
}

// List returns a page of non-deleted harvests plus the total match count.
func (r *HarvestRepository) List(ctx context.Context, filter port.HarvestFilter, page port.Page) ([]domain.Harvest, int, error) {
	page = page.Normalized()

	base := applyHarvestFilter(r.selectHarvests(), filter)

	stmt, args, err := base.
		OrderBy(orderClause(page.OrderBy, "h.year", harvestOrderColumns, page.Desc)).
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list harvests sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list harvests: %w", err)
	}
	defer rows.Close()

	var harvests []domain.Harvest
	for rows.Next() {
		harvest, err := scanHarvest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan harvest: %w", err)
		}
		harvests = append(harvests, *harvest)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate harvests: %w", err)
	}

	count := applyHarvestFilter(
		r.builder.
			Select("COUNT(*)").
			From("agro.harvests h").
			Where(squirrel.Eq{"h.is_deleted": false}),
		filter,
	)

	stmt, args, err = count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count harvests sql: %w", err)
	}

	var total int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count harvests: %w", err)
	}

	return harvests, total, nil
}

func applyHarvestFilter(base squirrel.SelectBuilder, filter port.HarvestFilter) squirrel.SelectBuilder {
	if filter.Year != "" {
		base = base.Where(squirrel.Eq{"h.year": filter.Year})
	}
	if filter.FarmID != "" {
		base = base.Where(squirrel.Eq{"h.farm_id": filter.FarmID})
	}
	return base
}

// Update rewrites the mutable columns of a harvest row.
func (r *HarvestRepository) Update(ctx context.Context, harvest domain.Harvest) error {
	stmt, args, err := r.builder.Update("agro.harvests").
		Set("year", harvest.Year).
		Set("farm_id", harvest.FarmID).
		Set("updated_at", harvest.UpdatedAt).
		Where(squirrel.Eq{"id": harvest.ID, "is_deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update harvest sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update harvest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SoftDelete flags the row as deleted.
func (r *HarvestRepository) SoftDelete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Update("agro.harvests").
		Set("is_deleted", true).
		Where(squirrel.Eq{"id": id, "is_deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete harvest sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("soft delete harvest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func scanHarvest(row pgx.Row) (*domain.Harvest, error) {
	var harvest domain.Harvest
	if err := row.Scan(
		&harvest.ID,
		&harvest.Year,
		&harvest.FarmID,
		&harvest.FarmName,
		&harvest.IsDeleted,
		&harvest.CreatedAt,
		&harvest.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &harvest, nil
}

var _ port.HarvestRepository = (*HarvestRepository)(nil)
