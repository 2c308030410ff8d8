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

// farmColumns are prefixed because listings join producers for the owner name.
var farmColumns = []string{
	"f.id",
	"f.name",
	"f.city",
	"f.state",
	"f.total_area",
	"f.arable_area",
	"f.vegetation_area",
	"f.producer_id",
	"p.name AS producer_name",
	"f.is_deleted",
	"f.created_at",
	"f.updated_at",
}

var farmOrderColumns = map[string]string{
	"name":       "f.name",
	"city":       "f.city",
	"state":      "f.state",
	"total_area": "f.total_area",
	"created_at": "f.created_at",
	"updated_at": "f.updated_at",
}

// FarmRepository implements port.FarmRepository using PostgreSQL.
type FarmRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewFarmRepository wires a PostgreSQL-backed farm repository.
func NewFarmRepository(exec pgExecutor) *FarmRepository {
	repo := &FarmRepository{
		exec:    exec,
		builder: newBuilder(),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// Create inserts a new farm row.
func (r *FarmRepository) Create(ctx context.Context, farm domain.Farm) error {
	stmt, args, err := r.builder.Insert("agro.farms").
		Columns(
			"id",
			"name",
			"city",
			"state",
			"total_area",
			"arable_area",
			"vegetation_area",
			"producer_id",
			"is_deleted",
			"created_at",
			"updated_at",
		).
		Values(
			farm.ID,
			farm.Name,
			farm.City,
			farm.State,
			farm.TotalArea,
			farm.ArableArea,
			farm.VegetationArea,
			farm.ProducerID,
			farm.IsDeleted,
			farm.CreatedAt,
			farm.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert farm sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert farm: %w", err)
	}

	return nil
}

func (r *FarmRepository) selectFarms() squirrel.SelectBuilder {
	return r.builder.
		Select(farmColumns...).
		From("agro.farms f").
		Join("agro.producers p ON p.id = f.producer_id").
		Where(squirrel.Eq{"f.is_deleted": false})
}

// GetByID retrieves a non-deleted farm with its producer name.
func (r *FarmRepository) GetByID(ctx context.Context, id string) (*domain.Farm, error) {
	stmt, args, err := r.selectFarms().
		Where(squirrel.Eq{"f.id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select farm sql: %w", err)
	}

	farm, err := scanFarm(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan farm: %w", err)
	}

	return farm, nil
}

// List returns a page of non-deleted farms plus the total match count.
func (r *FarmRepository) List(ctx context.Context, filter port.FarmFilter, page port.Page) ([]domain.Farm, int, error) {
	page = page.Normalized()

	base := applyFarmFilter(r.selectFarms(), filter)

	stmt, args, err := base.
		OrderBy(orderClause(page.OrderBy, "f.name", farmOrderColumns, page.Desc)).
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list farms sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list farms: %w", err)
	}
	defer rows.Close()

	var farms []domain.Farm
	for rows.Next() {
		farm, err := scanFarm(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan farm: %w", err)
		}
		farms = append(farms, *farm)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate farms: %w", err)
	}

	count := applyFarmFilter(
		r.builder.
			Select("COUNT(*)").
			From("agro.farms f").
			Where(squirrel.Eq{"f.is_deleted": false}),
		filter,
	)

	stmt, args, err = count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count farms sql: %w", err)
	}

	var total int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count farms: %w", err)
	}

	return farms, total, nil
}

func applyFarmFilter(base squirrel.SelectBuilder, filter port.FarmFilter) squirrel.SelectBuilder {
	if filter.Name != "" {
		base = base.Where(squirrel.ILike{"f.name": "%" + filter.Name + "%"})
	}
	if filter.City != "" {
		base = base.Where(squirrel.ILike{"f.city": "%" + filter.City + "%"})
	}
	if filter.State != "" {
		base = base.Where(squirrel.Eq{"f.state": filter.State})
	}
	if filter.ProducerID != "" {
		base = base.Where(squirrel.Eq{"f.producer_id": filter.ProducerID})
	}
	return base
}

// Update rewrites the mutable columns of a farm row.
func (r *FarmRepository) Update(ctx context.Context, farm domain.Farm) error {
	stmt, args, err := r.builder.Update("agro.farms").
		Set("name", farm.Name).
		Set("city", farm.City).
		Set("state", farm.State).
		Set("total_area", farm.TotalArea).
		Set("arable_area", farm.ArableArea).
		Set("vegetation_area", farm.VegetationArea).
		Set("producer_id", farm.ProducerID).
		Set("updated_at", farm.UpdatedAt).
		Where(squirrel.Eq{"id": farm.ID, "is_deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update farm sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update farm: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SoftDelete flags the row as deleted.
func (r *FarmRepository) SoftDelete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Update("agro.farms").
		Set("is_deleted", true).
		Where(squirrel.Eq{"id": id, "is_deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete farm sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("soft delete farm: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func scanFarm(row pgx.Row) (*domain.Farm, error) {
	var farm domain.Farm
	if err := row.Scan(
		&farm.ID,
		&farm.Name,
		&farm.City,
		&farm.State,
		&farm.TotalArea,
		&farm.ArableArea,
		&farm.VegetationArea,
		&farm.ProducerID,
		&farm.ProducerName,
		&farm.IsDeleted,
		&farm.CreatedAt,
		&farm.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &farm, nil
}

var _ port.FarmRepository = (*FarmRepository)(nil)
