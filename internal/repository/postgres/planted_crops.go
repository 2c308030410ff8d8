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

var plantedCropColumns = []string{
	"pc.id",
	"pc.harvest_id",
	"pc.crop_id",
	"c.name AS crop_name",
	"h.year AS harvest_year",
	"f.name AS farm_name",
	"pc.is_deleted",
	"pc.created_at",
	"pc.updated_at",
}

var plantedCropOrderColumns = map[string]string{
	"crop":       "c.name",
	"year":       "h.year",
	"farm":       "f.name",
	"created_at": "pc.created_at",
	"updated_at": "pc.updated_at",
}

// PlantedCropRepository implements port.PlantedCropRepository using PostgreSQL.
type PlantedCropRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewPlantedCropRepository wires a PostgreSQL-backed planted-crop repository.
func NewPlantedCropRepository(exec pgExecutor) *PlantedCropRepository {
	repo := &PlantedCropRepository{
		exec:    exec,
		builder: newBuilder(),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// Create inserts a new planted-crop row.
func (r *PlantedCropRepository) Create(ctx context.Context, planted domain.PlantedCrop) error {
	stmt, args, err := r.builder.Insert("agro.planted_crops").
		Columns("id", "harvest_id", "crop_id", "is_deleted", "created_at", "updated_at").
		Values(
			planted.ID,
			planted.HarvestID,
			planted.CropID,
			planted.IsDeleted,
			planted.CreatedAt,
			planted.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert planted crop sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert planted crop: %w", err)
	}

	return nil
}

func (r *PlantedCropRepository) selectPlantedCrops() squirrel.SelectBuilder {
	return r.builder.
		Select(plantedCropColumns...).
		From("agro.planted_crops pc").
		Join("agro.crops c ON c.id = pc.crop_id").
		Join("agro.harvests h ON h.id = pc.harvest_id").
		Join("agro.farms f ON f.id = h.farm_id").
		Where(squirrel.Eq{"pc.is_deleted": false})
}

// GetByID retrieves a non-deleted planted crop with its denormalized names.
func (r *PlantedCropRepository) GetByID(ctx context.Context, id string) (*domain.PlantedCrop, error) {
	stmt, args, err := r.selectPlantedCrops().
		Where(squirrel.Eq{"pc.id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select planted crop sql: %w", err)
	}

	planted, err := scanPlantedCrop(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan planted crop: %w", err)
	}

	return planted, nil
}

// List returns a page of non-deleted planted crops plus the total match count.
func (r *PlantedCropRepository) List(ctx context.Context, filter port.PlantedCropFilter, page port.Page) ([]domain.PlantedCrop, int, error) {
	page = page.Normalized()

	base := applyPlantedCropFilter(r.selectPlantedCrops(), filter)

	stmt, args, err := base.
		OrderBy(orderClause(page.OrderBy, "pc.created_at", plantedCropOrderColumns, page.Desc)).
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list planted crops sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list planted crops: %w", err)
	}
	defer rows.Close()

	var planted []domain.PlantedCrop
	for rows.Next() {
		item, err := scanPlantedCrop(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan planted crop: %w", err)
		}
		planted = append(planted, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate planted crops: %w", err)
	}

	count := applyPlantedCropFilter(
		r.builder.
			Select("COUNT(*)").
			From("agro.planted_crops pc").
			Where(squirrel.Eq{"pc.is_deleted": false}),
		filter,
	)

	stmt, args, err = count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count planted crops sql: %w", err)
	}

	var total int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count planted crops: %w", err)
	}

	return planted, total, nil
}

func applyPlantedCropFilter(base squirrel.SelectBuilder, filter port.PlantedCropFilter) squirrel.SelectBuilder {
	if filter.HarvestID != "" {
		base = base.Where(squirrel.Eq{"pc.harvest_id": filter.HarvestID})
	}
	if filter.CropID != "" {
		base = base.Where(squirrel.Eq{"pc.crop_id": filter.CropID})
	}
	return base
}

// Update rewrites the mutable columns of a planted-crop row.
func (r *PlantedCropRepository) Update(ctx context.Context, planted domain.PlantedCrop) error {
	stmt, args, err := r.builder.Update("agro.planted_crops").
		Set("harvest_id", planted.HarvestID).
		Set("crop_id", planted.CropID).
		Set("updated_at", planted.UpdatedAt).
		Where(squirrel.Eq{"id": planted.ID, "is_deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update planted crop sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update planted crop: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SoftDelete flags the row as deleted.
func (r *PlantedCropRepository) SoftDelete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Update("agro.planted_crops").
		Set("is_deleted", true).
		Where(squirrel.Eq{"id": id, "is_deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete planted crop sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("soft delete planted crop: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func scanPlantedCrop(row pgx.Row) (*domain.PlantedCrop, error) {
	var planted domain.PlantedCrop
	if err := row.Scan(
		&planted.ID,
		&planted.HarvestID,
		&planted.CropID,
		&planted.CropName,
		&planted.HarvestYear,
		&planted.FarmName,
		&planted.IsDeleted,
		&planted.CreatedAt,
		&planted.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &planted, nil
}

var _ port.PlantedCropRepository = (*PlantedCropRepository)(nil)
