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

var cropColumns = []string{"id", "name", "is_deleted", "created_at", "updated_at"}

var cropOrderColumns = map[string]string{
	"name":       "name",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// CropRepository implements port.CropRepository using PostgreSQL.
type CropRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewCropRepository wires a PostgreSQL-backed crop repository.
func NewCropRepository(exec pgExecutor) *CropRepository {
	repo := &CropRepository{
		exec:    exec,
		builder: newBuilder(),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// Create inserts a new crop row.
func (r *CropRepository) Create(ctx context.Context, crop domain.Crop) error {
	stmt, args, err := r.builder.Insert("agro.crops").
		Columns(cropColumns...).
		Values(crop.ID, crop.Name, crop.IsDeleted, crop.CreatedAt, crop.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert crop sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert crop: %w", err)
	}

	return nil
}

// GetByID retrieves a non-deleted crop.
func (r *CropRepository) GetByID(ctx context.Context, id string) (*domain.Crop, error) {
	stmt, args, err := r.builder.
		Select(cropColumns...).
		From("agro.crops").
		Where(squirrel.Eq{"id": id, "is_deleted": false}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select crop sql: %w", err)
	}

	var crop domain.Crop
	row := r.exec.QueryRow(ctx, stmt, args...)
	if err := row.Scan(&crop.ID, &crop.Name, &crop.IsDeleted, &crop.CreatedAt, &crop.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan crop: %w", err)
	}

	return &crop, nil
}

// List returns a page of non-deleted crops plus the total match count.
func (r *CropRepository) List(ctx context.Context, filter port.CropFilter, page port.Page) ([]domain.Crop, int, error) {
	page = page.Normalized()

	base := r.builder.
		Select(cropColumns...).
		From("agro.crops").
		Where(squirrel.Eq{"is_deleted": false})
	if filter.Name != "" {
		base = base.Where(squirrel.ILike{"name": "%" + filter.Name + "%"})
	}

	stmt, args, err := base.
		OrderBy(orderClause(page.OrderBy, "name", cropOrderColumns, page.Desc)).
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list crops sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list crops: %w", err)
	}
	defer rows.Close()

	var crops []domain.Crop
	for rows.Next() {
		var crop domain.Crop
		if err := rows.Scan(&crop.ID, &crop.Name, &crop.IsDeleted, &crop.CreatedAt, &crop.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan crop: %w", err)
		}
		crops = append(crops, crop)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate crops: %w", err)
	}

	count := r.builder.
		Select("COUNT(*)").
		From("agro.crops").
		Where(squirrel.Eq{"is_deleted": false})
	if filter.Name != "" {
		count = count.Where(squirrel.ILike{"name": "%" + filter.Name + "%"})
	}

	stmt, args, err = count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count crops sql: %w", err)
	}

	var total int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count crops: %w", err)
	}

	return crops, total, nil
}

// Update rewrites the mutable columns of a crop row.
func (r *CropRepository) Update(ctx context.Context, crop domain.Crop) error {
	stmt, args, err := r.builder.Update("agro.crops").
		Set("name", crop.Name).
		Set("updated_at", crop.UpdatedAt).
		Where(squirrel.Eq{"id": crop.ID, "is_deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update crop sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update crop: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SoftDelete flags the row as deleted.
func (r *CropRepository) SoftDelete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Update("agro.crops").
		Set("is_deleted", true).
		Where(squirrel.Eq{"id": id, "is_deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete crop sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("soft delete crop: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.CropRepository = (*CropRepository)(nil)
