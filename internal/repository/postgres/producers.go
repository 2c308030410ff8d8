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

var producerColumns = []string{"id", "cpf_cnpj", "name", "is_deleted", "created_at", "updated_at"}

var producerOrderColumns = map[string]string{
	"cpf_cnpj":   "cpf_cnpj",
	"name":       "name",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// ProducerRepository implements port.ProducerRepository using PostgreSQL.
type ProducerRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewProducerRepository wires a PostgreSQL-backed producer repository.
func NewProducerRepository(exec pgExecutor) *ProducerRepository {
	repo := &ProducerRepository{
		exec:    exec,
		builder: newBuilder(),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// Create inserts a new producer row.
func (r *ProducerRepository) Create(ctx context.Context, producer domain.Producer) error {
	stmt, args, err := r.builder.Insert("agro.producers").
		Columns(producerColumns...).
		Values(
			producer.ID,
			producer.CPFCNPJ.String(),
			producer.Name,
			producer.IsDeleted,
			producer.CreatedAt,
			producer.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert producer sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert producer: %w", err)
	}

	return nil
}

// GetByID retrieves a non-deleted producer.
func (r *ProducerRepository) GetByID(ctx context.Context, id string) (*domain.Producer, error) {
	stmt, args, err := r.builder.
		Select(producerColumns...).
		From("agro.producers").
		Where(squirrel.Eq{"id": id, "is_deleted": false}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select producer sql: %w", err)
	}

	producer, err := scanProducer(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan producer: %w", err)
	}

	return producer, nil
}

// List returns a page of non-deleted producers plus the total match count.
func (r *ProducerRepository) List(ctx context.Context, filter port.ProducerFilter, page port.Page) ([]domain.Producer, int, error) {
	page = page.Normalized()

	base := r.builder.
		Select(producerColumns...).
		From("agro.producers").
		Where(squirrel.Eq{"is_deleted": false})
	base = applyProducerFilter(base, filter)

	stmt, args, err := base.
		OrderBy(orderClause(page.OrderBy, "name", producerOrderColumns, page.Desc)).
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list producers sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list producers: %w", err)
	}
	defer rows.Close()

	var producers []domain.Producer
	for rows.Next() {
		producer, err := scanProducer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan producer: %w", err)
		}
		producers = append(producers, *producer)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate producers: %w", err)
	}

	count := r.builder.
		Select("COUNT(*)").
		From("agro.producers").
		Where(squirrel.Eq{"is_deleted": false})
	count = applyProducerFilter(count, filter)

	stmt, args, err = count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count producers sql: %w", err)
	}

	var total int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count producers: %w", err)
	}

	return producers, total, nil
}

func applyProducerFilter(base squirrel.SelectBuilder, filter port.ProducerFilter) squirrel.SelectBuilder {
	if filter.Name != "" {
		base = base.Where(squirrel.ILike{"name": "%" + filter.Name + "%"})
	}
	if filter.CPFCNPJ != "" {
		base = base.Where(squirrel.Eq{"cpf_cnpj": filter.CPFCNPJ})
	}
	return base
}

// Update rewrites the mutable columns of a producer row.
func (r *ProducerRepository) Update(ctx context.Context, producer domain.Producer) error {
	stmt, args, err := r.builder.Update("agro.producers").
		Set("cpf_cnpj", producer.CPFCNPJ.String()).
		Set("name", producer.Name).
		Set("updated_at", producer.UpdatedAt).
		Where(squirrel.Eq{"id": producer.ID, "is_deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update producer sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update producer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SoftDelete flags the row as deleted. Farms of the producer are untouched;
// soft delete does not cascade.
func (r *ProducerRepository) SoftDelete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Update("agro.producers").
		Set("is_deleted", true).
		Where(squirrel.Eq{"id": id, "is_deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete producer sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("soft delete producer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// DocumentInUse reports whether a non-deleted producer other than excludeID
// already holds the document.
func (r *ProducerRepository) DocumentInUse(ctx context.Context, document, excludeID string) (bool, error) {
	query := r.builder.
		Select("1").
		From("agro.producers").
		Where(squirrel.Eq{"cpf_cnpj": document, "is_deleted": false}).
		Limit(1)

	if excludeID != "" {
		query = query.Where(squirrel.NotEq{"id": excludeID})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("build document in use sql: %w", err)
	}

	var one int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&one); err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check document in use: %w", err)
	}

	return true, nil
}

func scanProducer(row pgx.Row) (*domain.Producer, error) {
	var (
		producer domain.Producer
		document string
	)

	if err := row.Scan(
		&producer.ID,
		&document,
		&producer.Name,
		&producer.IsDeleted,
		&producer.CreatedAt,
		&producer.UpdatedAt,
	); err != nil {
		return nil, err
	}

	producer.CPFCNPJ = domain.TaxID(document)
	return &producer, nil
}

var _ port.ProducerRepository = (*ProducerRepository)(nil)
