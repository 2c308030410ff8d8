package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/domain"
	"github.com/KevinRuanSoares/serasa-test-api/internal/core/port"
	"github.com/KevinRuanSoares/serasa-test-api/internal/repository"
)

var tokenColumns = []string{"id", "key", "user_id", "created_at"}

// TokenRepository implements port.TokenRepository using PostgreSQL.
type TokenRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewTokenRepository wires a PostgreSQL-backed token repository.
func NewTokenRepository(exec pgExecutor) *TokenRepository {
	repo := &TokenRepository{
		exec:    exec,
		builder: newBuilder(),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// GetByKey retrieves a token by its opaque key.
func (r *TokenRepository) GetByKey(ctx context.Context, key string) (*domain.AuthToken, error) {
	return r.getOne(ctx, squirrel.Eq{"key": key})
}

// GetByUserID retrieves the token owned by a user, if any.
func (r *TokenRepository) GetByUserID(ctx context.Context, userID string) (*domain.AuthToken, error) {
	return r.getOne(ctx, squirrel.Eq{"user_id": userID})
}

func (r *TokenRepository) getOne(ctx context.Context, pred any) (*domain.AuthToken, error) {
	stmt, args, err := r.builder.
		Select(tokenColumns...).
		From("agro.auth_tokens").
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select token sql: %w", err)
	}

	var token domain.AuthToken
	row := r.exec.QueryRow(ctx, stmt, args...)
	if err := row.Scan(&token.ID, &token.Key, &token.UserID, &token.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan token: %w", err)
	}

	return &token, nil
}

// Create inserts a new token row.
func (r *TokenRepository) Create(ctx context.Context, token domain.AuthToken) error {
	stmt, args, err := r.builder.Insert("agro.auth_tokens").
		Columns(tokenColumns...).
		Values(token.ID, token.Key, token.UserID, token.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert token sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert token: %w", err)
	}

	return nil
}

// Touch rewinds the creation timestamp, sliding the expiry window forward.
func (r *TokenRepository) Touch(ctx context.Context, id string, createdAt time.Time) error {
	stmt, args, err := r.builder.Update("agro.auth_tokens").
		Set("created_at", createdAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build touch token sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("touch token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a token row by id.
func (r *TokenRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("agro.auth_tokens").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete token sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// DeleteByUserID removes whatever token the user owns. Missing rows are not an error.
func (r *TokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	stmt, args, err := r.builder.Delete("agro.auth_tokens").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete tokens sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete tokens: %w", err)
	}

	return nil
}

var _ port.TokenRepository = (*TokenRepository)(nil)
