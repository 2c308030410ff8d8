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

var userColumns = []string{
	"id",
	"email",
	"name",
	"cpf",
	"password_hash",
	"is_active",
	"is_deleted",
	"street",
	"postal_code",
	"city",
	"state",
	"phone_number",
	"recover_password_code",
	"recover_password_code_check",
	"recover_password_code_attempts",
	"recover_password_attempts",
	"created_at",
	"updated_at",
}

var userOrderColumns = map[string]string{
	"name":       "name",
	"email":      "email",
	"cpf":        "cpf",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository wires a PostgreSQL-backed user repository.
func NewUserRepository(exec pgExecutor) *UserRepository {
	repo := &UserRepository{
		exec:    exec,
		builder: newBuilder(),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *UserRepository) WithTx(tx pgx.Tx) *UserRepository {
	if tx == nil {
		return r
	}
	return &UserRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new user row.
func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	query := r.builder.Insert("agro.users").
		Columns(userColumns...).
		Values(
			user.ID,
			user.Email,
			user.Name,
			user.CPF.String(),
			user.PasswordHash,
			user.IsActive,
			user.IsDeleted,
			user.Street,
			user.PostalCode,
			user.City,
			user.State,
			user.PhoneNumber,
			user.RecoverPasswordCode,
			user.RecoverPasswordCodeCheck,
			user.RecoverPasswordCodeAttempts,
			user.RecoverPasswordAttempts,
			user.CreatedAt,
			user.UpdatedAt,
		)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert user sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a non-deleted user by identifier, roles included.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a non-deleted user by email, roles included.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email})
}

func (r *UserRepository) getOne(ctx context.Context, pred any) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From("agro.users").
		Where(pred).
		Where(squirrel.Eq{"is_deleted": false}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)
	user, err := scanUser(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if err := r.loadRoles(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// List returns a page of non-deleted users plus the total match count.
func (r *UserRepository) List(ctx context.Context, filter port.UserFilter, page port.Page) ([]domain.User, int, error) {
	page = page.Normalized()

	base := r.builder.
		Select(userColumns...).
		From("agro.users").
		Where(squirrel.Eq{"is_deleted": false})

	base = applyUserFilter(base, filter)

	stmt, args, err := base.
		OrderBy(orderClause(page.OrderBy, "name", userOrderColumns, page.Desc)).
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list users sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", err)
	}

	for i := range users {
		if err := r.loadRoles(ctx, &users[i]); err != nil {
			return nil, 0, err
		}
	}

	total, err := r.countUsers(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *UserRepository) countUsers(ctx context.Context, filter port.UserFilter) (int, error) {
	base := r.builder.
		Select("COUNT(*)").
		From("agro.users").
		Where(squirrel.Eq{"is_deleted": false})

	base = applyUserFilter(base, filter)

	stmt, args, err := base.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count users sql: %w", err)
	}

	var total int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}

	return total, nil
}

func applyUserFilter(base squirrel.SelectBuilder, filter port.UserFilter) squirrel.SelectBuilder {
	if filter.Name != "" {
		base = base.Where(squirrel.ILike{"name": "%" + filter.Name + "%"})
	}
	if filter.Email != "" {
		base = base.Where(squirrel.ILike{"email": "%" + filter.Email + "%"})
	}
	if filter.CPF != "" {
		base = base.Where(squirrel.Eq{"cpf": filter.CPF})
	}
	if filter.ExcludeUserID != "" {
		base = base.Where(squirrel.NotEq{"id": filter.ExcludeUserID})
	}
	if filter.ExcludeRole != "" {
		base = base.Where(
			"id NOT IN (SELECT user_id FROM agro.user_roles WHERE role = ?)",
			string(filter.ExcludeRole),
		)
	}
	return base
}

// Update rewrites the mutable profile columns of a user row.
func (r *UserRepository) Update(ctx context.Context, user domain.User) error {
	query := r.builder.Update("agro.users").
		Set("email", user.Email).
		Set("name", user.Name).
		Set("cpf", user.CPF.String()).
		Set("is_active", user.IsActive).
		Set("street", user.Street).
		Set("postal_code", user.PostalCode).
		Set("city", user.City).
		Set("state", user.State).
		Set("phone_number", user.PhoneNumber).
		Set("updated_at", user.UpdatedAt).
		Where(squirrel.Eq{"id": user.ID, "is_deleted": false})

	return r.execUpdate(ctx, query, "update user")
}

// SoftDelete flags the row as deleted; the data stays in place.
func (r *UserRepository) SoftDelete(ctx context.Context, id string) error {
	query := r.builder.Update("agro.users").
		Set("is_deleted", true).
		Where(squirrel.Eq{"id": id, "is_deleted": false})

	return r.execUpdate(ctx, query, "soft delete user")
}

// EmailInUse reports whether a non-deleted user other than excludeID holds the email.
func (r *UserRepository) EmailInUse(ctx context.Context, email, excludeID string) (bool, error) {
	return r.valueInUse(ctx, "email", email, excludeID)
}

// CPFInUse reports whether a non-deleted user other than excludeID holds the CPF.
func (r *UserRepository) CPFInUse(ctx context.Context, cpf, excludeID string) (bool, error) {
	return r.valueInUse(ctx, "cpf", cpf, excludeID)
}

func (r *UserRepository) valueInUse(ctx context.Context, column, value, excludeID string) (bool, error) {
	query := r.builder.
		Select("1").
		From("agro.users").
		Where(squirrel.Eq{column: value, "is_deleted": false}).
		Limit(1)

	if excludeID != "" {
		query = query.Where(squirrel.NotEq{"id": excludeID})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("build %s in use sql: %w", column, err)
	}

	var one int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&one); err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check %s in use: %w", column, err)
	}

	return true, nil
}

// UpdatePassword stores a freshly hashed password.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := r.builder.Update("agro.users").
		Set("password_hash", passwordHash).
		Where(squirrel.Eq{"id": id, "is_deleted": false})

	return r.execUpdate(ctx, query, "update password")
}

// UpdateRecoveryState persists the recovery code and both attempt counters.
func (r *UserRepository) UpdateRecoveryState(ctx context.Context, user domain.User) error {
	query := r.builder.Update("agro.users").
		Set("recover_password_code", user.RecoverPasswordCode).
		Set("recover_password_code_check", user.RecoverPasswordCodeCheck).
		Set("recover_password_code_attempts", user.RecoverPasswordCodeAttempts).
		Set("recover_password_attempts", user.RecoverPasswordAttempts).
		Where(squirrel.Eq{"id": user.ID, "is_deleted": false})

	return r.execUpdate(ctx, query, "update recovery state")
}

// AssignRoles replaces the role set attached to a user.
func (r *UserRepository) AssignRoles(ctx context.Context, userID string, roles []domain.Role) error {
	del, delArgs, err := r.builder.
		Delete("agro.user_roles").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete user roles sql: %w", err)
	}
	if _, err := r.exec.Exec(ctx, del, delArgs...); err != nil {
		return fmt.Errorf("delete user roles: %w", err)
	}

	if len(roles) == 0 {
		return nil
	}

	insert := r.builder.Insert("agro.user_roles").Columns("user_id", "role")
	for _, role := range roles {
		insert = insert.Values(userID, string(role))
	}

	stmt, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build insert user roles sql: %w", err)
	}
	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert user roles: %w", err)
	}

	return nil
}

func (r *UserRepository) execUpdate(ctx context.Context, query squirrel.UpdateBuilder, op string) error {
	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build %s sql: %w", op, err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *UserRepository) loadRoles(ctx context.Context, user *domain.User) error {
	stmt, args, err := r.builder.
		Select("role").
		From("agro.user_roles").
		Where(squirrel.Eq{"user_id": user.ID}).
		OrderBy("role ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("build select roles sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("select roles: %w", err)
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("scan role: %w", err)
		}
		role, err := domain.ParseRole(name)
		if err != nil {
			return fmt.Errorf("load roles: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate roles: %w", err)
	}

	user.Roles = roles
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user domain.User
		cpf  string
	)

	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&cpf,
		&user.PasswordHash,
		&user.IsActive,
		&user.IsDeleted,
		&user.Street,
		&user.PostalCode,
		&user.City,
		&user.State,
		&user.PhoneNumber,
		&user.RecoverPasswordCode,
		&user.RecoverPasswordCodeCheck,
		&user.RecoverPasswordCodeAttempts,
		&user.RecoverPasswordAttempts,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}

	user.CPF = domain.TaxID(cpf)
	return &user, nil
}

var _ port.UserRepository = (*UserRepository)(nil)
