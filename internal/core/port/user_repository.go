package port

import (
	"context"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/domain"
)

// UserFilter narrows user listings. Zero values mean "no constraint".
type UserFilter struct {
	Name  string
	Email string
	CPF   string
	// ExcludeUserID removes the requesting user from listings.
	ExcludeUserID string
	// ExcludeRole removes accounts holding the given role (e.g. SUPER_ADMIN).
	ExcludeRole domain.Role
}

// UserRepository exposes persistence behavior for user accounts. All reads
// are scoped to non-deleted rows unless stated otherwise.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter, page Page) ([]domain.User, int, error)
	Update(ctx context.Context, user domain.User) error
	SoftDelete(ctx context.Context, id string) error

	// EmailInUse and CPFInUse report whether a non-deleted user other than
	// excludeID already holds the value.
	EmailInUse(ctx context.Context, email, excludeID string) (bool, error)
	CPFInUse(ctx context.Context, cpf, excludeID string) (bool, error)

	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateRecoveryState(ctx context.Context, user domain.User) error
	AssignRoles(ctx context.Context, userID string, roles []domain.Role) error
}
