package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/domain"
	"github.com/KevinRuanSoares/serasa-test-api/internal/core/port"
	"github.com/KevinRuanSoares/serasa-test-api/internal/infra/security"
	"github.com/KevinRuanSoares/serasa-test-api/internal/repository"
)

var (
	// ErrEmailTaken indicates another active account holds the email.
	ErrEmailTaken = errors.New("email already in use")
	// ErrDuplicateDocument indicates another active record holds the CPF/CNPJ.
	ErrDuplicateDocument = errors.New("document already in use")
	// ErrInvalidRole indicates the role name is outside the closed set.
	ErrInvalidRole = errors.New("invalid role")
)

// CreateUserInput carries the payload for account creation.
type CreateUserInput struct {
	Email       string
	Name        string
	CPF         string
	Password    string
	Roles       []string
	Street      *string
	PostalCode  *string
	City        *string
	State       *string
	PhoneNumber *string
}

// UpdateUserInput carries a partial account update. Nil fields are left as is.
type UpdateUserInput struct {
	Email       *string
	Name        *string
	CPF         *string
	Password    *string
	Roles       []string
	Street      *string
	PostalCode  *string
	City        *string
	State       *string
	PhoneNumber *string
}

// UserService handles account lifecycle operations.
type UserService struct {
	users  port.UserRepository
	policy port.PasswordPolicyValidator
	now    func() time.Time
}

// NewUserService constructs UserService.
func NewUserService(users port.UserRepository, policy port.PasswordPolicyValidator) *UserService {
	if policy == nil {
		policy = security.NewPasswordPolicy()
	}
	return &UserService{users: users, policy: policy, now: time.Now}
}

// WithClock overrides the time source (tests).
func (s *UserService) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create registers a new account with unique email and CPF among active rows.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	name := strings.TrimSpace(input.Name)
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	cpf, err := domain.ParseCPF(input.CPF)
	if err != nil {
		return nil, err
	}

	roles, err := parseRoles(input.Roles)
	if err != nil {
		return nil, err
	}

	if err := s.policy.Validate(input.Password, domain.PasswordContext{Name: name, Email: email}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}

	if taken, err := s.users.EmailInUse(ctx, email, ""); err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	} else if taken {
		return nil, ErrEmailTaken
	}
	if taken, err := s.users.CPFInUse(ctx, cpf.String(), ""); err != nil {
		return nil, fmt.Errorf("check cpf: %w", err)
	} else if taken {
		return nil, ErrDuplicateDocument
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		CPF:          cpf,
		PasswordHash: hash,
		IsActive:     true,
		Street:       input.Street,
		PostalCode:   input.PostalCode,
		City:         input.City,
		State:        input.State,
		PhoneNumber:  input.PhoneNumber,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if len(roles) > 0 {
		if err := s.users.AssignRoles(ctx, user.ID, roles); err != nil {
			return nil, fmt.Errorf("assign roles: %w", err)
		}
	}

	user.PasswordHash = ""
	return &user, nil
}

// GetByID fetches an account.
func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// List pages through accounts. The requesting user and SUPER_ADMIN accounts
// are excluded so operators cannot see or edit above their station.
func (s *UserService) List(ctx context.Context, requestingUserID string, filter port.UserFilter, page port.Page) ([]domain.User, int, error) {
	filter.ExcludeUserID = requestingUserID
	filter.ExcludeRole = domain.RoleSuperAdmin

	users, total, err := s.users.List(ctx, filter, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, total, nil
}

// Update applies a partial account update, re-hashing the password when one
// is supplied.
func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if input.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*input.Email))
		if email == "" {
			return nil, fmt.Errorf("email cannot be empty")
		}
		if taken, err := s.users.EmailInUse(ctx, email, id); err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		} else if taken {
			return nil, ErrEmailTaken
		}
		user.Email = email
	}

	if input.CPF != nil {
		cpf, err := domain.ParseCPF(*input.CPF)
		if err != nil {
			return nil, err
		}
		if taken, err := s.users.CPFInUse(ctx, cpf.String(), id); err != nil {
			return nil, fmt.Errorf("check cpf: %w", err)
		} else if taken {
			return nil, ErrDuplicateDocument
		}
		user.CPF = cpf
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("name cannot be empty")
		}
		user.Name = name
	}

	if input.Street != nil {
		user.Street = input.Street
	}
	if input.PostalCode != nil {
		user.PostalCode = input.PostalCode
	}
	if input.City != nil {
		user.City = input.City
	}
	if input.State != nil {
		user.State = input.State
	}
	if input.PhoneNumber != nil {
		user.PhoneNumber = input.PhoneNumber
	}

	if input.Password != nil {
		if err := s.policy.Validate(*input.Password, domain.PasswordContext{Name: user.Name, Email: user.Email}); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrWeakPassword, err)
		}
		hash, err := security.HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	user.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, *user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	if input.Roles != nil {
		roles, err := parseRoles(input.Roles)
		if err != nil {
			return nil, err
		}
		if err := s.users.AssignRoles(ctx, id, roles); err != nil {
			return nil, fmt.Errorf("assign roles: %w", err)
		}
		user.Roles = roles
	}

	user.PasswordHash = ""
	return user, nil
}

// SoftDelete archives the account. The email and CPF become reusable.
func (s *UserService) SoftDelete(ctx context.Context, id string) error {
	if err := s.users.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("soft delete user: %w", err)
	}
	return nil
}

func parseRoles(names []string) ([]domain.Role, error) {
	roles := make([]domain.Role, 0, len(names))
	for _, name := range names {
		role, err := domain.ParseRole(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRole, name)
		}
		roles = append(roles, role)
	}
	return roles, nil
}
