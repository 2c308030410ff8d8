package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/domain"
	"github.com/KevinRuanSoares/serasa-test-api/internal/core/port"
	"github.com/KevinRuanSoares/serasa-test-api/internal/infra/config"
	"github.com/KevinRuanSoares/serasa-test-api/internal/infra/security"
	"github.com/KevinRuanSoares/serasa-test-api/internal/repository"
)

const (
	tokenKeyBytes = 32

	loginRateLimitScope = "login"
)

var (
	// ErrInvalidCredentials indicates the provided email or password are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInactiveAccount indicates the account is disabled or soft-deleted.
	ErrInactiveAccount = errors.New("account is not active")
	// ErrInvalidToken indicates the presented token key does not exist.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken indicates the presented token outlived its TTL.
	ErrExpiredToken = errors.New("token expired")
	// ErrTooManyAttempts indicates the caller exhausted the sliding-window budget.
	ErrTooManyAttempts = errors.New("too many attempts")
)

// LoginResult carries everything the login endpoint returns.
type LoginResult struct {
	Token string
	User  domain.User
	Roles []string
}

// AuthService issues, validates, and rotates opaque auth tokens.
type AuthService struct {
	cfg        *config.AppConfig
	users      port.UserRepository
	tokens     port.TokenRepository
	rateLimits port.RateLimitStore
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(cfg *config.AppConfig, users port.UserRepository, tokens port.TokenRepository, rateLimits port.RateLimitStore, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		cfg:        cfg,
		users:      users,
		tokens:     tokens,
		rateLimits: rateLimits,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the time source (tests).
func (s *AuthService) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *AuthService) tokenTTL() time.Duration {
	if s.cfg != nil && s.cfg.Auth.TokenTTL > 0 {
		return s.cfg.Auth.TokenTTL
	}
	return 7 * 24 * time.Hour
}

// Login verifies credentials and returns the user's token key. An existing
// token is reused with its creation timestamp reset to now, so the expiry
// window slides on every login.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}

	if err := s.checkRateLimit(ctx, loginRateLimitScope, email); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.recordAttempt(ctx, loginRateLimitScope, email)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !user.IsActive || user.IsDeleted {
		return nil, ErrInactiveAccount
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.recordAttempt(ctx, loginRateLimitScope, email)
		return nil, ErrInvalidCredentials
	}

	key, err := s.ensureToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	sanitized := *user
	sanitized.PasswordHash = ""

	return &LoginResult{
		Token: key,
		User:  sanitized,
		Roles: sanitized.RoleNames(),
	}, nil
}

// ensureToken returns the user's token key, creating a row when none exists
// and rewinding created_at when one does.
func (s *AuthService) ensureToken(ctx context.Context, userID string) (string, error) {
	now := s.now().UTC()

	existing, err := s.tokens.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		if err := s.tokens.Touch(ctx, existing.ID, now); err != nil {
			return "", fmt.Errorf("touch token: %w", err)
		}
		return existing.Key, nil
	case errors.Is(err, repository.ErrNotFound):
		// fall through to creation
	default:
		return "", fmt.Errorf("lookup token: %w", err)
	}

	key, err := security.GenerateSecureToken(tokenKeyBytes)
	if err != nil {
		return "", err
	}

	token := domain.AuthToken{
		ID:        uuid.NewString(),
		Key:       key,
		UserID:    userID,
		CreatedAt: now,
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return "", fmt.Errorf("create token: %w", err)
	}

	return key, nil
}

// Authenticate resolves a token key to its owning user. The check is
// read-only: an expired token stays in the store and becomes usable again
// once refreshed. Account state is checked before token age, so a disabled
// account reports ErrInactiveAccount even when its token has also lapsed.
func (s *AuthService) Authenticate(ctx context.Context, key string) (*domain.User, *domain.AuthToken, error) {
	if key == "" {
		return nil, nil, ErrInvalidToken
	}

	token, err := s.tokens.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, fmt.Errorf("lookup token: %w", err)
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, fmt.Errorf("lookup user: %w", err)
	}

	if !user.IsActive || user.IsDeleted {
		return nil, nil, ErrInactiveAccount
	}

	if token.ExpiredAt(s.now().UTC(), s.tokenTTL()) {
		return nil, nil, ErrExpiredToken
	}

	user.PasswordHash = ""
	return user, token, nil
}

// RefreshToken rotates the presented key: the old row is deleted and a brand
// new one is issued. Token age is deliberately not checked here, refresh is
// the path an expired session uses to become valid again.
func (s *AuthService) RefreshToken(ctx context.Context, key string) (string, error) {
	token, err := s.tokens.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("lookup token: %w", err)
	}

	if err := s.tokens.Delete(ctx, token.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("delete token: %w", err)
	}

	newKey, err := security.GenerateSecureToken(tokenKeyBytes)
	if err != nil {
		return "", err
	}

	fresh := domain.AuthToken{
		ID:        uuid.NewString(),
		Key:       newKey,
		UserID:    token.UserID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.tokens.Create(ctx, fresh); err != nil {
		return "", fmt.Errorf("create token: %w", err)
	}

	return newKey, nil
}

// Logout deletes the presented token. Unknown keys are not an error.
func (s *AuthService) Logout(ctx context.Context, key string) error {
	token, err := s.tokens.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup token: %w", err)
	}

	if err := s.tokens.Delete(ctx, token.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("delete token: %w", err)
	}

	return nil
}

func (s *AuthService) checkRateLimit(ctx context.Context, scope, identifier string) error {
	if s.rateLimits == nil || s.cfg == nil {
		return nil
	}

	window := s.cfg.RateLimit.WindowDuration
	max := s.cfg.RateLimit.LoginMaxAttempts
	if window <= 0 || max <= 0 {
		return nil
	}

	key := scope + ":" + identifier
	now := s.now().UTC()

	if err := s.rateLimits.TrimWindow(ctx, key, window, now); err != nil {
		s.logger.Warn("trim rate limit window", zap.Error(err))
		return nil
	}

	count, err := s.rateLimits.CountAttempts(ctx, key, window, now)
	if err != nil {
		s.logger.Warn("count rate limit attempts", zap.Error(err))
		return nil
	}

	if count >= max {
		return ErrTooManyAttempts
	}

	return nil
}

func (s *AuthService) recordAttempt(ctx context.Context, scope, identifier string) {
	if s.rateLimits == nil {
		return
	}

	key := scope + ":" + identifier
	if err := s.rateLimits.RecordAttempt(ctx, key, s.now().UTC()); err != nil {
		s.logger.Warn("record rate limit attempt", zap.Error(err))
	}
}
