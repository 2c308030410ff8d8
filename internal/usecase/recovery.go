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
	"github.com/KevinRuanSoares/serasa-test-api/internal/infra/logger"
	"github.com/KevinRuanSoares/serasa-test-api/internal/infra/security"
	"github.com/KevinRuanSoares/serasa-test-api/internal/repository"
)

const (
	// Confirm locks out once the incremented counter reaches the limit;
	// change locks out only after it exceeds the limit. The asymmetry is
	// observable and load-bearing.
	maxCodeConfirmAttempts  = 3
	maxPasswordChangeTries  = 3
	recoveryRateLimitScope  = "recovery"
	recoveryChangeMethodTag = "recovery_code"
)

var (
	// ErrUserNotFound indicates no active account matches the email.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCode indicates the supplied recovery code does not match.
	ErrInvalidCode = errors.New("invalid recovery code")
	// ErrCodeNotFound indicates no recovery code was issued for the account.
	ErrCodeNotFound = errors.New("no recovery code issued")
	// ErrAttemptsExceeded indicates the attempt counter crossed its threshold.
	ErrAttemptsExceeded = errors.New("recovery attempts exceeded")
	// ErrWeakPassword indicates the candidate password fails the policy.
	ErrWeakPassword = errors.New("password does not meet policy")
)

// RecoveryService drives the password-recovery state machine: issue a code,
// optionally confirm it, then change the password with it. Counter updates
// are last-write-wins under concurrency.
type RecoveryService struct {
	cfg        *config.AppConfig
	users      port.UserRepository
	rateLimits port.RateLimitStore
	events     port.EventPublisher
	notifier   port.RecoveryNotifier
	policy     port.PasswordPolicyValidator
	logger     *zap.Logger
	now        func() time.Time
	generate   func() (string, error)
}

// NewRecoveryService constructs a RecoveryService.
func NewRecoveryService(cfg *config.AppConfig, users port.UserRepository, rateLimits port.RateLimitStore, events port.EventPublisher, notifier port.RecoveryNotifier, policy port.PasswordPolicyValidator, log *zap.Logger) *RecoveryService {
	if policy == nil {
		policy = security.NewPasswordPolicy()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RecoveryService{
		cfg:        cfg,
		users:      users,
		rateLimits: rateLimits,
		events:     events,
		notifier:   notifier,
		policy:     policy,
		logger:     log,
		now:        time.Now,
		generate:   security.GenerateRecoveryCode,
	}
}

// WithClock overrides the time source (tests).
func (s *RecoveryService) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithCodeGenerator overrides the code source (tests).
func (s *RecoveryService) WithCodeGenerator(generate func() (string, error)) {
	if generate != nil {
		s.generate = generate
	}
}

// IssueCode generates a fresh 4-digit code, stores it on the account, and
// dispatches it out of band. Re-issuing overwrites any previous code and
// leaves both attempt counters untouched.
func (s *RecoveryService) IssueCode(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return fmt.Errorf("email is required")
	}

	if err := s.checkRateLimit(ctx, email); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsActive || user.IsDeleted {
		return ErrUserNotFound
	}

	code, err := s.generate()
	if err != nil {
		return err
	}

	user.RecoverPasswordCode = &code
	user.RecoverPasswordCodeCheck = false
	if err := s.users.UpdateRecoveryState(ctx, *user); err != nil {
		return fmt.Errorf("store recovery code: %w", err)
	}

	s.recordAttempt(ctx, email)
	s.dispatchCode(*user, code)

	return nil
}

// dispatchCode hands the code to the notifier on a background goroutine and
// publishes the recovery event. Delivery failure never fails the request.
func (s *RecoveryService) dispatchCode(user domain.User, code string) {
	if s.notifier != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := s.notifier.SendRecoveryCode(ctx, user, code); err != nil {
				s.logger.Warn("recovery code delivery failed",
					zap.String("user_id", user.ID),
					zap.String("email", logger.MaskEmail(user.Email)),
					zap.Error(err),
				)
			}
		}()
	}

	if s.events == nil {
		return
	}

	event := domain.PasswordRecoveryRequestedEvent{
		EventID:     uuid.NewString(),
		UserID:      user.ID,
		Email:       user.Email,
		MaskedEmail: logger.MaskEmail(user.Email),
		RequestedAt: s.now().UTC(),
	}
	if err := s.events.PublishPasswordRecoveryRequested(context.Background(), event); err != nil {
		s.logger.Warn("publish recovery event", zap.Error(err))
	}
}

// ConfirmCode checks a candidate code. The counter is incremented before the
// comparison, so the third call is rejected even when it carries the right
// code. Submissions without an issued code still burn attempts; with no
// stored code the comparison can never succeed. A successful confirmation
// rotates the code and returns the new one.
func (s *RecoveryService) ConfirmCode(ctx context.Context, email, code string) (string, error) {
	user, err := s.activeUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	user.RecoverPasswordCodeAttempts++
	if user.RecoverPasswordCodeAttempts >= maxCodeConfirmAttempts {
		user.RecoverPasswordCodeAttempts = 0
		user.RecoverPasswordCode = nil
		user.RecoverPasswordCodeCheck = false
		if err := s.users.UpdateRecoveryState(ctx, *user); err != nil {
			return "", fmt.Errorf("reset recovery state: %w", err)
		}
		return "", ErrAttemptsExceeded
	}

	if user.RecoverPasswordCode == nil || *user.RecoverPasswordCode != code {
		if err := s.users.UpdateRecoveryState(ctx, *user); err != nil {
			return "", fmt.Errorf("store recovery attempts: %w", err)
		}
		return "", ErrInvalidCode
	}

	fresh, err := s.generate()
	if err != nil {
		return "", err
	}

	user.RecoverPasswordCode = &fresh
	user.RecoverPasswordCodeCheck = true
	user.RecoverPasswordCodeAttempts = 0
	if err := s.users.UpdateRecoveryState(ctx, *user); err != nil {
		return "", fmt.Errorf("rotate recovery code: %w", err)
	}

	return fresh, nil
}

// ChangePassword sets a new password given a valid recovery code. The change
// counter is independent from the confirm counter and locks out only after
// it exceeds the limit. Existing auth tokens stay valid.
func (s *RecoveryService) ChangePassword(ctx context.Context, email, code, newPassword string) error {
	user, err := s.activeUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	if user.RecoverPasswordCode == nil {
		return ErrCodeNotFound
	}

	user.RecoverPasswordAttempts++
	if user.RecoverPasswordAttempts > maxPasswordChangeTries {
		user.RecoverPasswordAttempts = 0
		user.RecoverPasswordCode = nil
		user.RecoverPasswordCodeCheck = false
		if err := s.users.UpdateRecoveryState(ctx, *user); err != nil {
			return fmt.Errorf("reset recovery state: %w", err)
		}
		return ErrAttemptsExceeded
	}

	if *user.RecoverPasswordCode != code {
		if err := s.users.UpdateRecoveryState(ctx, *user); err != nil {
			return fmt.Errorf("store recovery attempts: %w", err)
		}
		return ErrInvalidCode
	}

	if err := s.policy.Validate(newPassword, domain.PasswordContext{Name: user.Name, Email: user.Email}); err != nil {
		return fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("store password: %w", err)
	}

	user.RecoverPasswordCode = nil
	user.RecoverPasswordCodeCheck = false
	user.RecoverPasswordCodeAttempts = 0
	user.RecoverPasswordAttempts = 0
	if err := s.users.UpdateRecoveryState(ctx, *user); err != nil {
		return fmt.Errorf("clear recovery state: %w", err)
	}

	if s.events != nil {
		event := domain.PasswordChangedEvent{
			EventID:   uuid.NewString(),
			UserID:    user.ID,
			ChangedAt: s.now().UTC(),
			Method:    recoveryChangeMethodTag,
		}
		if err := s.events.PublishPasswordChanged(ctx, event); err != nil {
			s.logger.Warn("publish password changed event", zap.Error(err))
		}
	}

	return nil
}

func (s *RecoveryService) activeUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsActive || user.IsDeleted {
		return nil, ErrUserNotFound
	}

	return user, nil
}

func (s *RecoveryService) checkRateLimit(ctx context.Context, identifier string) error {
	if s.rateLimits == nil || s.cfg == nil {
		return nil
	}

	window := s.cfg.RateLimit.WindowDuration
	max := s.cfg.RateLimit.RecoveryMaxAttempts
	if window <= 0 || max <= 0 {
		return nil
	}

	key := recoveryRateLimitScope + ":" + identifier
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

func (s *RecoveryService) recordAttempt(ctx context.Context, identifier string) {
	if s.rateLimits == nil {
		return
	}

	key := recoveryRateLimitScope + ":" + identifier
	if err := s.rateLimits.RecordAttempt(ctx, key, s.now().UTC()); err != nil {
		s.logger.Warn("record rate limit attempt", zap.Error(err))
	}
}
