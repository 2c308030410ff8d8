package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/domain"
	"github.com/KevinRuanSoares/serasa-test-api/internal/infra/config"
	"github.com/KevinRuanSoares/serasa-test-api/internal/infra/security"
)

const loginPassword = "Correct#Horse7Battery"

func authTestConfig() *config.AppConfig {
	return &config.AppConfig{
		Auth: config.AuthSettings{TokenTTL: 168 * time.Hour},
		RateLimit: config.RateLimitSettings{
			WindowDuration:      time.Minute,
			LoginMaxAttempts:    5,
			RecoveryMaxAttempts: 3,
		},
	}
}

func activeUser(t *testing.T) domain.User {
	t.Helper()

	hash, err := security.HashPassword(loginPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	return domain.User{
		ID:           "user-1",
		Email:        "ana@example.com",
		Name:         "Ana Souza",
		PasswordHash: hash,
		IsActive:     true,
		Roles:        []domain.Role{domain.RoleAdmin},
	}
}

func TestLoginReusesExistingTokenAndSlidesWindow(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	users := &userRepoMock{user: activeUser(t)}
	tokens := newTokenRepoMock(domain.AuthToken{
		ID:        "token-1",
		Key:       "existing-key",
		UserID:    "user-1",
		CreatedAt: now.Add(-48 * time.Hour),
	})

	svc := NewAuthService(authTestConfig(), users, tokens, newRateLimitMock(), nil)
	svc.WithClock(func() time.Time { return now })

	result, err := svc.Login(context.Background(), "Ana@Example.com", loginPassword)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if result.Token != "existing-key" {
		t.Fatalf("expected existing key to be reused, got %q", result.Token)
	}
	if len(tokens.created) != 0 {
		t.Fatalf("expected no new token, got %d", len(tokens.created))
	}
	touched, ok := tokens.touched["token-1"]
	if !ok {
		t.Fatal("expected existing token to be touched")
	}
	if !touched.Equal(now) {
		t.Fatalf("expected created_at rewound to %v, got %v", now, touched)
	}
	if result.User.PasswordHash != "" {
		t.Fatal("expected password hash to be stripped from result")
	}
}

func TestLoginCreatesTokenWhenNoneExists(t *testing.T) {
	users := &userRepoMock{user: activeUser(t)}
	tokens := newTokenRepoMock()

	svc := NewAuthService(authTestConfig(), users, tokens, newRateLimitMock(), nil)

	result, err := svc.Login(context.Background(), "ana@example.com", loginPassword)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if len(tokens.created) != 1 {
		t.Fatalf("expected one created token, got %d", len(tokens.created))
	}
	if result.Token == "" || result.Token != tokens.created[0].Key {
		t.Fatalf("expected result token to match created row, got %q", result.Token)
	}
	if tokens.created[0].UserID != "user-1" {
		t.Fatalf("unexpected token owner %q", tokens.created[0].UserID)
	}
}

func TestLoginWrongPasswordRecordsAttempt(t *testing.T) {
	users := &userRepoMock{user: activeUser(t)}
	limits := newRateLimitMock()

	svc := NewAuthService(authTestConfig(), users, newTokenRepoMock(), limits, nil)

	_, err := svc.Login(context.Background(), "ana@example.com", "wrong-password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if limits.recorded["login:ana@example.com"] != 1 {
		t.Fatalf("expected one recorded attempt, got %d", limits.recorded["login:ana@example.com"])
	}
}

func TestLoginRateLimited(t *testing.T) {
	users := &userRepoMock{user: activeUser(t)}
	limits := newRateLimitMock()
	limits.counts["login:ana@example.com"] = 5

	svc := NewAuthService(authTestConfig(), users, newTokenRepoMock(), limits, nil)

	_, err := svc.Login(context.Background(), "ana@example.com", loginPassword)
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	user := activeUser(t)
	user.IsActive = false
	users := &userRepoMock{user: user}

	svc := NewAuthService(authTestConfig(), users, newTokenRepoMock(), newRateLimitMock(), nil)

	_, err := svc.Login(context.Background(), "ana@example.com", loginPassword)
	if !errors.Is(err, ErrInactiveAccount) {
		t.Fatalf("expected ErrInactiveAccount, got %v", err)
	}
}

func TestAuthenticateTokenAtExactTTLStillValid(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	users := &userRepoMock{user: activeUser(t)}
	tokens := newTokenRepoMock(domain.AuthToken{
		ID:        "token-1",
		Key:       "exact-key",
		UserID:    "user-1",
		CreatedAt: now.Add(-168 * time.Hour),
	})

	svc := NewAuthService(authTestConfig(), users, tokens, newRateLimitMock(), nil)
	svc.WithClock(func() time.Time { return now })

	user, token, err := svc.Authenticate(context.Background(), "exact-key")
	if err != nil {
		t.Fatalf("expected token aged exactly to the limit to pass, got %v", err)
	}
	if user.ID != "user-1" || token.ID != "token-1" {
		t.Fatalf("unexpected identity %q / %q", user.ID, token.ID)
	}
}

func TestAuthenticateExpiredTokenIsKept(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	users := &userRepoMock{user: activeUser(t)}
	tokens := newTokenRepoMock(domain.AuthToken{
		ID:        "token-1",
		Key:       "stale-key",
		UserID:    "user-1",
		CreatedAt: now.Add(-168*time.Hour - time.Second),
	})

	svc := NewAuthService(authTestConfig(), users, tokens, newRateLimitMock(), nil)
	svc.WithClock(func() time.Time { return now })

	_, _, err := svc.Authenticate(context.Background(), "stale-key")
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
	if len(tokens.deleted) != 0 {
		t.Fatalf("expected stale row to survive for a later refresh, deleted=%v", tokens.deleted)
	}
	if _, err := tokens.GetByKey(context.Background(), "stale-key"); err != nil {
		t.Fatalf("expected stale key to stay stored, got %v", err)
	}
}

func TestAuthenticateInactiveAccountBeatsExpiry(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	user := activeUser(t)
	user.IsActive = false
	users := &userRepoMock{user: user}
	tokens := newTokenRepoMock(domain.AuthToken{
		ID:        "token-1",
		Key:       "stale-key",
		UserID:    "user-1",
		CreatedAt: now.Add(-200 * time.Hour),
	})

	svc := NewAuthService(authTestConfig(), users, tokens, newRateLimitMock(), nil)
	svc.WithClock(func() time.Time { return now })

	_, _, err := svc.Authenticate(context.Background(), "stale-key")
	if !errors.Is(err, ErrInactiveAccount) {
		t.Fatalf("expected ErrInactiveAccount for a disabled owner, got %v", err)
	}
}

func TestAuthenticateUnknownKey(t *testing.T) {
	users := &userRepoMock{user: activeUser(t)}

	svc := NewAuthService(authTestConfig(), users, newTokenRepoMock(), newRateLimitMock(), nil)

	_, _, err := svc.Authenticate(context.Background(), "no-such-key")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRefreshTokenRotatesKey(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	tokens := newTokenRepoMock(domain.AuthToken{
		ID:        "token-1",
		Key:       "old-key",
		UserID:    "user-1",
		CreatedAt: now.Add(-time.Hour),
	})

	svc := NewAuthService(authTestConfig(), &userRepoMock{}, tokens, newRateLimitMock(), nil)
	svc.WithClock(func() time.Time { return now })

	newKey, err := svc.RefreshToken(context.Background(), "old-key")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if newKey == "old-key" || newKey == "" {
		t.Fatalf("expected a fresh key, got %q", newKey)
	}
	if len(tokens.deleted) != 1 || tokens.deleted[0] != "token-1" {
		t.Fatalf("expected old row deleted, deleted=%v", tokens.deleted)
	}
	if len(tokens.created) != 1 || tokens.created[0].Key != newKey {
		t.Fatal("expected fresh row persisted with the new key")
	}
	if _, err := tokens.GetByKey(context.Background(), "old-key"); err == nil {
		t.Fatal("expected old key to stop resolving")
	}
}

func TestRefreshRevivesExpiredSession(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	users := &userRepoMock{user: activeUser(t)}
	tokens := newTokenRepoMock(domain.AuthToken{
		ID:        "token-1",
		Key:       "stale-key",
		UserID:    "user-1",
		CreatedAt: now.Add(-168*time.Hour - time.Second),
	})

	svc := NewAuthService(authTestConfig(), users, tokens, newRateLimitMock(), nil)
	svc.WithClock(func() time.Time { return now })

	if _, _, err := svc.Authenticate(context.Background(), "stale-key"); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken before refresh, got %v", err)
	}

	newKey, err := svc.RefreshToken(context.Background(), "stale-key")
	if err != nil {
		t.Fatalf("expected refresh to accept an expired key, got %v", err)
	}
	if newKey == "" || newKey == "stale-key" {
		t.Fatalf("expected a fresh key, got %q", newKey)
	}
	if len(tokens.created) != 1 || !tokens.created[0].CreatedAt.Equal(now) {
		t.Fatal("expected replacement row with a fresh creation timestamp")
	}

	user, _, err := svc.Authenticate(context.Background(), newKey)
	if err != nil {
		t.Fatalf("expected rotated key to authenticate, got %v", err)
	}
	if user.ID != "user-1" {
		t.Fatalf("unexpected identity %q", user.ID)
	}
}

func TestLogoutUnknownKeyIsNotAnError(t *testing.T) {
	svc := NewAuthService(authTestConfig(), &userRepoMock{}, newTokenRepoMock(), newRateLimitMock(), nil)

	if err := svc.Logout(context.Background(), "no-such-key"); err != nil {
		t.Fatalf("logout: %v", err)
	}
}
