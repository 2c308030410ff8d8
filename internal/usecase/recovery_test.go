package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/domain"
	"github.com/KevinRuanSoares/serasa-test-api/internal/core/port"
	"github.com/KevinRuanSoares/serasa-test-api/internal/infra/security"
)

func recoveryUser(t *testing.T, code string) domain.User {
	t.Helper()

	user := activeUser(t)
	if code != "" {
		user.RecoverPasswordCode = &code
	}
	return user
}

func codeSequence(codes ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		if i >= len(codes) {
			return "", errors.New("code sequence exhausted")
		}
		code := codes[i]
		i++
		return code, nil
	}
}

func newRecoveryService(users *userRepoMock, events *eventPublisherMock, notifier *notifierMock) *RecoveryService {
	var n port.RecoveryNotifier
	if notifier != nil {
		n = notifier
	}
	svc := NewRecoveryService(authTestConfig(), users, newRateLimitMock(), events, n, &policyMock{}, nil)
	svc.WithClock(func() time.Time {
		return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	})
	return svc
}

func TestIssueCodeStoresAndDispatches(t *testing.T) {
	users := &userRepoMock{user: recoveryUser(t, "")}
	events := &eventPublisherMock{}
	notifier := newNotifierMock()

	svc := newRecoveryService(users, events, notifier)
	svc.WithCodeGenerator(codeSequence("4321"))

	if err := svc.IssueCode(context.Background(), "Ana@Example.com"); err != nil {
		t.Fatalf("issue code: %v", err)
	}

	if users.user.RecoverPasswordCode == nil || *users.user.RecoverPasswordCode != "4321" {
		t.Fatalf("expected stored code 4321, got %v", users.user.RecoverPasswordCode)
	}
	if users.user.RecoverPasswordCodeCheck {
		t.Fatal("expected check flag reset on issue")
	}

	select {
	case code := <-notifier.sent:
		if code != "4321" {
			t.Fatalf("expected dispatched code 4321, got %q", code)
		}
	case <-time.After(time.Second):
		t.Fatal("expected notifier to receive the code")
	}

	if len(events.recoveryRequested) != 1 {
		t.Fatalf("expected one recovery event, got %d", len(events.recoveryRequested))
	}
	if events.recoveryRequested[0].MaskedEmail == "ana@example.com" {
		t.Fatal("expected the event email to be masked")
	}
}

func TestIssueCodeOverwritesPreviousCode(t *testing.T) {
	users := &userRepoMock{user: recoveryUser(t, "1111")}
	users.user.RecoverPasswordCodeAttempts = 2

	svc := newRecoveryService(users, &eventPublisherMock{}, nil)
	svc.WithCodeGenerator(codeSequence("2222"))

	if err := svc.IssueCode(context.Background(), "ana@example.com"); err != nil {
		t.Fatalf("issue code: %v", err)
	}

	if *users.user.RecoverPasswordCode != "2222" {
		t.Fatalf("expected code replaced, got %q", *users.user.RecoverPasswordCode)
	}
	if users.user.RecoverPasswordCodeAttempts != 2 {
		t.Fatalf("expected confirm counter untouched, got %d", users.user.RecoverPasswordCodeAttempts)
	}
}

func TestIssueCodeUnknownEmail(t *testing.T) {
	svc := newRecoveryService(&userRepoMock{}, &eventPublisherMock{}, nil)

	err := svc.IssueCode(context.Background(), "ghost@example.com")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestConfirmCodeRotatesOnSuccess(t *testing.T) {
	users := &userRepoMock{user: recoveryUser(t, "4321")}

	svc := newRecoveryService(users, &eventPublisherMock{}, nil)
	svc.WithCodeGenerator(codeSequence("8765"))

	fresh, err := svc.ConfirmCode(context.Background(), "ana@example.com", "4321")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if fresh != "8765" {
		t.Fatalf("expected rotated code 8765, got %q", fresh)
	}
	if *users.user.RecoverPasswordCode != "8765" {
		t.Fatal("expected rotated code persisted")
	}
	if !users.user.RecoverPasswordCodeCheck {
		t.Fatal("expected check flag set")
	}
	if users.user.RecoverPasswordCodeAttempts != 0 {
		t.Fatalf("expected confirm counter reset, got %d", users.user.RecoverPasswordCodeAttempts)
	}
}

func TestConfirmCodeThirdCallLockedOutEvenWhenCorrect(t *testing.T) {
	users := &userRepoMock{user: recoveryUser(t, "4321")}

	svc := newRecoveryService(users, &eventPublisherMock{}, nil)

	for i := 0; i < 2; i++ {
		if _, err := svc.ConfirmCode(context.Background(), "ana@example.com", "0000"); !errors.Is(err, ErrInvalidCode) {
			t.Fatalf("attempt %d: expected ErrInvalidCode, got %v", i+1, err)
		}
	}

	_, err := svc.ConfirmCode(context.Background(), "ana@example.com", "4321")
	if !errors.Is(err, ErrAttemptsExceeded) {
		t.Fatalf("expected ErrAttemptsExceeded on the third call, got %v", err)
	}

	if users.user.RecoverPasswordCode != nil {
		t.Fatal("expected code cleared after lockout")
	}
	if users.user.RecoverPasswordCodeAttempts != 0 {
		t.Fatalf("expected counter reset after lockout, got %d", users.user.RecoverPasswordCodeAttempts)
	}
}

func TestConfirmCodeWithoutIssuedCodeBurnsAttempts(t *testing.T) {
	users := &userRepoMock{user: recoveryUser(t, "")}

	svc := newRecoveryService(users, &eventPublisherMock{}, nil)

	for i := 0; i < 2; i++ {
		if _, err := svc.ConfirmCode(context.Background(), "ana@example.com", "4321"); !errors.Is(err, ErrInvalidCode) {
			t.Fatalf("attempt %d: expected ErrInvalidCode, got %v", i+1, err)
		}
		if users.user.RecoverPasswordCodeAttempts != i+1 {
			t.Fatalf("attempt %d: expected counter %d, got %d", i+1, i+1, users.user.RecoverPasswordCodeAttempts)
		}
	}

	_, err := svc.ConfirmCode(context.Background(), "ana@example.com", "4321")
	if !errors.Is(err, ErrAttemptsExceeded) {
		t.Fatalf("expected ErrAttemptsExceeded on the third call, got %v", err)
	}
}

func TestChangePasswordClearsRecoveryState(t *testing.T) {
	users := &userRepoMock{user: recoveryUser(t, "4321")}
	events := &eventPublisherMock{}

	svc := newRecoveryService(users, events, nil)

	const newPassword = "Fresh!Pass#2026xyz"
	if err := svc.ChangePassword(context.Background(), "ana@example.com", "4321", newPassword); err != nil {
		t.Fatalf("change password: %v", err)
	}

	if !users.passwordUpdated {
		t.Fatal("expected password to be updated")
	}
	ok, err := security.VerifyPassword(newPassword, users.updatedHash)
	if err != nil || !ok {
		t.Fatalf("expected stored hash to verify, ok=%v err=%v", ok, err)
	}
	if users.user.RecoverPasswordCode != nil || users.user.RecoverPasswordCodeCheck {
		t.Fatal("expected recovery code state cleared")
	}
	if users.user.RecoverPasswordCodeAttempts != 0 || users.user.RecoverPasswordAttempts != 0 {
		t.Fatal("expected both counters reset")
	}
	if len(events.passwordChanged) != 1 {
		t.Fatalf("expected one password changed event, got %d", len(events.passwordChanged))
	}
}

func TestChangePasswordStaleCodeAfterRotation(t *testing.T) {
	users := &userRepoMock{user: recoveryUser(t, "4321")}

	svc := newRecoveryService(users, &eventPublisherMock{}, nil)
	svc.WithCodeGenerator(codeSequence("8765"))

	if _, err := svc.ConfirmCode(context.Background(), "ana@example.com", "4321"); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	err := svc.ChangePassword(context.Background(), "ana@example.com", "4321", "Fresh!Pass#2026xyz")
	if !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected the pre-rotation code to be rejected, got %v", err)
	}

	if err := svc.ChangePassword(context.Background(), "ana@example.com", "8765", "Fresh!Pass#2026xyz"); err != nil {
		t.Fatalf("expected the rotated code to work, got %v", err)
	}
}

func TestChangePasswordLockoutAfterLimitExceeded(t *testing.T) {
	users := &userRepoMock{user: recoveryUser(t, "4321")}

	svc := newRecoveryService(users, &eventPublisherMock{}, nil)

	for i := 0; i < 3; i++ {
		err := svc.ChangePassword(context.Background(), "ana@example.com", "0000", "Fresh!Pass#2026xyz")
		if !errors.Is(err, ErrInvalidCode) {
			t.Fatalf("attempt %d: expected ErrInvalidCode, got %v", i+1, err)
		}
	}

	err := svc.ChangePassword(context.Background(), "ana@example.com", "4321", "Fresh!Pass#2026xyz")
	if !errors.Is(err, ErrAttemptsExceeded) {
		t.Fatalf("expected ErrAttemptsExceeded on the fourth call, got %v", err)
	}
	if users.user.RecoverPasswordCode != nil {
		t.Fatal("expected code cleared after lockout")
	}
}

func TestChangePasswordRejectsWeakPassword(t *testing.T) {
	users := &userRepoMock{user: recoveryUser(t, "4321")}

	svc := NewRecoveryService(authTestConfig(), users, newRateLimitMock(), nil, nil, &policyMock{err: errors.New("guessable")}, nil)

	err := svc.ChangePassword(context.Background(), "ana@example.com", "4321", "password")
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if users.passwordUpdated {
		t.Fatal("expected no password write for a weak candidate")
	}
}

func TestChangePasswordWithoutIssuedCode(t *testing.T) {
	users := &userRepoMock{user: recoveryUser(t, "")}

	svc := newRecoveryService(users, &eventPublisherMock{}, nil)

	err := svc.ChangePassword(context.Background(), "ana@example.com", "4321", "Fresh!Pass#2026xyz")
	if !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound, got %v", err)
	}
}
