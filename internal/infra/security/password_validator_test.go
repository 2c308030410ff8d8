package security

import (
	"errors"
	"testing"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

func violationCode(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		t.Fatal("expected a validation error")
	}
	var vErr *PasswordValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected PasswordValidationError, got %T", err)
	}
	return vErr.Code
}

func TestDefaultPasswordValidatorAcceptsStrongPassword(t *testing.T) {
	validator := DefaultPasswordValidator()

	password := "Fazenda!Palmeiras#2026"
	if strength := zxcvbn.PasswordStrength(password, nil); strength.Score < defaultMinZxcvbnScore {
		t.Fatalf("test password unexpectedly weak: score=%d", strength.Score)
	}
	if err := validator.Validate(password); err != nil {
		t.Fatalf("expected password to pass validation, got %v", err)
	}
}

func TestDefaultPasswordValidatorViolations(t *testing.T) {
	validator := DefaultPasswordValidator()

	cases := []struct {
		name     string
		password string
		wantCode string
	}{
		{name: "too short", password: "Ab1!x", wantCode: "min_length"},
		{name: "single character class", password: "todasminusculas", wantCode: "character_classes"},
		{name: "common pattern", password: "Password123", wantCode: "weak_password"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := violationCode(t, validator.Validate(tc.password)); got != tc.wantCode {
				t.Fatalf("expected code %s, got %s", tc.wantCode, got)
			}
		})
	}
}

func TestCustomRuleComposition(t *testing.T) {
	validator := NewPasswordValidator(
		MinLengthRule(4),
		RequireSymbolRule(),
		RequireDifferentFrom("current-secret"),
	)

	if got := violationCode(t, validator.Validate("current-secret")); got != "different" {
		t.Fatalf("expected different code, got %s", got)
	}
	if got := violationCode(t, validator.Validate("plain")); got != "symbol" {
		t.Fatalf("expected symbol code, got %s", got)
	}
	if err := validator.Validate("pl@in"); err != nil {
		t.Fatalf("expected composed rules to pass, got %v", err)
	}
}
