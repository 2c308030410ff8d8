package security

import (
	"fmt"
	"unicode"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

// PasswordValidationError is a single policy violation. Code is a stable
// machine-readable identifier for the rule that failed.
type PasswordValidationError struct {
	Code    string
	Message string
}

func (e *PasswordValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func violation(code, format string, args ...any) error {
	return &PasswordValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// PasswordRule checks one aspect of a candidate password.
type PasswordRule func(password string) error

// PasswordValidator runs rules in order and stops at the first violation.
type PasswordValidator struct {
	rules []PasswordRule
}

// NewPasswordValidator builds a validator from the given rules.
func NewPasswordValidator(rules ...PasswordRule) *PasswordValidator {
	copied := make([]PasswordRule, len(rules))
	copy(copied, rules)
	return &PasswordValidator{rules: copied}
}

// Validate returns the first violation, or nil when every rule passes.
func (v *PasswordValidator) Validate(password string) error {
	if v == nil {
		return fmt.Errorf("password validator not configured")
	}
	for _, rule := range v.rules {
		if err := rule(password); err != nil {
			return err
		}
	}
	return nil
}

// MinLengthRule requires at least min runes.
func MinLengthRule(min int) PasswordRule {
	return func(password string) error {
		if len([]rune(password)) < min {
			return violation("min_length", "password must be at least %d characters long", min)
		}
		return nil
	}
}

// RequireCharacterClassesRule requires characters from at least min of the
// four classes: upper, lower, digit, symbol.
func RequireCharacterClassesRule(min int) PasswordRule {
	return func(password string) error {
		if min <= 0 {
			return nil
		}

		seen := map[string]bool{}
		for _, r := range password {
			switch {
			case unicode.IsUpper(r):
				seen["upper"] = true
			case unicode.IsLower(r):
				seen["lower"] = true
			case unicode.IsDigit(r):
				seen["digit"] = true
			case unicode.IsSymbol(r) || unicode.IsPunct(r):
				seen["symbol"] = true
			}
		}

		if len(seen) < min {
			return violation("character_classes", "password must include at least %d character types", min)
		}
		return nil
	}
}

// RequireSymbolRule requires at least one symbol or punctuation rune.
func RequireSymbolRule() PasswordRule {
	return func(password string) error {
		for _, r := range password {
			if unicode.IsSymbol(r) || unicode.IsPunct(r) {
				return nil
			}
		}
		return violation("symbol", "password must include at least one symbol")
	}
}

// RequireDifferentFrom rejects a password equal to the comparator, used to
// stop password changes that reuse the current value.
func RequireDifferentFrom(comparator string) PasswordRule {
	return func(password string) error {
		if password == comparator {
			return violation("different", "new password must be different from current password")
		}
		return nil
	}
}

// RequirePasswordStrengthRule enforces a minimum zxcvbn score. Extra user
// inputs such as name and email lower the score of passwords derived from
// them.
func RequirePasswordStrengthRule(minScore int, userInputs ...string) PasswordRule {
	return func(password string) error {
		if minScore <= 0 {
			return nil
		}
		if minScore > 4 {
			minScore = 4
		}

		if result := zxcvbn.PasswordStrength(password, userInputs); result.Score < minScore {
			return violation("weak_password", "password is too weak; choose a more complex value")
		}
		return nil
	}
}
