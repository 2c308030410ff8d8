package port

import "github.com/KevinRuanSoares/serasa-test-api/internal/core/domain"

// PasswordPolicyValidator checks candidate passwords against the service policy.
type PasswordPolicyValidator interface {
	Validate(password string, ctx domain.PasswordContext) error
}
