package port

import (
	"context"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/domain"
)

// RecoveryNotifier delivers recovery codes out of band. Implementations are
// invoked on a background goroutine; delivery failures must be swallowed or
// logged, never surfaced to the issuing request.
type RecoveryNotifier interface {
	SendRecoveryCode(ctx context.Context, user domain.User, code string) error
}
