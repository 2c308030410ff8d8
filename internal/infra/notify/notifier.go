package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/domain"
	"github.com/KevinRuanSoares/serasa-test-api/internal/core/port"
	"github.com/KevinRuanSoares/serasa-test-api/internal/infra/logger"
)

type noopNotifier struct{}

func (noopNotifier) SendRecoveryCode(ctx context.Context, user domain.User, code string) error {
	return nil
}

// LoggingRecoveryNotifier records recovery code dispatch events for
// observability without delivering them to an external channel. The
// code itself is never written to the log.
type LoggingRecoveryNotifier struct {
	logger *zap.Logger
}

// NewLoggingRecoveryNotifier constructs a notifier backed by structured logging.
func NewLoggingRecoveryNotifier(log *zap.Logger) port.RecoveryNotifier {
	if log == nil {
		return noopNotifier{}
	}
	return &LoggingRecoveryNotifier{logger: log}
}

func (n *LoggingRecoveryNotifier) SendRecoveryCode(ctx context.Context, user domain.User, code string) error {
	if n == nil || n.logger == nil {
		return nil
	}

	n.logger.Info("recovery code dispatched",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(user.Email)),
		zap.Int("code_length", len(code)),
	)
	return nil
}
