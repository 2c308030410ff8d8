package port

import (
	"context"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishPasswordRecoveryRequested(ctx context.Context, event domain.PasswordRecoveryRequestedEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
	PublishProducerRegistered(ctx context.Context, event domain.ProducerRegisteredEvent) error
	PublishRecordArchived(ctx context.Context, event domain.RecordArchivedEvent) error
}
