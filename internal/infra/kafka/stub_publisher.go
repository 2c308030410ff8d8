package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/domain"
	"github.com/KevinRuanSoares/serasa-test-api/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, subjectID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("subject_id", subjectID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishPasswordRecoveryRequested logs agro.user.recovery_requested events.
func (p *StubPublisher) PublishPasswordRecoveryRequested(_ context.Context, event domain.PasswordRecoveryRequestedEvent) error {
	payload := map[string]any{
		"user_id":      event.UserID,
		"masked_email": event.MaskedEmail,
		"requested_at": event.RequestedAt,
		"metadata":     event.Metadata,
	}
	p.logEvent("agro.user.recovery_requested", event.UserID, event.RequestedAt, payload)
	return nil
}

// PublishPasswordChanged logs agro.user.password_changed events.
func (p *StubPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"changed_at": event.ChangedAt,
		"method":     event.Method,
		"metadata":   event.Metadata,
	}
	p.logEvent("agro.user.password_changed", event.UserID, event.ChangedAt, payload)
	return nil
}

// PublishProducerRegistered logs agro.registry.producer_registered events.
func (p *StubPublisher) PublishProducerRegistered(_ context.Context, event domain.ProducerRegisteredEvent) error {
	payload := map[string]any{
		"producer_id":   event.ProducerID,
		"document":      event.Document,
		"name":          event.Name,
		"registered_at": event.RegisteredAt,
		"metadata":      event.Metadata,
	}
	p.logEvent("agro.registry.producer_registered", event.ProducerID, event.RegisteredAt, payload)
	return nil
}

// PublishRecordArchived logs agro.registry.record_archived events.
func (p *StubPublisher) PublishRecordArchived(_ context.Context, event domain.RecordArchivedEvent) error {
	payload := map[string]any{
		"entity_type": event.EntityType,
		"entity_id":   event.EntityID,
		"archived_by": event.ArchivedBy,
		"archived_at": event.ArchivedAt,
		"metadata":    event.Metadata,
	}
	p.logEvent("agro.registry.record_archived", event.EntityID, event.ArchivedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
