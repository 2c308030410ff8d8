package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/domain"
	"github.com/KevinRuanSoares/serasa-test-api/internal/core/port"
	"github.com/KevinRuanSoares/serasa-test-api/internal/infra/config"
	"github.com/KevinRuanSoares/serasa-test-api/internal/infra/telemetry"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
	metrics  *telemetry.Metrics
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

// WithMetrics attaches publish counters.
func (p *EventPublisher) WithMetrics(metrics *telemetry.Metrics) *EventPublisher {
	p.metrics = metrics
	return p
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	SubjectID string           `json:"subject_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, subjectID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		SubjectID: subjectID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata: envelopeMetadata{
			"service":     p.appCfg.Name,
			"environment": p.appCfg.Env,
		},
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	topic := p.producer.TopicName(eventType)
	message := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		p.metrics.RecordPublished(topic)
		return nil
	case <-ctx.Done():
		p.metrics.RecordPublishFailure(topic)
		return ctx.Err()
	}
}

// PublishPasswordRecoveryRequested publishes agro.user.recovery_requested events.
func (p *EventPublisher) PublishPasswordRecoveryRequested(ctx context.Context, event domain.PasswordRecoveryRequestedEvent) error {
	payload := struct {
		UserID      string         `json:"user_id"`
		MaskedEmail string         `json:"masked_email"`
		RequestedAt time.Time      `json:"requested_at"`
		Metadata    map[string]any `json:"metadata,omitempty"`
	}{
		UserID:      event.UserID,
		MaskedEmail: event.MaskedEmail,
		RequestedAt: event.RequestedAt.UTC(),
		Metadata:    event.Metadata,
	}

	return p.publish(ctx, event.EventID, "agro.user.recovery_requested", event.UserID, event.RequestedAt, payload)
}

// PublishPasswordChanged publishes agro.user.password_changed events.
func (p *EventPublisher) PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error {
	payload := struct {
		UserID    string         `json:"user_id"`
		ChangedAt time.Time      `json:"changed_at"`
		Method    string         `json:"method"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		UserID:    event.UserID,
		ChangedAt: event.ChangedAt.UTC(),
		Method:    event.Method,
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "agro.user.password_changed", event.UserID, event.ChangedAt, payload)
}

// PublishProducerRegistered publishes agro.registry.producer_registered events.
func (p *EventPublisher) PublishProducerRegistered(ctx context.Context, event domain.ProducerRegisteredEvent) error {
	payload := struct {
		ProducerID   string         `json:"producer_id"`
		Document     string         `json:"document"`
		Name         string         `json:"name"`
		RegisteredAt time.Time      `json:"registered_at"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		ProducerID:   event.ProducerID,
		Document:     event.Document,
		Name:         event.Name,
		RegisteredAt: event.RegisteredAt.UTC(),
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, "agro.registry.producer_registered", event.ProducerID, event.RegisteredAt, payload)
}

// PublishRecordArchived publishes agro.registry.record_archived events.
func (p *EventPublisher) PublishRecordArchived(ctx context.Context, event domain.RecordArchivedEvent) error {
	payload := struct {
		EntityType string         `json:"entity_type"`
		EntityID   string         `json:"entity_id"`
		ArchivedBy string         `json:"archived_by"`
		ArchivedAt time.Time      `json:"archived_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		ArchivedBy: event.ArchivedBy,
		ArchivedAt: event.ArchivedAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "agro.registry.record_archived", event.EntityID, event.ArchivedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
