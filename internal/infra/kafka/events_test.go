package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/domain"
	"github.com/KevinRuanSoares/serasa-test-api/internal/infra/config"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func newTestPublisher(t *testing.T) (*EventPublisher, *fakeAsyncProducer) {
	t.Helper()

	asyncProducer := newFakeAsyncProducer()

	producer := &Producer{
		producer: asyncProducer,
		logger:   zaptest.NewLogger(t),
		cfg: config.KafkaSettings{
			TopicPrefix: "agro",
		},
		errChan: make(chan error, 1),
		done:    make(chan struct{}),
	}

	publisher := NewEventPublisher(producer, config.AppSettings{
		Name: "serasa-test-api",
		Env:  "test",
	}, zaptest.NewLogger(t))

	return publisher, asyncProducer
}

func TestPublishPasswordRecoveryRequested(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	requestedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	event := domain.PasswordRecoveryRequestedEvent{
		EventID:     "event-123",
		UserID:      "user-456",
		Email:       "ana@example.com",
		MaskedEmail: "ana***@example.com",
		RequestedAt: requestedAt,
	}

	if err := publisher.PublishPasswordRecoveryRequested(context.Background(), event); err != nil {
		t.Fatalf("publish returned error: %v", err)
	}

	msg := <-asyncProducer.input
	if msg.Topic != "agro.user.recovery_requested" {
		t.Fatalf("unexpected topic %s", msg.Topic)
	}

	raw, err := msg.Value.Encode()
	if err != nil {
		t.Fatalf("encode message value: %v", err)
	}

	var envelope struct {
		EventID   string    `json:"event_id"`
		EventType string    `json:"event_type"`
		SubjectID string    `json:"subject_id"`
		Timestamp time.Time `json:"timestamp"`
		Version   string    `json:"version"`
		Payload   struct {
			UserID      string `json:"user_id"`
			MaskedEmail string `json:"masked_email"`
		} `json:"payload"`
		Metadata map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}

	if envelope.EventID != "event-123" {
		t.Fatalf("unexpected event id %s", envelope.EventID)
	}
	if envelope.SubjectID != "user-456" {
		t.Fatalf("unexpected subject id %s", envelope.SubjectID)
	}
	if !envelope.Timestamp.Equal(requestedAt) {
		t.Fatalf("expected timestamp %v, got %v", requestedAt, envelope.Timestamp)
	}
	if envelope.Payload.MaskedEmail != "ana***@example.com" {
		t.Fatalf("unexpected masked email %s", envelope.Payload.MaskedEmail)
	}
	if envelope.Metadata["service"] != "serasa-test-api" {
		t.Fatalf("unexpected envelope metadata: %+v", envelope.Metadata)
	}
	// The raw address must never ride on the bus.
	if strings.Contains(string(raw), "ana@example.com") {
		t.Fatalf("raw email leaked into the event payload")
	}
}

func TestPublishRecordArchivedTopic(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	event := domain.RecordArchivedEvent{
		EventID:    "event-789",
		EntityType: "producer",
		EntityID:   "producer-1",
		ArchivedBy: "user-456",
		ArchivedAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}

	if err := publisher.PublishRecordArchived(context.Background(), event); err != nil {
		t.Fatalf("publish returned error: %v", err)
	}

	msg := <-asyncProducer.input
	if msg.Topic != "agro.registry.record_archived" {
		t.Fatalf("unexpected topic %s", msg.Topic)
	}
}
