package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/domain"
	"github.com/KevinRuanSoares/serasa-test-api/internal/core/port"
	"github.com/KevinRuanSoares/serasa-test-api/internal/infra/logger"
	"github.com/KevinRuanSoares/serasa-test-api/internal/repository"
)

// ErrProducerNotFound indicates no active producer matches the id.
var ErrProducerNotFound = errors.New("producer not found")

// CreateProducerInput carries the payload for producer registration.
type CreateProducerInput struct {
	CPFCNPJ string
	Name    string
}

// UpdateProducerInput carries a partial producer update.
type UpdateProducerInput struct {
	CPFCNPJ *string
	Name    *string
}

// ProducerService handles rural producer registration.
type ProducerService struct {
	producers port.ProducerRepository
	events    port.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewProducerService constructs ProducerService.
func NewProducerService(producers port.ProducerRepository, events port.EventPublisher, log *zap.Logger) *ProducerService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProducerService{producers: producers, events: events, logger: log, now: time.Now}
}

// WithClock overrides the time source (tests).
func (s *ProducerService) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create validates the document and registers a producer. The document must
// be unique among active producers; archived rows never block reuse.
func (s *ProducerService) Create(ctx context.Context, input CreateProducerInput) (*domain.Producer, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	document, err := domain.ParseTaxID(input.CPFCNPJ)
	if err != nil {
		return nil, err
	}

	if taken, err := s.producers.DocumentInUse(ctx, document.String(), ""); err != nil {
		return nil, fmt.Errorf("check document: %w", err)
	} else if taken {
		return nil, ErrDuplicateDocument
	}

	now := s.now().UTC()
	producer := domain.Producer{
		ID:        uuid.NewString(),
		CPFCNPJ:   document,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.producers.Create(ctx, producer); err != nil {
		return nil, fmt.Errorf("create producer: %w", err)
	}

	s.logger.Info("producer registered",
		zap.String("producer_id", producer.ID),
		zap.String("document", logger.MaskDocument(producer.CPFCNPJ.String())),
	)

	s.publishRegistered(ctx, producer)
	return &producer, nil
}

func (s *ProducerService) publishRegistered(ctx context.Context, producer domain.Producer) {
	if s.events == nil {
		return
	}

	event := domain.ProducerRegisteredEvent{
		EventID:      uuid.NewString(),
		ProducerID:   producer.ID,
		Document:     producer.CPFCNPJ.String(),
		Name:         producer.Name,
		RegisteredAt: producer.CreatedAt,
	}
	if err := s.events.PublishProducerRegistered(ctx, event); err != nil {
		s.logger.Warn("publish producer registered event", zap.Error(err))
	}
}

// GetByID fetches an active producer.
func (s *ProducerService) GetByID(ctx context.Context, id string) (*domain.Producer, error) {
	producer, err := s.producers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProducerNotFound
		}
		return nil, fmt.Errorf("lookup producer: %w", err)
	}
	return producer, nil
}

// List pages through active producers.
func (s *ProducerService) List(ctx context.Context, filter port.ProducerFilter, page port.Page) ([]domain.Producer, int, error) {
	producers, total, err := s.producers.List(ctx, filter, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list producers: %w", err)
	}
	return producers, total, nil
}

// Update applies a partial producer update, re-validating the document and
// its uniqueness when it changes.
func (s *ProducerService) Update(ctx context.Context, id string, input UpdateProducerInput) (*domain.Producer, error) {
	producer, err := s.producers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProducerNotFound
		}
		return nil, fmt.Errorf("lookup producer: %w", err)
	}

	if input.CPFCNPJ != nil {
		document, err := domain.ParseTaxID(*input.CPFCNPJ)
		if err != nil {
			return nil, err
		}
		if taken, err := s.producers.DocumentInUse(ctx, document.String(), id); err != nil {
			return nil, fmt.Errorf("check document: %w", err)
		} else if taken {
			return nil, ErrDuplicateDocument
		}
		producer.CPFCNPJ = document
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("name cannot be empty")
		}
		producer.Name = name
	}

	producer.UpdatedAt = s.now().UTC()
	if err := s.producers.Update(ctx, *producer); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProducerNotFound
		}
		return nil, fmt.Errorf("update producer: %w", err)
	}

	return producer, nil
}

// SoftDelete archives the producer. Farms of the producer are untouched.
func (s *ProducerService) SoftDelete(ctx context.Context, id, archivedBy string) error {
	if err := s.producers.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProducerNotFound
		}
		return fmt.Errorf("soft delete producer: %w", err)
	}

	publishRecordArchived(ctx, s.events, s.logger, s.now().UTC(), "producer", id, archivedBy)
	return nil
}
