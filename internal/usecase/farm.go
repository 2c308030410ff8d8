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
	"github.com/KevinRuanSoares/serasa-test-api/internal/repository"
)

// ErrFarmNotFound indicates no active farm matches the id.
var ErrFarmNotFound = errors.New("farm not found")

// CreateFarmInput carries the payload for farm registration.
type CreateFarmInput struct {
	Name           string
	City           string
	State          string
	TotalArea      float64
	ArableArea     float64
	VegetationArea float64
	ProducerID     string
}

// UpdateFarmInput carries a partial farm update.
type UpdateFarmInput struct {
	Name           *string
	City           *string
	State          *string
	TotalArea      *float64
	ArableArea     *float64
	VegetationArea *float64
	ProducerID     *string
}

// FarmService handles farm registration under producers.
type FarmService struct {
	farms     port.FarmRepository
	producers port.ProducerRepository
	events    port.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewFarmService constructs FarmService.
func NewFarmService(farms port.FarmRepository, producers port.ProducerRepository, events port.EventPublisher, log *zap.Logger) *FarmService {
	if log == nil {
		log = zap.NewNop()
	}
	return &FarmService{farms: farms, producers: producers, events: events, logger: log, now: time.Now}
}

// WithClock overrides the time source (tests).
func (s *FarmService) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create validates areas and the owning producer, then registers the farm.
func (s *FarmService) Create(ctx context.Context, input CreateFarmInput) (*domain.Farm, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if input.ProducerID == "" {
		return nil, fmt.Errorf("producer id is required")
	}

	producer, err := s.producers.GetByID(ctx, input.ProducerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProducerNotFound
		}
		return nil, fmt.Errorf("lookup producer: %w", err)
	}

	now := s.now().UTC()
	farm := domain.Farm{
		ID:             uuid.NewString(),
		Name:           name,
		City:           strings.TrimSpace(input.City),
		State:          strings.TrimSpace(input.State),
		TotalArea:      input.TotalArea,
		ArableArea:     input.ArableArea,
		VegetationArea: input.VegetationArea,
		ProducerID:     producer.ID,
		ProducerName:   producer.Name,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := farm.ValidateAreas(); err != nil {
		return nil, err
	}

	if err := s.farms.Create(ctx, farm); err != nil {
		return nil, fmt.Errorf("create farm: %w", err)
	}

	return &farm, nil
}

// GetByID fetches an active farm.
func (s *FarmService) GetByID(ctx context.Context, id string) (*domain.Farm, error) {
	farm, err := s.farms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFarmNotFound
		}
		return nil, fmt.Errorf("lookup farm: %w", err)
	}
	return farm, nil
}

// List pages through active farms.
func (s *FarmService) List(ctx context.Context, filter port.FarmFilter, page port.Page) ([]domain.Farm, int, error) {
	farms, total, err := s.farms.List(ctx, filter, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list farms: %w", err)
	}
	return farms, total, nil
}

// Update applies a partial farm update. Area invariants are re-validated
// against the merged figures, so shrinking the total below the parts fails.
func (s *FarmService) Update(ctx context.Context, id string, input UpdateFarmInput) (*domain.Farm, error) {
	farm, err := s.farms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFarmNotFound
		}
		return nil, fmt.Errorf("lookup farm: %w", err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("name cannot be empty")
		}
		farm.Name = name
	}
	if input.City != nil {
		farm.City = strings.TrimSpace(*input.City)
	}
	if input.State != nil {
		farm.State = strings.TrimSpace(*input.State)
	}
	if input.TotalArea != nil {
		farm.TotalArea = *input.TotalArea
	}
	if input.ArableArea != nil {
		farm.ArableArea = *input.ArableArea
	}
	if input.VegetationArea != nil {
		farm.VegetationArea = *input.VegetationArea
	}

	if input.ProducerID != nil {
		producer, err := s.producers.GetByID(ctx, *input.ProducerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrProducerNotFound
			}
			return nil, fmt.Errorf("lookup producer: %w", err)
		}
		farm.ProducerID = producer.ID
		farm.ProducerName = producer.Name
	}

	if err := farm.ValidateAreas(); err != nil {
		return nil, err
	}

	farm.UpdatedAt = s.now().UTC()
	if err := s.farms.Update(ctx, *farm); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFarmNotFound
		}
		return nil, fmt.Errorf("update farm: %w", err)
	}

	return farm, nil
}

// SoftDelete archives the farm. Harvests of the farm are untouched.
func (s *FarmService) SoftDelete(ctx context.Context, id, archivedBy string) error {
	if err := s.farms.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrFarmNotFound
		}
		return fmt.Errorf("soft delete farm: %w", err)
	}

	publishRecordArchived(ctx, s.events, s.logger, s.now().UTC(), "farm", id, archivedBy)
	return nil
}
