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

// ErrHarvestNotFound indicates no active harvest matches the id.
var ErrHarvestNotFound = errors.New("harvest not found")

// CreateHarvestInput carries the payload for harvest registration.
type CreateHarvestInput struct {
	Year   string
	FarmID string
}

// UpdateHarvestInput carries a partial harvest update.
type UpdateHarvestInput struct {
	Year   *string
	FarmID *string
}

// HarvestService handles harvest seasons on farms.
type HarvestService struct {
	harvests port.HarvestRepository
	farms    port.FarmRepository
	events   port.EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewHarvestService constructs HarvestService.
func NewHarvestService(harvests port.HarvestRepository, farms port.FarmRepository, events port.EventPublisher, log *zap.Logger) *HarvestService {
	if log == nil {
		log = zap.NewNop()
	}
	return &HarvestService{harvests: harvests, farms: farms, events: events, logger: log, now: time.Now}
}

// WithClock overrides the time source (tests).
func (s *HarvestService) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create registers a harvest season against an active farm.
func (s *HarvestService) Create(ctx context.Context, input CreateHarvestInput) (*domain.Harvest, error) {
	year := strings.TrimSpace(input.Year)
	if year == "" {
		return nil, fmt.Errorf("year is required")
	}
	if input.FarmID == "" {
		return nil, fmt.Errorf("farm id is required")
	}

	farm, err := s.farms.GetByID(ctx, input.FarmID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFarmNotFound
		}
		return nil, fmt.Errorf("lookup farm: %w", err)
	}

	now := s.now().UTC()
	harvest := domain.Harvest{
		ID:        uuid.NewString(),
		Year:      year,
		FarmID:    farm.ID,
		FarmName:  farm.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.harvests.Create(ctx, harvest); err != nil {
		return nil, fmt.Errorf("create harvest: %w", err)
	}

	return &harvest, nil
}

// GetByID fetches an active harvest.
func (s *HarvestService) GetByID(ctx context.Context, id string) (*domain.Harvest, error) {
	harvest, err := s.harvests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrHarvestNotFound
		}
		return nil, fmt.Errorf("lookup harvest: %w", err)
	}
	return harvest, nil
}

// List pages through active harvests.
func (s *HarvestService) List(ctx context.Context, filter port.HarvestFilter, page port.Page) ([]domain.Harvest, int, error) {
	harvests, total, err := s.harvests.List(ctx, filter, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list harvests: %w", err)
	}
	return harvests, total, nil
}

// Update applies a partial harvest update, re-validating the farm reference
// when it changes.
func (s *HarvestService) Update(ctx context.Context, id string, input UpdateHarvestInput) (*domain.Harvest, error) {
	harvest, err := s.harvests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrHarvestNotFound
		}
		return nil, fmt.Errorf("lookup harvest: %w", err)
	}

	if input.Year != nil {
		year := strings.TrimSpace(*input.Year)
		if year == "" {
			return nil, fmt.Errorf("year cannot be empty")
		}
		harvest.Year = year
	}

	if input.FarmID != nil {
		farm, err := s.farms.GetByID(ctx, *input.FarmID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrFarmNotFound
			}
			return nil, fmt.Errorf("lookup farm: %w", err)
		}
		harvest.FarmID = farm.ID
		harvest.FarmName = farm.Name
	}

	harvest.UpdatedAt = s.now().UTC()
	if err := s.harvests.Update(ctx, *harvest); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrHarvestNotFound
		}
		return nil, fmt.Errorf("update harvest: %w", err)
	}

	return harvest, nil
}

// SoftDelete archives the harvest. Planted crops of the harvest are untouched.
func (s *HarvestService) SoftDelete(ctx context.Context, id, archivedBy string) error {
	if err := s.harvests.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrHarvestNotFound
		}
		return fmt.Errorf("soft delete harvest: %w", err)
	}

	publishRecordArchived(ctx, s.events, s.logger, s.now().UTC(), "harvest", id, archivedBy)
	return nil
}
