package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/domain"
	"github.com/KevinRuanSoares/serasa-test-api/internal/core/port"
	"github.com/KevinRuanSoares/serasa-test-api/internal/repository"
)

// ErrPlantedCropNotFound indicates no active planted crop matches the id.
var ErrPlantedCropNotFound = errors.New("planted crop not found")

// CreatePlantedCropInput carries the payload linking a crop to a harvest.
type CreatePlantedCropInput struct {
	HarvestID string
	CropID    string
}

// UpdatePlantedCropInput carries a partial planted-crop update.
type UpdatePlantedCropInput struct {
	HarvestID *string
	CropID    *string
}

// PlantedCropService handles harvest-crop links.
type PlantedCropService struct {
	planted  port.PlantedCropRepository
	harvests port.HarvestRepository
	crops    port.CropRepository
	events   port.EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewPlantedCropService constructs PlantedCropService.
func NewPlantedCropService(planted port.PlantedCropRepository, harvests port.HarvestRepository, crops port.CropRepository, events port.EventPublisher, log *zap.Logger) *PlantedCropService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PlantedCropService{
		planted:  planted,
		harvests: harvests,
		crops:    crops,
		events:   events,
		logger:   log,
		now:      time.Now,
	}
}

// WithClock overrides the time source (tests).
func (s *PlantedCropService) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create links an active crop to an active harvest.
func (s *PlantedCropService) Create(ctx context.Context, input CreatePlantedCropInput) (*domain.PlantedCrop, error) {
	if input.HarvestID == "" {
		return nil, fmt.Errorf("harvest id is required")
	}
	if input.CropID == "" {
		return nil, fmt.Errorf("crop id is required")
	}

	harvest, err := s.harvests.GetByID(ctx, input.HarvestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrHarvestNotFound
		}
		return nil, fmt.Errorf("lookup harvest: %w", err)
	}

	crop, err := s.crops.GetByID(ctx, input.CropID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCropNotFound
		}
		return nil, fmt.Errorf("lookup crop: %w", err)
	}

	now := s.now().UTC()
	planted := domain.PlantedCrop{
		ID:          uuid.NewString(),
		HarvestID:   harvest.ID,
		CropID:      crop.ID,
		CropName:    crop.Name,
		HarvestYear: harvest.Year,
		FarmName:    harvest.FarmName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.planted.Create(ctx, planted); err != nil {
		return nil, fmt.Errorf("create planted crop: %w", err)
	}

	return &planted, nil
}

// GetByID fetches an active planted crop.
func (s *PlantedCropService) GetByID(ctx context.Context, id string) (*domain.PlantedCrop, error) {
	planted, err := s.planted.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlantedCropNotFound
		}
		return nil, fmt.Errorf("lookup planted crop: %w", err)
	}
	return planted, nil
}

// List pages through active planted crops.
func (s *PlantedCropService) List(ctx context.Context, filter port.PlantedCropFilter, page port.Page) ([]domain.PlantedCrop, int, error) {
	planted, total, err := s.planted.List(ctx, filter, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list planted crops: %w", err)
	}
	return planted, total, nil
}

// Update applies a partial planted-crop update, re-validating references
// when they change.
func (s *PlantedCropService) Update(ctx context.Context, id string, input UpdatePlantedCropInput) (*domain.PlantedCrop, error) {
	planted, err := s.planted.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlantedCropNotFound
		}
		return nil, fmt.Errorf("lookup planted crop: %w", err)
	}

	if input.HarvestID != nil {
		harvest, err := s.harvests.GetByID(ctx, *input.HarvestID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrHarvestNotFound
			}
			return nil, fmt.Errorf("lookup harvest: %w", err)
		}
		planted.HarvestID = harvest.ID
		planted.HarvestYear = harvest.Year
		planted.FarmName = harvest.FarmName
	}

	if input.CropID != nil {
		crop, err := s.crops.GetByID(ctx, *input.CropID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrCropNotFound
			}
			return nil, fmt.Errorf("lookup crop: %w", err)
		}
		planted.CropID = crop.ID
		planted.CropName = crop.Name
	}

	planted.UpdatedAt = s.now().UTC()
	if err := s.planted.Update(ctx, *planted); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlantedCropNotFound
		}
		return nil, fmt.Errorf("update planted crop: %w", err)
	}

	return planted, nil
}

// SoftDelete archives the planted crop.
func (s *PlantedCropService) SoftDelete(ctx context.Context, id, archivedBy string) error {
	if err := s.planted.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlantedCropNotFound
		}
		return fmt.Errorf("soft delete planted crop: %w", err)
	}

	publishRecordArchived(ctx, s.events, s.logger, s.now().UTC(), "planted_crop", id, archivedBy)
	return nil
}
