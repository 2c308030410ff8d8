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

// ErrCropNotFound indicates no active crop matches the id.
var ErrCropNotFound = errors.New("crop not found")

// CropService handles the crop type catalog.
type CropService struct {
	crops  port.CropRepository
	events port.EventPublisher
	logger *zap.Logger
	now    func() time.Time
}

// NewCropService constructs CropService.
func NewCropService(crops port.CropRepository, events port.EventPublisher, log *zap.Logger) *CropService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CropService{crops: crops, events: events, logger: log, now: time.Now}
}

// WithClock overrides the time source (tests).
func (s *CropService) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create registers a crop type.
func (s *CropService) Create(ctx context.Context, name string) (*domain.Crop, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	now := s.now().UTC()
	crop := domain.Crop{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.crops.Create(ctx, crop); err != nil {
		return nil, fmt.Errorf("create crop: %w", err)
	}

	return &crop, nil
}

// GetByID fetches an active crop.
func (s *CropService) GetByID(ctx context.Context, id string) (*domain.Crop, error) {
	crop, err := s.crops.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCropNotFound
		}
		return nil, fmt.Errorf("lookup crop: %w", err)
	}
	return crop, nil
}

// List pages through active crops.
func (s *CropService) List(ctx context.Context, filter port.CropFilter, page port.Page) ([]domain.Crop, int, error) {
	crops, total, err := s.crops.List(ctx, filter, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list crops: %w", err)
	}
	return crops, total, nil
}

// Update renames a crop type.
func (s *CropService) Update(ctx context.Context, id string, name *string) (*domain.Crop, error) {
	crop, err := s.crops.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCropNotFound
		}
		return nil, fmt.Errorf("lookup crop: %w", err)
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, fmt.Errorf("name cannot be empty")
		}
		crop.Name = trimmed
	}

	crop.UpdatedAt = s.now().UTC()
	if err := s.crops.Update(ctx, *crop); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCropNotFound
		}
		return nil, fmt.Errorf("update crop: %w", err)
	}

	return crop, nil
}

// SoftDelete archives the crop type.
func (s *CropService) SoftDelete(ctx context.Context, id, archivedBy string) error {
	if err := s.crops.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCropNotFound
		}
		return fmt.Errorf("soft delete crop: %w", err)
	}

	publishRecordArchived(ctx, s.events, s.logger, s.now().UTC(), "crop", id, archivedBy)
	return nil
}
