package port

import (
	"context"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/domain"
)

// ProducerFilter narrows producer listings.
type ProducerFilter struct {
	Name    string
	CPFCNPJ string
}

// ProducerRepository persists producers. Reads exclude soft-deleted rows.
type ProducerRepository interface {
	Create(ctx context.Context, producer domain.Producer) error
	GetByID(ctx context.Context, id string) (*domain.Producer, error)
	List(ctx context.Context, filter ProducerFilter, page Page) ([]domain.Producer, int, error)
	Update(ctx context.Context, producer domain.Producer) error
	SoftDelete(ctx context.Context, id string) error
	// DocumentInUse reports whether a non-deleted producer other than
	// excludeID already holds the document.
	DocumentInUse(ctx context.Context, document, excludeID string) (bool, error)
}

// FarmFilter narrows farm listings.
type FarmFilter struct {
	Name       string
	City       string
	State      string
	ProducerID string
}

// FarmRepository persists farms.
type FarmRepository interface {
	Create(ctx context.Context, farm domain.Farm) error
	GetByID(ctx context.Context, id string) (*domain.Farm, error)
	List(ctx context.Context, filter FarmFilter, page Page) ([]domain.Farm, int, error)
	Update(ctx context.Context, farm domain.Farm) error
	SoftDelete(ctx context.Context, id string) error
}

// CropFilter narrows crop listings.
type CropFilter struct {
	Name string
}

// CropRepository persists crop types.
type CropRepository interface {
	Create(ctx context.Context, crop domain.Crop) error
	GetByID(ctx context.Context, id string) (*domain.Crop, error)
	List(ctx context.Context, filter CropFilter, page Page) ([]domain.Crop, int, error)
	Update(ctx context.Context, crop domain.Crop) error
	SoftDelete(ctx context.Context, id string) error
}

// HarvestFilter narrows harvest listings.
type HarvestFilter struct {
	Year   string
	FarmID string
}

// HarvestRepository persists harvest seasons.
type HarvestRepository interface {
	Create(ctx context.Context, harvest domain.Harvest) error
	GetByID(ctx context.Context, id string) (*domain.Harvest, error)
	List(ctx context.Context, filter HarvestFilter, page Page) ([]domain.Harvest, int, error)
	Update(ctx context.Context, harvest domain.Harvest) error
	SoftDelete(ctx context.Context, id string) error
}

// PlantedCropFilter narrows planted-crop listings.
type PlantedCropFilter struct {
	HarvestID string
	CropID    string
}

// PlantedCropRepository persists harvest-crop links.
type PlantedCropRepository interface {
	Create(ctx context.Context, planted domain.PlantedCrop) error
	GetByID(ctx context.Context, id string) (*domain.PlantedCrop, error)
	List(ctx context.Context, filter PlantedCropFilter, page Page) ([]domain.PlantedCrop, int, error)
	Update(ctx context.Context, planted domain.PlantedCrop) error
	SoftDelete(ctx context.Context, id string) error
}
