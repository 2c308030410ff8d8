package domain

import (
	"errors"
	"time"
)

// ErrInvalidFarmAreas indicates the farm area figures are negative or the
// arable and vegetation areas together exceed the total area.
var ErrInvalidFarmAreas = errors.New("invalid farm areas")

// Farm belongs to exactly one producer. Areas are hectares.
type Farm struct {
	ID             string
	Name           string
	City           string
	State          string
	TotalArea      float64
	ArableArea     float64
	VegetationArea float64
	ProducerID     string
	ProducerName   string
	IsDeleted      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidateAreas enforces non-negative figures and the composition rule that
// arable plus vegetation area never exceeds the total area.
func (f Farm) ValidateAreas() error {
	if f.TotalArea < 0 || f.ArableArea < 0 || f.VegetationArea < 0 {
		return ErrInvalidFarmAreas
	}
	if f.ArableArea+f.VegetationArea > f.TotalArea {
		return ErrInvalidFarmAreas
	}
	return nil
}
