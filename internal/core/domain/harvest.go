package domain

import "time"

// Harvest is a yearly harvest season on a farm.
type Harvest struct {
	ID        string
	Year      string
	FarmID    string
	FarmName  string
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PlantedCrop links a crop to a harvest season.
type PlantedCrop struct {
	ID          string
	HarvestID   string
	CropID      string
	CropName    string
	HarvestYear string
	FarmName    string
	IsDeleted   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
