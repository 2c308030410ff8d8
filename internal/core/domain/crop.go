package domain

import "time"

// Crop is a cultivable crop type (soy, corn, coffee, ...).
type Crop struct {
	ID        string
	Name      string
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
