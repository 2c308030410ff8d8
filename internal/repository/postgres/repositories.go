package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Users        *UserRepository
	Tokens       *TokenRepository
	Producers    *ProducerRepository
	Farms        *FarmRepository
	Crops        *CropRepository
	Harvests     *HarvestRepository
	PlantedCrops *PlantedCropRepository
	Dashboard    *DashboardRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:        NewUserRepository(pool),
		Tokens:       NewTokenRepository(pool),
		Producers:    NewProducerRepository(pool),
		Farms:        NewFarmRepository(pool),
		Crops:        NewCropRepository(pool),
		Harvests:     NewHarvestRepository(pool),
		PlantedCrops: NewPlantedCropRepository(pool),
		Dashboard:    NewDashboardRepository(pool),
	}
}
