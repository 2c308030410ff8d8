package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/domain"
	"github.com/KevinRuanSoares/serasa-test-api/internal/core/port"
	"github.com/KevinRuanSoares/serasa-test-api/internal/transport/http/middleware"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with the trace ID from context.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: middleware.GetTraceID(c),
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// PagedResponse wraps a list endpoint result with pagination metadata.
type PagedResponse struct {
	Count    int `json:"count"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Results  any `json:"results"`
}

// NewPagedResponse assembles the pagination envelope for a result slice.
func NewPagedResponse(results any, total int, page port.Page) PagedResponse {
	normalized := page.Normalized()
	return PagedResponse{
		Count:    total,
		Page:     normalized.Number,
		PageSize: normalized.Size,
		Results:  results,
	}
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse describes the response returned for a successful login.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// RefreshRequest carries the token to rotate.
type RefreshRequest struct {
	Token string `json:"token" binding:"required"`
}

// RefreshResponse contains the replacement token.
type RefreshResponse struct {
	Token string `json:"token"`
}

// RecoverPasswordRequest starts the password recovery flow.
type RecoverPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// ValidateCodeRequest checks a recovery code ahead of the password change.
type ValidateCodeRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// ValidateCodeResponse returns the rotated code a valid confirmation earns.
type ValidateCodeResponse struct {
	Code string `json:"code"`
}

// ChangePasswordRequest completes the recovery flow with a new password.
type ChangePasswordRequest struct {
	Email    string `json:"email" binding:"required"`
	Code     string `json:"code" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is the API view of a user account.
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	CPF         string    `json:"cpf"`
	IsActive    bool      `json:"is_active"`
	Street      *string   `json:"street,omitempty"`
	PostalCode  *string   `json:"postal_code,omitempty"`
	City        *string   `json:"city,omitempty"`
	State       *string   `json:"state,omitempty"`
	PhoneNumber *string   `json:"phone_number,omitempty"`
	Roles       []string  `json:"roles"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newUserResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		CPF:         user.CPF.String(),
		IsActive:    user.IsActive,
		Street:      user.Street,
		PostalCode:  user.PostalCode,
		City:        user.City,
		State:       user.State,
		PhoneNumber: user.PhoneNumber,
		Roles:       user.RoleNames(),
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

func newUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResponse(u))
	}
	return out
}

// CreateUserRequest defines the payload for account creation.
type CreateUserRequest struct {
	Email       string   `json:"email" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	CPF         string   `json:"cpf" binding:"required"`
	Password    string   `json:"password" binding:"required"`
	Roles       []string `json:"roles" binding:"required"`
	Street      *string  `json:"street"`
	PostalCode  *string  `json:"postal_code"`
	City        *string  `json:"city"`
	State       *string  `json:"state"`
	PhoneNumber *string  `json:"phone_number"`
}

// UpdateUserRequest defines a partial account update. Absent fields are
// left untouched.
type UpdateUserRequest struct {
	Email       *string  `json:"email"`
	Name        *string  `json:"name"`
	CPF         *string  `json:"cpf"`
	Password    *string  `json:"password"`
	Roles       []string `json:"roles"`
	Street      *string  `json:"street"`
	PostalCode  *string  `json:"postal_code"`
	City        *string  `json:"city"`
	State       *string  `json:"state"`
	PhoneNumber *string  `json:"phone_number"`
}

// UpdateProfileRequest defines the self-service profile update payload.
// Roles and activation state are intentionally absent.
type UpdateProfileRequest struct {
	Name        *string `json:"name"`
	Password    *string `json:"password"`
	Street      *string `json:"street"`
	PostalCode  *string `json:"postal_code"`
	City        *string `json:"city"`
	State       *string `json:"state"`
	PhoneNumber *string `json:"phone_number"`
}

// ProducerResponse is the API view of a rural producer.
type ProducerResponse struct {
	ID        string    `json:"id"`
	CPFCNPJ   string    `json:"cpf_cnpj"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newProducerResponse(producer domain.Producer) ProducerResponse {
	return ProducerResponse{
		ID:        producer.ID,
		CPFCNPJ:   producer.CPFCNPJ.String(),
		Name:      producer.Name,
		CreatedAt: producer.CreatedAt,
		UpdatedAt: producer.UpdatedAt,
	}
}

func newProducerResponses(producers []domain.Producer) []ProducerResponse {
	out := make([]ProducerResponse, 0, len(producers))
	for _, p := range producers {
		out = append(out, newProducerResponse(p))
	}
	return out
}

// CreateProducerRequest defines the producer registration payload.
type CreateProducerRequest struct {
	CPFCNPJ string `json:"cpf_cnpj" binding:"required"`
	Name    string `json:"name" binding:"required"`
}

// UpdateProducerRequest defines a partial producer update.
type UpdateProducerRequest struct {
	CPFCNPJ *string `json:"cpf_cnpj"`
	Name    *string `json:"name"`
}

// FarmResponse is the API view of a farm.
type FarmResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	City           string    `json:"city"`
	State          string    `json:"state"`
	TotalArea      float64   `json:"total_area"`
	ArableArea     float64   `json:"arable_area"`
	VegetationArea float64   `json:"vegetation_area"`
	ProducerID     string    `json:"producer_id"`
	ProducerName   string    `json:"producer_name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func newFarmResponse(farm domain.Farm) FarmResponse {
	return FarmResponse{
		ID:             farm.ID,
		Name:           farm.Name,
		City:           farm.City,
		State:          farm.State,
		TotalArea:      farm.TotalArea,
		ArableArea:     farm.ArableArea,
		VegetationArea: farm.VegetationArea,
		ProducerID:     farm.ProducerID,
		ProducerName:   farm.ProducerName,
		CreatedAt:      farm.CreatedAt,
		UpdatedAt:      farm.UpdatedAt,
	}
}

func newFarmResponses(farms []domain.Farm) []FarmResponse {
	out := make([]FarmResponse, 0, len(farms))
	for _, f := range farms {
		out = append(out, newFarmResponse(f))
	}
	return out
}

// CreateFarmRequest defines the farm registration payload.
type CreateFarmRequest struct {
	Name           string  `json:"name" binding:"required"`
	City           string  `json:"city"`
	State          string  `json:"state"`
	TotalArea      float64 `json:"total_area"`
	ArableArea     float64 `json:"arable_area"`
	VegetationArea float64 `json:"vegetation_area"`
	ProducerID     string  `json:"producer_id" binding:"required"`
}

// UpdateFarmRequest defines a partial farm update.
type UpdateFarmRequest struct {
	Name           *string  `json:"name"`
	City           *string  `json:"city"`
	State          *string  `json:"state"`
	TotalArea      *float64 `json:"total_area"`
	ArableArea     *float64 `json:"arable_area"`
	VegetationArea *float64 `json:"vegetation_area"`
	ProducerID     *string  `json:"producer_id"`
}

// CropResponse is the API view of a crop type.
type CropResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newCropResponse(crop domain.Crop) CropResponse {
	return CropResponse{
		ID:        crop.ID,
		Name:      crop.Name,
		CreatedAt: crop.CreatedAt,
		UpdatedAt: crop.UpdatedAt,
	}
}

func newCropResponses(crops []domain.Crop) []CropResponse {
	out := make([]CropResponse, 0, len(crops))
	for _, c := range crops {
		out = append(out, newCropResponse(c))
	}
	return out
}

// CreateCropRequest defines the crop registration payload.
type CreateCropRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateCropRequest defines a partial crop update.
type UpdateCropRequest struct {
	Name *string `json:"name"`
}

// HarvestResponse is the API view of a harvest season.
type HarvestResponse struct {
	ID        string    `json:"id"`
	Year      string    `json:"year"`
	FarmID    string    `json:"farm_id"`
	FarmName  string    `json:"farm_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newHarvestResponse(harvest domain.Harvest) HarvestResponse {
	return HarvestResponse{
		ID:        harvest.ID,
		Year:      harvest.Year,
		FarmID:    harvest.FarmID,
		FarmName:  harvest.FarmName,
		CreatedAt: harvest.CreatedAt,
		UpdatedAt: harvest.UpdatedAt,
	}
}

func newHarvestResponses(harvests []domain.Harvest) []HarvestResponse {
	out := make([]HarvestResponse, 0, len(harvests))
	for _, h := range harvests {
		out = append(out, newHarvestResponse(h))
	}
	return out
}

// CreateHarvestRequest defines the harvest registration payload.
type CreateHarvestRequest struct {
	Year   string `json:"year" binding:"required"`
	FarmID string `json:"farm_id" binding:"required"`
}

// UpdateHarvestRequest defines a partial harvest update.
type UpdateHarvestRequest struct {
	Year   *string `json:"year"`
	FarmID *string `json:"farm_id"`
}

// PlantedCropResponse is the API view of a harvest-crop link.
type PlantedCropResponse struct {
	ID          string    `json:"id"`
	HarvestID   string    `json:"harvest_id"`
	CropID      string    `json:"crop_id"`
	CropName    string    `json:"crop_name"`
	HarvestYear string    `json:"harvest_year"`
	FarmName    string    `json:"farm_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newPlantedCropResponse(planted domain.PlantedCrop) PlantedCropResponse {
	return PlantedCropResponse{
		ID:          planted.ID,
		HarvestID:   planted.HarvestID,
		CropID:      planted.CropID,
		CropName:    planted.CropName,
		HarvestYear: planted.HarvestYear,
		FarmName:    planted.FarmName,
		CreatedAt:   planted.CreatedAt,
		UpdatedAt:   planted.UpdatedAt,
	}
}

func newPlantedCropResponses(planted []domain.PlantedCrop) []PlantedCropResponse {
	out := make([]PlantedCropResponse, 0, len(planted))
	for _, p := range planted {
		out = append(out, newPlantedCropResponse(p))
	}
	return out
}

// CreatePlantedCropRequest defines the payload linking a crop to a harvest.
type CreatePlantedCropRequest struct {
	HarvestID string `json:"harvest_id" binding:"required"`
	CropID    string `json:"crop_id" binding:"required"`
}

// UpdatePlantedCropRequest defines a partial planted-crop update.
type UpdatePlantedCropRequest struct {
	HarvestID *string `json:"harvest_id"`
	CropID    *string `json:"crop_id"`
}

// StateCountResponse is a farm count per state.
type StateCountResponse struct {
	State string `json:"state"`
	Count int    `json:"count"`
}

// CropCountResponse is a planted-crop count per crop name.
type CropCountResponse struct {
	Crop  string `json:"crop"`
	Count int    `json:"count"`
}

// LandUseResponse sums the area figures across active farms.
type LandUseResponse struct {
	TotalArea      float64 `json:"total_area"`
	ArableArea     float64 `json:"arable_area"`
	VegetationArea float64 `json:"vegetation_area"`
}

// DashboardResponse aggregates the reporting figures.
type DashboardResponse struct {
	FarmsByState     []StateCountResponse `json:"farms_by_state"`
	CropDistribution []CropCountResponse  `json:"crop_distribution"`
	LandUse          LandUseResponse      `json:"land_use"`
}

// HealthResponse reports service status and start time.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports per-dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
