package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/domain"
	"github.com/KevinRuanSoares/serasa-test-api/internal/core/port"
	"github.com/KevinRuanSoares/serasa-test-api/internal/transport/http/middleware"
	"github.com/KevinRuanSoares/serasa-test-api/internal/usecase"
)

// FarmHandler exposes farm CRUD endpoints.
type FarmHandler struct {
	farms *usecase.FarmService
}

// NewFarmHandler constructs FarmHandler.
func NewFarmHandler(farms *usecase.FarmService) *FarmHandler {
	return &FarmHandler{farms: farms}
}

// RegisterRoutes binds the farm routes.
func (h *FarmHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.list)
	r.POST("", h.create)
	r.GET("/:id", h.get)
	r.PATCH("/:id", h.update)
	r.DELETE("/:id", h.delete)
}

var farmErrorCases = []ErrorCase{
	{Err: usecase.ErrFarmNotFound, Status: http.StatusNotFound, Message: "farm not found"},
	{Err: usecase.ErrProducerNotFound, Status: http.StatusNotFound, Message: "producer not found"},
	{Err: domain.ErrInvalidFarmAreas, Status: http.StatusBadRequest, Message: "invalid farm areas"},
}

func (h *FarmHandler) list(c *gin.Context) {
	filter := port.FarmFilter{
		Name:       c.Query("name"),
		City:       c.Query("city"),
		State:      c.Query("state"),
		ProducerID: c.Query("producer_id"),
	}

	page := parsePage(c)
	farms, total, err := h.farms.List(c.Request.Context(), filter, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list farms"))
		return
	}

	c.JSON(http.StatusOK, NewPagedResponse(newFarmResponses(farms), total, page))
}

func (h *FarmHandler) create(c *gin.Context) {
	var req CreateFarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid farm payload"))
		return
	}

	farm, err := h.farms.Create(c.Request.Context(), usecase.CreateFarmInput{
		Name:           req.Name,
		City:           req.City,
		State:          req.State,
		TotalArea:      req.TotalArea,
		ArableArea:     req.ArableArea,
		VegetationArea: req.VegetationArea,
		ProducerID:     req.ProducerID,
	})
	if err != nil {
		RespondWithMappedError(c, err, farmErrorCases, http.StatusBadRequest, "failed to create farm")
		return
	}

	c.JSON(http.StatusCreated, newFarmResponse(*farm))
}

func (h *FarmHandler) get(c *gin.Context) {
	farm, err := h.farms.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, farmErrorCases, http.StatusInternalServerError, "failed to fetch farm")
		return
	}

	c.JSON(http.StatusOK, newFarmResponse(*farm))
}

func (h *FarmHandler) update(c *gin.Context) {
	var req UpdateFarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid farm payload"))
		return
	}

	farm, err := h.farms.Update(c.Request.Context(), c.Param("id"), usecase.UpdateFarmInput{
		Name:           req.Name,
		City:           req.City,
		State:          req.State,
		TotalArea:      req.TotalArea,
		ArableArea:     req.ArableArea,
		VegetationArea: req.VegetationArea,
		ProducerID:     req.ProducerID,
	})
	if err != nil {
		RespondWithMappedError(c, err, farmErrorCases, http.StatusBadRequest, "failed to update farm")
		return
	}

	c.JSON(http.StatusOK, newFarmResponse(*farm))
}

func (h *FarmHandler) delete(c *gin.Context) {
	requesterID, _ := middleware.GetAuthenticatedUserID(c)

	if err := h.farms.SoftDelete(c.Request.Context(), c.Param("id"), requesterID); err != nil {
		RespondWithMappedError(c, err, farmErrorCases, http.StatusInternalServerError, "failed to delete farm")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "farm deleted"})
}
