package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/port"
	"github.com/KevinRuanSoares/serasa-test-api/internal/transport/http/middleware"
	"github.com/KevinRuanSoares/serasa-test-api/internal/usecase"
)

// PlantedCropHandler exposes harvest-crop link CRUD endpoints.
type PlantedCropHandler struct {
	planted *usecase.PlantedCropService
}

// NewPlantedCropHandler constructs PlantedCropHandler.
func NewPlantedCropHandler(planted *usecase.PlantedCropService) *PlantedCropHandler {
	return &PlantedCropHandler{planted: planted}
}

// RegisterRoutes binds the planted-crop routes.
func (h *PlantedCropHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.list)
	r.POST("", h.create)
	r.GET("/:id", h.get)
	r.PATCH("/:id", h.update)
	r.DELETE("/:id", h.delete)
}

var plantedCropErrorCases = []ErrorCase{
	{Err: usecase.ErrPlantedCropNotFound, Status: http.StatusNotFound, Message: "planted crop not found"},
	{Err: usecase.ErrHarvestNotFound, Status: http.StatusNotFound, Message: "harvest not found"},
	{Err: usecase.ErrCropNotFound, Status: http.StatusNotFound, Message: "crop not found"},
}

func (h *PlantedCropHandler) list(c *gin.Context) {
	filter := port.PlantedCropFilter{
		HarvestID: c.Query("harvest_id"),
		CropID:    c.Query("crop_id"),
	}

	page := parsePage(c)
	planted, total, err := h.planted.List(c.Request.Context(), filter, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list planted crops"))
		return
	}

	c.JSON(http.StatusOK, NewPagedResponse(newPlantedCropResponses(planted), total, page))
}

func (h *PlantedCropHandler) create(c *gin.Context) {
	var req CreatePlantedCropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid planted crop payload"))
		return
	}

	planted, err := h.planted.Create(c.Request.Context(), usecase.CreatePlantedCropInput{
		HarvestID: req.HarvestID,
		CropID:    req.CropID,
	})
	if err != nil {
		RespondWithMappedError(c, err, plantedCropErrorCases, http.StatusBadRequest, "failed to create planted crop")
		return
	}

	c.JSON(http.StatusCreated, newPlantedCropResponse(*planted))
}

func (h *PlantedCropHandler) get(c *gin.Context) {
	planted, err := h.planted.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, plantedCropErrorCases, http.StatusInternalServerError, "failed to fetch planted crop")
		return
	}

	c.JSON(http.StatusOK, newPlantedCropResponse(*planted))
}

func (h *PlantedCropHandler) update(c *gin.Context) {
	var req UpdatePlantedCropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid planted crop payload"))
		return
	}

	planted, err := h.planted.Update(c.Request.Context(), c.Param("id"), usecase.UpdatePlantedCropInput{
		HarvestID: req.HarvestID,
		CropID:    req.CropID,
	})
	if err != nil {
		RespondWithMappedError(c, err, plantedCropErrorCases, http.StatusBadRequest, "failed to update planted crop")
		return
	}

	c.JSON(http.StatusOK, newPlantedCropResponse(*planted))
}

func (h *PlantedCropHandler) delete(c *gin.Context) {
	requesterID, _ := middleware.GetAuthenticatedUserID(c)

	if err := h.planted.SoftDelete(c.Request.Context(), c.Param("id"), requesterID); err != nil {
		RespondWithMappedError(c, err, plantedCropErrorCases, http.StatusInternalServerError, "failed to delete planted crop")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "planted crop deleted"})
}
