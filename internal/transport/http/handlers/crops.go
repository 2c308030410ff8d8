package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/port"
	"github.com/KevinRuanSoares/serasa-test-api/internal/transport/http/middleware"
	"github.com/KevinRuanSoares/serasa-test-api/internal/usecase"
)

// CropHandler exposes crop type CRUD endpoints.
type CropHandler struct {
	crops *usecase.CropService
}

// NewCropHandler constructs CropHandler.
func NewCropHandler(crops *usecase.CropService) *CropHandler {
	return &CropHandler{crops: crops}
}

// RegisterRoutes binds the crop routes.
func (h *CropHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.list)
	r.POST("", h.create)
	r.GET("/:id", h.get)
	r.PATCH("/:id", h.update)
	r.DELETE("/:id", h.delete)
}

var cropErrorCases = []ErrorCase{
	{Err: usecase.ErrCropNotFound, Status: http.StatusNotFound, Message: "crop not found"},
}

func (h *CropHandler) list(c *gin.Context) {
	filter := port.CropFilter{Name: c.Query("name")}

	page := parsePage(c)
	crops, total, err := h.crops.List(c.Request.Context(), filter, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list crops"))
		return
	}

	c.JSON(http.StatusOK, NewPagedResponse(newCropResponses(crops), total, page))
}

func (h *CropHandler) create(c *gin.Context) {
	var req CreateCropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid crop payload"))
		return
	}

	crop, err := h.crops.Create(c.Request.Context(), req.Name)
	if err != nil {
		RespondWithMappedError(c, err, cropErrorCases, http.StatusBadRequest, "failed to create crop")
		return
	}

	c.JSON(http.StatusCreated, newCropResponse(*crop))
}

func (h *CropHandler) get(c *gin.Context) {
	crop, err := h.crops.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, cropErrorCases, http.StatusInternalServerError, "failed to fetch crop")
		return
	}

	c.JSON(http.StatusOK, newCropResponse(*crop))
}

func (h *CropHandler) update(c *gin.Context) {
	var req UpdateCropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid crop payload"))
		return
	}

	crop, err := h.crops.Update(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		RespondWithMappedError(c, err, cropErrorCases, http.StatusBadRequest, "failed to update crop")
		return
	}

	c.JSON(http.StatusOK, newCropResponse(*crop))
}

func (h *CropHandler) delete(c *gin.Context) {
	requesterID, _ := middleware.GetAuthenticatedUserID(c)

	if err := h.crops.SoftDelete(c.Request.Context(), c.Param("id"), requesterID); err != nil {
		RespondWithMappedError(c, err, cropErrorCases, http.StatusInternalServerError, "failed to delete crop")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "crop deleted"})
}
