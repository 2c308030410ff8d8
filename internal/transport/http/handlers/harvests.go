package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/port"
	"github.com/KevinRuanSoares/serasa-test-api/internal/transport/http/middleware"
	"github.com/KevinRuanSoares/serasa-test-api/internal/usecase"
)

// HarvestHandler exposes harvest season CRUD endpoints.
type HarvestHandler struct {
	harvests *usecase.HarvestService
}

// NewHarvestHandler constructs HarvestHandler.
func NewHarvestHandler(harvests *usecase.HarvestService) *HarvestHandler {
	return &HarvestHandler{harvests: harvests}
}

// RegisterRoutes binds the harvest routes.
func (h *HarvestHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.list)
	r.POST("", h.create)
	r.GET("/:id", h.get)
	r.PATCH("/:id", h.update)
	r.DELETE("/:id", h.delete)
}

var harvestErrorCases = []ErrorCase{
	{Err: usecase.ErrHarvestNotFound, Status: http.StatusNotFound, Message: "harvest not found"},
	{Err: usecase.ErrFarmNotFound, Status: http.StatusNotFound, Message: "farm not found"},
}

func (h *HarvestHandler) list(c *gin.Context) {
	filter := port.HarvestFilter{
		Year:   c.Query("year"),
		FarmID: c.Query("farm_id"),
	}

	page := parsePage(c)
	harvests, total, err := h.harvests.List(c.Request.Context(), filter, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list harvests"))
		return
	}

	c.JSON(http.StatusOK, NewPagedResponse(newHarvestResponses(harvests), total, page))
}

func (h *HarvestHandler) create(c *gin.Context) {
	var req CreateHarvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid harvest payload"))
		return
	}

	harvest, err := h.harvests.Create(c.Request.Context(), usecase.CreateHarvestInput{
		Year:   req.Year,
		FarmID: req.FarmID,
	})
	if err != nil {
		RespondWithMappedError(c, err, harvestErrorCases, http.StatusBadRequest, "failed to create harvest")
		return
	}

	c.JSON(http.StatusCreated, newHarvestResponse(*harvest))
}

func (h *HarvestHandler) get(c *gin.Context) {
	harvest, err := h.harvests.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, harvestErrorCases, http.StatusInternalServerError, "failed to fetch harvest")
		return
	}

	c.JSON(http.StatusOK, newHarvestResponse(*harvest))
}

func (h *HarvestHandler) update(c *gin.Context) {
	var req UpdateHarvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid harvest payload"))
		return
	}

	harvest, err := h.harvests.Update(c.Request.Context(), c.Param("id"), usecase.UpdateHarvestInput{
		Year:   req.Year,
		FarmID: req.FarmID,
	})
	if err != nil {
		RespondWithMappedError(c, err, harvestErrorCases, http.StatusBadRequest, "failed to update harvest")
		return
	}

	c.JSON(http.StatusOK, newHarvestResponse(*harvest))
}

func (h *HarvestHandler) delete(c *gin.Context) {
	requesterID, _ := middleware.GetAuthenticatedUserID(c)

	if err := h.harvests.SoftDelete(c.Request.Context(), c.Param("id"), requesterID); err != nil {
		RespondWithMappedError(c, err, harvestErrorCases, http.StatusInternalServerError, "failed to delete harvest")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "harvest deleted"})
}
