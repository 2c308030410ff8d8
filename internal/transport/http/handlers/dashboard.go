package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KevinRuanSoares/serasa-test-api/internal/usecase"
)

// DashboardHandler exposes the aggregated reporting endpoint.
type DashboardHandler struct {
	dashboard *usecase.DashboardService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard *usecase.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// RegisterRoutes binds the dashboard route.
func (h *DashboardHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.summary)
}

func (h *DashboardHandler) summary(c *gin.Context) {
	summary, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to build dashboard"))
		return
	}

	resp := DashboardResponse{
		FarmsByState:     make([]StateCountResponse, 0, len(summary.FarmsByState)),
		CropDistribution: make([]CropCountResponse, 0, len(summary.CropDistribution)),
		LandUse: LandUseResponse{
			TotalArea:      summary.LandUse.TotalArea,
			ArableArea:     summary.LandUse.ArableArea,
			VegetationArea: summary.LandUse.VegetationArea,
		},
	}

	for _, s := range summary.FarmsByState {
		resp.FarmsByState = append(resp.FarmsByState, StateCountResponse{State: s.State, Count: s.Count})
	}
	for _, cd := range summary.CropDistribution {
		resp.CropDistribution = append(resp.CropDistribution, CropCountResponse{Crop: cd.Crop, Count: cd.Count})
	}

	c.JSON(http.StatusOK, resp)
}
