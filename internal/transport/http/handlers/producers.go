package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/domain"
	"github.com/KevinRuanSoares/serasa-test-api/internal/core/port"
	"github.com/KevinRuanSoares/serasa-test-api/internal/transport/http/middleware"
	"github.com/KevinRuanSoares/serasa-test-api/internal/usecase"
)

// ProducerHandler exposes rural producer CRUD endpoints.
type ProducerHandler struct {
	producers *usecase.ProducerService
}

// NewProducerHandler constructs ProducerHandler.
func NewProducerHandler(producers *usecase.ProducerService) *ProducerHandler {
	return &ProducerHandler{producers: producers}
}

// RegisterRoutes binds the producer routes.
func (h *ProducerHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.list)
	r.POST("", h.create)
	r.GET("/:id", h.get)
	r.PATCH("/:id", h.update)
	r.DELETE("/:id", h.delete)
}

var producerErrorCases = []ErrorCase{
	{Err: usecase.ErrProducerNotFound, Status: http.StatusNotFound, Message: "producer not found"},
	{Err: usecase.ErrDuplicateDocument, Status: http.StatusConflict, Message: "document already registered"},
	{Err: domain.ErrInvalidDocument, Status: http.StatusBadRequest, Message: "invalid cpf or cnpj"},
}

func (h *ProducerHandler) list(c *gin.Context) {
	filter := port.ProducerFilter{
		Name:    c.Query("name"),
		CPFCNPJ: c.Query("cpf_cnpj"),
	}

	page := parsePage(c)
	producers, total, err := h.producers.List(c.Request.Context(), filter, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list producers"))
		return
	}

	c.JSON(http.StatusOK, NewPagedResponse(newProducerResponses(producers), total, page))
}

func (h *ProducerHandler) create(c *gin.Context) {
	var req CreateProducerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid producer payload"))
		return
	}

	producer, err := h.producers.Create(c.Request.Context(), usecase.CreateProducerInput{
		CPFCNPJ: req.CPFCNPJ,
		Name:    req.Name,
	})
	if err != nil {
		RespondWithMappedError(c, err, producerErrorCases, http.StatusBadRequest, "failed to create producer")
		return
	}

	c.JSON(http.StatusCreated, newProducerResponse(*producer))
}

func (h *ProducerHandler) get(c *gin.Context) {
	producer, err := h.producers.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, producerErrorCases, http.StatusInternalServerError, "failed to fetch producer")
		return
	}

	c.JSON(http.StatusOK, newProducerResponse(*producer))
}

func (h *ProducerHandler) update(c *gin.Context) {
	var req UpdateProducerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid producer payload"))
		return
	}

	producer, err := h.producers.Update(c.Request.Context(), c.Param("id"), usecase.UpdateProducerInput{
		CPFCNPJ: req.CPFCNPJ,
		Name:    req.Name,
	})
	if err != nil {
		RespondWithMappedError(c, err, producerErrorCases, http.StatusBadRequest, "failed to update producer")
		return
	}

	c.JSON(http.StatusOK, newProducerResponse(*producer))
}

func (h *ProducerHandler) delete(c *gin.Context) {
	requesterID, _ := middleware.GetAuthenticatedUserID(c)

	if err := h.producers.SoftDelete(c.Request.Context(), c.Param("id"), requesterID); err != nil {
		RespondWithMappedError(c, err, producerErrorCases, http.StatusInternalServerError, "failed to delete producer")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "producer deleted"})
}
