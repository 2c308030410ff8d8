package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/domain"
	"github.com/KevinRuanSoares/serasa-test-api/internal/core/port"
	"github.com/KevinRuanSoares/serasa-test-api/internal/transport/http/middleware"
	"github.com/KevinRuanSoares/serasa-test-api/internal/usecase"
)

// UserHandler exposes account management and self-service profile endpoints.
type UserHandler struct {
	users *usecase.UserService
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(users *usecase.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterRoutes binds the admin account routes.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.list)
	r.POST("", h.create)
	r.GET("/:id", h.get)
	r.PATCH("/:id", h.update)
	r.DELETE("/:id", h.delete)
}

// RegisterProfileRoutes binds the self-service profile routes.
func (h *UserHandler) RegisterProfileRoutes(r *gin.RouterGroup) {
	r.GET("", h.profile)
	r.PATCH("", h.updateProfile)
}

var userErrorCases = []ErrorCase{
	{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
	{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "email already registered"},
	{Err: usecase.ErrDuplicateDocument, Status: http.StatusConflict, Message: "cpf already registered"},
	{Err: usecase.ErrInvalidRole, Status: http.StatusBadRequest, Message: "unknown role"},
	{Err: usecase.ErrWeakPassword, Status: http.StatusBadRequest, Message: "password does not meet requirements"},
	{Err: domain.ErrInvalidDocument, Status: http.StatusBadRequest, Message: "invalid cpf"},
}

func (h *UserHandler) list(c *gin.Context) {
	requesterID, _ := middleware.GetAuthenticatedUserID(c)

	filter := port.UserFilter{
		Name:  c.Query("name"),
		Email: c.Query("email"),
		CPF:   c.Query("cpf"),
	}

	page := parsePage(c)
	users, total, err := h.users.List(c.Request.Context(), requesterID, filter, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list users"))
		return
	}

	c.JSON(http.StatusOK, NewPagedResponse(newUserResponses(users), total, page))
}

func (h *UserHandler) create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid user payload"))
		return
	}

	user, err := h.users.Create(c.Request.Context(), usecase.CreateUserInput{
		Email:       req.Email,
		Name:        req.Name,
		CPF:         req.CPF,
		Password:    req.Password,
		Roles:       req.Roles,
		Street:      req.Street,
		PostalCode:  req.PostalCode,
		City:        req.City,
		State:       req.State,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusBadRequest, "failed to create user")
		return
	}

	c.JSON(http.StatusCreated, newUserResponse(*user))
}

func (h *UserHandler) get(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "failed to fetch user")
		return
	}

	c.JSON(http.StatusOK, newUserResponse(*user))
}

func (h *UserHandler) update(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid user payload"))
		return
	}

	user, err := h.users.Update(c.Request.Context(), c.Param("id"), usecase.UpdateUserInput{
		Email:       req.Email,
		Name:        req.Name,
		CPF:         req.CPF,
		Password:    req.Password,
		Roles:       req.Roles,
		Street:      req.Street,
		PostalCode:  req.PostalCode,
		City:        req.City,
		State:       req.State,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusBadRequest, "failed to update user")
		return
	}

	c.JSON(http.StatusOK, newUserResponse(*user))
}

func (h *UserHandler) delete(c *gin.Context) {
	if err := h.users.SoftDelete(c.Request.Context(), c.Param("id")); err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "failed to delete user")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "user deleted"})
}

func (h *UserHandler) profile(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	c.JSON(http.StatusOK, newUserResponse(*user))
}

func (h *UserHandler) updateProfile(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid profile payload"))
		return
	}

	user, err := h.users.Update(c.Request.Context(), userID, usecase.UpdateUserInput{
		Name:        req.Name,
		Password:    req.Password,
		Street:      req.Street,
		PostalCode:  req.PostalCode,
		City:        req.City,
		State:       req.State,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusBadRequest, "failed to update profile")
		return
	}

	c.JSON(http.StatusOK, newUserResponse(*user))
}
