package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KevinRuanSoares/serasa-test-api/internal/usecase"
)

// PasswordHandler exposes the password-recovery endpoints.
type PasswordHandler struct {
	recovery *usecase.RecoveryService
}

// NewPasswordHandler constructs PasswordHandler.
func NewPasswordHandler(recovery *usecase.RecoveryService) *PasswordHandler {
	return &PasswordHandler{recovery: recovery}
}

// RegisterRoutes binds the recovery routes, applying optional middleware
// ahead of the code issuance handler.
func (h *PasswordHandler) RegisterRoutes(r *gin.RouterGroup, recoverMiddlewares ...gin.HandlerFunc) {
	if len(recoverMiddlewares) > 0 {
		chain := append([]gin.HandlerFunc{}, recoverMiddlewares...)
		chain = append(chain, h.recoverPassword)
		r.POST("/recover-password", chain...)
	} else {
		r.POST("/recover-password", h.recoverPassword)
	}

	r.POST("/validate-code", h.validateCode)
	r.POST("/change-password", h.changePassword)
}

func (h *PasswordHandler) recoverPassword(c *gin.Context) {
	var req RecoverPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid recovery payload"))
		return
	}

	if err := h.recovery.IssueCode(c.Request.Context(), req.Email); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
			{Err: usecase.ErrTooManyAttempts, Status: http.StatusTooManyRequests, Message: "too many recovery requests"},
		}, http.StatusInternalServerError, "failed to start recovery")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "recovery code sent"})
}

func (h *PasswordHandler) validateCode(c *gin.Context) {
	var req ValidateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid validation payload"))
		return
	}

	code, err := h.recovery.ConfirmCode(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
			{Err: usecase.ErrInvalidCode, Status: http.StatusBadRequest, Message: "invalid recovery code"},
			{Err: usecase.ErrAttemptsExceeded, Status: http.StatusTooManyRequests, Message: "recovery attempts exceeded"},
		}, http.StatusInternalServerError, "failed to validate code")
		return
	}

	c.JSON(http.StatusOK, ValidateCodeResponse{Code: code})
}

func (h *PasswordHandler) changePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid change payload"))
		return
	}

	if err := h.recovery.ChangePassword(c.Request.Context(), req.Email, req.Code, req.Password); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
			{Err: usecase.ErrCodeNotFound, Status: http.StatusNotFound, Message: "no recovery code issued"},
			{Err: usecase.ErrInvalidCode, Status: http.StatusBadRequest, Message: "invalid recovery code"},
			{Err: usecase.ErrAttemptsExceeded, Status: http.StatusTooManyRequests, Message: "recovery attempts exceeded"},
			{Err: usecase.ErrWeakPassword, Status: http.StatusBadRequest, Message: "password does not meet requirements"},
		}, http.StatusInternalServerError, "failed to change password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password changed"})
}
