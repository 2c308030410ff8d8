package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/KevinRuanSoares/serasa-test-api/internal/infra/logger"
)

const (
	requestIDHeader = "X-Request-ID"
	// Inbound IDs longer than this are replaced, not trusted.
	maxRequestIDLength = 64
)

// RequestID propagates or mints a correlation identifier for the request
// and stores it where the logger can find it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" || len(reqID) > maxRequestIDLength {
			reqID = uuid.NewString()
		}

		c.Writer.Header().Set(requestIDHeader, reqID)
		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey{}, reqID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
