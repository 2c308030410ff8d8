package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/port"
)

// parsePage extracts pagination and ordering from the query string.
// Unparseable values fall back to defaults rather than failing the request.
func parsePage(c *gin.Context) port.Page {
	page := port.Page{
		OrderBy: c.Query("order_by"),
	}

	if raw := c.Query("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			page.Number = n
		}
	}
	if raw := c.Query("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			page.Size = n
		}
	}
	if raw := c.Query("desc"); raw != "" {
		if desc, err := strconv.ParseBool(raw); err == nil {
			page.Desc = desc
		}
	}

	return page.Normalized()
}
