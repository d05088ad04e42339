package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	upstreamConfigured func() bool
}

func NewHealthHandler(upstreamConfigured func() bool) *HealthHandler {
	return &HealthHandler{
		upstreamConfigured: upstreamConfigured,
	}
}

func (h *HealthHandler) Healthcheck(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")

	if !h.upstreamConfigured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"reason": "upstream base URL not configured",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
