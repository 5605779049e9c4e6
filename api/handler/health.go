package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/magicprice/magicprice/models"
	"github.com/magicprice/magicprice/renderer"
)

// Health returns a handler for GET /api/v1/health.
//
// Status degrades while a scan holds the browser, since the sequential scan
// model means a new scan would queue behind it.
func Health(r *renderer.Rod, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := r.Stats()

		status := "healthy"
		if !stats.Running {
			status = "unhealthy"
		} else if stats.ActiveSessions > 0 {
			status = "busy"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:   status,
			Uptime:   time.Since(startTime).Round(time.Second).String(),
			Renderer: stats,
			Version:  "0.1.0",
		})
	}
}
