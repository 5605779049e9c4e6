package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/magicprice/magicprice/models"
	"github.com/magicprice/magicprice/scan"
)

// Scan returns a handler for POST /api/v1/scan.
//
// The response is a Server-Sent Events stream: one JSON event per message,
// in scan order (start, then progress + result/error per variant, then
// complete). The stream is driven by the scanner's channel; when the client
// disconnects, the request context is cancelled, which aborts the in-flight
// variant and closes its browser session.
func Scan(sc *scan.Scanner) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")

		events := sc.Scan(c.Request.Context(), &req)

		c.Stream(func(w io.Writer) bool {
			ev, ok := <-events
			if !ok {
				return false
			}
			c.SSEvent("message", ev)
			return true
		})
	}
}
