package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/magicprice/magicprice/models"
)

// Auth guards the scan endpoints with a static API key list. A scan
// monopolises the browser for minutes, so a deployment exposed beyond
// localhost is expected to enable it. With no keys configured everything
// passes through.
//
// The key travels in either X-API-Key or Authorization: Bearer. On success
// the key is stored in the request context as "api_key" so the rate limiter
// can bucket by caller instead of by IP.
func Auth(apiKeys []string) gin.HandlerFunc {
	valid := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			valid[k] = struct{}{}
		}
	}
	if len(valid) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := requestKey(c)
		if _, ok := valid[key]; !ok {
			msg := "invalid API key"
			if key == "" {
				msg = "missing API key: set X-API-Key or Authorization: Bearer <key>"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeUnauthorized,
					Message: msg,
				},
			})
			return
		}

		c.Set("api_key", key)
		c.Next()
	}
}

// requestKey pulls the API key out of the request headers, X-API-Key first.
func requestKey(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
