package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/magicprice/magicprice/api/handler"
	"github.com/magicprice/magicprice/api/middleware"
	"github.com/magicprice/magicprice/config"
	"github.com/magicprice/magicprice/renderer"
	"github.com/magicprice/magicprice/scan"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(r *renderer.Rod, sc *scan.Scanner, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())

	v1 := engine.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(r, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Multi-CID price scan (SSE stream).
	protected.POST("/scan", handler.Scan(sc))

	return engine
}
