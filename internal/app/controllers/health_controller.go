package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/denokazs/thku-sub000/internal/app/models/dto"
)

// Pinger is satisfied by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController reports liveness and database reachability
type HealthController struct {
	driver string
	db     Pinger
}

// NewHealthController creates a new HealthController. db may be nil for the
// in-memory driver.
func NewHealthController(driver string, db Pinger) *HealthController {
	return &HealthController{driver: driver, db: db}
}

// Health handles the health check
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.HealthResponse} "Service healthy"
// @Failure 503 {object} dto.APIResponse{data=dto.HealthResponse} "Database unavailable"
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	resp := dto.HealthResponse{Status: "ok", Database: c.driver}

	if c.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		if err := c.db.Ping(pingCtx); err != nil {
			resp.Status = "degraded"
			ctx.JSON(http.StatusServiceUnavailable, dto.NewSuccessResponse(resp, "Database unavailable"))
			return
		}
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Service healthy"))
}

// Ping is the bare liveness probe
func (c *HealthController) Ping(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
}
