package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/erp/salesengine/internal/interfaces/http/dto"
	"github.com/erp/salesengine/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping() error
}

// SystemHandler serves health and build information
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	db        Pinger
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name, version string, db Pinger, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{
		BaseHandler: newBaseHandler(logger),
		name:        name,
		version:     version,
		db:          db,
		startTime:   time.Now(),
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// HealthResponse is the body of the health check
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// GetSystemInfo returns name, version and uptime
// GET /api/v1/system/info
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Health answers 200 while the database is reachable and 503 otherwise
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	if h.db == nil {
		h.Success(c, HealthResponse{Status: "ok", Database: "unconfigured"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- h.db.Ping() }()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		err = ctx.Err()
	}

	if err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, dto.Response{
			Success: false,
			Data:    HealthResponse{Status: "unavailable", Database: "down"},
			Error: &dto.ErrorInfo{
				Code:      dto.ErrCodeUnavailable,
				Message:   "Database is unreachable",
				RequestID: middleware.GetRequestID(c),
			},
		})
		return
	}

	h.Success(c, HealthResponse{Status: "ok", Database: "up"})
}
