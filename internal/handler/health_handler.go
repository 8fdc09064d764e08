// internal/handler/health_handler.go
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Belorder/Printer/internal/config"
	"github.com/Belorder/Printer/internal/model"
	"github.com/Belorder/Printer/internal/service"
	"github.com/Belorder/Printer/internal/utils"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	config         *config.Config
	printerService *service.PrinterService
	startedAt      time.Time
	logger         *utils.ServiceLogger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(config *config.Config, printerService *service.PrinterService, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		config:         config,
		printerService: printerService,
		startedAt:      time.Now(),
		logger:         utils.NewServiceLogger(logger, "health-handler"),
	}
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.HealthCheck)
	router.GET("/live", h.LivenessCheck)
}

// HealthCheck reports service health and the wireless session state.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	session := h.printerService.Session()

	health := &HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Service:   h.config.App.Name,
		Version:   h.config.App.Version,
		Uptime:    time.Since(h.startedAt).String(),
		Checks:    make(map[string]CheckResult),
	}

	state := session.State()
	check := CheckResult{
		Status:  "healthy",
		Message: "No printer connected",
		Data: map[string]interface{}{
			"state": string(state),
		},
	}
	if state == model.StateConnected {
		check.Message = "Printer connected"
		check.Data["printer"] = session.Printer().DisplayName()
	}
	health.Checks["bluetooth_session"] = check

	c.JSON(http.StatusOK, health)
}

// LivenessCheck for Kubernetes liveness probe
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now(),
	})
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]CheckResult `json:"checks"`
}

// CheckResult represents individual check result
type CheckResult struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}
