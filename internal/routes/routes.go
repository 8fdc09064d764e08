// internal/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Belorder/Printer/internal/config"
	"github.com/Belorder/Printer/internal/handler"
	"github.com/Belorder/Printer/internal/middleware"
	"github.com/Belorder/Printer/internal/service"
	"github.com/Belorder/Printer/internal/utils"
)

// Router holds all dependencies for routing
type Router struct {
	config         *config.Config
	logger         *zap.Logger
	printerService *service.PrinterService
	printService   *service.PrintService
	eventBus       *handler.EventBus
}

// NewRouter creates a new router instance
func NewRouter(
	config *config.Config,
	logger *zap.Logger,
	printerService *service.PrinterService,
	printService *service.PrintService,
	eventBus *handler.EventBus,
) *Router {
	return &Router{
		config:         config,
		logger:         logger,
		printerService: printerService,
		printService:   printService,
		eventBus:       eventBus,
	}
}

// SetupRouter creates and configures the Gin router
func (r *Router) SetupRouter() *gin.Engine {
	if r.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	r.addMiddleware(router)
	r.addRoutes(router)

	return router
}

// addMiddleware adds middleware to the router
func (r *Router) addMiddleware(router *gin.Engine) {
	router.Use(middleware.RecoveryMiddleware(r.logger))

	serviceLogger := utils.NewServiceLogger(r.logger, "http-server")
	router.Use(middleware.LoggingMiddleware(serviceLogger))

	router.Use(middleware.CORSMiddleware(&r.config.Security))

	r.logger.Info("Middleware configured")
}

// addRoutes sets up all application routes
func (r *Router) addRoutes(router *gin.Engine) {
	healthHandler := handler.NewHealthHandler(r.config, r.printerService, r.logger)
	printerHandler := handler.NewPrinterHandler(r.printerService, r.logger)
	printHandler := handler.NewPrintHandler(r.printService, r.printerService, r.eventBus, r.logger)
	wsHandler := handler.NewWebSocketHandler(r.eventBus, r.logger)

	// Health check routes
	healthHandler.RegisterRoutes(router.Group(""))

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	printerHandler.RegisterRoutes(apiV1)
	printHandler.RegisterRoutes(apiV1)

	// WebSocket routes
	wsHandler.RegisterRoutes(router.Group("/ws"))

	r.logger.Info("All routes configured successfully")
}
