package handlers

import (
	bm "building_monitor"
	"building_monitor/internal/logger"
	"building_monitor/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires the HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Live alert feed (HTTP upgrade) — same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerDeviceRoutes(api)
		h.registerAlertRoutes(api)
		h.registerLedgerRoutes(api)
		h.registerMonitorRoutes(api)
	}
}

func (h *Handler) registerDeviceRoutes(api *gin.RouterGroup) {
	devices := api.Group("/devices")
	{
		devices.GET("", h.listDevices)
		// Body example: {"id":"dev-1","kind":"temperature","value":45,"status":"online"}
		devices.POST("/reading", h.ingestReading)
		devices.GET("/:id", h.getDevice)
		devices.GET("/:id/history", h.getHistory)
		devices.GET("/:id/limit", h.getLimit)
		devices.PUT("/:id/limit", h.setLimit)
	}
}

func (h *Handler) registerAlertRoutes(api *gin.RouterGroup) {
	alerts := api.Group("/alerts")
	{
		alerts.GET("", h.listAlerts)
		alerts.GET("/counts", h.alertCounts)
		alerts.POST("/test", h.sendTestAlert)
		alerts.POST("/:id/read", h.markAlertRead)
		alerts.POST("/:id/resolve", h.markAlertResolved)
		alerts.DELETE("/:id", h.deleteAlert)
	}
}

func (h *Handler) registerLedgerRoutes(api *gin.RouterGroup) {
	ledger := api.Group("/ledger")
	{
		ledger.GET("/documents", h.listDocuments)
		ledger.GET("/latest", h.latestDocument)
		ledger.POST("/refresh", h.refreshLedger)
	}
}

func (h *Handler) registerMonitorRoutes(api *gin.RouterGroup) {
	monitor := api.Group("/monitor")
	{
		monitor.POST("/start", h.startMonitor)
		monitor.POST("/stop", h.stopMonitor)
		monitor.GET("/status", h.monitorStatus)
		monitor.POST("/devices/:id/subscribe", h.subscribeDevice)
		monitor.DELETE("/devices/:id/subscribe", h.unsubscribeDevice)
		monitor.PUT("/notifications", h.setNotifications)
	}
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, bm.ErrorResponse{Error: userMsg})
}
