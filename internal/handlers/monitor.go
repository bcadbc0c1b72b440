package handlers

import (
	bm "building_monitor"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	statusMonitorStarted = "monitoring_started"
	statusMonitorStopped = "monitoring_stopped"
	statusSubscribed     = "subscribed"
	statusUnsubscribed   = "unsubscribed"
)

// Request DTO for toggling notification delivery.
type notificationsRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// @Summary      Start monitoring
// @Tags         monitor
// @Produce      json
// @Success      200  {object}  building_monitor.StatusResponse
// @Failure      401  {object}  building_monitor.ErrorResponse
// @Router       /api/v1/monitor/start [post]
// @Security     BearerAuth
func (h *Handler) startMonitor(c *gin.Context) {
	h.services.Monitor.Start()
	c.JSON(http.StatusOK, bm.StatusResponse{Status: statusMonitorStarted})
}

// @Summary      Stop monitoring
// @Description  Stops scheduling new polls; in-flight audit appends are never canceled.
// @Tags         monitor
// @Produce      json
// @Success      200  {object}  building_monitor.StatusResponse
// @Failure      401  {object}  building_monitor.ErrorResponse
// @Router       /api/v1/monitor/stop [post]
// @Security     BearerAuth
func (h *Handler) stopMonitor(c *gin.Context) {
	h.services.Monitor.Stop()
	c.JSON(http.StatusOK, bm.StatusResponse{Status: statusMonitorStopped})
}

// @Summary      Monitoring diagnostics
// @Tags         monitor
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "active, status, notifications_enabled"
// @Failure      401  {object}  building_monitor.ErrorResponse
// @Router       /api/v1/monitor/status [get]
// @Security     BearerAuth
func (h *Handler) monitorStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"active":                h.services.Monitor.Active(),
		"status":                h.services.Monitor.Status(),
		"notifications_enabled": h.services.Notifier.Enabled(),
	})
}

// @Summary      Subscribe a device to polling
// @Tags         monitor
// @Produce      json
// @Param        id  path  string  true  "Device id"
// @Success      200  {object}  building_monitor.StatusResponse
// @Failure      401  {object}  building_monitor.ErrorResponse
// @Router       /api/v1/monitor/devices/{id}/subscribe [post]
// @Security     BearerAuth
func (h *Handler) subscribeDevice(c *gin.Context) {
	h.services.Monitor.Subscribe(c.Param("id"))
	c.JSON(http.StatusOK, bm.StatusResponse{Status: statusSubscribed})
}

// @Summary      Unsubscribe a device from polling
// @Tags         monitor
// @Produce      json
// @Param        id  path  string  true  "Device id"
// @Success      200  {object}  building_monitor.StatusResponse
// @Failure      401  {object}  building_monitor.ErrorResponse
// @Router       /api/v1/monitor/devices/{id}/subscribe [delete]
// @Security     BearerAuth
func (h *Handler) unsubscribeDevice(c *gin.Context) {
	h.services.Monitor.Unsubscribe(c.Param("id"))
	c.JSON(http.StatusOK, bm.StatusResponse{Status: statusUnsubscribed})
}

// @Summary      Toggle notification delivery
// @Tags         monitor
// @Accept       json
// @Produce      json
// @Param        body  body  notificationsRequest  true  "Enabled flag"
// @Success      200   {object}  map[string]bool
// @Failure      400   {object}  building_monitor.ErrorResponse
// @Failure      401   {object}  building_monitor.ErrorResponse
// @Router       /api/v1/monitor/notifications [put]
// @Security     BearerAuth
func (h *Handler) setNotifications(c *gin.Context) {
	var req notificationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bm.ErrorResponse{Error: errInvalidBody + err.Error()})
		return
	}
	h.services.Notifier.SetEnabled(*req.Enabled)
	c.JSON(http.StatusOK, gin.H{"enabled": h.services.Notifier.Enabled()})
}
