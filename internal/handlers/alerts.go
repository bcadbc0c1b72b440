package handlers

import (
	bm "building_monitor"
	"net/http"

	"building_monitor/internal/models"
	"building_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusRead     = "read"
	statusResolved = "resolved"
	statusDeleted  = "deleted"

	errAddAlert = "failed to create alert"
)

// Request DTO for a manually created test alert.
type testAlertRequest struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Severity string `json:"severity,omitempty"` // info | warning | critical | success
	Category string `json:"category,omitempty"` // hvac | access | network | sensor | system
	DeviceID string `json:"device_id,omitempty"`
	ZoneID   string `json:"zone_id,omitempty"`
}

// @Summary      List alerts
// @Description  Most recent first. All filters optional.
// @Tags         alerts
// @Produce      json
// @Param        severity   query  string  false  "Severity filter"  Enums(info,warning,critical,success)
// @Param        category   query  string  false  "Category filter"  Enums(hvac,access,network,sensor,system)
// @Param        device_id  query  string  false  "Device filter"
// @Success      200  {object}  map[string]interface{}  "count, alerts"
// @Failure      401  {object}  building_monitor.ErrorResponse
// @Router       /api/v1/alerts [get]
// @Security     BearerAuth
func (h *Handler) listAlerts(c *gin.Context) {
	alerts := h.services.Alerts.Query(service.AlertFilter{
		Severity: models.Severity(c.Query("severity")),
		Category: models.Category(c.Query("category")),
		DeviceID: c.Query("device_id"),
	})
	c.JSON(http.StatusOK, gin.H{"count": len(alerts), "alerts": alerts})
}

// @Summary      Derived alert counts
// @Tags         alerts
// @Produce      json
// @Success      200  {object}  map[string]int  "unread, critical"
// @Failure      401  {object}  building_monitor.ErrorResponse
// @Router       /api/v1/alerts/counts [get]
// @Security     BearerAuth
func (h *Handler) alertCounts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"unread":   h.services.Alerts.UnreadCount(),
		"critical": h.services.Alerts.CriticalCount(),
	})
}

// @Summary      Send a test alert
// @Tags         alerts
// @Accept       json
// @Produce      json
// @Param        body  body  testAlertRequest  true  "Alert payload"
// @Success      200   {object}  models.Alert
// @Failure      400   {object}  building_monitor.ErrorResponse
// @Failure      401   {object}  building_monitor.ErrorResponse
// @Failure      500   {object}  building_monitor.ErrorResponse
// @Router       /api/v1/alerts/test [post]
// @Security     BearerAuth
func (h *Handler) sendTestAlert(c *gin.Context) {
	var req testAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bm.ErrorResponse{Error: errInvalidBody + err.Error()})
		return
	}

	severity := models.Severity(req.Severity)
	if severity == "" {
		severity = models.SeverityInfo
	}
	category := models.Category(req.Category)
	if category == "" {
		category = models.CategorySystem
	}
	title := req.Title
	if title == "" {
		title = "Test alert"
	}

	alert, err := h.services.Alerts.Add(c.Request.Context(), service.AlertParams{
		Title:    title,
		Message:  req.Message,
		Severity: severity,
		Category: category,
		DeviceID: req.DeviceID,
		ZoneID:   req.ZoneID,
	})
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errAddAlert, "alert_add_failed", err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

// @Summary      Mark alert as read
// @Description  No-op when the id is unknown or already read.
// @Tags         alerts
// @Produce      json
// @Param        id  path  string  true  "Alert id"
// @Success      200  {object}  building_monitor.StatusResponse
// @Failure      401  {object}  building_monitor.ErrorResponse
// @Router       /api/v1/alerts/{id}/read [post]
// @Security     BearerAuth
func (h *Handler) markAlertRead(c *gin.Context) {
	_ = h.services.Alerts.MarkAsRead(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, bm.StatusResponse{Status: statusRead})
}

// @Summary      Mark alert as resolved
// @Description  One-way and idempotent; unknown ids are a no-op.
// @Tags         alerts
// @Produce      json
// @Param        id  path  string  true  "Alert id"
// @Success      200  {object}  building_monitor.StatusResponse
// @Failure      401  {object}  building_monitor.ErrorResponse
// @Router       /api/v1/alerts/{id}/resolve [post]
// @Security     BearerAuth
func (h *Handler) markAlertResolved(c *gin.Context) {
	_ = h.services.Alerts.MarkAsResolved(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, bm.StatusResponse{Status: statusResolved})
}

// @Summary      Delete alert
// @Tags         alerts
// @Produce      json
// @Param        id  path  string  true  "Alert id"
// @Success      200  {object}  building_monitor.StatusResponse
// @Failure      401  {object}  building_monitor.ErrorResponse
// @Router       /api/v1/alerts/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteAlert(c *gin.Context) {
	_ = h.services.Alerts.Delete(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, bm.StatusResponse{Status: statusDeleted})
}
