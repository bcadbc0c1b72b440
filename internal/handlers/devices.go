package handlers

import (
	bm "building_monitor"
	"net/http"
	"strconv"
	"time"

	"building_monitor/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	statusOK       = "ok"
	statusAccepted = "accepted"

	errProcessReading = "failed to process reading"
	errDeviceUnknown  = "unknown device"
	errInvalidBody    = "invalid body: "
)

// Request DTO for a pushed device reading.
type readingRequest struct {
	ID       string  `json:"id" binding:"required"`
	Kind     string  `json:"kind" binding:"required"` // temperature | water-level | generic
	Location string  `json:"location,omitempty"`
	Value    float64 `json:"value"`
	Status   string  `json:"status,omitempty"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  building_monitor.StatusResponse
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, bm.StatusResponse{Status: statusOK})
}

// @Summary      Push a device reading
// @Description  Feeds one snapshot through the evaluation pipeline. Readings for the same device are applied in arrival order.
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        body  body   readingRequest  true  "Device snapshot"
// @Success      202   {object}  building_monitor.StatusResponse
// @Failure      400   {object}  building_monitor.ErrorResponse
// @Failure      401   {object}  building_monitor.ErrorResponse
// @Failure      500   {object}  building_monitor.ErrorResponse
// @Router       /api/v1/devices/reading [post]
// @Security     BearerAuth
func (h *Handler) ingestReading(c *gin.Context) {
	var req readingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bm.ErrorResponse{Error: errInvalidBody + err.Error()})
		return
	}

	status := models.DeviceStatus(req.Status)
	if status == "" {
		status = models.StatusOnline
	}
	snap := models.DeviceSnapshot{
		ID:        req.ID,
		Kind:      models.SensorKind(req.Kind),
		Location:  req.Location,
		Value:     req.Value,
		Status:    status,
		UpdatedAt: time.Now().UTC(),
	}

	if err := h.services.Monitor.ProcessReading(c.Request.Context(), snap); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errProcessReading, "reading_process_failed", err, "device_id", req.ID)
		return
	}
	c.JSON(http.StatusAccepted, bm.StatusResponse{Status: statusAccepted})
}

// @Summary      List known devices
// @Tags         devices
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, devices"
// @Failure      401  {object}  building_monitor.ErrorResponse
// @Router       /api/v1/devices [get]
// @Security     BearerAuth
func (h *Handler) listDevices(c *gin.Context) {
	devices := h.services.Devices.List()
	c.JSON(http.StatusOK, gin.H{"count": len(devices), "devices": devices})
}

// @Summary      Get one device snapshot
// @Tags         devices
// @Produce      json
// @Param        id  path  string  true  "Device id"
// @Success      200  {object}  models.DeviceSnapshot
// @Failure      401  {object}  building_monitor.ErrorResponse
// @Failure      404  {object}  building_monitor.ErrorResponse
// @Router       /api/v1/devices/{id} [get]
// @Security     BearerAuth
func (h *Handler) getDevice(c *gin.Context) {
	snap, ok := h.services.Devices.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, bm.ErrorResponse{Error: errDeviceUnknown})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// @Summary      Recent readings for a device
// @Description  Bounded in-memory history used for chart reloads.
// @Tags         devices
// @Produce      json
// @Param        id     path   string  true   "Device id"
// @Param        limit  query  int     false  "Max points (default all)"
// @Success      200  {object}  map[string]interface{}  "count, points"
// @Failure      401  {object}  building_monitor.ErrorResponse
// @Router       /api/v1/devices/{id}/history [get]
// @Security     BearerAuth
func (h *Handler) getHistory(c *gin.Context) {
	n := 0
	if qs := c.Query("limit"); qs != "" {
		if parsed, err := strconv.Atoi(qs); err == nil {
			n = parsed
		}
	}
	points := h.services.Devices.History(c.Param("id"), n)
	c.JSON(http.StatusOK, gin.H{"count": len(points), "points": points})
}
