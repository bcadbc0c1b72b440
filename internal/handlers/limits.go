package handlers

import (
	bm "building_monitor"
	"errors"
	"net/http"

	"building_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errGetLimit = "failed to load limit"
	errSetLimit = "failed to save limit"
)

// Request DTO for changing a device limit.
type limitRequest struct {
	Value float64 `json:"value" binding:"required"`
}

// @Summary      Get device limit
// @Description  Returns the effective threshold after reconciling the authoritative and backup copies.
// @Tags         limits
// @Produce      json
// @Param        id  path  string  true  "Device id"
// @Success      200  {object}  map[string]interface{}  "device_id, value"
// @Failure      401  {object}  building_monitor.ErrorResponse
// @Failure      500  {object}  building_monitor.ErrorResponse
// @Router       /api/v1/devices/{id}/limit [get]
// @Security     BearerAuth
func (h *Handler) getLimit(c *gin.Context) {
	deviceID := c.Param("id")
	value, err := h.services.Thresholds.Get(c.Request.Context(), deviceID)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetLimit, "limit_get_failed", err, "device_id", deviceID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"device_id": deviceID, "value": value})
}

// @Summary      Set device limit
// @Description  Valid range is [1, 100]; out-of-range values are rejected, never clamped.
// @Tags         limits
// @Accept       json
// @Produce      json
// @Param        id    path  string        true  "Device id"
// @Param        body  body  limitRequest  true  "New limit"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  building_monitor.ErrorResponse
// @Failure      401   {object}  building_monitor.ErrorResponse
// @Failure      500   {object}  building_monitor.ErrorResponse
// @Router       /api/v1/devices/{id}/limit [put]
// @Security     BearerAuth
func (h *Handler) setLimit(c *gin.Context) {
	var req limitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bm.ErrorResponse{Error: errInvalidBody + err.Error()})
		return
	}

	deviceID := c.Param("id")
	if err := h.services.Thresholds.Set(c.Request.Context(), deviceID, req.Value); err != nil {
		if errors.Is(err, service.ErrLimitOutOfRange) {
			c.JSON(http.StatusBadRequest, bm.ErrorResponse{Error: err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errSetLimit, "limit_set_failed", err, "device_id", deviceID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"device_id": deviceID, "value": req.Value})
}
