package handlers

import (
	bm "building_monitor"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	statusRefreshed = "refreshed"

	errLedgerRefresh = "failed to refresh ledger; cached data may be stale"
	errNoDocuments   = "no documents cached"
)

// @Summary      Cached ledger documents
// @Description  Read-only copies of the external append-only store. stale_error is set when the last refresh failed.
// @Tags         ledger
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, documents, stale_error"
// @Failure      401  {object}  building_monitor.ErrorResponse
// @Router       /api/v1/ledger/documents [get]
// @Security     BearerAuth
func (h *Handler) listDocuments(c *gin.Context) {
	docs := h.services.Ledger.Documents()
	c.JSON(http.StatusOK, gin.H{
		"count":       len(docs),
		"documents":   docs,
		"stale_error": h.services.Ledger.LastError(),
	})
}

// @Summary      Latest cached document
// @Description  Stale-while-revalidate: the previous value is served while a refresh is in flight.
// @Tags         ledger
// @Produce      json
// @Success      200  {object}  models.AuditDocument
// @Failure      401  {object}  building_monitor.ErrorResponse
// @Failure      404  {object}  building_monitor.ErrorResponse
// @Router       /api/v1/ledger/latest [get]
// @Security     BearerAuth
func (h *Handler) latestDocument(c *gin.Context) {
	doc, ok := h.services.Ledger.LatestDocument()
	if !ok {
		c.JSON(http.StatusNotFound, bm.ErrorResponse{Error: errNoDocuments})
		return
	}
	c.JSON(http.StatusOK, doc)
}

// @Summary      Refresh the ledger cache
// @Description  The explicit retry affordance for read failures. Concurrent refreshes are coalesced.
// @Tags         ledger
// @Produce      json
// @Success      200  {object}  building_monitor.StatusResponse
// @Failure      401  {object}  building_monitor.ErrorResponse
// @Failure      502  {object}  building_monitor.ErrorResponse
// @Router       /api/v1/ledger/refresh [post]
// @Security     BearerAuth
func (h *Handler) refreshLedger(c *gin.Context) {
	if err := h.services.Ledger.Refresh(c.Request.Context()); err != nil {
		h.logAndJSONError(c, http.StatusBadGateway, errLedgerRefresh, "ledger_refresh_failed", err)
		return
	}
	c.JSON(http.StatusOK, bm.StatusResponse{Status: statusRefreshed})
}
