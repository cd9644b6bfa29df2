package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"example.com/peoplehub/services/automation/internal/engine"
	"example.com/peoplehub/services/automation/internal/reporter"
	"example.com/peoplehub/services/automation/internal/tracing"
)

// IntegrationHandler serves the engine's audit trail and statistics
type IntegrationHandler struct {
	router   *engine.Router
	reporter *reporter.Reporter
	tracer   tracing.Tracer
}

// NewIntegrationHandler creates a new integration handler
func NewIntegrationHandler(router *engine.Router, rep *reporter.Reporter, tracer tracing.Tracer) *IntegrationHandler {
	return &IntegrationHandler{
		router:   router,
		reporter: rep,
		tracer:   tracer,
	}
}

// HandleGetStats returns the recomputed integration statistics
func (h *IntegrationHandler) HandleGetStats(c *gin.Context) {
	txn := h.tracer.StartTransaction("integration-stats")
	defer h.tracer.EndTransaction(txn)

	stats, err := h.reporter.Stats(c.Request.Context())
	if err != nil {
		h.tracer.RecordError(txn, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "statistics unavailable"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// HandleGetEvents returns the most recent integration events
func (h *IntegrationHandler) HandleGetEvents(c *gin.Context) {
	txn := h.tracer.StartTransaction("integration-events")
	defer h.tracer.EndTransaction(txn)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	events, err := h.reporter.RecentEvents(c.Request.Context(), limit)
	if err != nil {
		h.tracer.RecordError(txn, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "audit trail unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

// HandleGetStatus reports whether the engine is currently processing
func (h *IntegrationHandler) HandleGetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"is_processing": h.router.Processing(),
		"queue_depth":   h.router.QueueDepth(),
	})
}

// RegisterRoutes registers the handler's routes
func (h *IntegrationHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/v1/integration/stats", h.HandleGetStats)
	router.GET("/api/v1/integration/events", h.HandleGetEvents)
	router.GET("/api/v1/integration/status", h.HandleGetStatus)
}
