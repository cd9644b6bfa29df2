package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"example.com/peoplehub/services/automation/internal/engine"
	"example.com/peoplehub/services/automation/internal/tracing"
)

// EventsHandler accepts change events over HTTP, an ingestion path for
// environments without the Service Bus change feed
type EventsHandler struct {
	router *engine.Router
	tracer tracing.Tracer
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(router *engine.Router, tracer tracing.Tracer) *EventsHandler {
	return &EventsHandler{
		router: router,
		tracer: tracer,
	}
}

// HandleChangeEvent enqueues one change event for dispatch
func (h *EventsHandler) HandleChangeEvent(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-change-event")
	defer h.tracer.EndTransaction(txn)

	var event engine.ChangeEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		log.Warn().Err(err).Msg("Invalid change event payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid change event payload"})
		return
	}

	if event.Entity == "" || event.New == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "change event requires entity and new record"})
		return
	}
	if event.Operation != engine.OperationInserted && event.Operation != engine.OperationUpdated {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported operation"})
		return
	}

	h.tracer.AddAttribute(txn, "entity", event.Entity)

	if err := h.router.Enqueue(c.Request.Context(), event); err != nil {
		h.tracer.RecordError(txn, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event queue unavailable"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// RegisterRoutes registers the handler's routes
func (h *EventsHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/v1/change_events", h.HandleChangeEvent)
}
