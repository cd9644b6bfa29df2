package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"example.com/peoplehub/services/automation/internal/engine"
	hnd "example.com/peoplehub/services/automation/internal/handlers"
	"example.com/peoplehub/services/automation/internal/metrics"
	"example.com/peoplehub/services/automation/internal/tracing"
)

// TriggersHandler exposes the manual workflows. Triggered workflows run
// synchronously through the same dispatch pipeline as change events and
// return the full automation result.
type TriggersHandler struct {
	router  *engine.Router
	metrics *metrics.Metrics
	tracer  tracing.Tracer
}

// NewTriggersHandler creates a new triggers handler
func NewTriggersHandler(router *engine.Router, collector *metrics.Metrics, tracer tracing.Tracer) *TriggersHandler {
	return &TriggersHandler{
		router:  router,
		metrics: collector,
		tracer:  tracer,
	}
}

// HandleOnboarding triggers the employee onboarding workflow
func (h *TriggersHandler) HandleOnboarding(c *gin.Context) {
	h.trigger(c, hnd.NameEmployeeOnboarding)
}

// HandleShiftPlan triggers the shift plan update workflow
func (h *TriggersHandler) HandleShiftPlan(c *gin.Context) {
	h.trigger(c, hnd.NameShiftPlanUpdate)
}

func (h *TriggersHandler) trigger(c *gin.Context, name string) {
	txn := h.tracer.StartTransaction("trigger-" + name)
	defer h.tracer.EndTransaction(txn)

	var data engine.Record
	if err := c.ShouldBindJSON(&data); err != nil {
		log.Warn().Err(err).Str("trigger", name).Msg("Invalid trigger payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trigger payload"})
		return
	}

	h.metrics.IncrementCounter(metrics.CounterTriggersManual)

	result, err := h.router.Trigger(c.Request.Context(), name, data)
	if err != nil {
		h.tracer.RecordError(txn, err)
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusOK
	if result.Outcome == engine.OutcomeFailed {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, result)
}

// RegisterRoutes registers the handler's routes
func (h *TriggersHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/v1/triggers/onboarding", h.HandleOnboarding)
	router.POST("/api/v1/triggers/shift_plan", h.HandleShiftPlan)
}
