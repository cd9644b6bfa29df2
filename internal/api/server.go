package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/peoplehub/services/automation/config"
	"example.com/peoplehub/services/automation/internal/api/handlers"
	"example.com/peoplehub/services/automation/internal/engine"
	"example.com/peoplehub/services/automation/internal/metrics"
	"example.com/peoplehub/services/automation/internal/reporter"
	"example.com/peoplehub/services/automation/internal/tracing"
)

// Server represents the HTTP server
type Server struct {
	config     config.Config
	router     *gin.Engine
	httpServer *http.Server
	tracer     tracing.Tracer
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.Config,
	eventRouter *engine.Router,
	rep *reporter.Reporter,
	collector *metrics.Metrics,
	tracer tracing.Tracer,
) *Server {
	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &Server{
		config: cfg,
		tracer: tracer,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if app := tracer.Application(); app != nil {
		router.Use(nrgin.Middleware(app))
	}

	eventsHandler := handlers.NewEventsHandler(eventRouter, tracer)
	eventsHandler.RegisterRoutes(router)

	triggersHandler := handlers.NewTriggersHandler(eventRouter, collector, tracer)
	triggersHandler.RegisterRoutes(router)

	integrationHandler := handlers.NewIntegrationHandler(eventRouter, rep, tracer)
	integrationHandler.RegisterRoutes(router)

	metricsHandler := handlers.NewMetricsHandler(collector, tracer)
	metricsHandler.RegisterRoutes(router)

	server.router = router
	server.httpServer = &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router,
		ReadTimeout:  cfg.ServerTimeout,
		WriteTimeout: cfg.ServerTimeout,
	}

	return server
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Info().Str("address", s.config.ServerAddress).Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "HTTP server error")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "HTTP server shutdown error")
	}

	log.Info().Msg("HTTP server shut down successfully")
	return nil
}
