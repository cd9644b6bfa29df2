package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"example.com/peoplehub/services/automation/config"
	"example.com/peoplehub/services/automation/internal/api"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Start the HTTP API without the Service Bus change feed consumer.
Change events are accepted over HTTP only; manual triggers and the
integration reporting endpoints work as in the full worker.`,
	RunE: runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)
}

func runAPI(cmd *cobra.Command, args []string) error {
	cfg, err := loadAndSetup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	app, err := newApplication(cfg)
	if err != nil {
		return err
	}
	defer app.registry.Close()

	g, ctx := errgroup.WithContext(ctx)

	// The router still runs so HTTP-ingested events and manual triggers
	// dispatch normally
	g.Go(func() error {
		err := app.router.Run(ctx)
		if err == context.Canceled {
			return nil
		}
		return err
	})

	server := api.NewServer(cfg, app.router, app.reporter, app.metrics, app.tracer)
	g.Go(func() error {
		return server.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		return server.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("API server error")
		return err
	}

	log.Info().Msg("Shutting down API server")
	return nil
}

// loadAndSetup loads the configuration and applies the logging setup
func loadAndSetup() (config.Config, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return config.Config{}, err
	}
	setupLogging(cfg)
	return cfg, nil
}
