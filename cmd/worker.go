package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"example.com/peoplehub/services/automation/internal/api"
	"example.com/peoplehub/services/automation/internal/messaging"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the automation worker",
	Long: `Start the full automation engine: the change feed consumer, the
event router, the statistics refresh job and the HTTP API`,
	RunE: runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
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

	consumer, err := messaging.NewChangeFeedConsumer(cfg.Azure, app.metrics)
	if err != nil {
		return err
	}
	defer consumer.Close()

	g, ctx := errgroup.WithContext(ctx)

	// Event dispatch loop
	g.Go(func() error {
		err := app.router.Run(ctx)
		if err == context.Canceled {
			return nil
		}
		return err
	})

	// Change feed consumer feeding the router's queue
	g.Go(func() error {
		log.Info().Str("queue", cfg.Azure.ChangeFeedQueue).Msg("Starting change feed consumer")
		err := consumer.ProcessMessages(ctx, app.router.Enqueue)
		if err == context.Canceled {
			return nil
		}
		return err
	})

	// Periodic statistics recomputation so the snapshot stays warm even
	// without API traffic
	g.Go(func() error {
		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return err
		}

		_, err = scheduler.NewJob(
			gocron.DurationJob(cfg.Engine.StatsRefreshPeriod),
			gocron.NewTask(func() {
				if _, err := app.reporter.Recompute(ctx); err != nil {
					log.Error().Err(err).Msg("Failed to recompute integration stats")
				}
			}),
		)
		if err != nil {
			return err
		}

		scheduler.Start()
		<-ctx.Done()
		return scheduler.Shutdown()
	})

	// HTTP API alongside the worker, sharing the router's queue
	server := api.NewServer(cfg, app.router, app.reporter, app.metrics, app.tracer)
	g.Go(func() error {
		return server.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		return server.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Worker error")
		return err
	}

	log.Info().Msg("Worker shutting down gracefully")
	return nil
}
