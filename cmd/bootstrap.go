package cmd

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"example.com/peoplehub/services/automation/config"
	"example.com/peoplehub/services/automation/internal/cache"
	"example.com/peoplehub/services/automation/internal/engine"
	"example.com/peoplehub/services/automation/internal/handlers"
	"example.com/peoplehub/services/automation/internal/messaging"
	"example.com/peoplehub/services/automation/internal/metrics"
	"example.com/peoplehub/services/automation/internal/models"
	"example.com/peoplehub/services/automation/internal/modules"
	"example.com/peoplehub/services/automation/internal/reporter"
	"example.com/peoplehub/services/automation/internal/repositories"
	"example.com/peoplehub/services/automation/internal/search"
	"example.com/peoplehub/services/automation/internal/tracing"
)

// application bundles the wired engine components shared by the worker
// and api commands
type application struct {
	cfg      config.Config
	metrics  *metrics.Metrics
	tracer   tracing.Tracer
	cache    *cache.RedisCache
	registry *engine.Registry
	router   *engine.Router
	reporter *reporter.Reporter
}

// setupLogging configures the global zerolog logger
func setupLogging(cfg config.Config) {
	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}
}

// newApplication wires the full engine: databases, cache, search,
// tracing, module write APIs, the subscription registry, the executor
// and the dispatch router
func newApplication(cfg config.Config) (*application, error) {
	db, readOnlyDB, err := initDatabases(cfg)
	if err != nil {
		return nil, err
	}

	collector := metrics.NewMetrics()

	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis cache, continuing without caching")
		redisCache, _ = cache.NewRedisCache(config.RedisConfig{Enabled: false})
	}

	tracer, err := tracing.NewTracer(cfg.Tracing)
	if err != nil {
		return nil, err
	}

	var indexer reporter.Indexer
	elasticClient, err := search.NewElasticClient(cfg.Elastic)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Elasticsearch client, continuing without search indexing")
	} else {
		indexer = elasticClient
	}

	// The notification delivery queue is optional; notifications are
	// always stored
	var notificationBus messaging.ServiceBusClient
	if cfg.Azure.ConnectionString != "" {
		notificationBus, err = messaging.NewServiceBusClient(cfg.Azure, cfg.Azure.NotificationQueue, "automation-engine")
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize notification queue, notices stay database only")
		}
	}

	// Module write APIs
	budgetService := modules.NewBudgetService(db, readOnlyDB)
	calendarService := modules.NewCalendarService(db)
	absenceService := modules.NewAbsenceService(db, readOnlyDB)
	notificationService := modules.NewNotificationService(db, notificationBus)
	approvalService := modules.NewApprovalService(db, readOnlyDB)
	documentService := modules.NewDocumentService(db)
	shiftService := modules.NewShiftService(repositories.NewShiftRepository(db, readOnlyDB))

	executor := engine.NewExecutor(
		budgetService,
		calendarService,
		absenceService,
		notificationService,
		approvalService,
		documentService,
		shiftService,
	)

	registry := engine.NewRegistry()
	handlers.RegisterAll(registry, handlers.Deps{
		Employees:           repositories.NewEmployeeRepository(db, readOnlyDB),
		Time:                repositories.NewTimeEntryRepository(db, readOnlyDB),
		Shifts:              shiftService,
		Budget:              budgetService,
		Approvals:           approvalService,
		Absences:            absenceService,
		OvertimeDailyHours:  cfg.Engine.OvertimeDailyHours,
		OvertimeWeeklyHours: cfg.Engine.OvertimeWeeklyHours,
	})

	eventStore := repositories.NewIntegrationEventRepository(db, readOnlyDB)
	rep := reporter.New(eventStore, indexer, notificationService, redisCache, collector, cfg.Engine.StatsWindow)

	router := engine.NewRouter(registry, executor, rep, collector, tracer, engine.Config{
		QueueSize:      cfg.Engine.QueueSize,
		HandlerTimeout: cfg.Engine.HandlerTimeout,
	})

	collector.SetHealth("database", true)
	collector.SetHealth("cache", redisCache.Enabled())

	return &application{
		cfg:      cfg,
		metrics:  collector,
		tracer:   tracer,
		cache:    redisCache,
		registry: registry,
		router:   router,
		reporter: rep,
	}, nil
}

func initDatabases(cfg config.Config) (*gorm.DB, *gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN), &gorm.Config{})
	if err != nil {
		return nil, nil, err
	}

	if err := models.SetupModels(db); err != nil {
		return nil, nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	readOnlyDSN := cfg.DB.ReadOnlyDSN
	if readOnlyDSN == "" {
		readOnlyDSN = cfg.DB.DSN
	}
	readOnlyDB, err := gorm.Open(postgres.Open(readOnlyDSN), &gorm.Config{})
	if err != nil {
		return nil, nil, err
	}

	roSQLDB, err := readOnlyDB.DB()
	if err != nil {
		return nil, nil, err
	}
	roSQLDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	roSQLDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	roSQLDB.SetConnMaxLifetime(time.Hour)

	return db, readOnlyDB, nil
}
