package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	partnerapp "github.com/crm/backend/internal/application/partner"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/crm/backend/internal/infrastructure/event"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/crm/backend/internal/infrastructure/persistence"
	"github.com/crm/backend/internal/infrastructure/strategy"
	"github.com/crm/backend/internal/interfaces/cli"
	"go.uber.org/zap"
)

func main() {
	// Parse flags
	var (
		configPath string
		logLevel   string
		seed       bool
	)

	flag.StringVar(&configPath, "config", "", "Path to a config file (default: ./config.toml if present)")
	flag.StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	flag.BoolVar(&seed, "seed", false, "Create one sample customer per tier")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	telemetryStack, err := setupTelemetry(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		telemetryStack.shutdown(ctx, log)
	}()
	log = telemetryStack.bridgeLogger(log, cfg)

	log.Info("Starting CRM console",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
	)

	// Discount strategies for quotes
	registry, err := strategy.NewRegistryWithParameters(cfg.Customer.WholesaleMinimumOrder, cfg.Customer.VIPBasePercent)
	if err != nil {
		log.Fatal("Failed to initialize discount strategies", zap.Error(err))
	}

	factory := partner.NewCustomerFactory(partner.TierDefaults{
		WholesaleMinimumOrder: cfg.Customer.WholesaleMinimumOrder,
		VIPBasePercent:        cfg.Customer.VIPBasePercent,
		VIPBonusAccrualRate:   cfg.Customer.VIPBonusAccrualRate,
		DefaultManager:        cfg.Customer.DefaultManager,
	})

	// Initialize event serializer and register all event types
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)
	history := event.NewEventHistory(eventSerializer, cfg.Event.HistoryLimit)
	eventBus.Subscribe(history)
	if cfg.Event.AuditEnabled {
		eventBus.Subscribe(event.NewAuditLogHandler(log, eventSerializer))
	}

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := eventBus.Stop(ctx); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	customerService := partnerapp.NewCustomerService(
		persistence.NewInMemoryCustomerRepository(persistence.WithRepositoryLogger(log)),
		factory,
		registry,
		partnerapp.WithEventPublisher(eventBus),
		partnerapp.WithEventHistory(history),
		partnerapp.WithLogger(log.Named("customer")),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	if err := telemetryStack.startCustomerMetrics(ctx, customerService, cfg, log); err != nil {
		log.Fatal("Failed to initialize customer metrics", zap.Error(err))
	}
	eventBus.Subscribe(telemetryStack.metrics)

	if seed {
		customers, err := customerService.SeedSampleCustomers(ctx)
		if err != nil {
			log.Fatal("Failed to seed sample customers", zap.Error(err))
		}
		for _, c := range customers {
			fmt.Printf("Seeded %s  %s\n", c.ID, c.Summary)
		}
	}

	console := cli.NewConsole(customerService, os.Stdin, os.Stdout,
		cli.WithLogger(log),
		cli.WithCommandRecorder(telemetryStack.metrics),
	)

	done := make(chan error, 1)
	go func() {
		done <- console.Run(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Error("Console stopped with error", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("Shutting down...")
	}

	published, failed := eventBus.Stats()
	log.Info("CRM console exited",
		zap.Int64("events_published", published),
		zap.Int64("handler_failures", failed),
	)
}
