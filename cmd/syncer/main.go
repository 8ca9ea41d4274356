package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"docsync/internal/blobstore/postgres"
	"docsync/internal/config"
	"docsync/internal/discover"
	"docsync/internal/fetch"
	"docsync/internal/index"
	"docsync/internal/publisher"
	"docsync/internal/scheduler"
	"docsync/internal/service"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Setup logger
	logger := setupLogger("info")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Change events are published only when a broker is configured.
	var pub service.Publisher
	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		pub = rabbitMQ
	}

	blobs := postgres.NewBlobStore(db)

	fetcher := fetch.New(fetch.Config{
		Timeout:        cfg.Fetcher.Timeout,
		UserAgent:      cfg.Fetcher.UserAgent,
		MaxAttempts:    cfg.Fetcher.Retry.MaxAttempts,
		InitialBackoff: cfg.Fetcher.Retry.InitialBackoff,
		MaxBackoff:     cfg.Fetcher.Retry.MaxBackoff,
	}, logger)

	discoverer := discover.New(discover.Config{
		BaseURL:  cfg.Discover.BaseURL,
		PageSize: cfg.Discover.PageSize,
		Timeout:  cfg.Discover.Timeout,
	}, logger)

	indexer := index.New(index.Config{
		BaseURL: cfg.Index.BaseURL,
		APIKey:  cfg.Index.APIKey,
		Timeout: cfg.Index.Timeout,
	}, logger)

	syncService := service.NewSyncService(
		discoverer,
		fetcher,
		indexer,
		blobs,
		pub,
		logger,
		cfg.Sync,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Persistence failures are non-fatal; in-memory state stays
	// authoritative for this process lifetime.
	if err := syncService.LoadState(ctx); err != nil {
		logger.Warn("could not load previous state", "error", err)
	}

	var lastFull, lastIncremental time.Time
	if t := syncService.LastFullSync(); t != nil {
		lastFull = *t
	}
	if t := syncService.LastIncrementalSync(); t != nil {
		lastIncremental = *t
	}

	sched := scheduler.NewScheduler(syncService, scheduler.Config{
		Sources:             cfg.Sync.Sources,
		CheckInterval:       cfg.Sync.CheckInterval,
		FullInterval:        cfg.Sync.FullSyncInterval,
		IncrementalInterval: cfg.Sync.IncrementalSyncInterval,
	}, lastFull, lastIncremental, logger)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	logger.Info("starting content synchronizer",
		"sources", cfg.Sync.Sources,
		"check_interval", cfg.Sync.CheckInterval,
		"batch_size", cfg.Sync.BatchSize,
	)

	err = sched.Start(ctx)

	// Snapshot state on the way out regardless of why the loop stopped.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if saveErr := syncService.SaveState(shutdownCtx); saveErr != nil {
		logger.Warn("failed to save state on shutdown", "error", saveErr)
	}

	if err != nil && err != context.Canceled {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
