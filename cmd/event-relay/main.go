package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/KXX-Hub/kxx-digital-album/internal/adapter"
	"github.com/KXX-Hub/kxx-digital-album/internal/config"
	"github.com/KXX-Hub/kxx-digital-album/internal/logger"
	"github.com/KXX-Hub/kxx-digital-album/internal/providers/jetstream"
	"github.com/KXX-Hub/kxx-digital-album/internal/relay"
	"github.com/KXX-Hub/kxx-digital-album/internal/store"
	"github.com/KXX-Hub/kxx-digital-album/internal/webhook"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadRelayConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "event-relay",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting album ledger event relay")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database", zap.String("host", cfg.Database.Host))

	dataStore := store.NewPGStore(db)
	cursorStore := store.NewCursorStore(db)

	// Initialize adapters
	clock := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()

	// Build sinks
	var sinks []relay.Sink
	if cfg.NATS.URL != "" {
		publisher, err := jetstream.NewPublisher(ctx, jetstream.Config{
			URL:            cfg.NATS.URL,
			StreamName:     cfg.NATS.StreamName,
			SubjectPrefix:  cfg.NATS.SubjectPrefix,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: cfg.NATS.ConnectionName,
		}, adapter.NewNatsJetStream(), jsonAdapter)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create NATS publisher", zap.Error(err))
		}
		defer publisher.Close()
		logger.InfoCtx(ctx, "Connected to NATS JetStream",
			zap.String("url", cfg.NATS.URL),
			zap.String("stream", cfg.NATS.StreamName),
		)
		sinks = append(sinks, relay.NewPublisherSink(publisher))
	}

	httpClient := adapter.NewHTTPClient(cfg.Relay.HTTPTimeout, cfg.Relay.MaxElapsedTime)
	for _, hook := range cfg.Relay.Webhooks {
		client := webhook.NewClient(hook.URL, hook.Secret, httpClient, clock)
		sinks = append(sinks, relay.NewWebhookSink(hook.Name, client, jsonAdapter))
		logger.InfoCtx(ctx, "Configured webhook sink", zap.String("name", hook.Name), zap.String("url", hook.URL))
	}

	eventRelay, err := relay.New(relay.Config{
		ConsumerName:    cfg.Relay.ConsumerName,
		PollInterval:    cfg.Relay.PollInterval,
		BatchSize:       cfg.Relay.BatchSize,
		WorkerPoolSize:  cfg.Relay.Worker.WorkerPoolSize,
		WorkerQueueSize: cfg.Relay.Worker.WorkerQueueSize,
	}, dataStore, cursorStore, sinks, clock)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create event relay", zap.Error(err))
	}

	// Start relay in background
	errCh := make(chan error, 1)
	go func() {
		if err := eventRelay.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", eventRelay.Name()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := eventRelay.Stop(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err, zap.String("message", "Event relay forced to stop"))
	}
	cancel()

	if err := dataStore.Close(); err != nil {
		logger.Error(err, zap.String("component", "store"))
	}

	logger.Info("Event relay stopped")
}
