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
	"github.com/KXX-Hub/kxx-digital-album/internal/api/middleware"
	"github.com/KXX-Hub/kxx-digital-album/internal/api/server"
	"github.com/KXX-Hub/kxx-digital-album/internal/api/shared/executor"
	"github.com/KXX-Hub/kxx-digital-album/internal/config"
	"github.com/KXX-Hub/kxx-digital-album/internal/ledger"
	"github.com/KXX-Hub/kxx-digital-album/internal/logger"
	"github.com/KXX-Hub/kxx-digital-album/internal/payment"
	"github.com/KXX-Hub/kxx-digital-album/internal/ratelimit"
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
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
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
			"service": "ledger-api",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting album ledger API")

	// Initialize store
	var dataStore store.Store
	if cfg.Database.Enabled() {
		db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
		}
		if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
			logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
		}
		logger.InfoCtx(ctx, "Connected to database",
			zap.String("host", cfg.Database.Host),
			zap.String("dbname", cfg.Database.DBName),
		)
		dataStore = store.NewPGStore(db)
	} else {
		logger.WarnCtx(ctx, "Database not configured, ledger state is kept in memory and lost on restart")
		dataStore = store.NewMemoryStore()
	}
	defer func() {
		if err := dataStore.Close(); err != nil {
			logger.Error(err, zap.String("component", "store"))
		}
	}()

	// Initialize adapters
	clock := adapter.NewClock()

	// Select the payout dispatcher
	var (
		dispatcher payment.Dispatcher
		book       executor.BalanceBook
	)
	switch cfg.Payout.Mode {
	case config.PayoutModeWebhook:
		httpClient := adapter.NewHTTPClient(cfg.Payout.Timeout, cfg.Payout.MaxElapsedTime)
		client := webhook.NewClient(cfg.Payout.WebhookURL, cfg.Payout.WebhookSecret, httpClient, clock)
		dispatcher = payment.NewWebhookDispatcher(client, clock, adapter.NewJSON())
		logger.InfoCtx(ctx, "Payouts are forwarded to the payment processor", zap.String("url", cfg.Payout.WebhookURL))
	default:
		b := payment.NewBook()
		dispatcher = b
		book = b
		logger.InfoCtx(ctx, "Payouts are credited to pending balances")
	}

	controller, err := cfg.Ledger.ControllerAddress()
	if err != nil {
		logger.FatalCtx(ctx, "Invalid controller identity", zap.Error(err))
	}

	l, err := ledger.New(ctx, dataStore, dispatcher, ledger.Config{
		Controller: controller,
		Royalty:    cfg.Ledger.Royalty(),
	}, ledger.WithClock(clock))
	if err != nil {
		logger.FatalCtx(ctx, "Failed to initialize ledger", zap.Error(err))
	}

	// Initialize rate limiter
	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled() {
		var redisClient adapter.RedisClient
		if cfg.RateLimit.RedisAddr != "" {
			redisClient = adapter.NewRedisClient(cfg.RateLimit.RedisAddr, cfg.RateLimit.RedisPassword, cfg.RateLimit.RedisDB)
		}
		limiter, err = ratelimit.NewLimiter(cfg.RateLimit, redisClient, clock)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to initialize rate limiter", zap.Error(err))
		}
		defer func() {
			if err := limiter.Close(); err != nil {
				logger.Error(err, zap.String("component", "rate_limiter"))
			}
		}()
	}

	// Create server config
	serverConfig := server.Config{
		Debug:              cfg.Debug,
		Host:               cfg.Server.Host,
		Port:               cfg.Server.Port,
		ReadTimeout:        time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:       time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:        time.Duration(cfg.Server.IdleTimeout) * time.Second,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		Auth: middleware.AuthConfig{
			JWTPublicKey: cfg.Auth.JWTPublicKey,
		},
	}

	// Create and start server
	srv := server.New(serverConfig, executor.NewExecutor(l, book), limiter)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err, zap.String("message", "Server forced to shutdown"))
	}

	// Use non-context logger for final message since original ctx is canceled
	logger.Info("API server stopped")
}
