package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/KXX-Hub/kxx-digital-album/internal/api/middleware"
	"github.com/KXX-Hub/kxx-digital-album/internal/api/rest"
	"github.com/KXX-Hub/kxx-digital-album/internal/api/shared/executor"
	"github.com/KXX-Hub/kxx-digital-album/internal/logger"
	"github.com/KXX-Hub/kxx-digital-album/internal/ratelimit"
)

// Config holds the server configuration
type Config struct {
	Debug              bool
	Host               string
	Port               int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	CORSAllowedOrigins []string
	Auth               middleware.AuthConfig
}

// Server wraps the HTTP server
type Server struct {
	config     Config
	executor   executor.Executor
	limiter    ratelimit.Limiter
	httpServer *http.Server
}

// New creates a new API server. A nil limiter disables rate limiting.
func New(cfg Config, exec executor.Executor, limiter ratelimit.Limiter) *Server {
	return &Server{
		config:   cfg,
		executor: exec,
		limiter:  limiter,
	}
}

// Router builds the gin engine with middleware and routes
func (s *Server) Router() *gin.Engine {
	// Set Gin mode based on debug flag
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Setup middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.SetupCORS(s.config.CORSAllowedOrigins))

	restHandler := rest.NewHandler(s.config.Debug, s.executor)
	rest.SetupRoutes(router, restHandler, s.config.Auth, s.limiter)

	return router
}

// Start initializes and starts the HTTP server. It blocks until the server is shut down.
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	logger.Info("Starting API server",
		zap.String("address", addr),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down API server")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	return nil
}
