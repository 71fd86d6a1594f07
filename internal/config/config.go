package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/KXX-Hub/kxx-digital-album/internal/domain"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// LedgerConfig holds the ledger settings
type LedgerConfig struct {
	Controller        string `mapstructure:"controller"`
	CreatorRoyaltyPct uint8  `mapstructure:"creator_royalty_pct"`
	SellerRoyaltyPct  uint8  `mapstructure:"seller_royalty_pct"`
}

// ControllerAddress parses the configured controller identity
func (c *LedgerConfig) ControllerAddress() (common.Address, error) {
	return domain.ParseAddress(c.Controller)
}

// Royalty returns the configured bootstrap royalty split
func (c *LedgerConfig) Royalty() domain.Royalty {
	return domain.Royalty{CreatorPct: c.CreatorRoyaltyPct, SellerPct: c.SellerRoyaltyPct}
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// Enabled reports whether a PostgreSQL database is configured.
// Without one the API runs on the in-memory store.
func (c *DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// NATSConfig holds NATS JetStream configuration
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	SubjectPrefix  string        `mapstructure:"subject_prefix"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
	// CORSAllowedOrigins restricts cross-origin callers; empty allows all
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string `mapstructure:"jwt_public_key"`
}

// PayoutMode selects how purchase payouts are routed
type PayoutMode string

const (
	// PayoutModeBook credits pending balances held by the service
	PayoutModeBook PayoutMode = "book"
	// PayoutModeWebhook forwards payouts to an external payment processor
	PayoutModeWebhook PayoutMode = "webhook"
)

// PayoutConfig holds payout routing configuration
type PayoutConfig struct {
	Mode           PayoutMode    `mapstructure:"mode"`
	WebhookURL     string        `mapstructure:"webhook_url"`
	WebhookSecret  string        `mapstructure:"webhook_secret"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxElapsedTime time.Duration `mapstructure:"max_elapsed_time"`
}

// WebhookSinkConfig describes one webhook the relay delivers events to
type WebhookSinkConfig struct {
	Name   string `mapstructure:"name"`
	URL    string `mapstructure:"url"`
	Secret string `mapstructure:"secret"`
}

// WorkerConfig holds worker configuration
type WorkerConfig struct {
	WorkerPoolSize  int `mapstructure:"pool_size"`
	WorkerQueueSize int `mapstructure:"queue_size"`
}

// RelayConfig holds the event relay loop settings
type RelayConfig struct {
	ConsumerName   string              `mapstructure:"consumer_name"`
	PollInterval   time.Duration       `mapstructure:"poll_interval"`
	BatchSize      int                 `mapstructure:"batch_size"`
	HTTPTimeout    time.Duration       `mapstructure:"http_timeout"`
	MaxElapsedTime time.Duration       `mapstructure:"max_elapsed_time"`
	Webhooks       []WebhookSinkConfig `mapstructure:"webhooks"`
	Worker         WorkerConfig        `mapstructure:"worker"`
}

// RateLimitConfig holds per-caller request limits for the API
type RateLimitConfig struct {
	// RequestsPerSecond of 0 disables rate limiting
	RequestsPerSecond int    `mapstructure:"requests_per_second"`
	Burst             int    `mapstructure:"burst"`
	RedisAddr         string `mapstructure:"redis_addr"` // empty keeps limits local to the process
	RedisPassword     string `mapstructure:"redis_password"`
	RedisDB           int    `mapstructure:"redis_db"`
	RedisKeyPrefix    string `mapstructure:"redis_key_prefix"`
	// EnableLocalFallback keeps limiting in-process while Redis is unreachable
	EnableLocalFallback     bool          `mapstructure:"enable_local_fallback"`
	LocalFallbackMultiplier float64       `mapstructure:"local_fallback_multiplier"`
	HealthCheckInterval     time.Duration `mapstructure:"health_check_interval"`
}

// Enabled reports whether requests are rate limited
func (c *RateLimitConfig) Enabled() bool {
	return c.RequestsPerSecond > 0
}

// APIConfig holds configuration for the ledger API server
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig    `mapstructure:"server"`
	Database   DatabaseConfig  `mapstructure:"database"`
	Auth       AuthConfig      `mapstructure:"auth"`
	Ledger     LedgerConfig    `mapstructure:"ledger"`
	Payout     PayoutConfig    `mapstructure:"payout"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
}

// RelayServiceConfig holds configuration for the event relay
type RelayServiceConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	NATS       NATSConfig     `mapstructure:"nats"`
	Relay      RelayConfig    `mapstructure:"relay"`
}

// LoadAPIConfig loads configuration for the ledger API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("ledger-api", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("ledger.creator_royalty_pct", domain.DEFAULT_CREATOR_ROYALTY_PCT)
	v.SetDefault("ledger.seller_royalty_pct", domain.DEFAULT_SELLER_ROYALTY_PCT)
	v.SetDefault("payout.mode", string(PayoutModeBook))
	v.SetDefault("payout.timeout", "10s")
	v.SetDefault("payout.max_elapsed_time", "30s")
	v.SetDefault("rate_limit.requests_per_second", 0)
	v.SetDefault("rate_limit.redis_key_prefix", "album-ledger:ratelimit:")
	v.SetDefault("rate_limit.enable_local_fallback", true)
	v.SetDefault("rate_limit.local_fallback_multiplier", 0.5)
	v.SetDefault("rate_limit.health_check_interval", "10s")

	if err := readInConfig(v); err != nil {
		return nil, err
	}

	var cfg APIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate required fields
	if _, err := cfg.Ledger.ControllerAddress(); err != nil {
		return nil, fmt.Errorf("ledger.controller is invalid: %w", err)
	}
	if !cfg.Ledger.Royalty().Valid() {
		return nil, fmt.Errorf("ledger royalty %d/%d must add up to %d",
			cfg.Ledger.CreatorRoyaltyPct, cfg.Ledger.SellerRoyaltyPct, domain.ROYALTY_DENOMINATOR)
	}
	switch cfg.Payout.Mode {
	case PayoutModeBook:
		// the book lives in process memory and would lose balances owed for persisted sales
		if cfg.Database.Enabled() {
			return nil, errors.New("payout.mode book cannot be used with a database, use webhook mode")
		}
	case PayoutModeWebhook:
		if cfg.Payout.WebhookURL == "" || cfg.Payout.WebhookSecret == "" {
			return nil, errors.New("payout.webhook_url and payout.webhook_secret are required in webhook mode")
		}
	default:
		return nil, fmt.Errorf("unknown payout mode %q", cfg.Payout.Mode)
	}
	if cfg.RateLimit.RequestsPerSecond < 0 || cfg.RateLimit.Burst < 0 {
		return nil, errors.New("rate_limit.requests_per_second and rate_limit.burst must not be negative")
	}

	return &cfg, nil
}

// LoadRelayConfig loads configuration for the event relay
func LoadRelayConfig(configFile string, envPath string) (*RelayServiceConfig, error) {
	v := configureViper("event-relay", configFile, envPath)

	// Set defaults
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("nats.stream_name", "ALBUM_LEDGER_EVENTS")
	v.SetDefault("nats.subject_prefix", "ledger.events")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.connection_name", "event-relay")
	v.SetDefault("relay.consumer_name", "event-relay")
	v.SetDefault("relay.poll_interval", "2s")
	v.SetDefault("relay.batch_size", 100)
	v.SetDefault("relay.http_timeout", "10s")
	v.SetDefault("relay.max_elapsed_time", "1m")
	v.SetDefault("relay.worker.pool_size", 4)
	v.SetDefault("relay.worker.queue_size", 64)

	if err := readInConfig(v); err != nil {
		return nil, err
	}

	var cfg RelayServiceConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate required fields
	if !cfg.Database.Enabled() {
		return nil, errors.New("database.host is required")
	}
	if cfg.Database.DBName == "" {
		return nil, errors.New("database.dbname is required")
	}
	if cfg.NATS.URL == "" && len(cfg.Relay.Webhooks) == 0 {
		return nil, errors.New("at least one of nats.url or relay.webhooks is required")
	}
	for i, hook := range cfg.Relay.Webhooks {
		if hook.URL == "" || hook.Secret == "" {
			return nil, fmt.Errorf("relay.webhooks[%d] requires url and secret", i)
		}
	}

	return &cfg, nil
}

// readInConfig reads the config file, falling back to environment variables when none exists
func readInConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/ledger-api/, cmd/event-relay/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("ALBUM_LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	commonKeys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.subject_prefix",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.cors_allowed_origins",
		// Rate limit
		"rate_limit.requests_per_second",
		"rate_limit.burst",
		"rate_limit.redis_addr",
		"rate_limit.redis_password",
		"rate_limit.redis_db",
		"rate_limit.redis_key_prefix",
		"rate_limit.enable_local_fallback",
		"rate_limit.local_fallback_multiplier",
		"rate_limit.health_check_interval",
		// Auth
		"auth.jwt_public_key",
		// Ledger
		"ledger.controller",
		"ledger.creator_royalty_pct",
		"ledger.seller_royalty_pct",
		// Payout
		"payout.mode",
		"payout.webhook_url",
		"payout.webhook_secret",
		"payout.timeout",
		"payout.max_elapsed_time",
		// Relay
		"relay.consumer_name",
		"relay.poll_interval",
		"relay.batch_size",
		"relay.http_timeout",
		"relay.max_elapsed_time",
		"relay.worker.pool_size",
		"relay.worker.queue_size",
	}

	for _, key := range commonKeys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
