package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KXX-Hub/kxx-digital-album/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0600))
	return configFile
}

func TestLoadAPIConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *APIConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
server:
  host: 127.0.0.1
  port: 9090
  read_timeout: 5
database:
  host: localhost
  port: 5433
  user: testuser
  password: testpass
  dbname: testdb
  max_open_conns: 20
  conn_max_lifetime: "1h"
auth:
  jwt_public_key: "-----BEGIN PUBLIC KEY-----"
ledger:
  controller: "0x00000000000000000000000000000000000000c0"
  creator_royalty_pct: 15
  seller_royalty_pct: 85
payout:
  mode: webhook
  webhook_url: "https://payments.example.com/payouts"
  webhook_secret: "shh"
  timeout: "3s"
rate_limit:
  requests_per_second: 20
  burst: 40
  redis_addr: "localhost:6379"
`,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, "127.0.0.1", cfg.Server.Host)
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 5, cfg.Server.ReadTimeout)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, 5433, cfg.Database.Port)
				assert.Equal(t, 20, cfg.Database.MaxOpenConns)
				assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
				assert.True(t, cfg.Database.Enabled())
				assert.Equal(t, "-----BEGIN PUBLIC KEY-----", cfg.Auth.JWTPublicKey)

				controller, err := cfg.Ledger.ControllerAddress()
				require.NoError(t, err)
				assert.Equal(t, common.HexToAddress("0xc0"), controller)
				assert.Equal(t, domain.Royalty{CreatorPct: 15, SellerPct: 85}, cfg.Ledger.Royalty())

				assert.Equal(t, PayoutModeWebhook, cfg.Payout.Mode)
				assert.Equal(t, "https://payments.example.com/payouts", cfg.Payout.WebhookURL)
				assert.Equal(t, 3*time.Second, cfg.Payout.Timeout)

				assert.True(t, cfg.RateLimit.Enabled())
				assert.Equal(t, 20, cfg.RateLimit.RequestsPerSecond)
				assert.Equal(t, 40, cfg.RateLimit.Burst)
				assert.Equal(t, "localhost:6379", cfg.RateLimit.RedisAddr)
			},
		},
		{
			name: "config with defaults",
			configFile: `
ledger:
  controller: "0x00000000000000000000000000000000000000c0"
`,
			validate: func(t *testing.T, cfg *APIConfig) {
				// Check defaults
				assert.False(t, cfg.Debug)
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 30, cfg.Server.WriteTimeout)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.False(t, cfg.Database.Enabled())
				assert.Equal(t, domain.Royalty{CreatorPct: 10, SellerPct: 90}, cfg.Ledger.Royalty())
				assert.Equal(t, PayoutModeBook, cfg.Payout.Mode)
				assert.Equal(t, 10*time.Second, cfg.Payout.Timeout)
				assert.Equal(t, 30*time.Second, cfg.Payout.MaxElapsedTime)
				assert.False(t, cfg.RateLimit.Enabled())
				assert.Equal(t, "album-ledger:ratelimit:", cfg.RateLimit.RedisKeyPrefix)
				assert.True(t, cfg.RateLimit.EnableLocalFallback)
				assert.Equal(t, 10*time.Second, cfg.RateLimit.HealthCheckInterval)
			},
		},
		{
			name: "missing controller",
			configFile: `
server:
  port: 8080
`,
			expectError: true,
		},
		{
			name: "zero controller",
			configFile: `
ledger:
  controller: "0x0000000000000000000000000000000000000000"
`,
			expectError: true,
		},
		{
			name: "royalty does not add up",
			configFile: `
ledger:
  controller: "0x00000000000000000000000000000000000000c0"
  creator_royalty_pct: 20
  seller_royalty_pct: 90
`,
			expectError: true,
		},
		{
			name: "webhook mode without secret",
			configFile: `
ledger:
  controller: "0x00000000000000000000000000000000000000c0"
payout:
  mode: webhook
  webhook_url: "https://payments.example.com/payouts"
`,
			expectError: true,
		},
		{
			name: "book payouts with a database",
			configFile: `
database:
  host: localhost
ledger:
  controller: "0x00000000000000000000000000000000000000c0"
payout:
  mode: book
`,
			expectError: true,
		},
		{
			name: "book payouts by default with a database",
			configFile: `
database:
  host: localhost
ledger:
  controller: "0x00000000000000000000000000000000000000c0"
`,
			expectError: true,
		},
		{
			name: "unknown payout mode",
			configFile: `
ledger:
  controller: "0x00000000000000000000000000000000000000c0"
payout:
  mode: wire
`,
			expectError: true,
		},
		{
			name: "negative rate limit",
			configFile: `
ledger:
  controller: "0x00000000000000000000000000000000000000c0"
rate_limit:
  requests_per_second: -1
`,
			expectError: true,
		},
		{
			name: "invalid yaml",
			configFile: `
				database:
				  host: localhost
				  port: invalid
			`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadAPIConfig(writeConfig(t, tt.configFile), t.TempDir())

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestLoadAPIConfig_MissingConfigFile(t *testing.T) {
	cfg, err := LoadAPIConfig(filepath.Join(t.TempDir(), "nonexistent.yaml"), t.TempDir())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadRelayConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *RelayServiceConfig)
	}{
		{
			name: "valid config file",
			configFile: `
database:
  host: localhost
  user: relay
  password: relay
  dbname: ledger
nats:
  url: "nats://localhost:4222"
  stream_name: "TEST_STREAM"
  subject_prefix: "test.events"
relay:
  consumer_name: "relay-1"
  poll_interval: "500ms"
  batch_size: 10
  webhooks:
    - name: marketplace
      url: "https://market.example.com/hooks"
      secret: "s1"
    - name: analytics
      url: "https://analytics.example.com/hooks"
      secret: "s2"
  worker:
    pool_size: 8
`,
			validate: func(t *testing.T, cfg *RelayServiceConfig) {
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, 5, cfg.Database.MaxOpenConns)
				assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
				assert.Equal(t, "TEST_STREAM", cfg.NATS.StreamName)
				assert.Equal(t, "test.events", cfg.NATS.SubjectPrefix)
				assert.Equal(t, "relay-1", cfg.Relay.ConsumerName)
				assert.Equal(t, 500*time.Millisecond, cfg.Relay.PollInterval)
				assert.Equal(t, 10, cfg.Relay.BatchSize)
				assert.Equal(t, 8, cfg.Relay.Worker.WorkerPoolSize)
				assert.Equal(t, 64, cfg.Relay.Worker.WorkerQueueSize)
				require.Len(t, cfg.Relay.Webhooks, 2)
				assert.Equal(t, WebhookSinkConfig{Name: "marketplace", URL: "https://market.example.com/hooks", Secret: "s1"}, cfg.Relay.Webhooks[0])
				assert.Equal(t, "analytics", cfg.Relay.Webhooks[1].Name)
			},
		},
		{
			name: "config with defaults",
			configFile: `
database:
  host: localhost
  dbname: ledger
nats:
  url: "nats://localhost:4222"
`,
			validate: func(t *testing.T, cfg *RelayServiceConfig) {
				assert.Equal(t, "ALBUM_LEDGER_EVENTS", cfg.NATS.StreamName)
				assert.Equal(t, "ledger.events", cfg.NATS.SubjectPrefix)
				assert.Equal(t, 10, cfg.NATS.MaxReconnects)
				assert.Equal(t, "2s", cfg.NATS.ReconnectWait.String())
				assert.Equal(t, "event-relay", cfg.Relay.ConsumerName)
				assert.Equal(t, 2*time.Second, cfg.Relay.PollInterval)
				assert.Equal(t, 100, cfg.Relay.BatchSize)
				assert.Equal(t, time.Minute, cfg.Relay.MaxElapsedTime)
				assert.Equal(t, 4, cfg.Relay.Worker.WorkerPoolSize)
				assert.Empty(t, cfg.Relay.Webhooks)
			},
		},
		{
			name: "missing database",
			configFile: `
nats:
  url: "nats://localhost:4222"
`,
			expectError: true,
		},
		{
			name: "no sink configured",
			configFile: `
database:
  host: localhost
  dbname: ledger
`,
			expectError: true,
		},
		{
			name: "webhook without secret",
			configFile: `
database:
  host: localhost
  dbname: ledger
relay:
  webhooks:
    - name: marketplace
      url: "https://market.example.com/hooks"
`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadRelayConfig(writeConfig(t, tt.configFile), t.TempDir())

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			tt.validate(t, cfg)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name     string
		config   DatabaseConfig
		expected string
	}{
		{
			name: "complete config",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "testuser",
				Password: "testpass",
				DBName:   "testdb",
				SSLMode:  "require",
			},
			expected: "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=require",
		},
		{
			name: "with special characters in password",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "testuser",
				Password: "p@ssw0rd!",
				DBName:   "testdb",
				SSLMode:  "disable",
			},
			expected: "host=localhost port=5432 user=testuser password=p@ssw0rd! dbname=testdb sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.DSN())
		})
	}
}

func TestConfigWithEnvironmentVariables(t *testing.T) {
	tmpDir := t.TempDir()

	// godotenv writes into the process environment; register the keys so they are restored
	for _, key := range []string{
		"ALBUM_LEDGER_DEBUG",
		"ALBUM_LEDGER_DATABASE_HOST",
		"ALBUM_LEDGER_DATABASE_PORT",
		"ALBUM_LEDGER_LEDGER_CONTROLLER",
		"ALBUM_LEDGER_LEDGER_CREATOR_ROYALTY_PCT",
		"ALBUM_LEDGER_LEDGER_SELLER_ROYALTY_PCT",
	} {
		t.Setenv(key, "")
	}

	envDir := filepath.Join(tmpDir, "env")
	require.NoError(t, os.MkdirAll(envDir, 0750))

	// Viper uses the ALBUM_LEDGER_ prefix, so env vars need the prefix
	envContent := `ALBUM_LEDGER_DEBUG=true
ALBUM_LEDGER_DATABASE_HOST=env-host
ALBUM_LEDGER_DATABASE_PORT=3306
ALBUM_LEDGER_LEDGER_CONTROLLER=0x00000000000000000000000000000000000000d0
ALBUM_LEDGER_LEDGER_CREATOR_ROYALTY_PCT=25
ALBUM_LEDGER_LEDGER_SELLER_ROYALTY_PCT=75
`
	require.NoError(t, os.WriteFile(filepath.Join(envDir, ".env"), []byte(envContent), 0600))

	configFile := writeConfig(t, `
debug: false
database:
  host: file-host
  port: 5432
ledger:
  controller: "0x00000000000000000000000000000000000000c0"
payout:
  mode: webhook
  webhook_url: "https://payments.example.com/payouts"
  webhook_secret: "shh"
`)

	cfg, err := LoadAPIConfig(configFile, envDir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// The .env file is loaded via godotenv.Overload and picked up by AutomaticEnv
	assert.True(t, cfg.Debug)
	assert.Equal(t, "env-host", cfg.Database.Host)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, domain.Royalty{CreatorPct: 25, SellerPct: 75}, cfg.Ledger.Royalty())

	controller, err := cfg.Ledger.ControllerAddress()
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xd0"), controller)
}
