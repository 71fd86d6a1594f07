package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/KXX-Hub/kxx-digital-album/internal/domain"
)

var (
	testDB      *gorm.DB
	pgContainer *postgres.PostgresContainer
)

// TestMain connects to TEST_DB_HOST when set, otherwise starts a Postgres
// container, and loads the ledger schema before running the tests
func TestMain(m *testing.M) {
	ctx := context.Background()

	dsn, ok := externalDSN()
	if !ok {
		var err error
		dsn, err = startPostgres(ctx)
		if err != nil {
			exitWithError(ctx, "Failed to start PostgreSQL container", err)
		}
	}

	var err error
	testDB, err = gorm.Open(pgdriver.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		exitWithError(ctx, "Failed to connect to database", err)
	}

	if err := loadSchema(testDB); err != nil {
		exitWithError(ctx, "Failed to initialize database", err)
	}

	code := m.Run()
	terminatePostgres(ctx)
	os.Exit(code)
}

// externalDSN builds a DSN from the TEST_DB_* variables
func externalDSN() (string, bool) {
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		return "", false
	}

	env := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}

	fmt.Printf("Using external database: %s\n", host)
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host,
		env("TEST_DB_PORT", "5432"),
		env("TEST_DB_USER", "postgres"),
		env("TEST_DB_PASSWORD", "postgres"),
		env("TEST_DB_NAME", "album_ledger_test"),
	), true
}

func startPostgres(ctx context.Context) (string, error) {
	var err error
	pgContainer, err = postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("album_ledger_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return "", err
	}

	fmt.Printf("Started PostgreSQL container\n")
	return pgContainer.ConnectionString(ctx, "sslmode=disable")
}

func terminatePostgres(ctx context.Context) {
	if pgContainer == nil {
		return
	}
	if err := pgContainer.Terminate(ctx); err != nil {
		fmt.Printf("Failed to terminate PostgreSQL container: %v\n", err)
	}
}

func exitWithError(ctx context.Context, msg string, err error) {
	fmt.Printf("%s: %v\n", msg, err)
	terminatePostgres(ctx)
	os.Exit(1)
}

// loadSchema executes db/init_pg_db.sql
func loadSchema(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	schemaSQL, err := os.ReadFile(filepath.Join("..", "..", "db", "init_pg_db.sql")) //nolint:gosec,G304
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	if _, err := sqlDB.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// beginTestTx opens a transaction that is rolled back when the test ends
func beginTestTx(t *testing.T) *gorm.DB {
	if testDB == nil {
		t.Fatal("Test database not initialized")
	}

	tx := testDB.Begin()
	require.NoError(t, tx.Error)
	t.Cleanup(func() {
		tx.Rollback()
	})
	return tx
}

func initPGTestDB(t *testing.T) Store {
	return NewPGStore(beginTestTx(t))
}

// cleanupPGTestDB is a no-op, the rollback restores the database
func cleanupPGTestDB(t *testing.T) {}

func TestPostgreSQLStore(t *testing.T) {
	RunStoreTests(t, initPGTestDB, cleanupPGTestDB)
}

func TestPostgreSQLCursorStore(t *testing.T) {
	testCursorStore(t, NewCursorStore(beginTestTx(t)))
}

// TestPostgreSQLStore_TransactionsQueueOnLedgerState commits through the shared
// pool, so two transactions run on separate connections
func TestPostgreSQLStore_TransactionsQueueOnLedgerState(t *testing.T) {
	if testDB == nil {
		t.Fatal("Test database not initialized")
	}
	ctx := context.Background()
	st := NewPGStore(testDB)
	t.Cleanup(func() {
		require.NoError(t, testDB.Exec("DELETE FROM ledger_state").Error)
	})
	require.NoError(t, st.Transaction(ctx, func(tx Tx) error {
		return tx.SaveLedgerState(ctx, domain.NewLedgerState(10, 90))
	}))

	locked := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := st.Transaction(ctx, func(tx Tx) error {
			state, err := tx.GetLedgerState(ctx)
			if err != nil {
				return err
			}
			close(locked)
			<-release
			state.LastEventSeq = 1
			return tx.SaveLedgerState(ctx, state)
		})
		assert.NoError(t, err)
	}()
	<-locked

	// plain reads are not blocked by the lock
	state, err := st.GetLedgerState(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), state.LastEventSeq)

	seen := make(chan uint64, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := st.Transaction(ctx, func(tx Tx) error {
			state, err := tx.GetLedgerState(ctx)
			if err != nil {
				return err
			}
			seen <- state.LastEventSeq
			return nil
		})
		assert.NoError(t, err)
	}()

	select {
	case <-seen:
		t.Fatal("second transaction read the ledger state while it was locked")
	case <-time.After(300 * time.Millisecond):
	}

	close(release)
	select {
	case seq := <-seen:
		assert.Equal(t, uint64(1), seq, "second transaction must see the committed counters")
	case <-time.After(10 * time.Second):
		t.Fatal("second transaction never acquired the ledger state")
	}
	wg.Wait()
}
