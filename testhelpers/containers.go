// Package testhelpers starts the PostgreSQL container shared by the
// integration tests.
package testhelpers

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"testing"
	"time"

	"manytomany/config"
	"manytomany/database"
	"manytomany/migrations"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const postgresImage = "postgres:16-alpine"

// TestDB holds the shared container and a migrated connection to it.
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	Config    config.DatabaseConfig
}

var (
	sharedTestDB     *TestDB
	sharedTestDBOnce sync.Once
	sharedTestDBErr  error
)

// GetTestDB returns a shared PostgreSQL container for integration tests.
// The container is created once per test binary and has all migrations
// applied.
func GetTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedTestDBOnce.Do(func() {
		sharedTestDB, sharedTestDBErr = setupTestDB()
	})

	if sharedTestDBErr != nil {
		t.Fatalf("Failed to setup test database: %v", sharedTestDBErr)
	}

	return sharedTestDB
}

// ResetTables empties both entity tables and, through the cascade, the
// join table. Ids restart at 1.
func ResetTables(t *testing.T, db *gorm.DB) {
	t.Helper()

	if err := db.Exec("TRUNCATE students, projects RESTART IDENTITY CASCADE").Error; err != nil {
		t.Fatalf("Failed to reset tables: %v", err)
	}
}

// MigrationsDir is the absolute path of the migrations package directory.
func MigrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "migrations")
}

func setupTestDB() (*TestDB, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "manytomany_test",
			"POSTGRES_USER":     "manytomany",
			"POSTGRES_PASSWORD": "test_password",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}
	portNum, err := strconv.Atoi(port.Port())
	if err != nil {
		return nil, fmt.Errorf("invalid mapped port %q: %w", port.Port(), err)
	}

	cfg := config.DatabaseConfig{
		Host:         host,
		Port:         portNum,
		Name:         "manytomany_test",
		User:         "manytomany",
		Password:     "test_password",
		SSLMode:      "disable",
		TimeZone:     "UTC",
		MaxOpenConns: 10,
		MaxIdleConns: 2,
		ConnMaxIdle:  time.Minute,
		ConnMaxLife:  5 * time.Minute,
		PingTimeout:  5 * time.Second,
	}

	logger := zap.NewNop()

	db, err := database.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := migrations.Run(ctx, db, MigrationsDir(), "up", logger); err != nil {
		return nil, err
	}

	return &TestDB{
		Container: container,
		DB:        db,
		Config:    cfg,
	}, nil
}
