// Package storagetest starts a disposable PostgreSQL for integration tests.
package storagetest

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/abduss/docshelf/internal/config"
	"github.com/abduss/docshelf/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// NewPostgres runs a migrated PostgreSQL container and returns a pool on it.
// The test is skipped unless TEST_INTEGRATION is set.
func NewPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("skipping integration test: TEST_INTEGRATION is not set")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("docshelf_test"),
		postgres.WithUsername("docshelf"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}
	portNum, err := strconv.Atoi(port.Port())
	if err != nil {
		t.Fatalf("parse container port: %v", err)
	}

	cfg := config.PostgresConfig{
		Host:     host,
		Port:     portNum,
		User:     "docshelf",
		Password: "test-password",
		Database: "docshelf_test",
		SSLMode:  "disable",
		MaxConns: 4,
	}

	log := zap.NewNop()
	if err := storage.Migrate(cfg.MigrateURL(), log); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := storage.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}
