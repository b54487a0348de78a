//go:build integration

package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/monocle-dev/projectboard/internal/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

const postgresImage = "postgres:16-alpine"

var (
	sharedPostgresURL  string
	sharedPostgresOnce sync.Once
	sharedPostgresErr  error
)

// NewPostgresDB returns a migrated postgres database running in a shared
// container. Tables are truncated so each test starts empty.
func NewPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedPostgresOnce.Do(func() {
		sharedPostgresURL, sharedPostgresErr = startPostgres()
	})
	if sharedPostgresErr != nil {
		t.Fatalf("Failed to setup postgres container: %v", sharedPostgresErr)
	}

	gdb := NewDB(t, config.DatabaseConfig{
		Driver:          config.DriverPostgres,
		URL:             sharedPostgresURL,
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	})

	if err := gdb.Exec("TRUNCATE actions, projects RESTART IDENTITY CASCADE").Error; err != nil {
		t.Fatalf("Failed to reset tables: %v", err)
	}

	return gdb
}

func startPostgres() (string, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "projectboard_test",
			"POSTGRES_USER":     "projectboard",
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
		return "", fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("failed to get container port: %w", err)
	}

	return fmt.Sprintf("postgres://projectboard:test_password@%s:%s/projectboard_test?sslmode=disable",
		host, port.Port()), nil
}
