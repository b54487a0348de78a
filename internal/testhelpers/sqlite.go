package testhelpers

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/monocle-dev/projectboard/db"
	"github.com/monocle-dev/projectboard/internal/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SQLiteConfig returns a database config pointing at a fresh sqlite file
// inside the test's temp dir.
func SQLiteConfig(t *testing.T) config.DatabaseConfig {
	t.Helper()

	return config.DatabaseConfig{
		Driver:          config.DriverSQLite,
		URL:             filepath.Join(t.TempDir(), "projectboard.db3"),
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}
}

// NewSQLiteDB returns a migrated sqlite database private to the test.
// The connection is closed when the test finishes.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	return NewDB(t, SQLiteConfig(t))
}

// NewDB migrates and connects to the database described by cfg.
func NewDB(t *testing.T, cfg config.DatabaseConfig) *gorm.DB {
	t.Helper()

	if err := db.RunMigrations(cfg, zap.NewNop()); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	gdb, err := db.Connect(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(gdb); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})

	return gdb
}
