package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	_ "github.com/mattn/go-sqlite3"    // registers the "sqlite3" database/sql driver
	"github.com/monocle-dev/projectboard/internal/config"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrator applies and rolls back the embedded schema migrations for one
// database. It owns its own connection, which Close releases.
type Migrator struct {
	m      *migrate.Migrate
	logger *zap.Logger
}

// NewMigrator prepares migrations for the configured driver.
func NewMigrator(cfg config.DatabaseConfig, logger *zap.Logger) (*Migrator, error) {
	source, err := iofs.New(migrationsFS, "migrations/"+cfg.Driver)
	if err != nil {
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}

	driver, err := migrationDriver(cfg)
	if err != nil {
		return nil, err
	}

	m, err := migrate.NewWithInstance("iofs", source, cfg.Driver, driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}

	return &Migrator{m: m, logger: logger}, nil
}

func migrationDriver(cfg config.DatabaseConfig) (database.Driver, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		dsn, err := SQLiteDSN(cfg.URL)
		if err != nil {
			return nil, err
		}
		sqlDB, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		driver, err := migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{})
		if err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to create migration driver: %w", err)
		}
		return driver, nil
	case config.DriverPostgres:
		sqlDB, err := sql.Open("pgx", cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres database: %w", err)
		}
		driver, err := migratepgx.WithInstance(sqlDB, &migratepgx.Config{})
		if err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to create migration driver: %w", err)
		}
		return driver, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Up applies all pending migrations. It is safe to call repeatedly.
func (m *Migrator) Up() error {
	err := m.m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("No migrations to apply (database up-to-date)")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, _, _ := m.m.Version()
	m.logger.Info("Applied migrations successfully", zap.Uint("version", version))
	return nil
}

// Down rolls back steps migrations, or every migration when steps <= 0.
func (m *Migrator) Down(steps int) error {
	var err error
	if steps <= 0 {
		err = m.m.Down()
	} else {
		err = m.m.Steps(-steps)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("No migrations to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}

	m.logger.Info("Rolled back migrations", zap.Int("steps", steps))
	return nil
}

// Version reports the current schema version. ok is false when no
// migration has been applied yet.
func (m *Migrator) Version() (version uint, dirty bool, ok bool, err error) {
	version, dirty, err = m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, dirty, true, nil
}

func (m *Migrator) Close() {
	srcErr, dbErr := m.m.Close()
	if srcErr != nil {
		m.logger.Warn("Failed to close migration source", zap.Error(srcErr))
	}
	if dbErr != nil {
		m.logger.Warn("Failed to close migration database", zap.Error(dbErr))
	}
}

// RunMigrations applies every pending migration and releases the migrator.
func RunMigrations(cfg config.DatabaseConfig, logger *zap.Logger) error {
	m, err := NewMigrator(cfg, logger)
	if err != nil {
		return err
	}
	defer m.Close()

	return m.Up()
}
