package db

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/monocle-dev/projectboard/internal/config"
	"github.com/monocle-dev/projectboard/internal/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// sqliteDefaults are applied to every sqlite DSN unless the caller set them.
// Foreign keys are off by default in sqlite, and the action cascade relies on them.
var sqliteDefaults = map[string]string{
	"_foreign_keys": "on",
	"_busy_timeout": "5000",
	"_txlock":       "immediate",
}

// Connect opens the configured database and applies pool settings.
func Connect(cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(logging.StdLogger(logger, zapcore.WarnLevel), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to database", zap.String("driver", cfg.Driver))
	return db, nil
}

// Close releases the connection pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database: %w", err)
	}
	return sqlDB.Close()
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		dsn, err := SQLiteDSN(cfg.URL)
		if err != nil {
			return nil, err
		}
		return sqlite.Open(dsn), nil
	case config.DriverPostgres:
		return postgres.Open(cfg.URL), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// SQLiteDSN normalizes a sqlite file path or DSN: the parent directory is
// created and the connection defaults are added to the query string.
func SQLiteDSN(raw string) (string, error) {
	base, rawQuery, _ := strings.Cut(raw, "?")

	path := strings.TrimPrefix(base, "file:")
	if path != "" && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", fmt.Errorf("invalid sqlite DSN %q: %w", raw, err)
	}

	for key, value := range sqliteDefaults {
		if query.Has(key) {
			continue
		}
		if key == "_foreign_keys" && query.Has("_fk") {
			continue
		}
		query.Set(key, value)
	}

	return base + "?" + query.Encode(), nil
}
