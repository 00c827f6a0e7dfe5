package repository

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Config struct {
	DSN             string
	MaxConns        int
	MaxConnLifetime time.Duration
}

// Open connects to the configured database. A postgres:// DSN goes through
// the pgx stdlib driver; anything else is treated as a SQLite file path.
func Open(cfg Config, logger *slog.Logger) (*sqlx.DB, error) {
	driver, dsn, err := resolveDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}
	logger.Info("connecting to database", "driver", driver)

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if driver == "sqlite" {
		// modernc sqlite is single-writer.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MaxConnLifetime > 0 {
		db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	}

	if err := runMigrations(db, driver); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("successfully connected to database")
	return db, nil
}

func resolveDSN(dsn string) (driver, resolved string, err error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "pgx", dsn, nil
	}
	abs, err := filepath.Abs(dsn)
	if err != nil {
		return "", "", fmt.Errorf("resolve database path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", "", fmt.Errorf("create database directory: %w", err)
	}
	return "sqlite", abs, nil
}

// runMigrations applies the embedded schema migrations.
func runMigrations(db *sqlx.DB, driver string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	var m *migrate.Migrate
	switch driver {
	case "pgx":
		d, err := migratepgx.WithInstance(db.DB, &migratepgx.Config{})
		if err != nil {
			return fmt.Errorf("migration driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", src, "pgx", d)
		if err != nil {
			return fmt.Errorf("migration instance: %w", err)
		}
	default:
		d, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
		if err != nil {
			return fmt.Errorf("migration driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", src, "sqlite", d)
		if err != nil {
			return fmt.Errorf("migration instance: %w", err)
		}
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Close closes the database connection gracefully.
func Close(db *sqlx.DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	logger.Info("closing database connection")
	if err := db.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
	}
}
