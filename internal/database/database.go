package database

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/segyhp/loan-engine/internal/config"
)

// Connect opens the postgres pool and applies the configured limits
func Connect(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

// Migrate applies every pending migration found at cfg.MigrationsPath.
// Running it against an up-to-date schema is a no-op.
func Migrate(cfg config.DatabaseConfig) error {
	if cfg.MigrationsPath == "" {
		return errors.New("migrations path cannot be empty")
	}
	if cfg.URL == "" {
		return errors.New("database URL cannot be empty")
	}

	m, err := migrate.New(cfg.MigrationsPath, cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return applyMigrations(m)
}

// migrator is the part of *migrate.Migrate that applyMigrations drives
type migrator interface {
	Up() error
	Close() (sourceErr, dbErr error)
}

// applyMigrations runs m up and always releases its source and database handles
func applyMigrations(m migrator) (err error) {
	defer func() {
		sourceErr, dbErr := m.Close()
		if err != nil {
			return
		}
		if sourceErr != nil {
			err = fmt.Errorf("migration source error: %w", sourceErr)
			return
		}
		if dbErr != nil {
			err = fmt.Errorf("migration database error: %w", dbErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
