package config

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// RunMigrations applies every pending migration for the configured driver
func RunMigrations(db *sqlx.DB, cfg DatabaseConfig) error {
	src, err := iofs.New(migrationsFS, "migrations/"+cfg.Driver)
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	switch cfg.Driver {
	case DriverPostgres:
		// migrate opens and closes its own connection from the URL
		m, err := migrate.NewWithSourceInstance("iofs", src, cfg.GetMigrationURL())
		if err != nil {
			return fmt.Errorf("create migrate instance: %w", err)
		}
		defer m.Close()
		return up(m)

	case DriverSQLite:
		driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
		if err != nil {
			return fmt.Errorf("create sqlite driver: %w", err)
		}
		m, err := migrate.NewWithInstance("iofs", src, DriverSQLite, driver)
		if err != nil {
			return fmt.Errorf("create migrate instance: %w", err)
		}
		// Not closed: closing the driver closes db, and an in-memory schema would go with it.
		return up(m)

	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

func up(m *migrate.Migrate) error {
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
