package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"userdir/internal/adapter/database/migrations"
)

// RunMigrations applies the embedded schema to db. For sqlite3 the migrate
// instance is left open since closing it closes db as well.
func RunMigrations(db *sql.DB, driver string) error {
	instance, err := migrationDriver(db, driver)
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driver, instance)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if driver != DriverSQLite {
		defer m.Close()
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func migrationDriver(db *sql.DB, driver string) (migratedb.Driver, error) {
	switch driver {
	case DriverSQLite:
		return sqlite3.WithInstance(db, &sqlite3.Config{})
	case DriverPostgres:
		return postgres.WithInstance(db, &postgres.Config{})
	case DriverMySQL:
		return mysql.WithInstance(db, &mysql.Config{})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
