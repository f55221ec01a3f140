package database

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"userdir/pkg/config"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

type DB struct {
	*sql.DB
	QueryBuilder squirrel.StatementBuilderType
	Driver       string
}

type driverInfo struct {
	sqlDriver string
	system    string
}

var drivers = map[string]driverInfo{
	DriverSQLite:   {sqlDriver: "sqlite3", system: "sqlite"},
	DriverPostgres: {sqlDriver: "pgx", system: "postgresql"},
	DriverMySQL:    {sqlDriver: "mysql", system: "mysql"},
}

// Open connects to the configured store with otelsql instrumentation and,
// when enabled, applies the embedded migrations.
func Open(cfg config.DatabaseConfig) (*DB, error) {
	info, ok := drivers[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	if cfg.AutoMigrate && cfg.Driver != DriverSQLite {
		if err := migrateWithDedicatedConn(cfg, info); err != nil {
			return nil, err
		}
	}

	sqlDB, err := otelsql.Open(info.sqlDriver, cfg.DSN,
		otelsql.WithDBSystem(info.system),
		otelsql.WithDBName(cfg.Name),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.Driver, err)
	}

	if cfg.LogQueries && !IsMemoryDSN(cfg.DSN) {
		sqlDB = withQueryLogging(sqlDB, cfg.DSN, os.Stdout)
	}

	configurePool(sqlDB, cfg)

	db := New(sqlDB, cfg.Driver)

	if cfg.AutoMigrate && cfg.Driver == DriverSQLite {
		if err := RunMigrations(sqlDB, cfg.Driver); err != nil {
			sqlDB.Close()
			return nil, err
		}
	}

	return db, nil
}

// withQueryLogging reopens the instrumented driver behind sqldb-logger and
// closes the pool it replaces.
func withQueryLogging(sqlDB *sql.DB, dsn string, out io.Writer) *sql.DB {
	logger := zerolog.New(out).With().Timestamp().Logger()
	logged := sqldblogger.OpenDriver(dsn, sqlDB.Driver(), zerologadapter.New(logger))

	sqlDB.Close()

	return logged
}

// New wraps an already opened pool. Tests use it with sqlmock.
func New(sqlDB *sql.DB, driver string) *DB {
	var placeholder squirrel.PlaceholderFormat = squirrel.Question
	if driver == DriverPostgres {
		placeholder = squirrel.Dollar
	}

	return &DB{
		DB:           sqlDB,
		QueryBuilder: squirrel.StatementBuilder.PlaceholderFormat(placeholder),
		Driver:       driver,
	}
}

// IsMemoryDSN reports whether dsn names a private in-memory SQLite database,
// which only lives as long as its single connection.
func IsMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

func configurePool(sqlDB *sql.DB, cfg config.DatabaseConfig) {
	if IsMemoryDSN(cfg.DSN) {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		return
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
}

func migrateWithDedicatedConn(cfg config.DatabaseConfig, info driverInfo) error {
	migrationDB, err := sql.Open(info.sqlDriver, cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer migrationDB.Close()

	return RunMigrations(migrationDB, cfg.Driver)
}
