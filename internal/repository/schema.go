package repository

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
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
)

//go:embed migrations
var migrationsFS embed.FS

// Driver names a supported store.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

func (d Driver) IsValid() bool {
	return d == DriverPostgres || d == DriverSQLite
}

// ApplySchema creates the words table if it is missing. It opens a dedicated
// connection for the duration of the call, so an in-memory SQLite DSN is not
// supported.
func ApplySchema(driver Driver, dsn string) error {
	var (
		db       *sql.DB
		dbDriver database.Driver
		err      error
	)

	switch driver {
	case DriverSQLite:
		if db, err = sql.Open("sqlite3", dsn); err != nil {
			return fmt.Errorf("schema: open sqlite: %w", err)
		}
		dbDriver, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	case DriverPostgres:
		if db, err = sql.Open("pgx", dsn); err != nil {
			return fmt.Errorf("schema: open postgres: %w", err)
		}
		dbDriver, err = migratepgx.WithInstance(db, &migratepgx.Config{})
	default:
		return fmt.Errorf("schema: unsupported driver %q", driver)
	}
	if err != nil {
		db.Close()
		return fmt.Errorf("schema: %s driver: %w", driver, err)
	}

	src, err := iofs.New(migrationsFS, "migrations/"+string(driver))
	if err != nil {
		dbDriver.Close()
		return fmt.Errorf("schema: load migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, string(driver), dbDriver)
	if err != nil {
		dbDriver.Close()
		return fmt.Errorf("schema: init: %w", err)
	}
	// Closes the source, the migrate driver and db.
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("schema: apply: %w", err)
	}
	return nil
}
