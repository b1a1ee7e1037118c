package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/mysql/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Migrate applies the embedded migrations for driver to db and returns the
// resulting schema version.
func Migrate(db *sql.DB, driver string) (uint, error) {
	var (
		target migratedb.Driver
		err    error
	)
	switch driver {
	case "sqlite":
		target, err = sqlite.WithInstance(db, &sqlite.Config{})
	case "mysql", "":
		driver = "mysql"
		target, err = mysql.WithInstance(db, &mysql.Config{})
	default:
		return 0, fmt.Errorf("unsupported driver %q", driver)
	}
	if err != nil {
		return 0, fmt.Errorf("migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return 0, fmt.Errorf("migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, driver, target)
	if err != nil {
		return 0, fmt.Errorf("init migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}
	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, err
	}
	return version, nil
}
