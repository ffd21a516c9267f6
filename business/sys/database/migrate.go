package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
)

//go:embed migrations
var migrationsFS embed.FS

// Schema identifies one set of migrations and the table that records which
// of them have been applied. Each store keeps its own history so both sets
// can live in the same file.
type Schema struct {
	Dir   string
	Table string
}

// Set of schemas maintained by this package.
var (
	ProfilesSchema = Schema{Dir: "migrations/profiles", Table: "schema_migrations_profiles"}
	BlocksSchema   = Schema{Dir: "migrations/blocks", Table: "schema_migrations_blocks"}
)

// Migrate attempts to bring the schema for db up to date with the migrations
// defined in this package. It is safe to call on every start.
func Migrate(db *sqlx.DB, schema Schema) error {
	src, err := iofs.New(migrationsFS, schema.Dir)
	if err != nil {
		return fmt.Errorf("creating migration source: %w", err)
	}
	defer src.Close()

	driver, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{
		MigrationsTable: schema.Table,
	})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}

	// The migrate instance is not closed since that closes the database
	// connection owned by the caller.
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("creating migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

// Version returns the current migration version for the schema.
func Version(db *sqlx.DB, schema Schema) (uint, bool, error) {
	src, err := iofs.New(migrationsFS, schema.Dir)
	if err != nil {
		return 0, false, fmt.Errorf("creating migration source: %w", err)
	}
	defer src.Close()

	driver, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{
		MigrationsTable: schema.Table,
	})
	if err != nil {
		return 0, false, fmt.Errorf("creating migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return 0, false, fmt.Errorf("creating migration instance: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, err
	}

	return version, dirty, nil
}
