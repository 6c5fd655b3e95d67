package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// SchemaVersion is the kv schema this build reads and writes.
const SchemaVersion uint = 1

//go:embed migrations/*.sql
var kvMigrations embed.FS

// ErrSchemaDirty means an earlier migration stopped halfway and the kv table
// needs manual repair.
var ErrSchemaDirty = errors.New("kv schema is dirty")

// migrateKV applies the pending kv migrations to the database at dbPath and
// returns the schema version it ends at. The migrator owns its connection:
// closing it closes the database handle it was given.
func migrateKV(dbPath string) (uint, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("open %s for migration: %w", dbPath, err)
	}
	defer conn.Close()

	src, err := iofs.New(kvMigrations, "migrations")
	if err != nil {
		return 0, fmt.Errorf("load kv migrations: %w", err)
	}
	dst, err := sqlite.WithInstance(conn, &sqlite.Config{})
	if err != nil {
		return 0, fmt.Errorf("kv migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", dst)
	if err != nil {
		return 0, fmt.Errorf("kv migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrate kv schema: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read kv schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("%w at version %d", ErrSchemaDirty, version)
	}
	if version != SchemaVersion {
		return version, fmt.Errorf("kv schema at version %d, this build needs %d", version, SchemaVersion)
	}
	return version, nil
}
