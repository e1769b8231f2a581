package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate runs all pending migrations against the pool's database. schema,
// when set, is created if missing and holds the migration bookkeeping.
func Migrate(ctx context.Context, pool *pgxpool.Pool, schema string) error {
	if schema != "" {
		if _, err := pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{schema}.Sanitize()); err != nil {
			return fmt.Errorf("failed to create schema %s: %w", schema, err)
		}
	}

	m, closeFn, err := newMigrate(pool, schema)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// MigrationVersion reports the applied schema version. version is 0 when no
// migration has run yet.
func MigrationVersion(pool *pgxpool.Pool, schema string) (version uint, dirty bool, err error) {
	m, closeFn, err := newMigrate(pool, schema)
	if err != nil {
		return 0, false, err
	}
	defer closeFn()

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get database version: %w", err)
	}
	return version, dirty, nil
}

func newMigrate(pool *pgxpool.Pool, schema string) (*migrate.Migrate, func(), error) {
	sourceDriver, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	// Closing this *sql.DB leaves the pool open.
	db := stdlib.OpenDBFromPool(pool)
	dbDriver, err := migratepgx.WithInstance(db, &migratepgx.Config{SchemaName: schema})
	if err != nil {
		sourceDriver.Close()
		db.Close()
		return nil, nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "pgx5", dbDriver)
	if err != nil {
		sourceDriver.Close()
		dbDriver.Close()
		return nil, nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	closeFn := func() {
		m.Close()
	}
	return m, closeFn, nil
}
