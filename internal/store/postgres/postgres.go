package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goto/pulse/config"
)

//go:embed migrations
var migrationFS embed.FS

// Migrate brings the database schema up to date.
func Migrate(dsn string) error {
	sourceDriver, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("error initializing migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, dsn)
	if err != nil {
		return fmt.Errorf("error initializing migration: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error executing migration: %w", err)
	}
	return nil
}

// Open creates a connection pool for the configured database.
func Open(conf config.DBConfig) (*pgxpool.Pool, error) {
	pgxConf, err := pgxpool.ParseConfig(conf.DSN)
	if err != nil {
		return nil, fmt.Errorf("error parsing database dsn: %w", err)
	}
	pgxConf.MinConns = int32(conf.MinOpenConnection)
	pgxConf.MaxConns = int32(conf.MaxOpenConnection)

	pool, err := pgxpool.NewWithConfig(context.Background(), pgxConf)
	if err != nil {
		return nil, fmt.Errorf("error creating connection pool: %w", err)
	}
	return pool, nil
}
