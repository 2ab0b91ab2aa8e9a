package repository

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"entgo.io/ent/dialect"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrate applies every pending migration under dir/<dialect>.
func Migrate(db *DB, dir string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		drv  database.Driver
		name string
		err  error
	)
	switch db.Dialect() {
	case dialect.Postgres:
		name = "postgres"
		drv, err = pgxmigrate.WithInstance(db.sqlDB, &pgxmigrate.Config{})
	case dialect.SQLite:
		name = "sqlite"
		drv, err = sqlite.WithInstance(db.sqlDB, &sqlite.Config{})
	default:
		return fmt.Errorf("migrate: unsupported dialect %q", db.Dialect())
	}
	if err != nil {
		return fmt.Errorf("migrate driver: %w", err)
	}

	src := "file://" + filepath.ToSlash(filepath.Join(dir, name))
	m, err := migrate.NewWithDatabaseInstance(src, name, drv)
	if err != nil {
		return fmt.Errorf("migrate init: %w", err)
	}
	// m.Close would also close the shared *sql.DB.

	logger.Info("applying migrations", "source", src)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("migration failed", "error", err)
		return fmt.Errorf("migrate up: %w", err)
	}
	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return fmt.Errorf("migrate version: %w", verr)
	}
	logger.Info("migrations applied", "version", version, "dirty", dirty)
	return nil
}
