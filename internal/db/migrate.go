package db

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations applies any pending migrations from internal/db/migrations.
func RunMigrations(dsn string) error {
	migrationsPath, err := filepath.Abs("./internal/db/migrations")
	if err != nil {
		return err
	}

	m, err := migrate.New(
		"file://"+migrationsPath,
		"mysql://"+dsn,
	)
	if err != nil {
		return fmt.Errorf("initializing migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}

	return nil
}
