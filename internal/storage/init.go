package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"

	"showcase_ingest/internal/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationPath = "migrations"

func runMigrations(db *sql.DB, dialect string) error {
	const op = "storage.migrations"

	goose.SetBaseFS(migrations)
	goose.SetLogger(logger.Log)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err := goose.Up(db, migrationPath)
	if err != nil {
		if errors.Is(err, goose.ErrNoNextVersion) {
			logger.Log.Debug("no migrations to apply")
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	logger.Log.Debug("database migrations applied")
	return nil
}
