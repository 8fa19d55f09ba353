package database

import (
	"context"
	"embed"
	"fmt"
	"path"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var migrationFiles embed.FS

var gooseSetup sync.Once

func setupGoose() {
	gooseSetup.Do(func() {
		goose.SetBaseFS(migrationFiles)
		goose.SetLogger(goose.NopLogger())
		// only unknown dialect names fail
		_ = goose.SetDialect("postgres")
	})
}

// Migrate applies pending embedded migrations and returns the file names it ran.
func Migrate(ctx context.Context, db *sqlx.DB) ([]string, error) {
	setupGoose()

	before, err := goose.GetDBVersionContext(ctx, db.DB)
	if err != nil {
		return nil, fmt.Errorf("read schema version: %w", err)
	}
	if err := goose.UpContext(ctx, db.DB, migrationsDir); err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	after, err := goose.GetDBVersionContext(ctx, db.DB)
	if err != nil {
		return nil, fmt.Errorf("read schema version: %w", err)
	}
	return migrationsBetween(before, after)
}

func migrationsBetween(from, to int64) ([]string, error) {
	setupGoose()
	if to <= from {
		return nil, nil
	}
	migrations, err := goose.CollectMigrations(migrationsDir, from, to)
	if err != nil {
		return nil, fmt.Errorf("collect migrations: %w", err)
	}
	names := make([]string, 0, len(migrations))
	for _, m := range migrations {
		names = append(names, path.Base(m.Source))
	}
	return names, nil
}
