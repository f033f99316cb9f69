package bundb

import (
	"context"
	"fmt"

	competitionmigrations "github.com/Black-And-White-Club/competition-engine/app/modules/competition/infrastructure/repositories/migrations"
	statsmigrations "github.com/Black-And-White-Club/competition-engine/app/modules/stats/infrastructure/repositories/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// ModuleMigrator is the migrator of one module. Every module keeps its own
// bookkeeping tables so groups roll back per module.
type ModuleMigrator struct {
	Module   string
	Migrator *migrate.Migrator
}

// Migrators returns the module migrators in dependency order: stats tables
// reference competitions.
func Migrators(db *bun.DB) []ModuleMigrator {
	return []ModuleMigrator{
		{
			Module: "competition",
			Migrator: migrate.NewMigrator(db, competitionmigrations.Migrations,
				migrate.WithTableName("bun_migrations_competition"),
				migrate.WithLocksTableName("bun_migration_locks_competition"),
			),
		},
		{
			Module: "stats",
			Migrator: migrate.NewMigrator(db, statsmigrations.Migrations,
				migrate.WithTableName("bun_migrations_stats"),
				migrate.WithLocksTableName("bun_migration_locks_stats"),
			),
		},
	}
}

// MigrateAll initializes and applies every module migration in order.
func MigrateAll(ctx context.Context, db *bun.DB) error {
	for _, m := range Migrators(db) {
		if err := m.Migrator.Init(ctx); err != nil {
			return fmt.Errorf("failed to init %s migrations: %w", m.Module, err)
		}
		if _, err := m.Migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", m.Module, err)
		}
	}
	return nil
}

// MigrateRiver applies the river queue schema.
func MigrateRiver(ctx context.Context, dsn string) (int, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return 0, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create river migrator: %w", err)
	}
	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{})
	if err != nil {
		return 0, fmt.Errorf("failed to migrate river schema: %w", err)
	}
	return len(res.Versions), nil
}
