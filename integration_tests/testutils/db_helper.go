package testutils

import (
	"context"
	"fmt"
	"log"

	"github.com/Black-And-White-Club/competition-engine/db/bundb"
	"github.com/uptrace/bun"
)

func runMigrations(ctx context.Context, db *bun.DB, dsn string) error {
	if err := bundb.MigrateAll(ctx, db); err != nil {
		return err
	}

	n, err := bundb.MigrateRiver(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}

	log.Printf("All migrations completed successfully (%d river versions)", n)
	return nil
}
