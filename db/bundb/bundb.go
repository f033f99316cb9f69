// Package bundb opens the postgres connection shared by every module.
package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	competitiondb "github.com/Black-And-White-Club/competition-engine/app/modules/competition/infrastructure/repositories"
	statsdb "github.com/Black-And-White-Club/competition-engine/app/modules/stats/infrastructure/repositories"
	"github.com/Black-And-White-Club/competition-engine/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// NewBunDB connects to cfg.DSN and registers the models of every module.
func NewBunDB(ctx context.Context, cfg config.PostgresConfig, logger *slog.Logger) (*bun.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	sqldb, err := pgConn(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.InfoContext(ctx, "Database connection established")
	return BunDB(sqldb), nil
}

// BunDB wraps an open connection, such as one from the pgx stdlib driver.
func BunDB(sqldb *sql.DB) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	registerModels(db)
	return db
}

func registerModels(db *bun.DB) {
	db.RegisterModel(
		(*competitiondb.Competition)(nil),
		(*competitiondb.CompetitionTeam)(nil),
		(*competitiondb.BracketSlot)(nil),
		(*competitiondb.LeagueRound)(nil),
		(*statsdb.TeamStats)(nil),
		(*statsdb.PlayerStats)(nil),
		(*statsdb.AppliedEvent)(nil),
	)
}

func pgConn(ctx context.Context, dsn string) (*sql.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	sqldb.SetMaxOpenConns(20)
	sqldb.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sqldb.PingContext(pingCtx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return sqldb, nil
}
