package statsmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating stats tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS team_stats (
					competition_id UUID NOT NULL REFERENCES competitions(id) ON DELETE CASCADE,
					team_id UUID NOT NULL,
					matches_played INTEGER NOT NULL DEFAULT 0 CHECK (matches_played >= 0),
					wins INTEGER NOT NULL DEFAULT 0 CHECK (wins >= 0),
					draws INTEGER NOT NULL DEFAULT 0 CHECK (draws >= 0),
					losses INTEGER NOT NULL DEFAULT 0 CHECK (losses >= 0),
					goals_scored INTEGER NOT NULL DEFAULT 0 CHECK (goals_scored >= 0),
					goals_conceded INTEGER NOT NULL DEFAULT 0 CHECK (goals_conceded >= 0),
					points INTEGER NOT NULL DEFAULT 0 CHECK (points >= 0),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (competition_id, team_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create team_stats table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS player_stats (
					competition_id UUID NOT NULL REFERENCES competitions(id) ON DELETE CASCADE,
					team_id UUID NOT NULL,
					player_id UUID NOT NULL,
					player_name VARCHAR(120) NOT NULL DEFAULT '',
					goals INTEGER NOT NULL DEFAULT 0 CHECK (goals >= 0),
					assists INTEGER NOT NULL DEFAULT 0 CHECK (assists >= 0),
					yellow_cards INTEGER NOT NULL DEFAULT 0 CHECK (yellow_cards >= 0),
					red_cards INTEGER NOT NULL DEFAULT 0 CHECK (red_cards >= 0),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (competition_id, team_id, player_id)
				);
				CREATE INDEX IF NOT EXISTS idx_player_stats_scorers
					ON player_stats (competition_id, goals DESC, assists DESC);
			`); err != nil {
				return fmt.Errorf("failed to create player_stats table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS stats_applied_events (
					event_id VARCHAR(128) PRIMARY KEY,
					competition_id UUID NOT NULL,
					kind VARCHAR(16) NOT NULL,
					applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_stats_applied_events_competition
					ON stats_applied_events (competition_id, applied_at);
			`); err != nil {
				return fmt.Errorf("failed to create stats_applied_events table: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping stats tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				DROP TABLE IF EXISTS stats_applied_events;
				DROP TABLE IF EXISTS player_stats;
				DROP TABLE IF EXISTS team_stats;
			`); err != nil {
				return fmt.Errorf("failed to drop stats tables: %w", err)
			}
			return nil
		})
	})
}
