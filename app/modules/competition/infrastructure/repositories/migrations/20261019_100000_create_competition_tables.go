package competitionmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating competition tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS competitions (
					id UUID PRIMARY KEY,
					name VARCHAR(120) NOT NULL,
					phase_kind VARCHAR(16) NOT NULL CHECK (phase_kind IN ('LEAGUE', 'KNOCKOUT')),
					max_rounds INTEGER CHECK (max_rounds IS NULL OR max_rounds >= 1),
					start_stage VARCHAR(32),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`); err != nil {
				return fmt.Errorf("failed to create competitions table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS competition_teams (
					competition_id UUID NOT NULL REFERENCES competitions(id) ON DELETE CASCADE,
					team_id UUID NOT NULL,
					enrolled_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (competition_id, team_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create competition_teams table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS bracket_slots (
					competition_id UUID NOT NULL REFERENCES competitions(id) ON DELETE CASCADE,
					stage_order SMALLINT NOT NULL,
					position SMALLINT NOT NULL,
					stage VARCHAR(32) NOT NULL,
					kind VARCHAR(8) NOT NULL CHECK (kind IN ('EMPTY', 'BYE', 'TAKEN')),
					team_id UUID,
					first_leg UUID,
					second_leg UUID,
					PRIMARY KEY (competition_id, stage_order, position)
				);
			`); err != nil {
				return fmt.Errorf("failed to create bracket_slots table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS league_rounds (
					competition_id UUID NOT NULL REFERENCES competitions(id) ON DELETE CASCADE,
					round_number INTEGER NOT NULL CHECK (round_number >= 1),
					match_ids UUID[] NOT NULL,
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (competition_id, round_number),
					CHECK (cardinality(match_ids) BETWEEN 1 AND 18)
				);
			`); err != nil {
				return fmt.Errorf("failed to create league_rounds table: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping competition tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				DROP TABLE IF EXISTS league_rounds;
				DROP TABLE IF EXISTS bracket_slots;
				DROP TABLE IF EXISTS competition_teams;
				DROP TABLE IF EXISTS competitions;
			`); err != nil {
				return fmt.Errorf("failed to drop competition tables: %w", err)
			}
			return nil
		})
	})
}
