package statsdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	statsdomain "github.com/Black-And-White-Club/competition-engine/app/modules/stats/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new stats repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) LockCompetition(ctx context.Context, db bun.IDB, competitionID uuid.UUID) error {
	db = r.resolveDB(db)
	_, err := db.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", "competition:"+competitionID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("stats.LockCompetition: %w", err)
	}
	return nil
}

func (r *Impl) isEnrolled(ctx context.Context, db bun.IDB, competitionID, teamID uuid.UUID) (bool, error) {
	return db.NewSelect().
		Table("competition_teams").
		Where("competition_id = ?", competitionID).
		Where("team_id = ?", teamID).
		Exists(ctx)
}

func (r *Impl) FindTeamStats(ctx context.Context, db bun.IDB, competitionID, teamID uuid.UUID) (statsdomain.TeamStats, error) {
	db = r.resolveDB(db)
	row := new(TeamStats)
	err := db.NewSelect().
		Model(row).
		Where("competition_id = ?", competitionID).
		Where("team_id = ?", teamID).
		Scan(ctx)
	if err == nil {
		return row.ToDomain(), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return statsdomain.TeamStats{}, fmt.Errorf("failed to find team stats: %w", err)
	}

	enrolled, err := r.isEnrolled(ctx, db, competitionID, teamID)
	if err != nil {
		return statsdomain.TeamStats{}, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !enrolled {
		return statsdomain.TeamStats{}, ErrNotFound
	}
	return statsdomain.NewTeamStats(competitionID, teamID), nil
}

func (r *Impl) FindOrCreatePlayerStats(ctx context.Context, db bun.IDB, competitionID, teamID uuid.UUID, player statsdomain.PlayerRef) (statsdomain.PlayerStats, error) {
	db = r.resolveDB(db)
	exists, err := r.CompetitionExists(ctx, db, competitionID)
	if err != nil {
		return statsdomain.PlayerStats{}, err
	}
	if !exists {
		return statsdomain.PlayerStats{}, ErrNotFound
	}

	row := new(PlayerStats)
	err = db.NewSelect().
		Model(row).
		Where("competition_id = ?", competitionID).
		Where("team_id = ?", teamID).
		Where("player_id = ?", player.ID).
		Scan(ctx)
	if err == nil {
		return row.ToDomain(), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return statsdomain.PlayerStats{}, fmt.Errorf("failed to find player stats: %w", err)
	}

	created := statsdomain.NewPlayerStats(competitionID, teamID, player)
	if _, err := db.NewInsert().
		Model(NewPlayerStatsRow(created, time.Now().UTC())).
		On("CONFLICT (competition_id, team_id, player_id) DO NOTHING").
		Exec(ctx); err != nil {
		return statsdomain.PlayerStats{}, fmt.Errorf("failed to create player stats: %w", err)
	}
	return created, nil
}

func (r *Impl) SaveTeamStats(ctx context.Context, db bun.IDB, home, away statsdomain.TeamStats) error {
	db = r.resolveDB(db)
	now := time.Now().UTC()
	rows := []*TeamStats{NewTeamStatsRow(home, now), NewTeamStatsRow(away, now)}
	_, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (competition_id, team_id) DO UPDATE").
		Set("matches_played = EXCLUDED.matches_played").
		Set("wins = EXCLUDED.wins").
		Set("draws = EXCLUDED.draws").
		Set("losses = EXCLUDED.losses").
		Set("goals_scored = EXCLUDED.goals_scored").
		Set("goals_conceded = EXCLUDED.goals_conceded").
		Set("points = EXCLUDED.points").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save team stats: %w", err)
	}
	return nil
}

func (r *Impl) SavePlayerStats(ctx context.Context, db bun.IDB, stats statsdomain.PlayerStats) error {
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(NewPlayerStatsRow(stats, time.Now().UTC())).
		On("CONFLICT (competition_id, team_id, player_id) DO UPDATE").
		Set("player_name = CASE WHEN EXCLUDED.player_name = '' THEN ps.player_name ELSE EXCLUDED.player_name END").
		Set("goals = EXCLUDED.goals").
		Set("assists = EXCLUDED.assists").
		Set("yellow_cards = EXCLUDED.yellow_cards").
		Set("red_cards = EXCLUDED.red_cards").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save player stats: %w", err)
	}
	return nil
}

func (r *Impl) IsEventApplied(ctx context.Context, db bun.IDB, eventID string) (bool, error) {
	db = r.resolveDB(db)
	ok, err := db.NewSelect().
		Model((*AppliedEvent)(nil)).
		Where("event_id = ?", eventID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check applied event: %w", err)
	}
	return ok, nil
}

func (r *Impl) MarkEventApplied(ctx context.Context, db bun.IDB, eventID string, competitionID uuid.UUID, kind string) error {
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(&AppliedEvent{
			EventID:       eventID,
			CompetitionID: competitionID,
			Kind:          kind,
			AppliedAt:     time.Now().UTC(),
		}).
		On("CONFLICT (event_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark event applied: %w", err)
	}
	return nil
}

func (r *Impl) CompetitionExists(ctx context.Context, db bun.IDB, competitionID uuid.UUID) (bool, error) {
	db = r.resolveDB(db)
	ok, err := db.NewSelect().
		Table("competitions").
		Where("id = ?", competitionID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check competition: %w", err)
	}
	return ok, nil
}

func (r *Impl) ListTeamStats(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]statsdomain.TeamStats, error) {
	db = r.resolveDB(db)

	var stored []TeamStats
	if err := db.NewSelect().
		Model(&stored).
		Where("competition_id = ?", competitionID).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list team stats: %w", err)
	}

	var enrolled []uuid.UUID
	if err := db.NewSelect().
		Table("competition_teams").
		Column("team_id").
		Where("competition_id = ?", competitionID).
		Order("enrolled_at ASC").
		Scan(ctx, &enrolled); err != nil {
		return nil, fmt.Errorf("failed to list enrolled teams: %w", err)
	}

	return mergeStandings(competitionID, enrolled, stored), nil
}

func (r *Impl) ListPlayerStats(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]statsdomain.PlayerStats, error) {
	db = r.resolveDB(db)
	var rows []PlayerStats
	if err := db.NewSelect().
		Model(&rows).
		Where("competition_id = ?", competitionID).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list player stats: %w", err)
	}
	out := make([]statsdomain.PlayerStats, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}
