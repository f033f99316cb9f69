package competitiondb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	competitiondomain "github.com/Black-And-White-Club/competition-engine/app/modules/competition/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new competition repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) CreateCompetition(ctx context.Context, db bun.IDB, c *Competition) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(c).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create competition: %w", err)
	}
	return nil
}

func (r *Impl) GetCompetition(ctx context.Context, db bun.IDB, id uuid.UUID) (*Competition, error) {
	db = r.resolveDB(db)
	c := new(Competition)
	err := db.NewSelect().
		Model(c).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get competition: %w", err)
	}
	return c, nil
}

func (r *Impl) FindCompetitionPhase(ctx context.Context, db bun.IDB, id uuid.UUID) (competitiondomain.Phase, error) {
	c, err := r.GetCompetition(ctx, db, id)
	if err != nil {
		return nil, err
	}
	return c.Phase()
}

func (r *Impl) LockCompetition(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	db = r.resolveDB(db)
	// hashtext() gives a stable int4 key for the competition
	_, err := db.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", "competition:"+id.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("competition.LockCompetition: %w", err)
	}
	return nil
}

func (r *Impl) EnrollTeam(ctx context.Context, db bun.IDB, competitionID, teamID uuid.UUID) (bool, error) {
	db = r.resolveDB(db)
	res, err := db.NewInsert().
		Model(&CompetitionTeam{CompetitionID: competitionID, TeamID: teamID, EnrolledAt: time.Now().UTC()}).
		On("CONFLICT (competition_id, team_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to enroll team: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *Impl) ListTeams(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]uuid.UUID, error) {
	db = r.resolveDB(db)
	var teams []CompetitionTeam
	err := db.NewSelect().
		Model(&teams).
		Where("competition_id = ?", competitionID).
		Order("enrolled_at ASC", "team_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	out := make([]uuid.UUID, len(teams))
	for i, t := range teams {
		out[i] = t.TeamID
	}
	return out, nil
}

func (r *Impl) GetBracket(ctx context.Context, db bun.IDB, competitionID uuid.UUID) (competitiondomain.Bracket, error) {
	db = r.resolveDB(db)
	var rows []BracketSlot
	err := db.NewSelect().
		Model(&rows).
		Where("competition_id = ?", competitionID).
		Order("stage_order ASC", "position ASC").
		Scan(ctx)
	if err != nil {
		return competitiondomain.Bracket{}, fmt.Errorf("failed to get bracket: %w", err)
	}
	return bracketFromRows(rows)
}

func (r *Impl) SaveBracket(ctx context.Context, db bun.IDB, competitionID uuid.UUID, bracket competitiondomain.Bracket) error {
	db = r.resolveDB(db)
	if _, err := db.NewDelete().
		Model((*BracketSlot)(nil)).
		Where("competition_id = ?", competitionID).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear bracket: %w", err)
	}

	rows := bracketRows(competitionID, bracket)
	if len(rows) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("failed to save bracket: %w", err)
	}
	return nil
}

func (r *Impl) GetRound(ctx context.Context, db bun.IDB, competitionID uuid.UUID, roundNumber int) (competitiondomain.Round, error) {
	db = r.resolveDB(db)
	round := competitiondomain.Round{CompetitionID: competitionID, Number: roundNumber, MatchIDs: []uuid.UUID{}}

	row := new(LeagueRound)
	err := db.NewSelect().
		Model(row).
		Where("competition_id = ?", competitionID).
		Where("round_number = ?", roundNumber).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return round, nil
		}
		return competitiondomain.Round{}, fmt.Errorf("failed to get round: %w", err)
	}

	ids, err := parseMatchIDs(row.MatchIDs)
	if err != nil {
		return competitiondomain.Round{}, err
	}
	round.MatchIDs = ids
	return round, nil
}

func (r *Impl) SaveRound(ctx context.Context, db bun.IDB, competitionID uuid.UUID, roundNumber int, matchIDs []uuid.UUID) error {
	db = r.resolveDB(db)
	if len(matchIDs) == 0 {
		_, err := db.NewDelete().
			Model((*LeagueRound)(nil)).
			Where("competition_id = ?", competitionID).
			Where("round_number = ?", roundNumber).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear round: %w", err)
		}
		return nil
	}

	_, err := db.NewInsert().
		Model(&LeagueRound{
			CompetitionID: competitionID,
			RoundNumber:   roundNumber,
			MatchIDs:      matchIDStrings(matchIDs),
			UpdatedAt:     time.Now().UTC(),
		}).
		On("CONFLICT (competition_id, round_number) DO UPDATE").
		Set("match_ids = EXCLUDED.match_ids").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save round: %w", err)
	}
	return nil
}
