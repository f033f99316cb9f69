package competitionservice

import (
	"context"

	competitiondomain "github.com/Black-And-White-Club/competition-engine/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/competition-engine/app/modules/competition/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Competition Repo
// ------------------------

type FakeCompetitionRepo struct {
	trace []string

	CreateCompetitionFunc    func(ctx context.Context, db bun.IDB, c *competitiondb.Competition) error
	GetCompetitionFunc       func(ctx context.Context, db bun.IDB, id uuid.UUID) (*competitiondb.Competition, error)
	FindCompetitionPhaseFunc func(ctx context.Context, db bun.IDB, id uuid.UUID) (competitiondomain.Phase, error)
	LockCompetitionFunc      func(ctx context.Context, db bun.IDB, id uuid.UUID) error
	EnrollTeamFunc           func(ctx context.Context, db bun.IDB, competitionID, teamID uuid.UUID) (bool, error)
	ListTeamsFunc            func(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]uuid.UUID, error)
	GetBracketFunc           func(ctx context.Context, db bun.IDB, competitionID uuid.UUID) (competitiondomain.Bracket, error)
	SaveBracketFunc          func(ctx context.Context, db bun.IDB, competitionID uuid.UUID, bracket competitiondomain.Bracket) error
	GetRoundFunc             func(ctx context.Context, db bun.IDB, competitionID uuid.UUID, roundNumber int) (competitiondomain.Round, error)
	SaveRoundFunc            func(ctx context.Context, db bun.IDB, competitionID uuid.UUID, roundNumber int, matchIDs []uuid.UUID) error
}

func NewFakeCompetitionRepo() *FakeCompetitionRepo {
	return &FakeCompetitionRepo{
		trace: []string{},
	}
}

func (f *FakeCompetitionRepo) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeCompetitionRepo) CreateCompetition(ctx context.Context, db bun.IDB, c *competitiondb.Competition) error {
	f.record("CreateCompetition")
	if f.CreateCompetitionFunc != nil {
		return f.CreateCompetitionFunc(ctx, db, c)
	}
	return nil
}

func (f *FakeCompetitionRepo) GetCompetition(ctx context.Context, db bun.IDB, id uuid.UUID) (*competitiondb.Competition, error) {
	f.record("GetCompetition")
	if f.GetCompetitionFunc != nil {
		return f.GetCompetitionFunc(ctx, db, id)
	}
	return nil, competitiondb.ErrNotFound
}

func (f *FakeCompetitionRepo) FindCompetitionPhase(ctx context.Context, db bun.IDB, id uuid.UUID) (competitiondomain.Phase, error) {
	f.record("FindCompetitionPhase")
	if f.FindCompetitionPhaseFunc != nil {
		return f.FindCompetitionPhaseFunc(ctx, db, id)
	}
	return nil, competitiondb.ErrNotFound
}

func (f *FakeCompetitionRepo) LockCompetition(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	f.record("LockCompetition")
	if f.LockCompetitionFunc != nil {
		return f.LockCompetitionFunc(ctx, db, id)
	}
	return nil
}

func (f *FakeCompetitionRepo) EnrollTeam(ctx context.Context, db bun.IDB, competitionID, teamID uuid.UUID) (bool, error) {
	f.record("EnrollTeam")
	if f.EnrollTeamFunc != nil {
		return f.EnrollTeamFunc(ctx, db, competitionID, teamID)
	}
	return true, nil
}

func (f *FakeCompetitionRepo) ListTeams(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]uuid.UUID, error) {
	f.record("ListTeams")
	if f.ListTeamsFunc != nil {
		return f.ListTeamsFunc(ctx, db, competitionID)
	}
	return nil, nil
}

func (f *FakeCompetitionRepo) GetBracket(ctx context.Context, db bun.IDB, competitionID uuid.UUID) (competitiondomain.Bracket, error) {
	f.record("GetBracket")
	if f.GetBracketFunc != nil {
		return f.GetBracketFunc(ctx, db, competitionID)
	}
	return competitiondomain.Bracket{}, nil
}

func (f *FakeCompetitionRepo) SaveBracket(ctx context.Context, db bun.IDB, competitionID uuid.UUID, bracket competitiondomain.Bracket) error {
	f.record("SaveBracket")
	if f.SaveBracketFunc != nil {
		return f.SaveBracketFunc(ctx, db, competitionID, bracket)
	}
	return nil
}

func (f *FakeCompetitionRepo) GetRound(ctx context.Context, db bun.IDB, competitionID uuid.UUID, roundNumber int) (competitiondomain.Round, error) {
	f.record("GetRound")
	if f.GetRoundFunc != nil {
		return f.GetRoundFunc(ctx, db, competitionID, roundNumber)
	}
	return competitiondomain.Round{CompetitionID: competitionID, Number: roundNumber}, nil
}

func (f *FakeCompetitionRepo) SaveRound(ctx context.Context, db bun.IDB, competitionID uuid.UUID, roundNumber int, matchIDs []uuid.UUID) error {
	f.record("SaveRound")
	if f.SaveRoundFunc != nil {
		return f.SaveRoundFunc(ctx, db, competitionID, roundNumber, matchIDs)
	}
	return nil
}

// --- Accessors for assertions ---

func (f *FakeCompetitionRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ competitiondb.Repository = (*FakeCompetitionRepo)(nil)
