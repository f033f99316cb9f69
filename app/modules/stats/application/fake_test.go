package statsservice

import (
	"context"
	"time"

	statsdomain "github.com/Black-And-White-Club/competition-engine/app/modules/stats/domain"
	statsdb "github.com/Black-And-White-Club/competition-engine/app/modules/stats/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Stats Repo
// ------------------------

type FakeStatsRepo struct {
	trace []string

	LockCompetitionFunc         func(ctx context.Context, db bun.IDB, competitionID uuid.UUID) error
	FindTeamStatsFunc           func(ctx context.Context, db bun.IDB, competitionID, teamID uuid.UUID) (statsdomain.TeamStats, error)
	FindOrCreatePlayerStatsFunc func(ctx context.Context, db bun.IDB, competitionID, teamID uuid.UUID, player statsdomain.PlayerRef) (statsdomain.PlayerStats, error)
	SaveTeamStatsFunc           func(ctx context.Context, db bun.IDB, home, away statsdomain.TeamStats) error
	SavePlayerStatsFunc         func(ctx context.Context, db bun.IDB, stats statsdomain.PlayerStats) error
	IsEventAppliedFunc          func(ctx context.Context, db bun.IDB, eventID string) (bool, error)
	MarkEventAppliedFunc        func(ctx context.Context, db bun.IDB, eventID string, competitionID uuid.UUID, kind string) error
	CompetitionExistsFunc       func(ctx context.Context, db bun.IDB, competitionID uuid.UUID) (bool, error)
	ListTeamStatsFunc           func(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]statsdomain.TeamStats, error)
	ListPlayerStatsFunc         func(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]statsdomain.PlayerStats, error)
}

func NewFakeStatsRepo() *FakeStatsRepo {
	return &FakeStatsRepo{
		trace: []string{},
	}
}

func (f *FakeStatsRepo) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeStatsRepo) LockCompetition(ctx context.Context, db bun.IDB, competitionID uuid.UUID) error {
	f.record("LockCompetition")
	if f.LockCompetitionFunc != nil {
		return f.LockCompetitionFunc(ctx, db, competitionID)
	}
	return nil
}

func (f *FakeStatsRepo) FindTeamStats(ctx context.Context, db bun.IDB, competitionID, teamID uuid.UUID) (statsdomain.TeamStats, error) {
	f.record("FindTeamStats")
	if f.FindTeamStatsFunc != nil {
		return f.FindTeamStatsFunc(ctx, db, competitionID, teamID)
	}
	return statsdomain.NewTeamStats(competitionID, teamID), nil
}

func (f *FakeStatsRepo) FindOrCreatePlayerStats(ctx context.Context, db bun.IDB, competitionID, teamID uuid.UUID, player statsdomain.PlayerRef) (statsdomain.PlayerStats, error) {
	f.record("FindOrCreatePlayerStats")
	if f.FindOrCreatePlayerStatsFunc != nil {
		return f.FindOrCreatePlayerStatsFunc(ctx, db, competitionID, teamID, player)
	}
	return statsdomain.NewPlayerStats(competitionID, teamID, player), nil
}

func (f *FakeStatsRepo) SaveTeamStats(ctx context.Context, db bun.IDB, home, away statsdomain.TeamStats) error {
	f.record("SaveTeamStats")
	if f.SaveTeamStatsFunc != nil {
		return f.SaveTeamStatsFunc(ctx, db, home, away)
	}
	return nil
}

func (f *FakeStatsRepo) SavePlayerStats(ctx context.Context, db bun.IDB, stats statsdomain.PlayerStats) error {
	f.record("SavePlayerStats")
	if f.SavePlayerStatsFunc != nil {
		return f.SavePlayerStatsFunc(ctx, db, stats)
	}
	return nil
}

func (f *FakeStatsRepo) IsEventApplied(ctx context.Context, db bun.IDB, eventID string) (bool, error) {
	f.record("IsEventApplied")
	if f.IsEventAppliedFunc != nil {
		return f.IsEventAppliedFunc(ctx, db, eventID)
	}
	return false, nil
}

func (f *FakeStatsRepo) MarkEventApplied(ctx context.Context, db bun.IDB, eventID string, competitionID uuid.UUID, kind string) error {
	f.record("MarkEventApplied")
	if f.MarkEventAppliedFunc != nil {
		return f.MarkEventAppliedFunc(ctx, db, eventID, competitionID, kind)
	}
	return nil
}

func (f *FakeStatsRepo) CompetitionExists(ctx context.Context, db bun.IDB, competitionID uuid.UUID) (bool, error) {
	f.record("CompetitionExists")
	if f.CompetitionExistsFunc != nil {
		return f.CompetitionExistsFunc(ctx, db, competitionID)
	}
	return true, nil
}

func (f *FakeStatsRepo) ListTeamStats(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]statsdomain.TeamStats, error) {
	f.record("ListTeamStats")
	if f.ListTeamStatsFunc != nil {
		return f.ListTeamStatsFunc(ctx, db, competitionID)
	}
	return []statsdomain.TeamStats{}, nil
}

func (f *FakeStatsRepo) ListPlayerStats(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]statsdomain.PlayerStats, error) {
	f.record("ListPlayerStats")
	if f.ListPlayerStatsFunc != nil {
		return f.ListPlayerStatsFunc(ctx, db, competitionID)
	}
	return []statsdomain.PlayerStats{}, nil
}

// --- Accessors for assertions ---

func (f *FakeStatsRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ statsdb.Repository = (*FakeStatsRepo)(nil)

// ------------------------
// Recording metrics
// ------------------------

type recordingMetrics struct {
	applied    []string
	dropped    []string
	duplicates []string
}

func (m *recordingMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (m *recordingMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (m *recordingMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (m *recordingMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}

func (m *recordingMetrics) RecordEventApplied(_ context.Context, kind string) {
	m.applied = append(m.applied, kind)
}

func (m *recordingMetrics) RecordEventDropped(_ context.Context, kind, reason string) {
	m.dropped = append(m.dropped, kind+":"+reason)
}

func (m *recordingMetrics) RecordEventDuplicate(_ context.Context, kind string) {
	m.duplicates = append(m.duplicates, kind)
}
