package statshandlers

import (
	"context"

	matchevents "github.com/Black-And-White-Club/competition-engine/app/events/match"
	statsservice "github.com/Black-And-White-Club/competition-engine/app/modules/stats/application"
	statsdomain "github.com/Black-And-White-Club/competition-engine/app/modules/stats/domain"
	"github.com/google/uuid"
)

// ------------------------
// Fake Stats Service
// ------------------------

type FakeStatsService struct {
	trace []string

	ApplyMatchEventFunc func(ctx context.Context, eventID string, ev statsdomain.MatchEvent) (*statsservice.ApplyResult, error)
	GetStandingsFunc    func(ctx context.Context, competitionID uuid.UUID) ([]statsdomain.TeamStats, error)
	GetPlayerStatsFunc  func(ctx context.Context, competitionID uuid.UUID) ([]statsdomain.PlayerStats, error)
}

func NewFakeStatsService() *FakeStatsService {
	return &FakeStatsService{
		trace: []string{},
	}
}

func (f *FakeStatsService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeStatsService) ApplyMatchEvent(ctx context.Context, eventID string, ev statsdomain.MatchEvent) (*statsservice.ApplyResult, error) {
	f.record("ApplyMatchEvent")
	if f.ApplyMatchEventFunc != nil {
		return f.ApplyMatchEventFunc(ctx, eventID, ev)
	}
	return &statsservice.ApplyResult{Outcome: statsservice.OutcomeIgnored}, nil
}

func (f *FakeStatsService) GetStandings(ctx context.Context, competitionID uuid.UUID) ([]statsdomain.TeamStats, error) {
	f.record("GetStandings")
	if f.GetStandingsFunc != nil {
		return f.GetStandingsFunc(ctx, competitionID)
	}
	return []statsdomain.TeamStats{}, nil
}

func (f *FakeStatsService) GetPlayerStats(ctx context.Context, competitionID uuid.UUID) ([]statsdomain.PlayerStats, error) {
	f.record("GetPlayerStats")
	if f.GetPlayerStatsFunc != nil {
		return f.GetPlayerStatsFunc(ctx, competitionID)
	}
	return []statsdomain.PlayerStats{}, nil
}

func (f *FakeStatsService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ statsservice.Service = (*FakeStatsService)(nil)

// ------------------------
// Fake Replay Scheduler
// ------------------------

type FakeReplayScheduler struct {
	EventIDs []string
	Err      error
}

func (f *FakeReplayScheduler) ScheduleReplay(_ context.Context, eventID string, _ matchevents.MatchEventPayloadV1) error {
	f.EventIDs = append(f.EventIDs, eventID)
	return f.Err
}

var _ ReplayScheduler = (*FakeReplayScheduler)(nil)
