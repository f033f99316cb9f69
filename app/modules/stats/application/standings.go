package statsservice

import (
	"context"

	statsdomain "github.com/Black-And-White-Club/competition-engine/app/modules/stats/domain"
	"github.com/Black-And-White-Club/competition-engine/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func (s *StatsService) requireCompetition(ctx context.Context, db bun.IDB, competitionID uuid.UUID) error {
	ok, err := s.repo.CompetitionExists(ctx, db, competitionID)
	if err != nil {
		return err
	}
	if !ok {
		return statsdomain.ErrCompetitionNotFound
	}
	return nil
}

// GetStandings returns the league table of a competition.
func (s *StatsService) GetStandings(ctx context.Context, competitionID uuid.UUID) ([]statsdomain.TeamStats, error) {
	result, err := withTelemetry(s, ctx, "GetStandings", competitionID.String(), func(ctx context.Context) (results.OperationResult[[]statsdomain.TeamStats, error], error) {
		if err := s.requireCompetition(ctx, nil, competitionID); err != nil {
			return classify[[]statsdomain.TeamStats](err)
		}
		rows, err := s.repo.ListTeamStats(ctx, nil, competitionID)
		if err != nil {
			return results.OperationResult[[]statsdomain.TeamStats, error]{}, err
		}
		statsdomain.SortStandings(rows)
		return results.SuccessResult[[]statsdomain.TeamStats, error](rows), nil
	})
	return unwrap(result, err)
}

// GetPlayerStats returns the player rows of a competition, top scorers first.
func (s *StatsService) GetPlayerStats(ctx context.Context, competitionID uuid.UUID) ([]statsdomain.PlayerStats, error) {
	result, err := withTelemetry(s, ctx, "GetPlayerStats", competitionID.String(), func(ctx context.Context) (results.OperationResult[[]statsdomain.PlayerStats, error], error) {
		if err := s.requireCompetition(ctx, nil, competitionID); err != nil {
			return classify[[]statsdomain.PlayerStats](err)
		}
		rows, err := s.repo.ListPlayerStats(ctx, nil, competitionID)
		if err != nil {
			return results.OperationResult[[]statsdomain.PlayerStats, error]{}, err
		}
		statsdomain.SortScorers(rows)
		return results.SuccessResult[[]statsdomain.PlayerStats, error](rows), nil
	})
	return unwrap(result, err)
}
