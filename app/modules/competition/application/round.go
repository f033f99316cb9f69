package competitionservice

import (
	"context"
	"fmt"
	"strconv"

	competitiondomain "github.com/Black-And-White-Club/competition-engine/app/modules/competition/domain"
	"github.com/Black-And-White-Club/competition-engine/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func roundIdentifier(competitionID uuid.UUID, roundNumber int) string {
	return competitionID.String() + "/" + strconv.Itoa(roundNumber)
}

// GetRound returns a league round, empty when unassigned.
func (s *CompetitionService) GetRound(ctx context.Context, competitionID uuid.UUID, roundNumber int) (*competitiondomain.Round, error) {
	result, err := withTelemetry(s, ctx, "GetRound", roundIdentifier(competitionID, roundNumber), func(ctx context.Context) (results.OperationResult[*competitiondomain.Round, error], error) {
		phase, err := s.resolvePhase(ctx, nil, competitionID)
		if err != nil {
			return classify[*competitiondomain.Round](err)
		}
		if err := competitiondomain.CheckLeagueRound(phase, roundNumber); err != nil {
			return classify[*competitiondomain.Round](err)
		}
		round, err := s.repo.GetRound(ctx, nil, competitionID, roundNumber)
		if err != nil {
			return results.OperationResult[*competitiondomain.Round, error]{}, err
		}
		return results.SuccessResult[*competitiondomain.Round, error](&round), nil
	})
	return unwrap(result, err)
}

// AssignRound stores matchIDs on an empty round.
func (s *CompetitionService) AssignRound(ctx context.Context, competitionID uuid.UUID, roundNumber int, matchIDs []uuid.UUID) (*competitiondomain.Round, error) {
	assignTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*competitiondomain.Round, error], error) {
		return s.assignRoundLogic(ctx, db, competitionID, roundNumber, matchIDs)
	}

	result, err := withTelemetry(s, ctx, "AssignRound", roundIdentifier(competitionID, roundNumber), func(ctx context.Context) (results.OperationResult[*competitiondomain.Round, error], error) {
		return runInTx(s, ctx, assignTx)
	})
	return unwrap(result, err)
}

// assignRoundLogic reads the current occupancy and writes under the
// competition lock, so two assignments can never both observe an empty round.
func (s *CompetitionService) assignRoundLogic(ctx context.Context, db bun.IDB, competitionID uuid.UUID, roundNumber int, matchIDs []uuid.UUID) (results.OperationResult[*competitiondomain.Round, error], error) {
	if err := s.repo.LockCompetition(ctx, db, competitionID); err != nil {
		return results.OperationResult[*competitiondomain.Round, error]{}, err
	}

	phase, err := s.resolvePhase(ctx, db, competitionID)
	if err != nil {
		return classify[*competitiondomain.Round](err)
	}

	current, err := s.repo.GetRound(ctx, db, competitionID, roundNumber)
	if err != nil {
		return results.OperationResult[*competitiondomain.Round, error]{}, err
	}

	round, err := competitiondomain.AssignRound(phase, current, roundNumber, matchIDs)
	if err != nil {
		return classify[*competitiondomain.Round](err)
	}

	if err := s.repo.SaveRound(ctx, db, competitionID, roundNumber, round.MatchIDs); err != nil {
		return results.OperationResult[*competitiondomain.Round, error]{}, fmt.Errorf("failed to assign round: %w", err)
	}
	return results.SuccessResult[*competitiondomain.Round, error](&round), nil
}

// UnassignRound clears a league round.
func (s *CompetitionService) UnassignRound(ctx context.Context, competitionID uuid.UUID, roundNumber int) (*competitiondomain.Round, error) {
	unassignTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*competitiondomain.Round, error], error) {
		if err := s.repo.LockCompetition(ctx, db, competitionID); err != nil {
			return results.OperationResult[*competitiondomain.Round, error]{}, err
		}
		phase, err := s.resolvePhase(ctx, db, competitionID)
		if err != nil {
			return classify[*competitiondomain.Round](err)
		}
		round, err := competitiondomain.UnassignRound(phase, competitionID, roundNumber)
		if err != nil {
			return classify[*competitiondomain.Round](err)
		}
		if err := s.repo.SaveRound(ctx, db, competitionID, roundNumber, nil); err != nil {
			return results.OperationResult[*competitiondomain.Round, error]{}, fmt.Errorf("failed to unassign round: %w", err)
		}
		return results.SuccessResult[*competitiondomain.Round, error](&round), nil
	}

	result, err := withTelemetry(s, ctx, "UnassignRound", roundIdentifier(competitionID, roundNumber), func(ctx context.Context) (results.OperationResult[*competitiondomain.Round, error], error) {
		return runInTx(s, ctx, unassignTx)
	})
	return unwrap(result, err)
}
