package competitionservice

import (
	"context"
	"errors"
	"fmt"

	competitiondomain "github.com/Black-And-White-Club/competition-engine/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/competition-engine/app/modules/competition/infrastructure/repositories"
	"github.com/Black-And-White-Club/competition-engine/pkg/attr"
	"github.com/Black-And-White-Club/competition-engine/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CreateCompetition registers a competition. Knockout competitions start
// with an all-empty bracket from their start stage to the final.
func (s *CompetitionService) CreateCompetition(ctx context.Context, name string, phase competitiondomain.Phase) (*competitiondomain.Competition, error) {
	id := uuid.New()
	createTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*competitiondomain.Competition, error], error) {
		return s.createCompetitionLogic(ctx, db, id, name, phase)
	}

	result, err := withTelemetry(s, ctx, "CreateCompetition", id.String(), func(ctx context.Context) (results.OperationResult[*competitiondomain.Competition, error], error) {
		return runInTx(s, ctx, createTx)
	})
	return unwrap(result, err)
}

func (s *CompetitionService) createCompetitionLogic(ctx context.Context, db bun.IDB, id uuid.UUID, name string, phase competitiondomain.Phase) (results.OperationResult[*competitiondomain.Competition, error], error) {
	competition, err := competitiondomain.NewCompetition(id, name, phase, s.now())
	if err != nil {
		return classify[*competitiondomain.Competition](err)
	}

	if err := s.repo.CreateCompetition(ctx, db, competitiondb.NewCompetitionRow(competition)); err != nil {
		return results.OperationResult[*competitiondomain.Competition, error]{}, err
	}

	if bracket, ok := competition.InitialBracket(); ok {
		if err := s.repo.SaveBracket(ctx, db, competition.ID, bracket); err != nil {
			return results.OperationResult[*competitiondomain.Competition, error]{}, err
		}
	}

	return results.SuccessResult[*competitiondomain.Competition, error](&competition), nil
}

// GetCompetition retrieves a competition by id.
func (s *CompetitionService) GetCompetition(ctx context.Context, competitionID uuid.UUID) (*competitiondomain.Competition, error) {
	result, err := withTelemetry(s, ctx, "GetCompetition", competitionID.String(), func(ctx context.Context) (results.OperationResult[*competitiondomain.Competition, error], error) {
		row, err := s.repo.GetCompetition(ctx, nil, competitionID)
		if err != nil {
			if errors.Is(err, competitiondb.ErrNotFound) {
				return classify[*competitiondomain.Competition](competitiondomain.ErrCompetitionNotFound)
			}
			return results.OperationResult[*competitiondomain.Competition, error]{}, err
		}
		competition, err := row.ToDomain()
		if err != nil {
			return results.OperationResult[*competitiondomain.Competition, error]{}, err
		}
		return results.SuccessResult[*competitiondomain.Competition, error](&competition), nil
	})
	return unwrap(result, err)
}

// EnrollTeam registers teamID in a competition. Enrolling twice is a no-op.
func (s *CompetitionService) EnrollTeam(ctx context.Context, competitionID, teamID uuid.UUID) error {
	enrollTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
		if _, err := s.resolvePhase(ctx, db, competitionID); err != nil {
			return classify[bool](err)
		}
		if teamID == uuid.Nil {
			return classify[bool](competitiondomain.ErrTeamNotFound)
		}
		created, err := s.repo.EnrollTeam(ctx, db, competitionID, teamID)
		if err != nil {
			return results.OperationResult[bool, error]{}, fmt.Errorf("failed to enroll team: %w", err)
		}
		if !created {
			s.logger.DebugContext(ctx, "Team already enrolled",
				attr.CompetitionID(competitionID),
				attr.UUID("team_id", teamID),
			)
		}
		return results.SuccessResult[bool, error](created), nil
	}

	result, err := withTelemetry(s, ctx, "EnrollTeam", competitionID.String(), func(ctx context.Context) (results.OperationResult[bool, error], error) {
		return runInTx(s, ctx, enrollTx)
	})
	_, err = unwrap(result, err)
	return err
}

// ListTeams returns the teams enrolled in a competition.
func (s *CompetitionService) ListTeams(ctx context.Context, competitionID uuid.UUID) ([]uuid.UUID, error) {
	result, err := withTelemetry(s, ctx, "ListTeams", competitionID.String(), func(ctx context.Context) (results.OperationResult[[]uuid.UUID, error], error) {
		if _, err := s.resolvePhase(ctx, nil, competitionID); err != nil {
			return classify[[]uuid.UUID](err)
		}
		teams, err := s.repo.ListTeams(ctx, nil, competitionID)
		if err != nil {
			return results.OperationResult[[]uuid.UUID, error]{}, err
		}
		return results.SuccessResult[[]uuid.UUID, error](teams), nil
	})
	return unwrap(result, err)
}
