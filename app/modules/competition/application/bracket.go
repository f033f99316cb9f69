package competitionservice

import (
	"context"
	"fmt"

	competitiondomain "github.com/Black-And-White-Club/competition-engine/app/modules/competition/domain"
	"github.com/Black-And-White-Club/competition-engine/pkg/attr"
	"github.com/Black-And-White-Club/competition-engine/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// GetBracket returns the stored bracket of a knockout competition.
func (s *CompetitionService) GetBracket(ctx context.Context, competitionID uuid.UUID) (*competitiondomain.Bracket, error) {
	result, err := withTelemetry(s, ctx, "GetBracket", competitionID.String(), func(ctx context.Context) (results.OperationResult[*competitiondomain.Bracket, error], error) {
		phase, err := s.resolvePhase(ctx, nil, competitionID)
		if err != nil {
			return classify[*competitiondomain.Bracket](err)
		}
		if _, ok := phase.(competitiondomain.KnockoutPhase); !ok {
			return classify[*competitiondomain.Bracket](competitiondomain.ErrPhaseNotFound)
		}
		bracket, err := s.repo.GetBracket(ctx, nil, competitionID)
		if err != nil {
			return results.OperationResult[*competitiondomain.Bracket, error]{}, err
		}
		return results.SuccessResult[*competitiondomain.Bracket, error](&bracket), nil
	})
	return unwrap(result, err)
}

// UpsertBracket replaces the bracket of a knockout competition with proposal.
func (s *CompetitionService) UpsertBracket(ctx context.Context, competitionID uuid.UUID, proposal competitiondomain.BracketProposal) (*competitiondomain.Bracket, error) {
	upsertTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*competitiondomain.Bracket, error], error) {
		return s.upsertBracketLogic(ctx, db, competitionID, proposal)
	}

	result, err := withTelemetry(s, ctx, "UpsertBracket", competitionID.String(), func(ctx context.Context) (results.OperationResult[*competitiondomain.Bracket, error], error) {
		return runInTx(s, ctx, upsertTx)
	})
	return unwrap(result, err)
}

// upsertBracketLogic holds the competition lock from the phase lookup to the
// write so concurrent replacements cannot interleave.
func (s *CompetitionService) upsertBracketLogic(ctx context.Context, db bun.IDB, competitionID uuid.UUID, proposal competitiondomain.BracketProposal) (results.OperationResult[*competitiondomain.Bracket, error], error) {
	if err := s.repo.LockCompetition(ctx, db, competitionID); err != nil {
		return results.OperationResult[*competitiondomain.Bracket, error]{}, err
	}

	phase, err := s.resolvePhase(ctx, db, competitionID)
	if err != nil {
		return classify[*competitiondomain.Bracket](err)
	}
	if _, ok := phase.(competitiondomain.KnockoutPhase); !ok {
		return classify[*competitiondomain.Bracket](competitiondomain.ErrPhaseNotFound)
	}

	bracket, err := competitiondomain.ValidateBracket(proposal)
	if err != nil {
		return classify[*competitiondomain.Bracket](err)
	}

	if err := s.repo.SaveBracket(ctx, db, competitionID, bracket); err != nil {
		return results.OperationResult[*competitiondomain.Bracket, error]{}, fmt.Errorf("failed to replace bracket: %w", err)
	}

	s.logger.InfoContext(ctx, "Bracket replaced",
		attr.ExtractCorrelationID(ctx),
		attr.CompetitionID(competitionID),
		attr.Int("stages", len(bracket.Stages)),
		attr.Int("matches", len(bracket.MatchIDs())),
	)
	return results.SuccessResult[*competitiondomain.Bracket, error](&bracket), nil
}
