package competitionservice

import (
	"context"

	competitiondomain "github.com/Black-And-White-Club/competition-engine/app/modules/competition/domain"
	"github.com/google/uuid"
)

// Service is the competition progression facade used by the event and HTTP
// handlers. Domain failures come back as the sentinel errors of
// competitiondomain or as a *competitiondomain.ValidationError.
type Service interface {
	CreateCompetition(ctx context.Context, name string, phase competitiondomain.Phase) (*competitiondomain.Competition, error)
	GetCompetition(ctx context.Context, competitionID uuid.UUID) (*competitiondomain.Competition, error)
	EnrollTeam(ctx context.Context, competitionID, teamID uuid.UUID) error
	// ListTeams returns enrolled team ids in enrollment order.
	ListTeams(ctx context.Context, competitionID uuid.UUID) ([]uuid.UUID, error)

	GetBracket(ctx context.Context, competitionID uuid.UUID) (*competitiondomain.Bracket, error)
	// UpsertBracket validates proposal and, when valid, replaces the stored
	// bracket in full.
	UpsertBracket(ctx context.Context, competitionID uuid.UUID, proposal competitiondomain.BracketProposal) (*competitiondomain.Bracket, error)

	GetRound(ctx context.Context, competitionID uuid.UUID, roundNumber int) (*competitiondomain.Round, error)
	// AssignRound stores matchIDs as the matches of an empty round.
	AssignRound(ctx context.Context, competitionID uuid.UUID, roundNumber int, matchIDs []uuid.UUID) (*competitiondomain.Round, error)
	// UnassignRound clears a round. Clearing an empty round succeeds.
	UnassignRound(ctx context.Context, competitionID uuid.UUID, roundNumber int) (*competitiondomain.Round, error)
}
