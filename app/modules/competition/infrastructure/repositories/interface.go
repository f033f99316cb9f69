package competitiondb

import (
	"context"

	competitiondomain "github.com/Black-And-White-Club/competition-engine/app/modules/competition/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for competition persistence. A nil db uses
// the repository's own connection.
type Repository interface {
	// CreateCompetition inserts a new competition.
	CreateCompetition(ctx context.Context, db bun.IDB, c *Competition) error

	// GetCompetition retrieves a competition by id.
	GetCompetition(ctx context.Context, db bun.IDB, id uuid.UUID) (*Competition, error)

	// FindCompetitionPhase returns the phase of a competition.
	FindCompetitionPhase(ctx context.Context, db bun.IDB, id uuid.UUID) (competitiondomain.Phase, error)

	// LockCompetition serializes writers of one competition until the
	// surrounding transaction ends.
	LockCompetition(ctx context.Context, db bun.IDB, id uuid.UUID) error

	// EnrollTeam registers a team. It reports false when the team was
	// already enrolled.
	EnrollTeam(ctx context.Context, db bun.IDB, competitionID, teamID uuid.UUID) (bool, error)

	// ListTeams returns the enrolled teams in enrollment order.
	ListTeams(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]uuid.UUID, error)

	// GetBracket returns the stored bracket, empty when none was saved.
	GetBracket(ctx context.Context, db bun.IDB, competitionID uuid.UUID) (competitiondomain.Bracket, error)

	// SaveBracket replaces the stored bracket.
	SaveBracket(ctx context.Context, db bun.IDB, competitionID uuid.UUID, bracket competitiondomain.Bracket) error

	// GetRound returns the stored round, empty when unassigned.
	GetRound(ctx context.Context, db bun.IDB, competitionID uuid.UUID, roundNumber int) (competitiondomain.Round, error)

	// SaveRound stores the match ids of a round. Empty ids clear it.
	SaveRound(ctx context.Context, db bun.IDB, competitionID uuid.UUID, roundNumber int, matchIDs []uuid.UUID) error
}
