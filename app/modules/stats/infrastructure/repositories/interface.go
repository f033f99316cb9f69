package statsdb

import (
	"context"

	statsdomain "github.com/Black-And-White-Club/competition-engine/app/modules/stats/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for stats persistence. A nil db uses the
// repository's own connection.
type Repository interface {
	// LockCompetition serializes writers of one competition until the
	// surrounding transaction ends. The key is shared with the competition
	// module.
	LockCompetition(ctx context.Context, db bun.IDB, competitionID uuid.UUID) error

	// FindTeamStats returns the stats row of an enrolled team, zero-valued
	// when nothing was recorded yet. It returns ErrNotFound for a team that
	// is not enrolled.
	FindTeamStats(ctx context.Context, db bun.IDB, competitionID, teamID uuid.UUID) (statsdomain.TeamStats, error)

	// FindOrCreatePlayerStats returns the row of a player, creating it when
	// absent. It returns ErrNotFound when the competition does not exist.
	FindOrCreatePlayerStats(ctx context.Context, db bun.IDB, competitionID, teamID uuid.UUID, player statsdomain.PlayerRef) (statsdomain.PlayerStats, error)

	// SaveTeamStats writes both rows of a match.
	SaveTeamStats(ctx context.Context, db bun.IDB, home, away statsdomain.TeamStats) error

	SavePlayerStats(ctx context.Context, db bun.IDB, stats statsdomain.PlayerStats) error

	IsEventApplied(ctx context.Context, db bun.IDB, eventID string) (bool, error)
	MarkEventApplied(ctx context.Context, db bun.IDB, eventID string, competitionID uuid.UUID, kind string) error

	CompetitionExists(ctx context.Context, db bun.IDB, competitionID uuid.UUID) (bool, error)

	// ListTeamStats returns a row for every enrolled team, unordered.
	ListTeamStats(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]statsdomain.TeamStats, error)

	// ListPlayerStats returns every player row of the competition, unordered.
	ListPlayerStats(ctx context.Context, db bun.IDB, competitionID uuid.UUID) ([]statsdomain.PlayerStats, error)
}
