package statsservice

import (
	"context"

	statsdomain "github.com/Black-And-White-Club/competition-engine/app/modules/stats/domain"
	"github.com/google/uuid"
)

// Outcome describes what applying a match event did.
type Outcome string

const (
	OutcomeApplied   Outcome = "APPLIED"
	OutcomeIgnored   Outcome = "IGNORED"
	OutcomeDuplicate Outcome = "DUPLICATE"
)

// ApplyResult carries the rows written by an applied event. Reason explains
// an ignored event.
type ApplyResult struct {
	Outcome Outcome
	Reason  string
	Teams   []statsdomain.TeamStats
	Players []statsdomain.PlayerStats
}

// Service aggregates match events into team and player statistics.
type Service interface {
	// ApplyMatchEvent applies one event as a single unit of work. A dropped
	// event comes back as an error wrapping statsdomain.ErrMalformedEvent or
	// statsdomain.ErrUpstreamLookupFailed, with nothing written.
	ApplyMatchEvent(ctx context.Context, eventID string, ev statsdomain.MatchEvent) (*ApplyResult, error)

	// GetStandings returns the team rows of a competition in table order.
	GetStandings(ctx context.Context, competitionID uuid.UUID) ([]statsdomain.TeamStats, error)

	// GetPlayerStats returns the player rows of a competition, top scorers
	// first.
	GetPlayerStats(ctx context.Context, competitionID uuid.UUID) ([]statsdomain.PlayerStats, error)
}
