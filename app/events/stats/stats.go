// Package statsevents defines the topics published by the stats module.
package statsevents

import (
	statsdomain "github.com/Black-And-White-Club/competition-engine/app/modules/stats/domain"
	"github.com/google/uuid"
)

// StatsUpdatedV1 announces the rows changed by one match event.
const StatsUpdatedV1 = "stats.updated.v1"

type StatsUpdatedPayloadV1 struct {
	EventID       string                    `json:"event_id,omitempty"`
	CompetitionID uuid.UUID                 `json:"competition_id"`
	MatchID       uuid.UUID                 `json:"match_id"`
	Kind          string                    `json:"kind"`
	Teams         []statsdomain.TeamStats   `json:"teams,omitempty"`
	Players       []statsdomain.PlayerStats `json:"players,omitempty"`
}
