// Package matchevents defines the match lifecycle envelope consumed by the
// stats module.
package matchevents

import "github.com/google/uuid"

// MatchEventV1 carries every match lifecycle event.
const MatchEventV1 = "match.event.v1"

// Event types.
const (
	TypeCommentary   = "COMMENTARY"
	TypeStatus       = "STATUS"
	TypeCard         = "CARD"
	TypeGoal         = "GOAL"
	TypePenalty      = "PENALTY"
	TypeSubstitution = "SUBSTITUTION"
)

// MatchEventPayloadV1 is a flat envelope; Type selects which fields apply.
type MatchEventPayloadV1 struct {
	EventID       string    `json:"event_id,omitempty"`
	Type          string    `json:"type"`
	CompetitionID uuid.UUID `json:"competition_id"`
	MatchID       uuid.UUID `json:"match_id"`
	Minute        int       `json:"minute,omitempty"`

	// COMMENTARY
	Text string `json:"text,omitempty"`

	// STATUS
	Status     string     `json:"status,omitempty"`
	Result     string     `json:"result,omitempty"`
	HomeTeamID *uuid.UUID `json:"home_team_id,omitempty"`
	AwayTeamID *uuid.UUID `json:"away_team_id,omitempty"`
	HomeGoals  int        `json:"home_goals,omitempty"`
	AwayGoals  int        `json:"away_goals,omitempty"`

	// CARD, GOAL, PENALTY, SUBSTITUTION
	TeamID *uuid.UUID `json:"team_id,omitempty"`
	Player *PlayerV1  `json:"player,omitempty"`

	CardType     string     `json:"card_type,omitempty"`
	Assist       *PlayerV1  `json:"assist,omitempty"`
	AssistTeamID *uuid.UUID `json:"assist_team_id,omitempty"`
	OwnGoal      bool       `json:"own_goal,omitempty"`

	// Scored is true when the kick was converted. Shootout is true for kicks
	// taken in a post-match shootout.
	Scored   bool `json:"scored,omitempty"`
	Shootout bool `json:"shootout,omitempty"`

	PlayerIn  *PlayerV1 `json:"player_in,omitempty"`
	PlayerOut *PlayerV1 `json:"player_out,omitempty"`
}

type PlayerV1 struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name,omitempty"`
}
