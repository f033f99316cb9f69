// Package statsdomain derives team and player statistic changes from match
// lifecycle events. Everything here is pure; persistence lives in the
// application layer.
package statsdomain

import "github.com/google/uuid"

// EventKind names a match event variant.
type EventKind string

const (
	KindCommentary   EventKind = "COMMENTARY"
	KindStatus       EventKind = "STATUS"
	KindCard         EventKind = "CARD"
	KindGoal         EventKind = "GOAL"
	KindPenalty      EventKind = "PENALTY"
	KindSubstitution EventKind = "SUBSTITUTION"
)

// MatchStatus is the lifecycle state reported by a status event. Only
// StatusFinished affects statistics.
type MatchStatus string

const (
	StatusScheduled MatchStatus = "SCHEDULED"
	StatusLive      MatchStatus = "LIVE"
	StatusHalfTime  MatchStatus = "HALF_TIME"
	StatusFinished  MatchStatus = "FINISHED"
	StatusCancelled MatchStatus = "CANCELLED"
)

// MatchResult is the outcome of a finished match.
type MatchResult string

const (
	ResultHomeWin  MatchResult = "HOME_WIN"
	ResultAwayWin  MatchResult = "AWAY_WIN"
	ResultDraw     MatchResult = "DRAW"
	ResultNoResult MatchResult = "NO_RESULT"
)

// CardType is the colour of a booking.
type CardType string

const (
	CardYellow       CardType = "YELLOW"
	CardSecondYellow CardType = "SECOND_YELLOW"
	CardDirectRed    CardType = "DIRECT_RED"
)

// MatchEvent is one of the *Event types in this file.
type MatchEvent interface {
	Kind() EventKind
	Header() EventHeader
	isMatchEvent()
}

// EventHeader is shared by every match event.
type EventHeader struct {
	CompetitionID uuid.UUID
	MatchID       uuid.UUID
	Minute        int
}

func (h EventHeader) Header() EventHeader { return h }

// PlayerRef identifies a player. Name is informational.
type PlayerRef struct {
	ID   uuid.UUID
	Name string
}

type CommentaryEvent struct {
	EventHeader
	Text string
}

// StatusEvent reports a change of match status, carrying the score.
type StatusEvent struct {
	EventHeader
	Status     MatchStatus
	Result     MatchResult
	HomeTeamID uuid.UUID
	AwayTeamID uuid.UUID
	HomeGoals  int
	AwayGoals  int
}

type CardEvent struct {
	EventHeader
	TeamID uuid.UUID
	Player PlayerRef
	Card   CardType
}

// GoalEvent credits Scorer unless OwnGoal is set. TeamID is the team the
// scorer plays for. AssistTeamID is the assisting player's team; it defaults
// to TeamID except on own goals, where the assister is on the other side and
// the assist only counts when the team is given.
type GoalEvent struct {
	EventHeader
	TeamID       uuid.UUID
	Scorer       PlayerRef
	Assist       *PlayerRef
	AssistTeamID uuid.UUID
	OwnGoal      bool
}

// PenaltyEvent is a single kick. Only a converted kick outside a shootout
// counts as a goal.
type PenaltyEvent struct {
	EventHeader
	TeamID   uuid.UUID
	Taker    PlayerRef
	Scored   bool
	Shootout bool
}

type SubstitutionEvent struct {
	EventHeader
	TeamID    uuid.UUID
	PlayerIn  PlayerRef
	PlayerOut PlayerRef
}

func (CommentaryEvent) Kind() EventKind   { return KindCommentary }
func (StatusEvent) Kind() EventKind       { return KindStatus }
func (CardEvent) Kind() EventKind         { return KindCard }
func (GoalEvent) Kind() EventKind         { return KindGoal }
func (PenaltyEvent) Kind() EventKind      { return KindPenalty }
func (SubstitutionEvent) Kind() EventKind { return KindSubstitution }

func (CommentaryEvent) isMatchEvent()   {}
func (StatusEvent) isMatchEvent()       {}
func (CardEvent) isMatchEvent()         {}
func (GoalEvent) isMatchEvent()         {}
func (PenaltyEvent) isMatchEvent()      {}
func (SubstitutionEvent) isMatchEvent() {}
