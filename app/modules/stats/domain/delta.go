package statsdomain

import (
	"fmt"

	"github.com/google/uuid"
)

// TeamDelta is an increment of every TeamStats counter.
type TeamDelta struct {
	MatchesPlayed int
	Wins          int
	Draws         int
	Losses        int
	GoalsScored   int
	GoalsConceded int
	Points        int
}

func (d TeamDelta) Apply(s TeamStats) TeamStats {
	s.MatchesPlayed += d.MatchesPlayed
	s.Wins += d.Wins
	s.Draws += d.Draws
	s.Losses += d.Losses
	s.GoalsScored += d.GoalsScored
	s.GoalsConceded += d.GoalsConceded
	s.Points += d.Points
	return s
}

// PlayerDelta is an increment of every PlayerStats counter.
type PlayerDelta struct {
	Goals       int
	Assists     int
	YellowCards int
	RedCards    int
}

func (d PlayerDelta) Apply(s PlayerStats) PlayerStats {
	s.Goals += d.Goals
	s.Assists += d.Assists
	s.YellowCards += d.YellowCards
	s.RedCards += d.RedCards
	return s
}

type TeamUpdate struct {
	TeamID uuid.UUID
	Delta  TeamDelta
}

type PlayerUpdate struct {
	TeamID uuid.UUID
	Player PlayerRef
	Delta  PlayerDelta
}

// Effect is everything one event changes. Teams is empty or a home/away
// pair. An empty Effect carries the reason the event changes nothing.
type Effect struct {
	Teams   []TeamUpdate
	Players []PlayerUpdate
	Reason  string
}

func (e Effect) Empty() bool { return len(e.Teams) == 0 && len(e.Players) == 0 }

func noOp(reason string) Effect { return Effect{Reason: reason} }

// Plan derives the effect of ev. It returns ErrMalformedEvent when the event
// cannot be applied as described.
func Plan(ev MatchEvent) (Effect, error) {
	if ev.Header().CompetitionID == uuid.Nil {
		return Effect{}, fmt.Errorf("%w: missing competition id", ErrMalformedEvent)
	}

	switch e := ev.(type) {
	case CommentaryEvent:
		return noOp("commentary does not affect statistics"), nil
	case SubstitutionEvent:
		return noOp("substitutions do not affect statistics"), nil
	case StatusEvent:
		return planStatus(e)
	case CardEvent:
		return planCard(e)
	case GoalEvent:
		return planGoal(e)
	case PenaltyEvent:
		return planPenalty(e)
	default:
		panic(fmt.Sprintf("unhandled match event %T", ev))
	}
}

func planStatus(e StatusEvent) (Effect, error) {
	if e.Status != StatusFinished {
		return noOp(fmt.Sprintf("status %s does not affect statistics", e.Status)), nil
	}
	if e.Result == ResultNoResult {
		return noOp("finished without result"), nil
	}
	if e.HomeTeamID == uuid.Nil || e.AwayTeamID == uuid.Nil || e.HomeTeamID == e.AwayTeamID {
		return Effect{}, fmt.Errorf("%w: finished match needs two distinct teams", ErrMalformedEvent)
	}
	if e.HomeGoals < 0 || e.AwayGoals < 0 {
		return Effect{}, fmt.Errorf("%w: negative score", ErrMalformedEvent)
	}

	home := TeamDelta{MatchesPlayed: 1, GoalsScored: e.HomeGoals, GoalsConceded: e.AwayGoals}
	away := TeamDelta{MatchesPlayed: 1, GoalsScored: e.AwayGoals, GoalsConceded: e.HomeGoals}

	switch e.Result {
	case ResultHomeWin:
		home.Wins, home.Points = 1, PointsWin
		away.Losses = 1
	case ResultAwayWin:
		away.Wins, away.Points = 1, PointsWin
		home.Losses = 1
	case ResultDraw:
		home.Draws, home.Points = 1, PointsDraw
		away.Draws, away.Points = 1, PointsDraw
	default:
		return Effect{}, fmt.Errorf("%w: unknown result %q", ErrMalformedEvent, e.Result)
	}

	return Effect{Teams: []TeamUpdate{
		{TeamID: e.HomeTeamID, Delta: home},
		{TeamID: e.AwayTeamID, Delta: away},
	}}, nil
}

func planCard(e CardEvent) (Effect, error) {
	if err := requirePlayer(e.TeamID, e.Player); err != nil {
		return Effect{}, err
	}
	var d PlayerDelta
	switch e.Card {
	case CardYellow:
		d.YellowCards = 1
	case CardSecondYellow, CardDirectRed:
		d.RedCards = 1
	default:
		return Effect{}, fmt.Errorf("%w: unknown card %q", ErrMalformedEvent, e.Card)
	}
	return Effect{Players: []PlayerUpdate{{TeamID: e.TeamID, Player: e.Player, Delta: d}}}, nil
}

func planGoal(e GoalEvent) (Effect, error) {
	var updates []PlayerUpdate
	if !e.OwnGoal {
		if err := requirePlayer(e.TeamID, e.Scorer); err != nil {
			return Effect{}, err
		}
		updates = append(updates, PlayerUpdate{TeamID: e.TeamID, Player: e.Scorer, Delta: PlayerDelta{Goals: 1}})
	}
	if e.Assist != nil {
		assistTeam := e.AssistTeamID
		if assistTeam == uuid.Nil && !e.OwnGoal {
			assistTeam = e.TeamID
		}
		if assistTeam != uuid.Nil {
			if err := requirePlayer(assistTeam, *e.Assist); err != nil {
				return Effect{}, err
			}
			updates = append(updates, PlayerUpdate{TeamID: assistTeam, Player: *e.Assist, Delta: PlayerDelta{Assists: 1}})
		}
	}
	if len(updates) == 0 {
		return noOp("own goal without a creditable assist"), nil
	}
	return Effect{Players: updates}, nil
}

func planPenalty(e PenaltyEvent) (Effect, error) {
	if e.Shootout {
		return noOp("shootout kicks do not count"), nil
	}
	if !e.Scored {
		return noOp("missed penalty"), nil
	}
	if err := requirePlayer(e.TeamID, e.Taker); err != nil {
		return Effect{}, err
	}
	return Effect{Players: []PlayerUpdate{{TeamID: e.TeamID, Player: e.Taker, Delta: PlayerDelta{Goals: 1}}}}, nil
}

func requirePlayer(teamID uuid.UUID, p PlayerRef) error {
	if teamID == uuid.Nil {
		return fmt.Errorf("%w: missing team id", ErrMalformedEvent)
	}
	if p.ID == uuid.Nil {
		return fmt.Errorf("%w: missing player id", ErrMalformedEvent)
	}
	return nil
}
