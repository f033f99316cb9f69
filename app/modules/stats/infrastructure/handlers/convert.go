package statshandlers

import (
	"fmt"

	matchevents "github.com/Black-And-White-Club/competition-engine/app/events/match"
	statsdomain "github.com/Black-And-White-Club/competition-engine/app/modules/stats/domain"
	"github.com/google/uuid"
)

func derefID(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}

func toPlayer(p *matchevents.PlayerV1) statsdomain.PlayerRef {
	if p == nil {
		return statsdomain.PlayerRef{}
	}
	return statsdomain.PlayerRef{ID: p.ID, Name: p.Name}
}

// toMatchEvent maps the wire envelope onto its domain variant. Missing
// fields are left zero for statsdomain.Plan to reject.
func toMatchEvent(p *matchevents.MatchEventPayloadV1) (statsdomain.MatchEvent, error) {
	header := statsdomain.EventHeader{
		CompetitionID: p.CompetitionID,
		MatchID:       p.MatchID,
		Minute:        p.Minute,
	}

	switch p.Type {
	case matchevents.TypeCommentary:
		return statsdomain.CommentaryEvent{EventHeader: header, Text: p.Text}, nil
	case matchevents.TypeStatus:
		return statsdomain.StatusEvent{
			EventHeader: header,
			Status:      statsdomain.MatchStatus(p.Status),
			Result:      statsdomain.MatchResult(p.Result),
			HomeTeamID:  derefID(p.HomeTeamID),
			AwayTeamID:  derefID(p.AwayTeamID),
			HomeGoals:   p.HomeGoals,
			AwayGoals:   p.AwayGoals,
		}, nil
	case matchevents.TypeCard:
		return statsdomain.CardEvent{
			EventHeader: header,
			TeamID:      derefID(p.TeamID),
			Player:      toPlayer(p.Player),
			Card:        statsdomain.CardType(p.CardType),
		}, nil
	case matchevents.TypeGoal:
		ev := statsdomain.GoalEvent{
			EventHeader: header,
			TeamID:      derefID(p.TeamID),
			Scorer:      toPlayer(p.Player),
			OwnGoal:     p.OwnGoal,
		}
		if p.Assist != nil {
			assist := toPlayer(p.Assist)
			ev.Assist = &assist
			ev.AssistTeamID = derefID(p.AssistTeamID)
		}
		return ev, nil
	case matchevents.TypePenalty:
		return statsdomain.PenaltyEvent{
			EventHeader: header,
			TeamID:      derefID(p.TeamID),
			Taker:       toPlayer(p.Player),
			Scored:      p.Scored,
			Shootout:    p.Shootout,
		}, nil
	case matchevents.TypeSubstitution:
		return statsdomain.SubstitutionEvent{
			EventHeader: header,
			TeamID:      derefID(p.TeamID),
			PlayerIn:    toPlayer(p.PlayerIn),
			PlayerOut:   toPlayer(p.PlayerOut),
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown event type %q", statsdomain.ErrMalformedEvent, p.Type)
}
