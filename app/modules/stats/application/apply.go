package statsservice

import (
	"context"
	"errors"
	"fmt"

	statsdomain "github.com/Black-And-White-Club/competition-engine/app/modules/stats/domain"
	statsdb "github.com/Black-And-White-Club/competition-engine/app/modules/stats/infrastructure/repositories"
	"github.com/Black-And-White-Club/competition-engine/pkg/attr"
	"github.com/Black-And-White-Club/competition-engine/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type applyResult = results.OperationResult[*ApplyResult, error]

type playerKey struct {
	teamID   uuid.UUID
	playerID uuid.UUID
}

// ApplyMatchEvent derives the effect of ev and writes it under the
// competition lock.
func (s *StatsService) ApplyMatchEvent(ctx context.Context, eventID string, ev statsdomain.MatchEvent) (*ApplyResult, error) {
	kind := string(ev.Kind())
	identifier := eventID
	if identifier == "" {
		identifier = kind + "/" + ev.Header().MatchID.String()
	}

	result, err := withTelemetry(s, ctx, "ApplyMatchEvent", identifier, func(ctx context.Context) (applyResult, error) {
		effect, err := statsdomain.Plan(ev)
		if err != nil {
			return classify[*ApplyResult](err)
		}
		if effect.Empty() {
			s.logger.InfoContext(ctx, "Match event does not change statistics",
				attr.ExtractCorrelationID(ctx),
				attr.String("event_id", eventID),
				attr.String("kind", kind),
				attr.String("reason", effect.Reason),
			)
			return results.SuccessResult[*ApplyResult, error](&ApplyResult{Outcome: OutcomeIgnored, Reason: effect.Reason}), nil
		}

		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (applyResult, error) {
			return s.applyEffectLogic(ctx, db, eventID, ev, effect)
		})
	})

	s.recordOutcome(ctx, kind, result, err)
	return unwrap(result, err)
}

func (s *StatsService) recordOutcome(ctx context.Context, kind string, result applyResult, err error) {
	if s.metrics == nil || err != nil {
		return
	}
	switch {
	case result.IsFailure():
		reason := "upstream_lookup_failed"
		if errors.Is(*result.Failure, statsdomain.ErrMalformedEvent) {
			reason = "malformed"
		}
		s.metrics.RecordEventDropped(ctx, kind, reason)
	case result.IsSuccess() && result.Success != nil && *result.Success != nil:
		switch (*result.Success).Outcome {
		case OutcomeApplied:
			s.metrics.RecordEventApplied(ctx, kind)
		case OutcomeDuplicate:
			s.metrics.RecordEventDuplicate(ctx, kind)
		}
	}
}

// applyEffectLogic resolves every row the effect touches before writing any
// of them, so a failed lookup leaves nothing behind.
func (s *StatsService) applyEffectLogic(ctx context.Context, db bun.IDB, eventID string, ev statsdomain.MatchEvent, effect statsdomain.Effect) (applyResult, error) {
	header := ev.Header()

	if err := s.repo.LockCompetition(ctx, db, header.CompetitionID); err != nil {
		return applyResult{}, err
	}

	if s.deduplicate && eventID != "" {
		applied, err := s.repo.IsEventApplied(ctx, db, eventID)
		if err != nil {
			return applyResult{}, err
		}
		if applied {
			return results.SuccessResult[*ApplyResult, error](&ApplyResult{
				Outcome: OutcomeDuplicate,
				Reason:  "event already applied",
			}), nil
		}
	}

	teams := make([]statsdomain.TeamStats, len(effect.Teams))
	for i, u := range effect.Teams {
		row, err := s.repo.FindTeamStats(ctx, db, header.CompetitionID, u.TeamID)
		if err != nil {
			if errors.Is(err, statsdb.ErrNotFound) {
				return classify[*ApplyResult](fmt.Errorf("%w: team %s is not enrolled in competition %s",
					statsdomain.ErrUpstreamLookupFailed, u.TeamID, header.CompetitionID))
			}
			return applyResult{}, err
		}
		teams[i] = row
	}

	var order []playerKey
	players := make(map[playerKey]statsdomain.PlayerStats, len(effect.Players))
	for _, u := range effect.Players {
		key := playerKey{teamID: u.TeamID, playerID: u.Player.ID}
		if _, ok := players[key]; ok {
			continue
		}
		row, err := s.repo.FindOrCreatePlayerStats(ctx, db, header.CompetitionID, u.TeamID, u.Player)
		if err != nil {
			if errors.Is(err, statsdb.ErrNotFound) {
				return classify[*ApplyResult](fmt.Errorf("%w: competition %s does not exist",
					statsdomain.ErrUpstreamLookupFailed, header.CompetitionID))
			}
			return applyResult{}, err
		}
		if row.PlayerName == "" {
			row.PlayerName = u.Player.Name
		}
		players[key] = row
		order = append(order, key)
	}

	out := &ApplyResult{Outcome: OutcomeApplied}

	if len(teams) == 2 {
		home := effect.Teams[0].Delta.Apply(teams[0])
		away := effect.Teams[1].Delta.Apply(teams[1])
		if err := s.repo.SaveTeamStats(ctx, db, home, away); err != nil {
			return applyResult{}, err
		}
		out.Teams = []statsdomain.TeamStats{home, away}
	}

	for _, u := range effect.Players {
		key := playerKey{teamID: u.TeamID, playerID: u.Player.ID}
		players[key] = u.Delta.Apply(players[key])
	}
	for _, key := range order {
		if err := s.repo.SavePlayerStats(ctx, db, players[key]); err != nil {
			return applyResult{}, err
		}
		out.Players = append(out.Players, players[key])
	}

	if s.deduplicate && eventID != "" {
		if err := s.repo.MarkEventApplied(ctx, db, eventID, header.CompetitionID, string(ev.Kind())); err != nil {
			return applyResult{}, err
		}
	}

	return results.SuccessResult[*ApplyResult, error](out), nil
}
