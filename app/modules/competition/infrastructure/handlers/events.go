package competitionhandlers

import (
	"context"

	competitionevents "github.com/Black-And-White-Club/competition-engine/app/events/competition"
	competitionws "github.com/Black-And-White-Club/competition-engine/app/modules/competition/infrastructure/websocket"
	"github.com/Black-And-White-Club/competition-engine/pkg/attr"
	"github.com/Black-And-White-Club/competition-engine/pkg/eventbus"
	"github.com/Black-And-White-Club/competition-engine/pkg/handlerwrapper"
	"github.com/google/uuid"
)

// scoped returns payload on topic and on the competition-scoped variant of it.
func scoped(topic string, competitionID uuid.UUID, payload any) []handlerwrapper.Result {
	return []handlerwrapper.Result{
		{Topic: topic, Payload: payload},
		{Topic: eventbus.CompetitionScopedTopic(topic, competitionID), Payload: payload},
	}
}

// HandleBracketUpsertRequested replaces the bracket and announces the
// outcome. Rejections are published, not retried.
func (h *CompetitionHandlers) HandleBracketUpsertRequested(ctx context.Context, payload *competitionevents.BracketUpsertRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "CompetitionHandlers.HandleBracketUpsertRequested")
	defer span.End()

	bracket, err := h.service.UpsertBracket(ctx, payload.CompetitionID, payload.Bracket)
	if err != nil {
		reason, violations, ok := failureReason(err)
		if !ok {
			return nil, err
		}
		h.logger.InfoContext(ctx, "Bracket upsert rejected",
			attr.ExtractCorrelationID(ctx),
			attr.CompetitionID(payload.CompetitionID),
			attr.String("reason", reason),
			attr.String("requested_by", payload.RequestedBy),
		)
		return scoped(competitionevents.BracketRejectedV1, payload.CompetitionID, &competitionevents.BracketRejectedPayloadV1{
			CompetitionID: payload.CompetitionID,
			Reason:        reason,
			Violations:    violations,
		}), nil
	}

	updated := &competitionevents.BracketUpdatedPayloadV1{
		CompetitionID: payload.CompetitionID,
		Bracket:       bracket.Proposal(),
	}
	h.broadcast(payload.CompetitionID, competitionws.MessageBracketUpdated, updated.Bracket)
	return scoped(competitionevents.BracketUpdatedV1, payload.CompetitionID, updated), nil
}

// HandleRoundAssignRequested assigns the requested matches to a round.
func (h *CompetitionHandlers) HandleRoundAssignRequested(ctx context.Context, payload *competitionevents.RoundAssignRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "CompetitionHandlers.HandleRoundAssignRequested")
	defer span.End()

	round, err := h.service.AssignRound(ctx, payload.CompetitionID, payload.RoundNumber, payload.MatchIDs)
	if err != nil {
		reason, violations, ok := failureReason(err)
		if !ok {
			return nil, err
		}
		h.logger.InfoContext(ctx, "Round assignment failed",
			attr.ExtractCorrelationID(ctx),
			attr.CompetitionID(payload.CompetitionID),
			attr.Int("round_number", payload.RoundNumber),
			attr.String("reason", reason),
		)
		return scoped(competitionevents.RoundAssignFailedV1, payload.CompetitionID, &competitionevents.RoundAssignFailedPayloadV1{
			CompetitionID: payload.CompetitionID,
			RoundNumber:   payload.RoundNumber,
			Reason:        reason,
			Violations:    violations,
		}), nil
	}

	assigned := &competitionevents.RoundAssignedPayloadV1{
		CompetitionID: round.CompetitionID,
		RoundNumber:   round.Number,
		MatchIDs:      round.MatchIDs,
	}
	h.broadcast(payload.CompetitionID, competitionws.MessageRoundAssigned, round)
	return scoped(competitionevents.RoundAssignedV1, payload.CompetitionID, assigned), nil
}

// HandleRoundUnassignRequested clears a round. Unknown rounds are logged
// and acknowledged.
func (h *CompetitionHandlers) HandleRoundUnassignRequested(ctx context.Context, payload *competitionevents.RoundUnassignRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "CompetitionHandlers.HandleRoundUnassignRequested")
	defer span.End()

	round, err := h.service.UnassignRound(ctx, payload.CompetitionID, payload.RoundNumber)
	if err != nil {
		reason, _, ok := failureReason(err)
		if !ok {
			return nil, err
		}
		h.logger.WarnContext(ctx, "Round unassignment ignored",
			attr.ExtractCorrelationID(ctx),
			attr.CompetitionID(payload.CompetitionID),
			attr.Int("round_number", payload.RoundNumber),
			attr.String("reason", reason),
		)
		return nil, nil
	}

	h.broadcast(payload.CompetitionID, competitionws.MessageRoundUnassigned, round)
	return scoped(competitionevents.RoundUnassignedV1, payload.CompetitionID, &competitionevents.RoundUnassignedPayloadV1{
		CompetitionID: payload.CompetitionID,
		RoundNumber:   payload.RoundNumber,
	}), nil
}
