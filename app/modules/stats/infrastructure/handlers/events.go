package statshandlers

import (
	"context"
	"errors"

	matchevents "github.com/Black-And-White-Club/competition-engine/app/events/match"
	statsevents "github.com/Black-And-White-Club/competition-engine/app/events/stats"
	statsservice "github.com/Black-And-White-Club/competition-engine/app/modules/stats/application"
	statsdomain "github.com/Black-And-White-Club/competition-engine/app/modules/stats/domain"
	"github.com/Black-And-White-Club/competition-engine/pkg/attr"
	"github.com/Black-And-White-Club/competition-engine/pkg/eventbus"
	"github.com/Black-And-White-Club/competition-engine/pkg/handlerwrapper"
)

func (h *StatsHandlers) apply(ctx context.Context, eventID string, payload *matchevents.MatchEventPayloadV1) (*statsservice.ApplyResult, error) {
	ev, err := toMatchEvent(payload)
	if err != nil {
		return nil, err
	}
	return h.service.ApplyMatchEvent(ctx, eventID, ev)
}

// HandleMatchEvent applies a match event and announces the changed rows.
func (h *StatsHandlers) HandleMatchEvent(ctx context.Context, payload *matchevents.MatchEventPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "StatsHandlers.HandleMatchEvent")
	defer span.End()

	eventID := payload.EventID
	if eventID == "" {
		eventID = handlerwrapper.MessageIDFromContext(ctx)
	}

	res, err := h.apply(ctx, eventID, payload)
	switch {
	case errors.Is(err, statsdomain.ErrUpstreamLookupFailed):
		h.logger.WarnContext(ctx, "Match event dropped",
			attr.ExtractCorrelationID(ctx),
			attr.String("event_id", eventID),
			attr.String("type", payload.Type),
			attr.CompetitionID(payload.CompetitionID),
			attr.Error(err),
		)
		h.scheduleReplay(ctx, eventID, payload)
		return nil, nil
	case errors.Is(err, statsdomain.ErrMalformedEvent):
		h.logger.WarnContext(ctx, "Match event dropped",
			attr.ExtractCorrelationID(ctx),
			attr.String("event_id", eventID),
			attr.String("type", payload.Type),
			attr.Error(err),
		)
		return nil, nil
	case err != nil:
		return nil, err
	}

	if res.Outcome != statsservice.OutcomeApplied {
		h.logger.DebugContext(ctx, "Match event not applied",
			attr.String("event_id", eventID),
			attr.String("outcome", string(res.Outcome)),
			attr.String("reason", res.Reason),
		)
		return nil, nil
	}

	return updatedResults(eventID, payload, res), nil
}

// updatedResults announces the rows changed by an applied event.
func updatedResults(eventID string, payload *matchevents.MatchEventPayloadV1, res *statsservice.ApplyResult) []handlerwrapper.Result {
	updated := &statsevents.StatsUpdatedPayloadV1{
		EventID:       eventID,
		CompetitionID: payload.CompetitionID,
		MatchID:       payload.MatchID,
		Kind:          payload.Type,
		Teams:         res.Teams,
		Players:       res.Players,
	}
	return []handlerwrapper.Result{
		{Topic: statsevents.StatsUpdatedV1, Payload: updated},
		{Topic: eventbus.CompetitionScopedTopic(statsevents.StatsUpdatedV1, payload.CompetitionID), Payload: updated},
	}
}

func (h *StatsHandlers) scheduleReplay(ctx context.Context, eventID string, payload *matchevents.MatchEventPayloadV1) {
	if h.replay == nil {
		return
	}
	if err := h.replay.ScheduleReplay(ctx, eventID, *payload); err != nil {
		h.logger.ErrorContext(ctx, "Failed to schedule match event replay",
			attr.ExtractCorrelationID(ctx),
			attr.String("event_id", eventID),
			attr.Error(err),
		)
	}
}

// ReplayMatchEvent re-applies a dropped event. A lookup that still fails is
// returned so the job is retried.
func (h *StatsHandlers) ReplayMatchEvent(ctx context.Context, eventID string, payload matchevents.MatchEventPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "StatsHandlers.ReplayMatchEvent")
	defer span.End()

	res, err := h.apply(ctx, eventID, &payload)
	if err != nil {
		return nil, err
	}
	h.logger.InfoContext(ctx, "Match event replayed",
		attr.String("event_id", eventID),
		attr.String("outcome", string(res.Outcome)),
	)
	if res.Outcome != statsservice.OutcomeApplied {
		return nil, nil
	}
	return updatedResults(eventID, &payload, res), nil
}
