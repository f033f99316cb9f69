package statshandlers

import (
	"context"
	"log/slog"

	matchevents "github.com/Black-And-White-Club/competition-engine/app/events/match"
	statsservice "github.com/Black-And-White-Club/competition-engine/app/modules/stats/application"
	"go.opentelemetry.io/otel/trace"
)

// ReplayScheduler queues a dropped event for a later attempt.
type ReplayScheduler interface {
	ScheduleReplay(ctx context.Context, eventID string, payload matchevents.MatchEventPayloadV1) error
}

// StatsHandlers implements the Handlers interface.
type StatsHandlers struct {
	service statsservice.Service
	replay  ReplayScheduler
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewStatsHandlers creates a new StatsHandlers instance.
func NewStatsHandlers(
	service statsservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) *StatsHandlers {
	return &StatsHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// SetReplayScheduler enables replays of events dropped for failed lookups.
// The scheduler is built after the handlers because its workers call back
// into them.
func (h *StatsHandlers) SetReplayScheduler(s ReplayScheduler) {
	h.replay = s
}

var _ Handlers = (*StatsHandlers)(nil)
