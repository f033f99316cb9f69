package competitionhandlers

import (
	"context"
	"errors"
	"log/slog"

	competitionevents "github.com/Black-And-White-Club/competition-engine/app/events/competition"
	competitionservice "github.com/Black-And-White-Club/competition-engine/app/modules/competition/application"
	competitiondomain "github.com/Black-And-White-Club/competition-engine/app/modules/competition/domain"
	"github.com/Black-And-White-Club/competition-engine/pkg/attr"
	"github.com/Black-And-White-Club/competition-engine/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// Broadcaster pushes updates to live clients of a competition.
type Broadcaster interface {
	Broadcast(competitionID uuid.UUID, messageType string, payload any) int
}

// CompetitionHandlers implements the Handlers interface.
type CompetitionHandlers struct {
	service     competitionservice.Service
	broadcaster Broadcaster
	publisher   message.Publisher
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewCompetitionHandlers creates a new CompetitionHandlers instance. A nil
// broadcaster disables live updates; a nil publisher keeps HTTP changes off
// the event bus.
func NewCompetitionHandlers(
	service competitionservice.Service,
	broadcaster Broadcaster,
	publisher message.Publisher,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &CompetitionHandlers{
		service:     service,
		broadcaster: broadcaster,
		publisher:   publisher,
		logger:      logger,
		tracer:      tracer,
	}
}

func (h *CompetitionHandlers) broadcast(competitionID uuid.UUID, messageType string, payload any) {
	if h.broadcaster == nil {
		return
	}
	h.broadcaster.Broadcast(competitionID, messageType, payload)
}

// publish sends results produced outside the message router. The change is
// already committed, so failures are logged and not returned.
func (h *CompetitionHandlers) publish(ctx context.Context, results []handlerwrapper.Result) {
	if h.publisher == nil {
		return
	}
	for _, r := range results {
		msg, err := handlerwrapper.NewMessage(ctx, r)
		if err == nil {
			err = h.publisher.Publish(r.Topic, msg)
		}
		if err != nil {
			h.logger.ErrorContext(ctx, "Failed to publish competition update",
				attr.String("topic", r.Topic),
				attr.Error(err),
			)
		}
	}
}

// failureReason maps a domain failure onto the reason carried by rejected
// events. ok is false for infrastructure errors.
func failureReason(err error) (reason string, violations map[string][]string, ok bool) {
	var verr *competitiondomain.ValidationError
	switch {
	case errors.As(err, &verr):
		return competitionevents.ReasonValidationFailed, verr.Violations, true
	case errors.Is(err, competitiondomain.ErrCompetitionNotFound):
		return competitionevents.ReasonCompetitionNotFound, nil, true
	case errors.Is(err, competitiondomain.ErrPhaseNotFound):
		return competitionevents.ReasonPhaseNotFound, nil, true
	case errors.Is(err, competitiondomain.ErrRoundNotFound):
		return competitionevents.ReasonRoundNotFound, nil, true
	case errors.Is(err, competitiondomain.ErrRoundNotEmpty):
		return competitionevents.ReasonRoundNotEmpty, nil, true
	}
	return "", nil, false
}
