package competitionrouter

import (
	"context"
	"log/slog"

	competitionevents "github.com/Black-And-White-Club/competition-engine/app/events/competition"
	competitionhandlers "github.com/Black-And-White-Club/competition-engine/app/modules/competition/infrastructure/handlers"
	"github.com/Black-And-White-Club/competition-engine/pkg/eventbus"
	"github.com/Black-And-White-Club/competition-engine/pkg/handlerwrapper"
	"github.com/Black-And-White-Club/competition-engine/pkg/observability/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// CompetitionRouter handles Watermill handler registration for competition events.
type CompetitionRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	busMetrics metrics.EventBusMetrics
	tracer     trace.Tracer
}

// NewCompetitionRouter creates a new CompetitionRouter.
func NewCompetitionRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	busMetrics metrics.EventBusMetrics,
	tracer trace.Tracer,
) *CompetitionRouter {
	return &CompetitionRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		busMetrics: busMetrics,
		tracer:     tracer,
	}
}

// Configure sets up the router with handlers.
func (r *CompetitionRouter) Configure(_ context.Context, handlers competitionhandlers.Handlers) error {
	r.registerHandlers(handlers)
	return nil
}

// handlerDeps bundles dependencies for handler registration.
type handlerDeps struct {
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	logger     *slog.Logger
	tracer     trace.Tracer
	busMetrics metrics.EventBusMetrics
}

// registerHandlers wires NATS topics to handler methods.
func (r *CompetitionRouter) registerHandlers(handlers competitionhandlers.Handlers) {
	deps := handlerDeps{
		router:     r.router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
		busMetrics: r.busMetrics,
	}

	registerHandler(deps, competitionevents.BracketUpsertRequestedV1, handlers.HandleBracketUpsertRequested)
	registerHandler(deps, competitionevents.RoundAssignRequestedV1, handlers.HandleRoundAssignRequested)
	registerHandler(deps, competitionevents.RoundUnassignRequestedV1, handlers.HandleRoundUnassignRequested)

	r.logger.Info("Competition module handlers registered successfully")
}

// registerHandler is a generic function for type-safe Watermill handler registration.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "competition." + topic

	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"",
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			deps.busMetrics,
			handler,
		),
	)
}

// Close shuts down the router.
func (r *CompetitionRouter) Close() error {
	return r.router.Close()
}
