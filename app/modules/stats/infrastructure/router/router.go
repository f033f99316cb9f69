package statsrouter

import (
	"context"
	"log/slog"

	matchevents "github.com/Black-And-White-Club/competition-engine/app/events/match"
	statshandlers "github.com/Black-And-White-Club/competition-engine/app/modules/stats/infrastructure/handlers"
	"github.com/Black-And-White-Club/competition-engine/pkg/eventbus"
	"github.com/Black-And-White-Club/competition-engine/pkg/handlerwrapper"
	"github.com/Black-And-White-Club/competition-engine/pkg/observability/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// StatsRouter handles Watermill handler registration for match events.
type StatsRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	busMetrics metrics.EventBusMetrics
	tracer     trace.Tracer
}

// NewStatsRouter creates a new StatsRouter.
func NewStatsRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	busMetrics metrics.EventBusMetrics,
	tracer trace.Tracer,
) *StatsRouter {
	return &StatsRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		busMetrics: busMetrics,
		tracer:     tracer,
	}
}

// Configure sets up the router with handlers.
func (r *StatsRouter) Configure(_ context.Context, handlers statshandlers.Handlers) error {
	handlerName := "stats." + matchevents.MatchEventV1

	// The match stream is consumed by one handler, so ordering per
	// subscription is preserved.
	r.router.AddHandler(
		handlerName,
		matchevents.MatchEventV1,
		r.subscriber,
		"",
		r.publisher,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			r.logger,
			r.tracer,
			r.busMetrics,
			handlers.HandleMatchEvent,
		),
	)

	r.logger.Info("Stats module handlers registered successfully")
	return nil
}

// Close shuts down the router.
func (r *StatsRouter) Close() error {
	return r.router.Close()
}
