package competition

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	competitionservice "github.com/Black-And-White-Club/competition-engine/app/modules/competition/application"
	competitionhandlers "github.com/Black-And-White-Club/competition-engine/app/modules/competition/infrastructure/handlers"
	competitiondb "github.com/Black-And-White-Club/competition-engine/app/modules/competition/infrastructure/repositories"
	competitionrouter "github.com/Black-And-White-Club/competition-engine/app/modules/competition/infrastructure/router"
	competitionws "github.com/Black-And-White-Club/competition-engine/app/modules/competition/infrastructure/websocket"
	"github.com/Black-And-White-Club/competition-engine/config"
	"github.com/Black-And-White-Club/competition-engine/pkg/eventbus"
	"github.com/Black-And-White-Club/competition-engine/pkg/httpmiddleware"
	"github.com/Black-And-White-Club/competition-engine/pkg/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"golang.org/x/time/rate"
)

// Module represents the competition module.
type Module struct {
	CompetitionService competitionservice.Service
	CompetitionRouter  *competitionrouter.CompetitionRouter
	Hub                *competitionws.Hub
	observability      observability.Observability

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	closed     bool
}

// NewCompetitionModule creates and initializes a new competition module. When
// httpRouter is nil only the event handlers are registered.
func NewCompetitionModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	eventBus eventbus.EventBus,
	router *message.Router,
	routerCtx context.Context,
	db *bun.DB,
	httpRouter chi.Router,
	tokens httpmiddleware.TokenValidator,
) (*Module, error) {
	logger := obs.Provider.Logger
	tracer := obs.Registry.Tracer

	logger.InfoContext(ctx, "competition.NewCompetitionModule initializing")

	// 1. Initialize Repository
	repo := competitiondb.NewRepository(db)

	// 2. Initialize Service
	service := competitionservice.NewCompetitionService(repo, logger, obs.Registry.CompetitionMetrics, tracer, db)

	// 3. Initialize live update hub and handlers
	hub := competitionws.NewHub(logger, cfg.HTTP.AllowedOrigins)
	handlers := competitionhandlers.NewCompetitionHandlers(service, hub, eventBus, logger, tracer)

	// 4. Initialize Router
	competitionRouter := competitionrouter.NewCompetitionRouter(
		logger,
		router,
		eventBus,
		eventBus,
		obs.Registry.EventBusMetrics,
		tracer,
	)

	// 5. Configure the router with handlers
	if err := competitionRouter.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure competition router: %w", err)
	}

	// 6. Register HTTP routes
	if httpRouter != nil {
		limiter := httpmiddleware.NewIPRateLimiter(rate.Limit(cfg.HTTP.RateLimit), cfg.HTTP.RateBurst)
		httpRouter.Route("/api/competitions", func(r chi.Router) {
			r.Use(httpmiddleware.CORSMiddleware(cfg.HTTP.AllowedOrigins))
			r.Use(httpmiddleware.RateLimitMiddleware(limiter))
			competitionhandlers.RegisterRoutes(r, handlers, httpmiddleware.RequireOperator(tokens))
		})
		httpRouter.Get("/ws/competitions/{competitionID}", hub.ServeWS)
	}

	return &Module{
		CompetitionService: service,
		CompetitionRouter:  competitionRouter,
		Hub:                hub,
		observability:      obs,
	}, nil
}

// Run starts the competition module and its websocket hub.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Provider.Logger
	logger.InfoContext(ctx, "Starting competition module")

	ctx, cancel := m.runContext(ctx)
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	m.Hub.Run(ctx)
	logger.InfoContext(ctx, "Competition module goroutine stopped")
}

// Close shuts down the competition module.
func (m *Module) Close() error {
	logger := m.observability.Provider.Logger
	logger.Info("Stopping competition module")

	m.stop()

	if m.CompetitionRouter != nil {
		if err := m.CompetitionRouter.Close(); err != nil {
			logger.Error("Error closing CompetitionRouter from module", slog.Any("error", err))
			return fmt.Errorf("error closing CompetitionRouter: %w", err)
		}
	}

	logger.Info("Competition module stopped")
	return nil
}

// runContext derives the context Run works under. It is already cancelled
// when Close ran first.
func (m *Module) runContext(ctx context.Context) (context.Context, context.CancelFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctx, cancel := context.WithCancel(ctx)
	if m.closed {
		cancel()
	}
	m.cancelFunc = cancel
	return ctx, cancel
}

func (m *Module) stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
}
