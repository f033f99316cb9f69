package stats

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	statsservice "github.com/Black-And-White-Club/competition-engine/app/modules/stats/application"
	statshandlers "github.com/Black-And-White-Club/competition-engine/app/modules/stats/infrastructure/handlers"
	statsqueue "github.com/Black-And-White-Club/competition-engine/app/modules/stats/infrastructure/queue"
	statsdb "github.com/Black-And-White-Club/competition-engine/app/modules/stats/infrastructure/repositories"
	statsrouter "github.com/Black-And-White-Club/competition-engine/app/modules/stats/infrastructure/router"
	"github.com/Black-And-White-Club/competition-engine/config"
	"github.com/Black-And-White-Club/competition-engine/pkg/eventbus"
	"github.com/Black-And-White-Club/competition-engine/pkg/httpmiddleware"
	"github.com/Black-And-White-Club/competition-engine/pkg/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"golang.org/x/time/rate"
)

// Module represents the stats module.
type Module struct {
	StatsService  statsservice.Service
	StatsRouter   *statsrouter.StatsRouter
	QueueService  statsqueue.QueueService
	observability observability.Observability

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	closed     bool
}

// NewStatsModule creates and initializes a new stats module. The replay
// queue is only built when cfg.Stats.ReplayEnabled is set.
func NewStatsModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	eventBus eventbus.EventBus,
	router *message.Router,
	routerCtx context.Context,
	db *bun.DB,
	httpRouter chi.Router,
) (*Module, error) {
	logger := obs.Provider.Logger
	tracer := obs.Registry.Tracer

	logger.InfoContext(ctx, "stats.NewStatsModule initializing")

	// 1. Initialize Repository
	repo := statsdb.NewRepository(db)

	// 2. Initialize Service
	service := statsservice.NewStatsService(repo, logger, obs.Registry.StatsMetrics, tracer, db, cfg.Stats.Deduplicate())

	// 3. Initialize handlers and the optional replay queue
	handlers := statshandlers.NewStatsHandlers(service, logger, tracer)

	var queue *statsqueue.Service
	if cfg.Stats.ReplayEnabled {
		q, err := statsqueue.NewService(ctx, db, logger, cfg.Postgres.DSN, obs.Registry.QueueMetrics, handlers, eventBus, statsqueue.Options{
			Delay:       cfg.Stats.ReplayDelay,
			MaxAttempts: cfg.Stats.ReplayMaxAttempts,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create stats replay queue: %w", err)
		}
		handlers.SetReplayScheduler(q)
		queue = q
	}

	// 4. Initialize Router
	statsRouter := statsrouter.NewStatsRouter(
		logger,
		router,
		eventBus,
		eventBus,
		obs.Registry.EventBusMetrics,
		tracer,
	)

	// 5. Configure the router with handlers
	if err := statsRouter.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure stats router: %w", err)
	}

	// 6. Register HTTP routes
	if httpRouter != nil {
		limiter := httpmiddleware.NewIPRateLimiter(rate.Limit(cfg.HTTP.RateLimit), cfg.HTTP.RateBurst)
		httpRouter.Route("/api/standings", func(r chi.Router) {
			r.Use(httpmiddleware.CORSMiddleware(cfg.HTTP.AllowedOrigins))
			r.Use(httpmiddleware.RateLimitMiddleware(limiter))
			statshandlers.RegisterRoutes(r, handlers)
		})
	}

	m := &Module{
		StatsService:  service,
		StatsRouter:   statsRouter,
		observability: obs,
	}
	if queue != nil {
		m.QueueService = queue
	}
	return m, nil
}

// Run starts the replay queue, if any, and blocks until ctx is done.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Provider.Logger
	logger.InfoContext(ctx, "Starting stats module")

	ctx, cancel := m.runContext(ctx)
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.QueueService != nil {
		if err := m.QueueService.Start(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to start stats replay queue", slog.Any("error", err))
		}
	}

	<-ctx.Done()
	logger.Info("Stats module goroutine stopped")
}

// Close shuts down the stats module.
func (m *Module) Close() error {
	logger := m.observability.Provider.Logger
	logger.Info("Stopping stats module")

	m.stop()

	if m.QueueService != nil {
		m.logPendingReplays()
		if err := m.QueueService.Stop(context.Background()); err != nil {
			logger.Error("Error stopping stats replay queue", slog.Any("error", err))
		}
	}

	if m.StatsRouter != nil {
		if err := m.StatsRouter.Close(); err != nil {
			logger.Error("Error closing StatsRouter from module", slog.Any("error", err))
			return fmt.Errorf("error closing StatsRouter: %w", err)
		}
	}

	logger.Info("Stats module stopped")
	return nil
}

// HealthCheck reports whether the replay queue, when enabled, can reach its
// tables.
func (m *Module) HealthCheck(ctx context.Context) error {
	if m.QueueService == nil {
		return nil
	}
	return m.QueueService.HealthCheck(ctx)
}

// logPendingReplays records the replays left behind for the next process.
func (m *Module) logPendingReplays() {
	logger := m.observability.Provider.Logger
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pending, err := m.QueueService.PendingReplays(ctx)
	if err != nil {
		logger.Warn("Could not list pending replays", slog.Any("error", err))
		return
	}
	if len(pending) == 0 {
		return
	}
	eventIDs := make([]string, len(pending))
	for i, job := range pending {
		eventIDs[i] = job.EventID
	}
	logger.Info("Replays pending at shutdown",
		slog.Int("count", len(pending)),
		slog.Any("event_ids", eventIDs),
	)
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
