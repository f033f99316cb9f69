// Package app assembles the engine process: database, event bus, message
// router, HTTP API and the competition and stats modules.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/competition-engine/app/modules/competition"
	"github.com/Black-And-White-Club/competition-engine/app/modules/stats"
	"github.com/Black-And-White-Club/competition-engine/config"
	"github.com/Black-And-White-Club/competition-engine/db/bundb"
	"github.com/Black-And-White-Club/competition-engine/pkg/eventbus"
	"github.com/Black-And-White-Club/competition-engine/pkg/jwt"
	"github.com/Black-And-White-Club/competition-engine/pkg/observability"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"
)

// Streams are the JetStream streams the engine publishes to and consumes from.
var Streams = []string{"competition", "match", "stats"}

// App holds every long-lived component of the process.
type App struct {
	Config        *config.Config
	Observability observability.Observability
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Router        *message.Router
	HTTP          *http.Server
	Metrics       *http.Server

	CompetitionModule *competition.Module
	StatsModule       *stats.Module

	wg sync.WaitGroup
}

// Initialize builds every component. On error the components created so far
// are released.
func (app *App) Initialize(ctx context.Context, cfg *config.Config, obs observability.Observability) (err error) {
	app.Config = cfg
	app.Observability = obs
	logger := obs.Provider.Logger

	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	if cfg.JWT.Secret == "" {
		return errors.New("jwt secret is required")
	}

	app.DB, err = bundb.NewBunDB(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	app.EventBus, err = eventbus.NewEventBus(
		ctx,
		cfg.NATS.URL,
		logger,
		"competition-engine",
		obs.Registry.EventBusMetrics,
		obs.Registry.Tracer,
		eventbus.WithNKeySeed(cfg.NATS.NKeySeed),
	)
	if err != nil {
		return fmt.Errorf("failed to create event bus: %w", err)
	}

	for _, stream := range Streams {
		if err := app.EventBus.CreateStream(ctx, stream); err != nil {
			return fmt.Errorf("failed to create stream %s: %w", stream, err)
		}
	}

	app.Router, err = newMessageRouter(logger, obs)
	if err != nil {
		return err
	}

	httpRouter := chi.NewRouter()
	httpRouter.Use(chimiddleware.RequestID, chimiddleware.RealIP, chimiddleware.Recoverer)
	httpRouter.Get("/healthz", app.healthz)

	tokens := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.DefaultTTL)

	app.CompetitionModule, err = competition.NewCompetitionModule(ctx, cfg, obs, app.EventBus, app.Router, ctx, app.DB, httpRouter, tokens)
	if err != nil {
		return fmt.Errorf("failed to initialize competition module: %w", err)
	}

	app.StatsModule, err = stats.NewStatsModule(ctx, cfg, obs, app.EventBus, app.Router, ctx, app.DB, httpRouter)
	if err != nil {
		return fmt.Errorf("failed to initialize stats module: %w", err)
	}

	app.HTTP = &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.Observability.MetricsAddress != "" {
		mux := chi.NewRouter()
		mux.Handle("/metrics", obs.Provider.MetricsHandler())
		app.Metrics = &http.Server{
			Addr:              cfg.Observability.MetricsAddress,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	logger.InfoContext(ctx, "Application initialized",
		slog.String("http_address", cfg.HTTP.Address),
		slog.String("metrics_address", cfg.Observability.MetricsAddress),
	)
	return nil
}

func newMessageRouter(logger *slog.Logger, obs observability.Observability) (*message.Router, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 15 * time.Second}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}

	builder := metrics.NewPrometheusMetricsBuilder(obs.Provider.Prometheus, "competition_engine", "router")
	builder.AddPrometheusRouterMetrics(router)

	router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			Logger:          wmLogger,
		}.Middleware,
	)
	return router, nil
}

// Run serves until ctx is cancelled or a component fails.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Provider.Logger
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := app.Router.Run(ctx); err != nil {
			return fmt.Errorf("message router stopped: %w", err)
		}
		return nil
	})

	app.wg.Add(2)
	go app.CompetitionModule.Run(ctx, &app.wg)
	go app.StatsModule.Run(ctx, &app.wg)

	g.Go(func() error { return serve(ctx, app.HTTP, logger) })
	if app.Metrics != nil {
		g.Go(func() error { return serve(ctx, app.Metrics, logger) })
	}

	err := g.Wait()
	app.wg.Wait()
	return err
}

func serve(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "HTTP server listening", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server %s: %w", srv.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (app *App) healthz(w http.ResponseWriter, r *http.Request) {
	if err := app.DB.PingContext(r.Context()); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	if app.StatsModule != nil {
		if err := app.StatsModule.HealthCheck(r.Context()); err != nil {
			http.Error(w, "replay queue unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Close releases every component in reverse order of construction.
func (app *App) Close() {
	logger := app.Observability.Provider.Logger

	if app.StatsModule != nil {
		if err := app.StatsModule.Close(); err != nil {
			logger.Error("Error closing stats module", slog.Any("error", err))
		}
	}
	if app.CompetitionModule != nil {
		if err := app.CompetitionModule.Close(); err != nil {
			logger.Error("Error closing competition module", slog.Any("error", err))
		}
	}
	if app.Router != nil {
		if err := app.Router.Close(); err != nil {
			logger.Error("Error closing message router", slog.Any("error", err))
		}
	}
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			logger.Error("Error closing event bus", slog.Any("error", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			logger.Error("Error closing database", slog.Any("error", err))
		}
	}
}
