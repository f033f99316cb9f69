// Command websocket serves live competition updates without running the
// modules. It relays bracket, round and stats events from the bus to
// websocket rooms, so it can be scaled apart from the engine.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	competitionws "github.com/Black-And-White-Club/competition-engine/app/modules/competition/infrastructure/websocket"
	"github.com/Black-And-White-Club/competition-engine/config"
	"github.com/Black-And-White-Club/competition-engine/pkg/attr"
	"github.com/Black-And-White-Club/competition-engine/pkg/eventbus"
	"github.com/Black-And-White-Club/competition-engine/pkg/observability"
	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	obsConfig := config.ToObsConfig(cfg)
	obsConfig.ServiceName = "competition-engine-websocket"
	obs, err := observability.Init(ctx, obsConfig)
	if err != nil {
		log.Fatalf("Failed to initialize observability: %v", err)
	}

	logger := obs.Provider.Logger
	logger.Info("Starting WebSocket server")

	// Every replica needs its own consumers so all of them see every update.
	hostname, _ := os.Hostname()
	eventBus, err := eventbus.NewEventBus(
		ctx,
		cfg.NATS.URL,
		logger,
		"websocket-"+hostname,
		obs.Registry.EventBusMetrics,
		obs.Registry.Tracer,
		eventbus.WithNKeySeed(cfg.NATS.NKeySeed),
	)
	if err != nil {
		log.Fatalf("Failed to create event bus: %v", err)
	}
	defer eventBus.Close()

	hub := competitionws.NewHub(logger, cfg.HTTP.AllowedOrigins)
	relay := competitionws.NewRelay(hub, eventBus, logger)

	r := chi.NewRouter()
	r.Get("/ws/competitions/{competitionID}", hub.ServeWS)
	srv := &http.Server{Addr: cfg.HTTP.Address, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})
	g.Go(func() error { return relay.Run(ctx) })
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	logger.Info("WebSocket server started", attr.String("address", cfg.HTTP.Address))

	if err := g.Wait(); err != nil {
		logger.Error("WebSocket server stopped with error", attr.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = obs.Shutdown(shutdownCtx)
	logger.Info("WebSocket server stopped")
}
