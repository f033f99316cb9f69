package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Black-And-White-Club/competition-engine/app"
	"github.com/Black-And-White-Club/competition-engine/config"
	"github.com/Black-And-White-Club/competition-engine/db/bundb"
	"github.com/Black-And-White-Club/competition-engine/pkg/observability"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	migrate := flag.Bool("migrate", false, "Apply database and queue migrations before starting")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	obs, err := observability.Init(ctx, config.ToObsConfig(cfg))
	if err != nil {
		log.Fatalf("Failed to initialize observability: %v", err)
	}
	logger := obs.Provider.Logger
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to flush telemetry", slog.Any("error", err))
		}
	}()

	application := &app.App{}
	if err := application.Initialize(ctx, cfg, obs); err != nil {
		logger.Error("Failed to initialize application", slog.Any("error", err))
		os.Exit(1)
	}
	defer application.Close()

	if *migrate {
		if err := runMigrations(ctx, application, cfg); err != nil {
			logger.Error("Failed to apply migrations", slog.Any("error", err))
			return
		}
	}

	logger.Info("Competition engine starting")
	if err := application.Run(ctx); err != nil {
		logger.Error("Competition engine stopped with error", slog.Any("error", err))
		return
	}
	logger.Info("Competition engine stopped")
}

func runMigrations(ctx context.Context, application *app.App, cfg *config.Config) error {
	if err := bundb.MigrateAll(ctx, application.DB); err != nil {
		return err
	}
	if cfg.Stats.ReplayEnabled {
		if _, err := bundb.MigrateRiver(ctx, cfg.Postgres.DSN); err != nil {
			return err
		}
	}
	return nil
}
