package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/storyweave/linksync/internal/admin"
	"github.com/storyweave/linksync/internal/audit"
	"github.com/storyweave/linksync/internal/config"
	"github.com/storyweave/linksync/internal/database"
	"github.com/storyweave/linksync/internal/database/postgres"
	"github.com/storyweave/linksync/internal/domain"
	"github.com/storyweave/linksync/internal/linksync"
	"github.com/storyweave/linksync/internal/provider"
	"github.com/storyweave/linksync/internal/repository"
	"github.com/storyweave/linksync/internal/server"
	"github.com/storyweave/linksync/internal/stories"
	"github.com/storyweave/linksync/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	initLogger(cfg)

	pool, err := database.NewPool(context.Background(), cfg.GetDBConnString(), database.DefaultPoolConfig())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	stateRepo := postgres.NewRuntimeStateRepository(pool)
	linkRepo := postgres.NewLinkSyncRepository(pool)

	linkService, err := linksync.NewService(linkRepo)
	if err != nil {
		log.Fatalf("Failed to create link sync service: %v", err)
	}

	sink := buildAuditSink(cfg)

	registry := provider.NewRegistry()
	registerProviders(registry)

	workers := buildWorkers(cfg, stateRepo, linkService, registry, sink)
	runner := worker.NewRunner(workers...)
	runner.Start()

	adminHandler := admin.NewHandler(stateRepo, linkService, workers)
	srv := server.NewServer(cfg.Port, cfg.APIKey, pool, adminHandler)

	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server failed", "error", err)
		}
	}()
	slog.Info("Service started", "port", cfg.Port, "workers", len(workers))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("Shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := runner.Shutdown(ctx); err != nil {
		slog.Warn("Worker runner shutdown incomplete", "error", err)
	}
	if err := srv.Shutdown(ctx); err != nil {
		slog.Warn("HTTP server shutdown incomplete", "error", err)
	}
}

// buildWorkers constructs one sync worker per provider kind that has both a
// config section and a registered fetcher
func buildWorkers(cfg *config.Config, state repository.RuntimeState, links linksync.Service, registry *provider.Registry, sink audit.Sink) []*worker.SyncWorker {
	var workers []*worker.SyncWorker
	for _, kind := range domain.ProviderKinds {
		settings, ok := cfg.Workers[kind]
		if !ok {
			continue
		}

		fetcher, ok := registry.Fetcher(kind)
		if !ok {
			slog.Warn("No provider client registered, worker not started", "kind", kind)
			continue
		}

		reconciler := linksync.NewReconciler(links, fetcher, registry.TokenRefresher(kind))
		w, err := worker.NewSyncWorker(kind, worker.Config{
			Enabled:             settings.Enabled,
			CheckInterval:       settings.CheckInterval,
			FullSyncInterval:    settings.FullSyncInterval,
			FullRefetchInterval: settings.FullRefetchInterval,
			BatchSize:           settings.BatchSize,
		}, state, reconciler, stories.NopProcessor{}, sink)
		if err != nil {
			log.Fatalf("Failed to create %s worker: %v", kind, err)
		}
		workers = append(workers, w)
	}
	return workers
}

// buildAuditSink composes the log sink with the optional Discord notifier
func buildAuditSink(cfg *config.Config) audit.Sink {
	sinks := audit.MultiSink{audit.NewSlogSink()}
	if cfg.DiscordEnabled() {
		discord, err := audit.NewDiscordSink(cfg.DiscordBotToken, cfg.DiscordOpsChannelID)
		if err != nil {
			slog.Warn("Failed to create Discord audit sink", "error", err)
		} else {
			sinks = append(sinks, discord)
		}
	}
	return sinks
}
