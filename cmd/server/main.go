package main

import (
	"context"
	"fmt"

	"github.com/declanlscott/printdesk-sub002/internal/access"
	"github.com/declanlscott/printdesk-sub002/internal/config"
	handler "github.com/declanlscott/printdesk-sub002/internal/handler/http"
	"github.com/declanlscott/printdesk-sub002/internal/logger"
	"github.com/declanlscott/printdesk-sub002/internal/mutation"
	"github.com/declanlscott/printdesk-sub002/internal/realtime"
	"github.com/declanlscott/printdesk-sub002/internal/server"
	"github.com/declanlscott/printdesk-sub002/internal/store"
	"github.com/declanlscott/printdesk-sub002/internal/sync"
	"github.com/declanlscott/printdesk-sub002/internal/workers"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("sync-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := store.NewConnectPostgres(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("error applying migrations")
	}

	groups := store.NewClientGroupRepository(log)
	clients := store.NewClientRepository(log)
	views := store.NewClientViewRepository(log)
	entries := store.NewClientViewEntryRepository(log)
	retention := store.NewRetentionRepository(log)

	checker := access.NewRoleChecker()
	differ := sync.NewDifferentiator(checker, cfg.Sync.RowModificationLimit, log,
		store.NewOrderResolver(),
		store.NewProductResolver(),
		store.NewAnnouncementResolver(),
	)

	registry := mutation.NewRegistry(log)
	mutation.RegisterOrderMutations(registry)
	mutation.RegisterAnnouncementMutations(registry)

	hub := realtime.NewHub(log)

	puller := sync.NewPuller(db, groups, clients, views, entries, differ, log)
	pusher := sync.NewPusher(db, groups, clients, registry, hub, log)

	workers.NewWorkers(
		workers.NewRetention(db, retention, cfg.Sync, logger.NewLogger("retention-worker")),
	).Run(ctx)

	handlers := handler.NewHandler(puller, pusher, hub, cfg.App, log)
	srv, err := server.NewServer(handlers.Init(), cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
