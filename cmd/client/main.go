package main

import (
	"context"
	"fmt"

	"github.com/mlevkov/lockstep/internal/adapter"
	"github.com/mlevkov/lockstep/internal/client"
	"github.com/mlevkov/lockstep/internal/config"
	"github.com/mlevkov/lockstep/internal/logger"
	"github.com/mlevkov/lockstep/internal/service"
	"github.com/mlevkov/lockstep/internal/store"
	"github.com/mlevkov/lockstep/internal/utils"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

// syncTables are the logical tables this installation synchronizes. Payloads
// are shipped as-is; the engine stays agnostic of their shape.
var syncTables = []service.Table{
	{Name: "notes"},
	{Name: "tasks"},
}

func main() {
	printBuildInfo()

	log := logger.NewLogger("lockstep-client")
	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	storages, err := store.NewClientStorages(cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create local storage")
	}

	tokens := adapter.NewStaticTokenProvider("")
	transport := adapter.NewHTTPSyncTransport(cfg.Adapter, tokens)
	authClient := adapter.NewHTTPAuthClient(cfg.Adapter)

	engine, err := service.NewSyncEngine(context.Background(), service.EngineConfig{
		Records:   storages.Records,
		KV:        storages.KV,
		Transport: transport,
		Tables:    syncTables,
		IDs:       utils.NewUUIDGenerator(),
		Probe:     adapter.NewDialProbe(cfg.Adapter),
		Logger:    log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("create sync engine")
	}

	app, err := client.NewApp(engine, authClient, tokens, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init client app error")
	}

	if err = app.Run(); err != nil {
		log.Fatal().Err(err).Msg("client run error")
	}
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
