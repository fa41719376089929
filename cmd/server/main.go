package main

import (
	"fmt"

	"github.com/mlevkov/lockstep/internal/config"
	"github.com/mlevkov/lockstep/internal/handler"
	"github.com/mlevkov/lockstep/internal/logger"
	"github.com/mlevkov/lockstep/internal/server"
	"github.com/mlevkov/lockstep/internal/service"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("lockstep-server")
	cfg, err := config.GetServerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	authService := service.NewAuthService(cfg.App, log)
	syncBackend := service.NewSyncBackend(log)

	handlers, err := handler.NewHandlers(authService, syncBackend, cfg.HTTP, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.HTTP, log)
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
