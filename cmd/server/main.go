package main

import (
	"context"
	"fmt"

	"github.com/tripwell/trippy-server/internal/config"
	httphandler "github.com/tripwell/trippy-server/internal/handler/http"
	"github.com/tripwell/trippy-server/internal/logger"
	"github.com/tripwell/trippy-server/internal/mailer"
	"github.com/tripwell/trippy-server/internal/server"
	"github.com/tripwell/trippy-server/internal/service"
	"github.com/tripwell/trippy-server/internal/store"
	"github.com/tripwell/trippy-server/internal/workers"
	"github.com/tripwell/trippy-server/migrations"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("trippy-server")

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
	defer db.Close()

	if err := migrations.Migrate(db.DB); err != nil {
		log.Fatal().Err(err).Msg("error applying migrations")
	}

	repositories := store.NewRepositories(db, log)
	mail := mailer.New(cfg.Mail, log)
	services := service.NewServices(repositories, mail, *cfg, log)

	handler := httphandler.NewHandler(services, *cfg, log)

	srv, err := server.NewServer(handler.Init(), cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	janitor := workers.NewResetTokenJanitor(repositories.UserRepository, cfg.Workers.CleanupInterval, log)
	workers.NewWorkers(janitor).Run(ctx)

	if err := srv.Run(); err != nil {
		log.Fatal().Err(err).Msg("error running server")
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
