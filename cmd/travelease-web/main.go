package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/travelease-dev/travelease/internal/apiclient"
	"github.com/travelease-dev/travelease/internal/authsession"
	"github.com/travelease-dev/travelease/internal/config"
	"github.com/travelease-dev/travelease/internal/logger"
	"github.com/travelease-dev/travelease/internal/session"
	"github.com/travelease-dev/travelease/internal/web"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	// Load configuration
	cfg, err := config.Load(config.WithDefaultLogLevel("info"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	kv, closer, err := session.Open(cfg.Session.Backend, cfg.Session.Path, logger.Component(log, "session"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open session store")
	}
	defer closer.Close()

	store := session.NewStore(kv)

	clientOpts := []apiclient.Option{apiclient.WithLogger(logger.Component(log, "apiclient"))}
	if cfg.API.Timeout > 0 {
		clientOpts = append(clientOpts, apiclient.WithTimeout(cfg.API.Timeout))
	}
	client := apiclient.New(cfg.API.URL, store, clientOpts...)

	manager := authsession.New(store, client, authsession.WithLogger(logger.Component(log, "session")))

	// Create server
	srv, err := web.New(manager, client, cfg.Web, logger.Component(log, "web"), version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create web UI")
	}

	log.Info().Str("version", version).Str("api", cfg.API.URL).Msg("Starting TravelEase web UI...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Serve until a shutdown signal arrives (this blocks)
	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Web UI stopped")
		closer.Close()
		os.Exit(1)
	}
}
