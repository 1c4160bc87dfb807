// Command halld runs the hall administration service: the transactional hall
// store with its HTTP API, snapshot persistence, and metrics.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"hallcore/internal/core"
	"hallcore/internal/httpapi"
	"hallcore/internal/infra/photos"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "halld").Logger()

	store, err := core.OpenPersistentStore(core.NewDefaultRulesEngine())
	if err != nil {
		logger.Fatal().Err(err).Msg("open persistent store")
	}

	service := core.NewService(store,
		core.WithMetricsRecorder(core.NewExpvarMetricsRecorder("hall_service_metrics")))
	if service.SeedIfEmpty(context.Background()) {
		logger.Info().Msg("empty store, installed seed tree")
	}

	archive, err := photos.Open(context.Background())
	if err != nil {
		logger.Fatal().Err(err).Msg("open photo archive")
	}

	app := httpapi.New(httpapi.Config{
		Service: service,
		Photos:  archive,
		Logger:  logger,
	})

	addr := os.Getenv("HALLCORE_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("listening")
		if err := app.Listen(addr); err != nil {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}
