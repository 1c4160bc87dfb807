// Command hallrelay exposes the emergency alert endpoint and forwards alerts
// to the supervisor's mailbox.
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"hallcore/internal/relay"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "hallrelay").Logger()

	mailer, err := relay.FromEnv(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("configure mailer")
	}

	app := relay.NewApp(mailer)

	addr := os.Getenv("RELAY_HTTP_ADDR")
	if addr == "" {
		addr = ":8090"
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
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}
