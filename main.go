package main

import (
	"os"
	"os/signal"
	"syscall"

	"fulfillment/internal/app"
	"fulfillment/internal/config"
	"fulfillment/pkg/logger"
	"fulfillment/pkg/rabbitmq"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load(viper.New())
	if err != nil {
		logger.Setup("info", nil)
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Setup(cfg.LogLevel, nil)

	// --- Application ---
	application, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build application")
	}

	// --- RabbitMQ consumer ---
	// Events published by this instance are read back and logged.
	if application.MQ != nil {
		if err := application.MQ.Consume(rabbitmq.LogDelivery); err != nil {
			log.Error().Err(err).Msg("failed to start RabbitMQ consumer")
		}
	}

	// --- HTTP server ---
	go func() {
		log.Info().Str("port", cfg.AppPort).Str("driver", cfg.DatabaseDriver).Msg("starting server")
		if err := application.Fiber.Listen(cfg.AppPort); err != nil {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	if err := application.Shutdown(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("server gracefully stopped")
}
