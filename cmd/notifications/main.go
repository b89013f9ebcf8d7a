package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"product-catalog/internal/config"
	"product-catalog/internal/notifications"
	"product-catalog/internal/products"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Str("service", "notifications").Logger()

	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadNotifications()
	if err != nil {
		log.Error().Err(err).Msg("load config")
		return 1
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Error().Err(err).Msg("connect rabbitmq")
		return 1
	}
	defer conn.Close()

	consumer, err := notifications.NewConsumer(conn, products.EventsQueue, log.Logger, cfg.LowStockThreshold)
	if err != nil {
		log.Error().Err(err).Msg("init consumer")
		return 1
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("queue", products.EventsQueue).
			Strs("events", notifications.HandledEvents()).
			Int64("low_stock_threshold", cfg.LowStockThreshold).
			Msg("notifications service started")
		errCh <- consumer.Listen(ctx)
	}()

	waitForDrain := false
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
		waitForDrain = true
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("consumer failed")
			return 1
		}
	}

	if waitForDrain {
		shutdownDeadline := time.NewTimer(cfg.ShutdownTimeout)
		defer shutdownDeadline.Stop()
		select {
		case err := <-errCh:
			if err != nil {
				log.Error().Err(err).Msg("consumer stop failed")
				return 1
			}
		case <-shutdownDeadline.C:
			log.Warn().Msg("consumer shutdown timeout reached")
		}
	}

	log.Info().Msg("notifications service stopped")
	return 0
}
