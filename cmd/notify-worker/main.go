package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"cardtrack/internal/amqp"
	"cardtrack/internal/config"
	applog "cardtrack/internal/log"
)

// notify-worker drains the notification queue and delivers each message to
// the local log. It stands in for richer delivery channels (mail, push); the
// queue contract is the same either way.
func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := applog.Setup(slog.LevelInfo)

	logger.Info("Starting notify-worker")

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for notify-worker")
		os.Exit(1)
	}

	// Stop consuming on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := amqp.ConsumeNotificationsWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, func(msg *amqp.NotificationMessage) error {
		switch msg.Severity {
		case "error":
			logger.Error(msg.Title, "message", msg.Message, "at", msg.Timestamp)
		case "warning":
			logger.Warn(msg.Title, "message", msg.Message, "at", msg.Timestamp)
		default:
			logger.Info(msg.Title, "message", msg.Message, "severity", msg.Severity, "at", msg.Timestamp)
		}
		return nil
	})
	if err != nil && err != context.Canceled {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	logger.Info("notify-worker stopped gracefully")
}
