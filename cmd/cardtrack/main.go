package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cardtrack/internal/amqp"
	"cardtrack/internal/config"
	"cardtrack/internal/core"
	"cardtrack/internal/httpapi"
	applog "cardtrack/internal/log"
	"cardtrack/internal/notify"
	"cardtrack/internal/prefs"
	"cardtrack/internal/remote"
	"cardtrack/internal/remote/apps"
	"cardtrack/internal/remote/gsheets"
	"cardtrack/internal/remote/memory"
	"cardtrack/internal/session"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := applog.Setup(slog.LevelInfo)

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Notification channel: local log by default, AMQP bus when configured.
	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		notifier = amqp.NewBusNotifier(amqpClient)
		logger.Info("AMQP notification bus initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	busy := remote.NewBusyFlag()

	// Choose remote store gateway (default: memory).
	var gw remote.Invoker
	switch cfg.GatewayBackend {
	case "apps":
		gw = apps.New(cfg.GatewayURL, cfg.GatewayTimeout, busy, notifier)
		logger.Info("Initialized apps gateway", "endpoint", cfg.GatewayURL, "timeout", cfg.GatewayTimeout)
	case "sheets":
		cli, err := gsheets.NewFromEnv(context.Background(), busy, notifier)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets gateway", "error", err)
			os.Exit(1)
		}
		gw = cli
		logger.Info("Initialized Google Sheets gateway", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	default:
		mem := memory.New([]core.Card{}, []core.Transaction{})
		mem.SetNotifier(notifier)
		mem.SetBusy(busy)
		gw = mem
		logger.Info("Initialized memory gateway")
	}

	// Display preferences live beside the binary, not in the remote store.
	prefStore, err := prefs.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open preferences store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer prefStore.Close()

	sess := session.New(gw, busy, session.Options{Notifier: notifier})
	sess.Start(context.Background())

	srv := httpapi.NewServer(":"+cfg.Port, sess, prefStore)
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting cardtrack server", "port", cfg.Port, "backend", cfg.GatewayBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
