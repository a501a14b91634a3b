package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"gastos/internal/amqp"
	"gastos/internal/cli"
	apphttp "gastos/internal/http"
	"gastos/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	cfg := cli.LoadAndValidateConfig(logger)

	store := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer store.Close()

	// The sync queue is optional: without a broker transactions stay flagged
	// as pending and the worker's backup scan picks them up later.
	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		events = amqpClient
		logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	ledger := services.NewLedgerService(store, events)

	srv := apphttp.NewServer(":"+cfg.Port, ledger, store)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting gastos server", "port", cfg.Port, "db_path", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
