package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"gastos/internal/amqp"
	"gastos/internal/cli"
	"gastos/internal/sheets"
	"gastos/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting gastos-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for the export worker")
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}

	store := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer store.Close()

	sheetsClient, err := sheets.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	exportWorker := worker.NewExportWorker(store, sheetsClient, cfg.SyncBatchSize)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	// Recover anything that went unsynced while the worker was down.
	if err := exportWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Startup sync check failed", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeWithReconnect(gctx, cfg.AMQPURL,
			exportWorker.HandleSyncMessage, exportWorker.HandleDeleteMessage)
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if err := exportWorker.ProcessPendingTransactions(gctx); err != nil {
					logger.Error("Periodic sync failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
