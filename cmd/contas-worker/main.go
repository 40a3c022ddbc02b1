package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"contas/internal/cli"
	"contas/internal/events"
	"contas/internal/export"
	googleexport "contas/internal/export/google"
	exportmem "contas/internal/export/memory"
	applog "contas/internal/log"
	"contas/internal/services"
	"contas/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting contas-worker")

	store, closeStore := cli.OpenStore(logger, cfg)
	defer closeStore()

	var sink export.SummaryWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := googleexport.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		sink = client
		logger.Info("Google Sheets export ready", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		sink = exportmem.New()
		logger.Info("Google Sheets disabled, exporting to memory sink")
	}

	amqpClient, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	// The worker only reads, so it never publishes events itself.
	ledger := services.NewLedger(store, nil, cfg.SummaryPaidBasis)
	exporter := worker.NewExportWorker(ledger, store, sink)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Backstop for events lost while the worker was down.
	if err := exporter.ExportCurrentMonth(ctx, time.Now()); err != nil {
		logger.Error("Startup export failed", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.Consume(ctx, func(event *events.LedgerEvent) error {
			return exporter.HandleEvent(ctx, event)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.ExportInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := exporter.ExportCurrentMonth(ctx, time.Now()); err != nil {
					logger.Error("Periodic export failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
