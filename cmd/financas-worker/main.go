package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"financas/internal/amqp"
	"financas/internal/cli"
	"financas/internal/config"
	"financas/internal/core"
	applog "financas/internal/log"
	gsheet "financas/internal/sheets/google"
	"financas/internal/worker"
)

func main() {
	backfill := flag.Bool("backfill", false, "append every stored transaction to the spreadsheet and exit")
	flag.Parse()

	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig((*config.Config).ValidateWorker)
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)
	logger.Info("Starting financas-worker", "backfill", *backfill)

	ctx, stop := cli.SignalContext()
	defer stop()

	creds, err := cfg.ServiceAccountJSON()
	if err != nil {
		logger.Error("Failed to load Google credentials", "error", err)
		os.Exit(1)
	}
	sheetsClient, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		LedgerSheet:     cfg.GoogleSheetName,
		AuditSheet:      cfg.GoogleAuditSheetName,
		CredentialsJSON: creds,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	mirror := worker.NewMirrorWorker(sheetsClient, cfg.Location())

	if *backfill {
		res := cli.InitBackend(ctx, logger.Logger, cfg)
		defer func() { _ = res.Cleanup() }()

		n, err := mirror.Backfill(ctx, res.Repository, core.All)
		if err != nil {
			logger.Error("Backfill failed", "error", err, "appended", n)
			os.Exit(1)
		}
		logger.Info("Backfill complete", "appended", n)
		return
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	logger.Info("Consuming ledger events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	if err := amqpClient.Consume(ctx, mirror.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
