package main

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"fincontrol/internal/amqp"
	"fincontrol/internal/cli"
	"fincontrol/internal/log"
	gsheet "fincontrol/internal/sheets/google"
	"fincontrol/internal/storage"
	"fincontrol/internal/worker"
)

var version = "dev"

func main() {
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger("info", log.ComponentWorker)
	cfg, err := cli.LoadAndValidateWorkerConfig()
	if err != nil {
		cli.Fatal(bootLogger, "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentWorker)
	logger.Info("Starting fincontrol-worker", "version", version)

	flushSentry, err := cli.InitSentry(cfg, version)
	if err != nil {
		logger.Warn("Sentry disabled", log.FieldError, err.Error())
	}
	defer flushSentry()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize SQLite repository", err)
	}
	defer repo.Close()

	mirror, err := gsheet.New(context.Background(), gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsFile: cfg.GoogleCredentialsFile,
		CredentialsJSON: cfg.GoogleCredentialsJSON,
		OAuthClientFile: cfg.GoogleOAuthClientFile,
		OAuthClientJSON: cfg.GoogleOAuthClientJSON,
		OAuthTokenFile:  cfg.GoogleOAuthTokenFile,
		RetryMax:        3,
	})
	if err != nil {
		cli.Fatal(logger, "Failed to initialize Google Sheets mirror", err)
	}

	amqpClient, err := amqp.NewClient(context.Background(), cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer amqpClient.Close()

	ctx, done := cli.GracefulShutdown(logger, 15*time.Second, nil)

	syncWorker := worker.NewSyncWorker(repo, mirror, cfg.SyncBatchSize, cfg.SyncInterval)

	// Rows written while the worker was down are still pending.
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Startup sync check failed", log.FieldError, err.Error())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeChanges(gctx, func(ctx context.Context, msg *amqp.ChangeMessage) error {
			return syncWorker.HandleChange(ctx, msg.Event())
		})
	})
	g.Go(func() error {
		return syncWorker.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		cli.Fatal(logger, "Worker stopped", err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
