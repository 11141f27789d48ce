package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"ricevute/internal/amqp"
	"ricevute/internal/cli"
	"ricevute/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	logger.Info("Starting ricevute-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the sync worker")
		os.Exit(1)
	}
	if cfg.RemoteBackend == "none" {
		logger.Error("The sync worker needs a remote backend, set REMOTE_BACKEND to drive or memory")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree := cli.BuildRemoteTree(ctx, logger, cfg)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(tree, cfg.SQLiteDBPath, cfg.RemoteDBFileName)

	if err := syncWorker.MirrorDatabaseOnStartup(ctx); err != nil {
		logger.Error("Startup database mirror failed", "error", err)
		// Continue; the next handled message retries the mirror.
	}

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, cancel)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeReceiptSync(gctx, func(msg *amqp.ReceiptSyncMessage) error {
			return syncWorker.HandleReceiptSync(gctx, msg)
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Worker stopped gracefully")
}
