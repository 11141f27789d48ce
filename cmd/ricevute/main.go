package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"ricevute/internal/amqp"
	"ricevute/internal/artifact"
	"ricevute/internal/cli"
	apphttp "ricevute/internal/http"
	"ricevute/internal/imaging"
	"ricevute/internal/interpret"
	applog "ricevute/internal/log"
	"ricevute/internal/ocr"
	"ricevute/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	logger.Info("Starting ricevute server")

	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree := cli.BuildRemoteTree(ctx, logger, cfg)
	cli.PullDatabaseIfAbsent(ctx, logger, tree, cfg.SQLiteDBPath, cfg.RemoteDBFileName)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	store, err := artifact.NewStore(cfg.ReceiptsDir)
	if err != nil {
		logger.Error("Failed to initialize receipts directory", "error", err, "dir", cfg.ReceiptsDir)
		os.Exit(1)
	}

	var classifier interpret.Classifier
	switch cfg.Classifier {
	case "search":
		classifier = interpret.NewSearchClassifier(cfg.SearchEndpoint, cfg.KeywordTable)
		logger.Info("Using search classifier", "endpoint", cfg.SearchEndpoint)
	default:
		classifier = interpret.NewKeywordClassifier(cfg.KeywordTable)
		logger.Info("Using keyword classifier", "keywords", len(cfg.KeywordTable))
	}

	var publisher services.SyncPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	ingestion := services.NewIngestionService(
		imaging.NewNormalizer(cfg.MaxImageWidth, cfg.MaxImageBytes),
		store,
		ocr.NewClient(cfg.OCREndpoint, cfg.OCRAPIKey, cfg.OCRLanguage),
		interpret.New(classifier),
		tree,
		publisher,
	)
	expenses := services.NewExpenseService(repo, cfg.DeductionRules, tree, cfg.RemoteDBFileName)

	appLogger := applog.New(applog.DefaultConfig()).WithComponent("http")
	srv := apphttp.NewServer(":"+cfg.Port, ingestion, expenses, appLogger)
	srv.ReadTimeout = 30 * time.Second
	srv.WriteTimeout = 60 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		if err := srv.Shutdown(stopCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting HTTP server", "port", cfg.Port, "remote_backend", cfg.RemoteBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
