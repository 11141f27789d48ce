// Package cli provides common initialization shared by cmd/ricevute and
// cmd/ricevute-worker.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ricevute/internal/config"
	"ricevute/internal/remote"
	"ricevute/internal/remote/drive"
	"ricevute/internal/remote/memory"
	"ricevute/internal/storage"
)

// SetupLogger initializes structured logging with default settings and
// sets it as the process default.
func SetupLogger() *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Exits the process on validation failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite initializes a SQLite repository with the given path.
// Exits the process on failure.
func InitSQLite(logger *slog.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// BuildRemoteTree constructs the remote tree for the configured backend.
// Returns nil when the backend is "none"; exits on misconfiguration.
func BuildRemoteTree(ctx context.Context, logger *slog.Logger, cfg *config.Config) *remote.Tree {
	switch cfg.RemoteBackend {
	case "none":
		logger.Info("Remote sync disabled")
		return nil
	case "memory":
		logger.Info("Using in-memory remote store")
		return remote.NewTree(memory.New(), cfg.RemoteRootFolder)
	case "drive":
		creds, err := drive.ReadCredentials(cfg.DriveOAuthClientFile, cfg.DriveOAuthClientJSON, cfg.DriveOAuthTokenFile, cfg.DriveOAuthTokenJSON)
		if err != nil {
			logger.Error("Failed to read Drive credentials", "error", err)
			os.Exit(1)
		}
		store, err := drive.NewStore(ctx, creds)
		if err != nil {
			logger.Error("Failed to initialize Drive store", "error", err)
			os.Exit(1)
		}
		logger.Info("Google Drive store initialized", "root_folder", cfg.RemoteRootFolder)
		return remote.NewTree(store, cfg.RemoteRootFolder)
	default:
		logger.Error("Unknown remote backend", "backend", cfg.RemoteBackend)
		os.Exit(1)
		return nil
	}
}

// PullDatabaseIfAbsent downloads the remote database mirror when no local
// database exists yet. A missing mirror is not an error.
func PullDatabaseIfAbsent(ctx context.Context, logger *slog.Logger, tree *remote.Tree, dbPath, remoteName string) {
	if tree == nil {
		return
	}
	if _, err := os.Stat(dbPath); err == nil {
		return
	}
	data, found, err := tree.PullDatabase(ctx, remoteName)
	if err != nil {
		logger.Warn("Failed to pull remote database, starting fresh", "error", err)
		return
	}
	if !found {
		logger.Info("No remote database mirror found, starting fresh")
		return
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		logger.Warn("Failed to create database directory", "error", err)
		return
	}
	if err := os.WriteFile(dbPath, data, 0o644); err != nil {
		logger.Warn("Failed to write pulled database", "error", err)
		return
	}
	logger.Info("Pulled remote database mirror", "path", dbPath, "bytes", len(data))
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context cancelled on shutdown signals and a channel that
// signals when shutdown is complete.
func GracefulShutdown(logger *slog.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup()
		}

		cancel()

		select {
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		case <-time.After(2 * time.Second):
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
