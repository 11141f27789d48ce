package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"ricevute/internal/amqp"
	"ricevute/internal/remote"
)

// SyncWorker replays receipt uploads that the ingestion path could not
// complete. Messages carry the local artifact path and its tree position;
// the remote store's update-in-place contract makes replays idempotent,
// so a redelivered message never duplicates a receipt.
type SyncWorker struct {
	tree         *remote.Tree
	dbPath       string
	remoteDBName string
}

func NewSyncWorker(tree *remote.Tree, dbPath, remoteDBName string) *SyncWorker {
	return &SyncWorker{
		tree:         tree,
		dbPath:       dbPath,
		remoteDBName: remoteDBName,
	}
}

// HandleReceiptSync uploads one receipt artifact into
// Receipts/{year}/{category} and refreshes the database mirror.
// Returning an error requeues the message.
func (w *SyncWorker) HandleReceiptSync(ctx context.Context, msg *amqp.ReceiptSyncMessage) error {
	slog.InfoContext(ctx, "Processing receipt sync message",
		"path", msg.LocalPath,
		"year", msg.Year,
		"category", msg.Category)

	data, err := os.ReadFile(msg.LocalPath)
	if err != nil {
		// The artifact is gone; requeueing cannot help.
		slog.ErrorContext(ctx, "Receipt artifact missing, dropping message",
			"path", msg.LocalPath,
			"error", err)
		return nil
	}

	fileID, err := w.tree.UploadReceipt(ctx, msg.Year, msg.Category, msg.Filename, data)
	if err != nil {
		return fmt.Errorf("upload receipt: %w", err)
	}

	slog.InfoContext(ctx, "Receipt synced to remote",
		"path", msg.LocalPath,
		"file_id", fileID)

	w.mirrorDatabase(ctx)
	return nil
}

// MirrorDatabaseOnStartup pushes the current database file once at worker
// start, recovering mirrors missed while the worker was down.
func (w *SyncWorker) MirrorDatabaseOnStartup(ctx context.Context) error {
	data, err := os.ReadFile(w.dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			slog.InfoContext(ctx, "No local database yet, skipping startup mirror")
			return nil
		}
		return fmt.Errorf("read database: %w", err)
	}
	if err := w.tree.PushDatabase(ctx, w.remoteDBName, data); err != nil {
		return fmt.Errorf("push database: %w", err)
	}
	slog.InfoContext(ctx, "Database mirrored on startup", "path", w.dbPath)
	return nil
}

func (w *SyncWorker) mirrorDatabase(ctx context.Context) {
	data, err := os.ReadFile(w.dbPath)
	if err != nil {
		slog.WarnContext(ctx, "Failed to read database for mirroring", "error", err)
		return
	}
	if err := w.tree.PushDatabase(ctx, w.remoteDBName, data); err != nil {
		slog.WarnContext(ctx, "Failed to mirror database to remote", "error", err)
	}
}
