package worker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ricevute/internal/amqp"
	"ricevute/internal/remote"
	"ricevute/internal/remote/memory"
)

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}

func TestHandleReceiptSyncUploadsArtifact(t *testing.T) {
	mem := memory.New()
	tree := remote.NewTree(mem, "Receipts")
	dbPath := writeTempFile(t, "ricevute.db", []byte("db-bytes"))
	w := NewSyncWorker(tree, dbPath, "ricevute.db")

	receiptPath := writeTempFile(t, "receipt_01-02-2026_1.png", []byte("png-bytes"))
	msg := amqp.NewReceiptSyncMessage(receiptPath, 2026, "Travel", "receipt_01-02-2026_1.png")

	if err := w.HandleReceiptSync(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Receipt plus database mirror.
	if mem.FileCount() != 2 {
		t.Fatalf("expected 2 files, got %d", mem.FileCount())
	}

	// Redelivery must not create duplicates.
	if err := w.HandleReceiptSync(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error on redelivery: %v", err)
	}
	if mem.FileCount() != 2 {
		t.Errorf("expected redelivery to update in place, got %d files", mem.FileCount())
	}
}

func TestHandleReceiptSyncMissingArtifactDropsMessage(t *testing.T) {
	mem := memory.New()
	tree := remote.NewTree(mem, "Receipts")
	w := NewSyncWorker(tree, filepath.Join(t.TempDir(), "ricevute.db"), "ricevute.db")

	msg := amqp.NewReceiptSyncMessage("/nonexistent/receipt.png", 2026, "Travel", "receipt.png")
	if err := w.HandleReceiptSync(context.Background(), msg); err != nil {
		t.Fatalf("missing artifact must not requeue: %v", err)
	}
	if mem.FileCount() != 0 {
		t.Errorf("expected no uploads, got %d", mem.FileCount())
	}
}

func TestMirrorDatabaseOnStartup(t *testing.T) {
	mem := memory.New()
	tree := remote.NewTree(mem, "Receipts")
	dbPath := writeTempFile(t, "ricevute.db", []byte("db-bytes"))
	w := NewSyncWorker(tree, dbPath, "ricevute.db")

	if err := w.MirrorDatabaseOnStartup(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mem.FileCount() != 1 {
		t.Fatalf("expected mirrored database, got %d files", mem.FileCount())
	}
}

func TestMirrorDatabaseOnStartupWithoutDatabase(t *testing.T) {
	tree := remote.NewTree(memory.New(), "Receipts")
	w := NewSyncWorker(tree, filepath.Join(t.TempDir(), "missing.db"), "ricevute.db")

	if err := w.MirrorDatabaseOnStartup(context.Background()); err != nil {
		t.Fatalf("missing database should be skipped, got: %v", err)
	}
}
