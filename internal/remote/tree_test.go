package remote_test

import (
	"bytes"
	"context"
	"testing"

	"ricevute/internal/remote"
	"ricevute/internal/remote/memory"
)

func TestEnsureReceiptPath(t *testing.T) {
	store := memory.New()
	tree := remote.NewTree(store, "Receipts")
	ctx := context.Background()

	first, err := tree.EnsureReceiptPath(ctx, 2024, "Travel")
	if err != nil {
		t.Fatal(err)
	}
	second, err := tree.EnsureReceiptPath(ctx, 2024, "Travel")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("repeated path resolution returned different folders")
	}
	// Receipts, 2024, Travel and nothing else.
	if got := store.FolderCount(); got != 3 {
		t.Fatalf("folder count = %d, want 3", got)
	}

	if _, err := tree.EnsureReceiptPath(ctx, 2024, "Supplies"); err != nil {
		t.Fatal(err)
	}
	if got := store.FolderCount(); got != 4 {
		t.Fatalf("sibling category should add exactly one folder, count = %d", got)
	}
}

func TestUploadReceiptOverwrites(t *testing.T) {
	store := memory.New()
	tree := remote.NewTree(store, "Receipts")
	ctx := context.Background()

	if _, err := tree.UploadReceipt(ctx, 2024, "Supplies", "receipt_1.png", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	id, err := tree.UploadReceipt(ctx, 2024, "Supplies", "receipt_1.png", []byte("v2"))
	if err != nil {
		t.Fatal(err)
	}
	if got := store.FileCount(); got != 1 {
		t.Fatalf("file count = %d, want 1", got)
	}
	data, err := store.Download(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte("v2")) {
		t.Fatalf("content = %q, want v2", data)
	}
}

func TestDatabaseMirror(t *testing.T) {
	store := memory.New()
	tree := remote.NewTree(store, "Receipts")
	ctx := context.Background()

	t.Run("pull before any push reports absence", func(t *testing.T) {
		_, found, err := tree.PullDatabase(ctx, "ricevute.db")
		if err != nil {
			t.Fatal(err)
		}
		if found {
			t.Fatalf("nothing was pushed yet")
		}
	})

	t.Run("push then pull round-trips", func(t *testing.T) {
		if err := tree.PushDatabase(ctx, "ricevute.db", []byte("snapshot-1")); err != nil {
			t.Fatal(err)
		}
		if err := tree.PushDatabase(ctx, "ricevute.db", []byte("snapshot-2")); err != nil {
			t.Fatal(err)
		}
		data, found, err := tree.PullDatabase(ctx, "ricevute.db")
		if err != nil {
			t.Fatal(err)
		}
		if !found {
			t.Fatalf("expected the pushed file")
		}
		if !bytes.Equal(data, []byte("snapshot-2")) {
			t.Fatalf("pull = %q, want the latest push", data)
		}
		if got := store.FileCount(); got != 1 {
			t.Fatalf("repeated pushes must keep one entry, count = %d", got)
		}
	})
}
