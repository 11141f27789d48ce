package memory

import (
	"bytes"
	"context"
	"testing"
)

func TestEnsureFolderIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()

	root, err := s.EnsureFolder(ctx, "Receipts", "")
	if err != nil {
		t.Fatal(err)
	}
	first, err := s.EnsureFolder(ctx, "2024", root)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.EnsureFolder(ctx, "2024", root)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("repeated ensure returned %q then %q", first, second)
	}
	if got := s.FolderCount(); got != 2 {
		t.Fatalf("folder count = %d, want 2 (Receipts + 2024)", got)
	}
}

func TestEnsureFolderSameNameDifferentParents(t *testing.T) {
	s := New()
	ctx := context.Background()

	a, _ := s.EnsureFolder(ctx, "A", "")
	b, _ := s.EnsureFolder(ctx, "B", "")
	underA, err := s.EnsureFolder(ctx, "2024", a)
	if err != nil {
		t.Fatal(err)
	}
	underB, err := s.EnsureFolder(ctx, "2024", b)
	if err != nil {
		t.Fatal(err)
	}
	if underA == underB {
		t.Fatalf("same name under different parents must be distinct folders")
	}
}

func TestPutFileUpdatesInPlace(t *testing.T) {
	s := New()
	ctx := context.Background()

	folderID, _ := s.EnsureFolder(ctx, "Receipts", "")
	first, err := s.PutFile(ctx, folderID, "receipt_1.png", []byte("old"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.PutFile(ctx, folderID, "receipt_1.png", []byte("new"))
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("second put must keep the identity, got %q then %q", first, second)
	}
	if got := s.FileCount(); got != 1 {
		t.Fatalf("file count = %d, want 1", got)
	}
	data, err := s.Download(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte("new")) {
		t.Fatalf("content = %q, want the second write", data)
	}
}

func TestFindFile(t *testing.T) {
	s := New()
	ctx := context.Background()

	folderID, _ := s.EnsureFolder(ctx, "Receipts", "")
	if _, found, err := s.FindFile(ctx, "ricevute.db", folderID); err != nil || found {
		t.Fatalf("missing file: found=%v err=%v", found, err)
	}
	id, _ := s.PutFile(ctx, folderID, "ricevute.db", []byte("db"))
	gotID, found, err := s.FindFile(ctx, "ricevute.db", folderID)
	if err != nil || !found || gotID != id {
		t.Fatalf("FindFile = (%q,%v,%v), want (%q,true,nil)", gotID, found, err, id)
	}
}
