package remote

import (
	"context"
	"fmt"
	"strconv"
)

// Tree applies the Receipts/{year}/{category} layout and the database
// mirror convention on top of a Store.
type Tree struct {
	store Store
	root  string
}

func NewTree(store Store, rootFolder string) *Tree {
	if rootFolder == "" {
		rootFolder = "Receipts"
	}
	return &Tree{store: store, root: rootFolder}
}

// EnsureReceiptPath resolves root/{year}/{category}, creating any missing
// level, left to right, and returns the category folder id.
func (t *Tree) EnsureReceiptPath(ctx context.Context, year int, category string) (string, error) {
	rootID, err := t.store.EnsureFolder(ctx, t.root, "")
	if err != nil {
		return "", fmt.Errorf("ensure %s: %w", t.root, err)
	}
	yearID, err := t.store.EnsureFolder(ctx, strconv.Itoa(year), rootID)
	if err != nil {
		return "", fmt.Errorf("ensure %s/%d: %w", t.root, year, err)
	}
	categoryID, err := t.store.EnsureFolder(ctx, category, yearID)
	if err != nil {
		return "", fmt.Errorf("ensure %s/%d/%s: %w", t.root, year, category, err)
	}
	return categoryID, nil
}

// UploadReceipt puts filename's bytes under root/{year}/{category}.
// Re-uploading a same-named artifact overwrites, it never duplicates.
func (t *Tree) UploadReceipt(ctx context.Context, year int, category, filename string, data []byte) (string, error) {
	folderID, err := t.EnsureReceiptPath(ctx, year, category)
	if err != nil {
		return "", err
	}
	fileID, err := t.store.PutFile(ctx, folderID, filename, data)
	if err != nil {
		return "", fmt.Errorf("put %s: %w", filename, err)
	}
	return fileID, nil
}

// PushDatabase uploads the database file under its well-known name at the
// tree root, update-in-place.
func (t *Tree) PushDatabase(ctx context.Context, name string, data []byte) error {
	rootID, err := t.store.EnsureFolder(ctx, t.root, "")
	if err != nil {
		return fmt.Errorf("ensure %s: %w", t.root, err)
	}
	if _, err := t.store.PutFile(ctx, rootID, name, data); err != nil {
		return fmt.Errorf("push %s: %w", name, err)
	}
	return nil
}

// PullDatabase downloads the database file from the tree root. The second
// return is false when no remote copy exists, which is not an error.
func (t *Tree) PullDatabase(ctx context.Context, name string) ([]byte, bool, error) {
	rootID, err := t.store.EnsureFolder(ctx, t.root, "")
	if err != nil {
		return nil, false, fmt.Errorf("ensure %s: %w", t.root, err)
	}
	fileID, found, err := t.store.FindFile(ctx, name, rootID)
	if err != nil {
		return nil, false, fmt.Errorf("find %s: %w", name, err)
	}
	if !found {
		return nil, false, nil
	}
	data, err := t.store.Download(ctx, fileID)
	if err != nil {
		return nil, false, fmt.Errorf("download %s: %w", name, err)
	}
	return data, true, nil
}
