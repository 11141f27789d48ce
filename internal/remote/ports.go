// Package remote defines the outbound port to the cloud file store and
// the Receipts/{year}/{category} tree discipline built on top of it.
package remote

import (
	"context"
	"errors"
)

var (
	// ErrAuth means the store rejected or could not obtain credentials.
	ErrAuth = errors.New("remote store authentication failed")
	// ErrSync covers folder and file operations that failed after auth.
	ErrSync = errors.New("remote sync failed")
)

// Store is the minimal folder/file surface of the remote object store.
// Implementations: drive (Google Drive v3) and memory (tests, local dev).
type Store interface {
	// EnsureFolder resolves or creates a folder with the given name under
	// parentID (store root when empty). Lookup-before-create is the
	// enforced idempotency invariant: repeated calls with the same
	// (name, parent) never create duplicate siblings.
	EnsureFolder(ctx context.Context, name, parentID string) (string, error)

	// PutFile creates name under folderID, or updates the existing
	// same-named file's content in place. At most one file per (folder,
	// name) pair.
	PutFile(ctx context.Context, folderID, name string, data []byte) (string, error)

	// FindFile looks a file up by name under parentID.
	FindFile(ctx context.Context, name, parentID string) (string, bool, error)

	// Download fetches a file's content by identity.
	Download(ctx context.Context, fileID string) ([]byte, error)
}
