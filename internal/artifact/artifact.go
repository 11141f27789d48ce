// Package artifact persists normalized receipt images under a configured
// directory with collision-free names.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store writes receipt artifacts below a base directory, creating it on
// demand.
type Store struct {
	baseDir string
}

func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("creating receipts directory: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// Dir returns the base directory.
func (s *Store) Dir() string {
	return s.baseDir
}

// NextName returns the first free path of the form {base}_{n}{ext} with n
// counting up from 1. Deterministic for the directory contents at call
// time; not safe against concurrent writers in other processes, so callers
// serialize ingestion per process.
func NextName(dir, base, ext string) (string, error) {
	for counter := 1; ; counter++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, counter, ext))
		_, err := os.Stat(candidate)
		if os.IsNotExist(err) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("probing %s: %w", candidate, err)
		}
	}
}

// Save writes data under the next free {base}_{n}{ext} name and returns
// the full path. Existing files are never overwritten.
func (s *Store) Save(base, ext string, data []byte) (string, error) {
	path, err := NextName(s.baseDir, base, ext)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	return path, nil
}

// Get reads a previously saved artifact.
func (s *Store) Get(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}
